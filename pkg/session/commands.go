package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dtnitsch/llm-page-leveler/models"
)

// Command is the inbound {action, payload} message shape from a host UI.
type Command struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the discriminated result every command returns. Errors never
// propagate past this boundary; they become {success:false, error}.
type Response struct {
	Success           bool   `json:"success"`
	Error             string `json:"error,omitempty"`
	ElementsRewritten int    `json:"elementsRewritten,omitempty"`
	Summary           string `json:"summary,omitempty"`
	SummaryLength     int    `json:"summaryLength,omitempty"`
	Filename          string `json:"filename,omitempty"`
	Restored          int    `json:"restored,omitempty"`
}

type levelPayload struct {
	Level string `json:"level"`
}

// Handle dispatches one command against the session.
func (s *Session) Handle(ctx context.Context, cmd Command) Response {
	switch cmd.Action {
	case "rewrite":
		result, err := s.Rewrite(ctx, payloadLevel(cmd.Payload))
		if err != nil {
			return failure(err)
		}
		return Response{Success: true, ElementsRewritten: result.ElementsRewritten}

	case "summarize":
		result, err := s.Summarize(ctx, payloadLevel(cmd.Payload))
		if err != nil {
			return failure(err)
		}
		return Response{
			Success:       true,
			Summary:       result.Summary,
			SummaryLength: len(result.Summary),
			Filename:      result.Filename,
		}

	case "reset":
		return Response{Success: true, Restored: s.Reset()}

	default:
		return Response{Success: false, Error: fmt.Sprintf("unknown action %q", cmd.Action)}
	}
}

// payloadLevel pulls the target level out of a payload. Missing or
// malformed payloads fall back to the default level, matching the unknown
// level rule.
func payloadLevel(payload json.RawMessage) models.Level {
	var p levelPayload
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &p)
	}
	return models.ParseLevel(p.Level)
}

func failure(err error) Response {
	return Response{Success: false, Error: err.Error()}
}
