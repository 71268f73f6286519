// Package genclient is the single component that talks to the external
// text-generation backend. It owns prompt construction, level-derived
// generation parameters, and the retry policy.
package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dtnitsch/llm-page-leveler/models"
	"github.com/dtnitsch/llm-page-leveler/pkg/extract"
)

const (
	// Input caps keep prompts inside the backend's context budget.
	BodyInputLimit    = 4000
	SummaryInputLimit = 14000

	maxAttempts = 3

	bodyMaxTokens    = 1024
	titleMaxTokens   = 128
	summaryMaxTokens = 512
)

// Config holds backend connection settings.
type Config struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration

	// BackoffBase scales the exponential backoff. Defaults to one second;
	// tests shrink it.
	BackoffBase time.Duration
}

// Client issues generation requests with retry-with-backoff.
type Client struct {
	cfg    Config
	http   *retryablehttp.Client
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = maxAttempts - 1
	rc.Logger = nil
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.CheckRetry = checkRetry
	rc.Backoff = ExpBackoff(cfg.BackoffBase)

	return &Client{cfg: cfg, http: rc, logger: logger}
}

// checkRetry retries rate limits and transport faults only; any other
// non-success status is fatal and surfaces immediately.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		return true, nil
	}
	return false, nil
}

// ExpBackoff waits 2^attempt * base before each retry, so successive delays
// double: 2*base, then 4*base.
func ExpBackoff(base time.Duration) retryablehttp.Backoff {
	return func(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
		return base * (1 << (attemptNum + 1))
	}
}

// generateRequest is the backend call shape: one role-separated prompt
// exchange plus numeric generation knobs.
type generateRequest struct {
	Model             string  `json:"model,omitempty"`
	System            string  `json:"system"`
	Prompt            string  `json:"prompt"`
	Temperature       float64 `json:"temperature"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	MaxTokens         int     `json:"max_tokens"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Rewrite generates a leveled rewrite of one element's text.
func (c *Client) Rewrite(ctx context.Context, req models.RewriteRequest) (string, error) {
	text := extract.Truncate(req.Text, BodyInputLimit)
	maxTokens := bodyMaxTokens
	if req.IsHeading {
		maxTokens = titleMaxTokens
	}
	return c.generate(ctx, rewriteSystem,
		rewritePrompt(req.TargetLevel, text, req.IsHeading, req.Language),
		req.TargetLevel.Params(), maxTokens)
}

// Summarize generates a single whole-page summary.
func (c *Client) Summarize(ctx context.Context, req models.SummaryRequest) (string, error) {
	text := extract.Truncate(req.Text, SummaryInputLimit)
	return c.generate(ctx, summarySystem,
		summaryPrompt(req.TargetLevel, text, req.Language),
		req.TargetLevel.Params(), summaryMaxTokens)
}

func (c *Client) generate(ctx context.Context, system, prompt string, params models.GenerationParams, maxTokens int) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:             c.cfg.Model,
		System:            system,
		Prompt:            prompt,
		Temperature:       params.Temperature,
		RepetitionPenalty: params.DiversityPenalty,
		MaxTokens:         maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Retry budget exhausted on 429s or transport faults.
		c.logger.Error("generation backend unavailable", "attempts", maxAttempts, "error", err)
		return "", &TransientError{Attempts: maxAttempts, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("generation backend rejected request", "status", resp.StatusCode)
		return "", &FatalError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}

	text := stripWrapping(result.Text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// stripWrapping removes surrounding whitespace and wrapping quote
// characters the backend sometimes adds.
func stripWrapping(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'“”‘’")
	return strings.TrimSpace(s)
}
