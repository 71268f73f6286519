package genclient

import (
	"errors"
	"fmt"
)

// ErrEmptyCompletion is returned when the backend answers with a success
// status but no text. The rewrite path substitutes the original text on
// this error; the summarize path surfaces it, because the summary is the
// sole deliverable.
var ErrEmptyCompletion = errors.New("backend returned empty completion")

// TransientError means the retry budget was exhausted on rate limits or
// transport faults. The operation may succeed later.
type TransientError struct {
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("backend unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError is a non-retryable backend response (any non-success status
// other than 429).
type FatalError struct {
	StatusCode int
	Body       string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("backend rejected request with status %d", e.StatusCode)
}
