package models

// Phase identifies which pipeline a progress event belongs to.
type Phase string

const (
	PhaseRewrite   Phase = "rewrite"
	PhaseSummarize Phase = "summarize"
)

// ProgressEvent reports pipeline progress. Within one run, Percent is
// non-decreasing and reaches 100 on success; a pipeline-level failure is
// signalled by a final event with Percent 0.
type ProgressEvent struct {
	Phase   Phase `json:"phase"`
	Percent int   `json:"percent"`
}

// ProgressFunc receives progress events. A nil ProgressFunc is allowed
// everywhere one is accepted.
type ProgressFunc func(ProgressEvent)
