package models

// RewriteRequest is one element's worth of text headed to the backend.
type RewriteRequest struct {
	Text        string
	TargetLevel Level
	IsHeading   bool

	// Optional hints
	Language string // detected source language, empty if unknown
}

// SummaryRequest asks for a single whole-page summary.
type SummaryRequest struct {
	Text        string
	TargetLevel Level
	Language    string
}
