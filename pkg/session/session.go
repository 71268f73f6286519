// Package session owns the per-document rewrite state: the parsed document,
// the snapshot store, and the rewritten flag. One Session per page; nothing
// is module-global, so independent sessions can coexist.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/llm-page-leveler/models"
	"github.com/dtnitsch/llm-page-leveler/pkg/langdetect"
	"github.com/dtnitsch/llm-page-leveler/pkg/scheduler"
	"github.com/dtnitsch/llm-page-leveler/pkg/selector"
	"github.com/dtnitsch/llm-page-leveler/pkg/snapshot"
	"github.com/dtnitsch/llm-page-leveler/pkg/summary"
)

// Backend is the generation capability a session needs. *genclient.Client
// satisfies it.
type Backend interface {
	Rewrite(ctx context.Context, req models.RewriteRequest) (string, error)
	Summarize(ctx context.Context, req models.SummaryRequest) (string, error)
}

// Config wires a session's collaborators.
type Config struct {
	Backend   Backend
	Logger    *slog.Logger
	Progress  models.ProgressFunc
	Detector  *langdetect.Detector // optional; nil disables language hints
	WaveSize  int
	WavePause time.Duration
}

// Session drives the rewrite, summarize, and reset operations for one
// document.
type Session struct {
	doc       *goquery.Document
	pageURL   string
	store     *snapshot.Store
	rewritten bool
	language  string
	langDone  bool

	cfg Config
}

func New(doc *goquery.Document, pageURL string, cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Session{
		doc:     doc,
		pageURL: pageURL,
		store:   snapshot.NewStore(),
		cfg:     cfg,
	}
}

// RewriteResult reports a completed rewrite run. ElementsRewritten counts
// only elements whose patch actually applied.
type RewriteResult struct {
	TargetsFound      int
	ElementsRewritten int
}

// SummaryResult carries the summary text and the suggested delivery
// filename.
type SummaryResult struct {
	Summary  string
	Filename string
}

// Rewrite captures originals (idempotently) and rewrites every eligible
// element at the given level. A page with no eligible elements is a no-op
// success with zero rewrites. On pipeline-level failure progress resets to
// zero and the partially rewritten page is left as-is; Reset remains
// available to recover the original.
func (s *Session) Rewrite(ctx context.Context, level models.Level) (*RewriteResult, error) {
	targets := selector.Select(s.doc)
	if len(targets) == 0 {
		s.cfg.Logger.Info("no eligible elements found, nothing to rewrite", "url", s.pageURL)
		return &RewriteResult{}, nil
	}

	if err := s.store.Capture(targets); err != nil {
		return nil, err
	}

	sched := &scheduler.Scheduler{
		Client:    s.cfg.Backend,
		WaveSize:  s.cfg.WaveSize,
		WavePause: s.cfg.WavePause,
		Logger:    s.cfg.Logger,
		Progress:  s.cfg.Progress,
	}

	rewritten, err := sched.Run(ctx, targets, level, s.detectLanguage(targets))
	if err != nil {
		s.emit(models.PhaseRewrite, 0)
		return nil, err
	}

	s.rewritten = true
	s.emit(models.PhaseRewrite, 100)
	return &RewriteResult{TargetsFound: len(targets), ElementsRewritten: rewritten}, nil
}

// Summarize produces a single leveled summary of the page. The snapshot
// store is untouched: summarizing never mutates the document.
func (s *Session) Summarize(ctx context.Context, level models.Level) (*SummaryResult, error) {
	pipeline := &summary.Pipeline{
		Client:   s.cfg.Backend,
		Logger:   s.cfg.Logger,
		Progress: s.cfg.Progress,
	}

	text, err := pipeline.Run(ctx, s.doc, s.pageURL, level, s.detectLanguage(nil))
	if err != nil {
		return nil, err
	}

	return &SummaryResult{
		Summary:  text,
		Filename: summary.SuggestedFilename(level, time.Now()),
	}, nil
}

// Reset restores every captured element and marks the session clean.
// Resetting a clean session is a no-op. Returns how many elements were
// restored.
func (s *Session) Reset() int {
	restored := s.store.Restore()
	s.rewritten = false
	return restored
}

// Rewritten reports whether a rewrite has completed in this session.
func (s *Session) Rewritten() bool { return s.rewritten }

// Html serializes the current document.
func (s *Session) Html() (string, error) { return s.doc.Html() }

// Language returns the detected page language, if detection ran.
func (s *Session) Language() string { return s.language }

// detectLanguage runs detection once per session, sampling target text when
// available and the whole body otherwise.
func (s *Session) detectLanguage(targets []*selector.Target) string {
	if s.langDone || s.cfg.Detector == nil {
		return s.language
	}
	var sample string
	if len(targets) > 0 {
		for _, target := range targets {
			sample += target.Text + " "
			if len(sample) > 600 {
				break
			}
		}
	} else {
		sample = s.doc.Find("body").Text()
	}
	s.language = s.cfg.Detector.Detect(sample)
	s.langDone = true
	return s.language
}

func (s *Session) emit(phase models.Phase, percent int) {
	if s.cfg.Progress == nil {
		return
	}
	s.cfg.Progress(models.ProgressEvent{Phase: phase, Percent: percent})
}
