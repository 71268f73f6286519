// Package scheduler drives rewrite targets through the generation backend
// in bounded-size waves.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dtnitsch/llm-page-leveler/models"
	"github.com/dtnitsch/llm-page-leveler/pkg/extract"
	"github.com/dtnitsch/llm-page-leveler/pkg/patcher"
	"github.com/dtnitsch/llm-page-leveler/pkg/selector"
)

const (
	// DefaultWaveSize bounds in-flight generation calls. Waved dispatch
	// protects the backend while still overlapping latency across a wave.
	DefaultWaveSize = 10

	// DefaultWavePause is the cooperative pause between waves so completing
	// a wave never bursts straight into the next one.
	DefaultWavePause = 500 * time.Millisecond

	// Progress during waves is scaled into a fixed band; the caller owns 0
	// and 100.
	progressFloor = 10
	progressCeil  = 90
)

// Generator is the single backend call the scheduler needs.
type Generator interface {
	Rewrite(ctx context.Context, req models.RewriteRequest) (string, error)
}

// Scheduler partitions targets into waves and reports monotonically
// increasing progress.
type Scheduler struct {
	Client    Generator
	WaveSize  int
	WavePause time.Duration
	Logger    *slog.Logger
	Progress  models.ProgressFunc
}

type outcome struct {
	target *selector.Target
	text   string
	err    error
}

// Run rewrites every target at the given level and patches successful
// results into the document. A per-element failure is logged and contained:
// that element keeps its original text and the wave continues. Returns the
// number of elements whose patch actually applied.
func (s *Scheduler) Run(ctx context.Context, targets []*selector.Target, level models.Level, language string) (int, error) {
	waveSize := s.WaveSize
	if waveSize <= 0 {
		waveSize = DefaultWaveSize
	}
	pause := s.WavePause
	if pause <= 0 {
		pause = DefaultWavePause
	}

	total := len(targets)
	if total == 0 {
		return 0, nil
	}

	s.emit(progressFloor)

	completed := 0
	rewritten := 0
	for start := 0; start < total; start += waveSize {
		end := start + waveSize
		if end > total {
			end = total
		}
		wave := targets[start:end]

		results := make([]outcome, len(wave))
		var wg sync.WaitGroup
		for i, target := range wave {
			wg.Add(1)
			go func(i int, target *selector.Target) {
				defer wg.Done()
				text, err := s.Client.Rewrite(ctx, models.RewriteRequest{
					Text:        extract.Text(target.Selection),
					TargetLevel: level,
					IsHeading:   target.IsHeading,
					Language:    language,
				})
				results[i] = outcome{target: target, text: text, err: err}
			}(i, target)
		}
		wg.Wait()

		// The document tree is shared; all patches happen here, after the
		// wave settles, so no two patches ever race on it.
		for _, result := range results {
			if result.err != nil {
				s.Logger.Error("element rewrite failed, keeping original",
					"element", result.target.ID, "error", result.err)
				continue
			}
			patcher.Apply(result.target.Selection, result.text)
			rewritten++
		}

		completed += len(wave)
		s.emit(progressFloor + (progressCeil-progressFloor)*completed/total)

		if end < total {
			select {
			case <-ctx.Done():
				return rewritten, ctx.Err()
			case <-time.After(pause):
			}
		}
	}

	return rewritten, nil
}

func (s *Scheduler) emit(percent int) {
	if s.Progress == nil {
		return
	}
	s.Progress(models.ProgressEvent{Phase: models.PhaseRewrite, Percent: percent})
}
