package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/llm-page-leveler/models"
	"github.com/dtnitsch/llm-page-leveler/pkg/selector"
)

// fakeGenerator tracks concurrency and fails selected inputs.
type fakeGenerator struct {
	inFlight    int32
	maxInFlight int32
	calls       int32
	failOn      string
	delay       time.Duration
}

func (f *fakeGenerator) Rewrite(ctx context.Context, req models.RewriteRequest) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&f.maxInFlight)
		if cur <= peak || atomic.CompareAndSwapInt32(&f.maxInFlight, peak, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failOn != "" && strings.Contains(req.Text, f.failOn) {
		return "", errors.New("simulated backend failure")
	}
	return "rewritten: " + req.Text, nil
}

func buildTargets(t *testing.T, paragraphs int) []*selector.Target {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("<html><body><article>")
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&sb, "<p>Paragraph number %02d with enough text to clear the selection floor.</p>", i)
	}
	sb.WriteString("</article></body></html>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	targets := selector.Select(doc)
	if len(targets) != paragraphs {
		t.Fatalf("selected %d targets, want %d", len(targets), paragraphs)
	}
	return targets
}

func newScheduler(gen Generator, progress models.ProgressFunc) *Scheduler {
	return &Scheduler{
		Client:    gen,
		WaveSize:  10,
		WavePause: time.Millisecond,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Progress:  progress,
	}
}

func TestRun_RespectsConcurrencyCeiling(t *testing.T) {
	targets := buildTargets(t, 25)
	gen := &fakeGenerator{delay: 5 * time.Millisecond}

	rewritten, err := newScheduler(gen, nil).Run(context.Background(), targets, models.LevelB1, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rewritten != 25 {
		t.Errorf("rewritten = %d, want 25", rewritten)
	}
	if gen.maxInFlight > 10 {
		t.Errorf("max in-flight calls = %d, want <= 10", gen.maxInFlight)
	}
	if gen.calls != 25 {
		t.Errorf("backend calls = %d, want 25", gen.calls)
	}
}

func TestRun_MonotonicProgressInBand(t *testing.T) {
	targets := buildTargets(t, 25)
	var events []models.ProgressEvent
	sched := newScheduler(&fakeGenerator{}, func(e models.ProgressEvent) {
		events = append(events, e)
	})

	if _, err := sched.Run(context.Background(), targets, models.LevelB1, ""); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(events) < 2 {
		t.Fatalf("got %d progress events, want at least start + per-wave", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Percent < events[i-1].Percent {
			t.Errorf("progress went backwards: %d after %d", events[i].Percent, events[i-1].Percent)
		}
	}
	first := events[0]
	last := events[len(events)-1]
	if first.Percent != 10 {
		t.Errorf("first event percent = %d, want 10", first.Percent)
	}
	if last.Percent != 90 {
		t.Errorf("last event percent = %d, want 90 (session owns 100)", last.Percent)
	}
	for _, e := range events {
		if e.Phase != models.PhaseRewrite {
			t.Errorf("event phase = %q, want rewrite", e.Phase)
		}
	}
}

func TestRun_PerElementFailureContained(t *testing.T) {
	targets := buildTargets(t, 5)
	gen := &fakeGenerator{failOn: "number 02"}

	rewritten, err := newScheduler(gen, nil).Run(context.Background(), targets, models.LevelB1, "")
	if err != nil {
		t.Fatalf("Run() error = %v, per-element failures must not surface", err)
	}
	if rewritten != 4 {
		t.Errorf("rewritten = %d, want 4 (only applied patches count)", rewritten)
	}

	// The failed element keeps its original text.
	if got := targets[2].Selection.Text(); !strings.Contains(got, "Paragraph number 02") {
		t.Errorf("failed element lost its original text: %q", got)
	}
	// A successful sibling was patched.
	if got := targets[1].Selection.Text(); !strings.HasPrefix(got, "rewritten:") {
		t.Errorf("successful element not patched: %q", got)
	}
}

func TestRun_NoTargetsIsNoOp(t *testing.T) {
	var events []models.ProgressEvent
	sched := newScheduler(&fakeGenerator{}, func(e models.ProgressEvent) {
		events = append(events, e)
	})

	rewritten, err := sched.Run(context.Background(), nil, models.LevelB1, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rewritten != 0 || len(events) != 0 {
		t.Errorf("empty run: rewritten = %d, events = %d, want 0 and 0", rewritten, len(events))
	}
}

func TestRun_CancelledBetweenWaves(t *testing.T) {
	targets := buildTargets(t, 15)
	ctx, cancel := context.WithCancel(context.Background())

	sched := newScheduler(&fakeGenerator{}, nil)
	sched.WavePause = 50 * time.Millisecond

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	rewritten, err := sched.Run(ctx, targets, models.LevelB1, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if rewritten != 10 {
		t.Errorf("rewritten = %d, want the first full wave of 10", rewritten)
	}
}
