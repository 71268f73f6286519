package db

import (
	"fmt"
	"time"
)

// Run is one recorded pipeline run.
type Run struct {
	RunID        int64
	URL          string
	Action       string
	Level        string
	Language     string
	Targets      int
	Rewritten    int
	SummaryChars int
	Duration     time.Duration
	Status       string
	Error        string
	CreatedAt    time.Time
}

// InsertRun records a completed (or failed) run and returns its ID.
func (db *DB) InsertRun(run Run) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (url, action, level, language, targets, rewritten, summary_chars, duration_ms, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.URL, run.Action, run.Level, run.Language,
		run.Targets, run.Rewritten, run.SummaryChars,
		run.Duration.Milliseconds(), run.Status, run.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT run_id, url, action, level, COALESCE(language, ''), targets, rewritten,
		       summary_chars, duration_ms, status, COALESCE(error, ''), created_at
		FROM runs
		ORDER BY created_at DESC, run_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var durationMs int64
		if err := rows.Scan(&run.RunID, &run.URL, &run.Action, &run.Level, &run.Language,
			&run.Targets, &run.Rewritten, &run.SummaryChars, &durationMs,
			&run.Status, &run.Error, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunByID returns one run.
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	var run Run
	var durationMs int64
	err := db.QueryRow(`
		SELECT run_id, url, action, level, COALESCE(language, ''), targets, rewritten,
		       summary_chars, duration_ms, status, COALESCE(error, ''), created_at
		FROM runs WHERE run_id = ?`, runID).
		Scan(&run.RunID, &run.URL, &run.Action, &run.Level, &run.Language,
			&run.Targets, &run.Rewritten, &run.SummaryChars, &durationMs,
			&run.Status, &run.Error, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return &run, nil
}
