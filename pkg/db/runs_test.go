package db

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenAt(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenAt() error = %v", err)
	}
	return db
}

func TestInsertRun_AndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	id, err := db.InsertRun(Run{
		URL:       "https://example.com/post",
		Action:    "rewrite",
		Level:     "A1",
		Language:  "English",
		Targets:   12,
		Rewritten: 11,
		Duration:  1500 * time.Millisecond,
		Status:    "success",
	})
	if err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
	if id == 0 {
		t.Fatal("InsertRun() returned 0 ID")
	}

	run, err := db.GetRunByID(id)
	if err != nil {
		t.Fatalf("GetRunByID() error = %v", err)
	}
	if run.URL != "https://example.com/post" {
		t.Errorf("run.URL = %q", run.URL)
	}
	if run.Rewritten != 11 || run.Targets != 12 {
		t.Errorf("run counts = %d/%d, want 11/12", run.Rewritten, run.Targets)
	}
	if run.Duration != 1500*time.Millisecond {
		t.Errorf("run.Duration = %v, want 1.5s", run.Duration)
	}
	if run.Language != "English" {
		t.Errorf("run.Language = %q", run.Language)
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, url := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		if _, err := db.InsertRun(Run{URL: url, Action: "rewrite", Level: "B1", Status: "success"}); err != nil {
			t.Fatalf("InsertRun() error = %v", err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns(2) returned %d runs", len(runs))
	}
	if runs[0].URL != "https://c.example" {
		t.Errorf("first run = %q, want newest", runs[0].URL)
	}
}

func TestListRuns_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("ListRuns() on empty db returned %d runs", len(runs))
	}
}

func TestInsertRun_FailedRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	id, err := db.InsertRun(Run{
		URL:    "https://example.com",
		Action: "summarize",
		Level:  "C1",
		Status: "failed",
		Error:  "no summarizable content found",
	})
	if err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}

	run, err := db.GetRunByID(id)
	if err != nil {
		t.Fatalf("GetRunByID() error = %v", err)
	}
	if run.Status != "failed" || run.Error == "" {
		t.Errorf("failed run = %+v", run)
	}
}
