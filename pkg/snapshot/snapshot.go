// Package snapshot records the original content of rewrite targets so a
// mutated document can be restored exactly.
package snapshot

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/dtnitsch/llm-page-leveler/pkg/selector"
)

// Record is the captured pre-rewrite state of one element. The live
// selection is kept for restore but the stable ID is the key.
type Record struct {
	ID             int
	OriginalText   string
	OriginalMarkup string

	sel *goquery.Selection
}

// Store maps stable element IDs to their captured originals. One Store
// belongs to one document session; it is never persisted.
type Store struct {
	records map[int]*Record
	order   []int
}

func NewStore() *Store {
	return &Store{records: make(map[int]*Record)}
}

// Capture records originalText and originalMarkup for every target not
// already present. Idempotent: a second capture without an intervening
// Clear never overwrites an existing record, so true originals survive a
// partial rewrite.
func (s *Store) Capture(targets []*selector.Target) error {
	for _, target := range targets {
		if _, ok := s.records[target.ID]; ok {
			continue
		}
		markup, err := target.Selection.Html()
		if err != nil {
			return fmt.Errorf("failed to serialize element %d: %w", target.ID, err)
		}
		s.records[target.ID] = &Record{
			ID:             target.ID,
			OriginalText:   strings.TrimSpace(target.Selection.Text()),
			OriginalMarkup: markup,
			sel:            target.Selection,
		}
		s.order = append(s.order, target.ID)
	}
	return nil
}

// Restore puts originalMarkup back into every recorded element still
// attached to its document, then clears the store. Restoring an empty store
// is a no-op. Returns the number of elements restored.
func (s *Store) Restore() int {
	restored := 0
	for _, id := range s.order {
		record := s.records[id]
		if !attached(record.sel) {
			continue
		}
		record.sel.SetHtml(record.OriginalMarkup)
		restored++
	}
	s.records = make(map[int]*Record)
	s.order = nil
	return restored
}

// Get returns the record for a stable ID, or nil.
func (s *Store) Get(id int) *Record {
	return s.records[id]
}

// Len reports how many elements are captured.
func (s *Store) Len() int {
	return len(s.records)
}

// attached walks parents to check the node still hangs off a document root.
func attached(sel *goquery.Selection) bool {
	if sel == nil || sel.Length() == 0 {
		return false
	}
	for n := sel.Get(0); n != nil; n = n.Parent {
		if n.Type == html.DocumentNode {
			return true
		}
	}
	return false
}
