package selector

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse test HTML: %v", err)
	}
	return doc
}

func TestSelect_LengthFloorAndHeadings(t *testing.T) {
	long1 := strings.Repeat("word suppl ", 8)[:80] // 80 chars
	long2 := strings.Repeat("content go ", 20)[:200]

	doc := parseDoc(t, `<html><body><article>
		<h1>Short title</h1>
		<p>`+long1+`</p>
		<p>ten chars.</p>
		<p>`+long2+`</p>
	</article></body></html>`)

	targets := Select(doc)
	if len(targets) != 3 {
		t.Fatalf("Select() returned %d targets, want 3", len(targets))
	}

	if !targets[0].IsHeading {
		t.Error("first target should be the heading")
	}
	if targets[1].IsHeading || targets[2].IsHeading {
		t.Error("paragraph targets wrongly marked as headings")
	}

	// Stable IDs follow document order.
	for i, target := range targets {
		if target.ID != i {
			t.Errorf("target %d has ID %d, want %d", i, target.ID, i)
		}
	}
}

func TestSelect_ExcludesBoilerplateContainers(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<nav><p>This navigation paragraph is long enough to pass the floor.</p></nav>
		<header><p>This header paragraph is long enough to pass the floor.</p></header>
		<footer><p>This footer paragraph is long enough to pass the floor.</p></footer>
		<div class="sidebar"><p>This sidebar paragraph is long enough to pass.</p></div>
		<article><p>This body paragraph is real content and long enough.</p></article>
	</body></html>`)

	targets := Select(doc)
	if len(targets) != 1 {
		t.Fatalf("Select() returned %d targets, want 1", len(targets))
	}
	if !strings.Contains(targets[0].Text, "real content") {
		t.Errorf("wrong target selected: %q", targets[0].Text)
	}
}

func TestSelect_ExcludesHiddenNodes(t *testing.T) {
	doc := parseDoc(t, `<html><body><article>
		<p style="display:none">Hidden paragraph with enough text to qualify.</p>
		<p style="visibility: hidden">Another hidden paragraph with enough text.</p>
		<p style="opacity: 0">Transparent paragraph with enough text to pass.</p>
		<div hidden><p>Paragraph inside a hidden container, long enough.</p></div>
		<p>Visible paragraph with more than enough text to qualify.</p>
	</article></body></html>`)

	targets := Select(doc)
	if len(targets) != 1 {
		t.Fatalf("Select() returned %d targets, want 1", len(targets))
	}
	if !strings.HasPrefix(targets[0].Text, "Visible") {
		t.Errorf("wrong target selected: %q", targets[0].Text)
	}
}

func TestSelect_ExcludesInteractiveAndNonContentClasses(t *testing.T) {
	doc := parseDoc(t, `<html><body><article>
		<p role="button">A clickable paragraph that is long enough to qualify.</p>
		<p onclick="go()">Another clickable paragraph, also long enough here.</p>
		<p class="byline">Paragraph carrying a byline class, long enough too.</p>
		<p class="photo-caption">Caption class paragraph with plenty of text.</p>
		<p>Ordinary prose paragraph that easily clears the length floor.</p>
	</article></body></html>`)

	targets := Select(doc)
	if len(targets) != 1 {
		t.Fatalf("Select() returned %d targets, want 1", len(targets))
	}
}

func TestSelect_ExcludesMetadataText(t *testing.T) {
	doc := parseDoc(t, `<html><body><article>
		<p>Monday, January 5th, our correspondent filed this report text.</p>
		<p>Posted by a very prolific staff writer on the evening desk.</p>
		<p>A real sentence of article prose that clears the length floor.</p>
	</article></body></html>`)

	targets := Select(doc)
	if len(targets) != 1 {
		t.Fatalf("Select() returned %d targets, want 1", len(targets))
	}
	if !strings.HasPrefix(targets[0].Text, "A real sentence") {
		t.Errorf("wrong target selected: %q", targets[0].Text)
	}
}

func TestSelect_AcceptsByDefaultWithoutContainers(t *testing.T) {
	// No article/main and no non-content ancestor: accept.
	doc := parseDoc(t, `<html><body>
		<p>Bare page paragraph with no containers, long enough to pass.</p>
	</body></html>`)

	if got := len(Select(doc)); got != 1 {
		t.Fatalf("Select() returned %d targets, want 1", got)
	}
}

func TestSelect_DocumentOrder(t *testing.T) {
	doc := parseDoc(t, `<html><body><main>
		<h2>Alpha heading</h2>
		<p>First paragraph of prose long enough to clear the floor.</p>
		<h2>Beta heading</h2>
		<p>Second paragraph of prose long enough to clear the floor.</p>
	</main></body></html>`)

	targets := Select(doc)
	if len(targets) != 4 {
		t.Fatalf("Select() returned %d targets, want 4", len(targets))
	}
	order := []string{"Alpha heading", "First", "Beta heading", "Second"}
	for i, prefix := range order {
		if !strings.HasPrefix(targets[i].Text, prefix) {
			t.Errorf("target %d = %q, want prefix %q", i, targets[i].Text, prefix)
		}
	}
}
