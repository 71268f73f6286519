package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestText_FlattensAnchorsToLabels(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><p>Read the <a href="https://example.com/docs">full    docs</a> today.</p></body></html>`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	sel := doc.Find("p")
	got := Text(sel)
	want := "Read the full docs today."
	if got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if strings.Contains(got, "href") || strings.Contains(got, "example.com") {
		t.Errorf("Text() leaked markup: %q", got)
	}
}

func TestText_DoesNotMutateLiveElement(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><p>Some <a href="/x">linked</a> prose here.</p></body></html>`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	sel := doc.Find("p")
	before, _ := sel.Html()
	Text(sel)
	after, _ := sel.Html()

	if before != after {
		t.Errorf("live element mutated:\n before %q\n after  %q", before, after)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  a \n\t b\n\nc  ")
	if got != "a b c" {
		t.Errorf("Normalize() = %q, want %q", got, "a b c")
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	s := "héllo wörld"
	got := Truncate(s, 2)
	if got != "h" {
		t.Errorf("Truncate() = %q, want %q (no split rune)", got, "h")
	}
	if Truncate(s, 100) != s {
		t.Error("Truncate() should leave short strings alone")
	}
}
