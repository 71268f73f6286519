// Package extract flattens element content into plain text for the
// generation backend.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Text returns the rendered plain text of an element. It operates on a
// detached clone so the live element is never touched. Hyperlink
// sub-content contributes its visible label only; the backend sees plain
// text, never markup.
func Text(sel *goquery.Selection) string {
	clone := sel.Clone()
	return Normalize(clone.Text())
}

// Normalize collapses all whitespace runs to single spaces and trims.
func Normalize(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// Truncate caps s at max bytes without splitting a rune.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
