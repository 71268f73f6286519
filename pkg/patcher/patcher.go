// Package patcher applies generated text back into an element while keeping
// the element's hyperlinks alive.
package patcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Apply replaces the element's content with newText, then re-appends every
// anchor that was inside the original content as a trailing, space-separated
// sibling. Returns how many anchors were preserved.
//
// Inline re-insertion at the anchor's original clause is not attempted: the
// backend restructures the prose, so positional re-insertion would need the
// backend to echo placeholder markers. The contract is that links survive at
// the end of the block with their href and attributes intact.
func Apply(sel *goquery.Selection, newText string) int {
	anchorSel := sel.Find("a")

	anchors := make([]*html.Node, 0, anchorSel.Length())
	anchorSel.Each(func(_ int, a *goquery.Selection) {
		if n := a.Get(0); n != nil {
			anchors = append(anchors, n)
		}
	})
	// Detach before the wipe so the nodes stay owned by us.
	anchorSel.Remove()

	sel.SetText(strings.TrimSpace(newText))

	for _, anchor := range anchors {
		sel.AppendNodes(spaceNode(), anchor)
	}

	return len(anchors)
}

func spaceNode() *html.Node {
	return &html.Node{Type: html.TextNode, Data: " "}
}
