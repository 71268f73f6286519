// Package selector walks a parsed document and picks out the elements worth
// rewriting: real prose paragraphs and headings, minus navigation, metadata,
// and invisible nodes.
package selector

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MinBodyTextLen is the minimum trimmed text length for a paragraph to
// qualify. Headings are exempt.
const MinBodyTextLen = 25

// Target is one rewrite candidate. ID is a synthetic stable index assigned
// in document order at selection time; the live selection is carried
// alongside and is never used as a map key.
type Target struct {
	ID        int
	Selection *goquery.Selection
	IsHeading bool
	Text      string // trimmed rendered text at selection time
}

var (
	// Class names that mark an element as non-content even when its tag
	// would otherwise qualify.
	nonContentClassRe = regexp.MustCompile(`(?i)(byline|caption|timestamp|icon|label|button)`)

	// Class names marking navigation/boilerplate containers.
	navClassRe = regexp.MustCompile(`(?i)(\bnav\b|navbar|navigation|menu|sidebar|footer|header|breadcrumb)`)

	// Class names of recognized main-content containers.
	contentClassRe = regexp.MustCompile(`(?i)(article|content|post|entry|story|prose)`)

	// Text shapes that identify metadata rather than prose: datelines,
	// bylines, comment counts.
	metaTextPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{1,2}[./-]\d{1,2}[./-]\d{2,4}$`),
		regexp.MustCompile(`(?i)^(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}$`),
		regexp.MustCompile(`(?i)^(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
		regexp.MustCompile(`(?i)^(posted|written)\s+by\b`),
		regexp.MustCompile(`(?i)^\d+\s+comments?$`),
	}
)

// Select returns rewrite targets in document order. Each target gets a
// synthetic index; ordering matters only for deterministic indexing, not for
// rewrite correctness.
func Select(doc *goquery.Document) []*Target {
	var targets []*Target

	doc.Find("p, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		heading := strings.HasPrefix(tag, "h")

		text := normalizeText(sel.Text())
		if !heading && len(text) <= MinBodyTextLen {
			return
		}
		if text == "" {
			return
		}

		if isHidden(sel) {
			return
		}
		if insideBoilerplate(sel) {
			return
		}
		if isInteractive(sel) {
			return
		}
		if cls, ok := sel.Attr("class"); ok && nonContentClassRe.MatchString(cls) {
			return
		}
		if isMetadataText(text) {
			return
		}
		if !underMainContent(sel) {
			return
		}

		targets = append(targets, &Target{
			ID:        len(targets),
			Selection: sel,
			IsHeading: heading,
			Text:      text,
		})
	})

	return targets
}

// isHidden checks the node and its ancestors for inline hiding. Without a
// layout engine this is a static heuristic: display:none, visibility:hidden,
// opacity 0, or the hidden attribute.
func isHidden(sel *goquery.Selection) bool {
	for n := sel; n.Length() > 0; n = n.Parent() {
		if goquery.NodeName(n) == "body" || goquery.NodeName(n) == "html" {
			break
		}
		if _, ok := n.Attr("hidden"); ok {
			return true
		}
		style, ok := n.Attr("style")
		if !ok {
			continue
		}
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") ||
			strings.Contains(style, "visibility:hidden") ||
			strings.Contains(style, "opacity:0;") ||
			strings.HasSuffix(style, "opacity:0") {
			return true
		}
	}
	return false
}

// insideBoilerplate reports whether the node sits inside a navigation,
// header, footer, or sidebar container.
func insideBoilerplate(sel *goquery.Selection) bool {
	if sel.Closest("nav, header, footer, aside").Length() > 0 {
		return true
	}
	for n := sel.Parent(); n.Length() > 0; n = n.Parent() {
		if cls, ok := n.Attr("class"); ok && navClassRe.MatchString(cls) {
			return true
		}
	}
	return false
}

// isInteractive excludes controls: links, buttons, or anything wired to a
// click handler.
func isInteractive(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "a", "button":
		return true
	}
	if role, ok := sel.Attr("role"); ok && strings.EqualFold(role, "button") {
		return true
	}
	if _, ok := sel.Attr("onclick"); ok {
		return true
	}
	return false
}

func isMetadataText(text string) bool {
	for _, re := range metaTextPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// underMainContent applies the main-container rule: a generic paragraph or
// heading must fall under a recognized main-content container (article,
// main, [role=main], or a known content class), or, absent any non-content
// container ancestor, is accepted by default. Ancestors are walked outward
// and the first recognizable one decides.
func underMainContent(sel *goquery.Selection) bool {
	for n := sel.Parent(); n.Length() > 0; n = n.Parent() {
		switch goquery.NodeName(n) {
		case "article", "main":
			return true
		}
		if role, ok := n.Attr("role"); ok && strings.EqualFold(role, "main") {
			return true
		}
		if cls, ok := n.Attr("class"); ok {
			if contentClassRe.MatchString(cls) {
				return true
			}
			if nonContentClassRe.MatchString(cls) || navClassRe.MatchString(cls) {
				return false
			}
		}
	}
	return true
}

// normalizeText collapses runs of whitespace and trims the result, matching
// what a rendered page would show.
func normalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
