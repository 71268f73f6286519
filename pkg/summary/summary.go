// Package summary implements the single-shot page summarization pipeline.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/dtnitsch/llm-page-leveler/models"
	"github.com/dtnitsch/llm-page-leveler/pkg/extract"
	"github.com/dtnitsch/llm-page-leveler/pkg/selector"
)

// MinMainContentLen is the minimum text length for a recognized main
// container to be trusted as the page's content.
const MinMainContentLen = 200

// ErrNoContent means the page yielded no summarizable text. Fatal for the
// summarize path: the summary is the sole deliverable.
var ErrNoContent = errors.New("no summarizable content found")

// Summarizer is the single backend call the pipeline needs.
type Summarizer interface {
	Summarize(ctx context.Context, req models.SummaryRequest) (string, error)
}

// Pipeline extracts the page's main content and summarizes it once.
type Pipeline struct {
	Client   Summarizer
	Logger   *slog.Logger
	Progress models.ProgressFunc
}

// Run produces the leveled summary for a document. There is no per-element
// degrade path here; any backend failure surfaces.
func (p *Pipeline) Run(ctx context.Context, doc *goquery.Document, pageURL string, level models.Level, language string) (string, error) {
	p.emit(10)

	text := ExtractMain(doc, pageURL)
	if text == "" {
		p.emit(0)
		return "", ErrNoContent
	}

	summaryText, err := p.Client.Summarize(ctx, models.SummaryRequest{
		Text:        text,
		TargetLevel: level,
		Language:    language,
	})
	if err != nil {
		p.emit(0)
		return "", fmt.Errorf("summarization failed: %w", err)
	}

	p.emit(100)
	return summaryText, nil
}

// ExtractMain returns the page's main text, trying in order: a recognized
// main-content container with enough text, a readability pass over the whole
// page, the concatenation of qualifying paragraphs and headings, and finally
// the whole page's text.
func ExtractMain(doc *goquery.Document, pageURL string) string {
	for _, containerSel := range []string{"article", "main", "[role=main]"} {
		container := doc.Find(containerSel).First()
		if container.Length() == 0 {
			continue
		}
		text := extract.Text(container)
		if len(text) > MinMainContentLen {
			return text
		}
	}

	if text := readabilityText(doc, pageURL); len(text) > MinMainContentLen {
		return text
	}

	targets := selector.Select(doc)
	if len(targets) > 0 {
		parts := make([]string, len(targets))
		for i, target := range targets {
			parts[i] = target.Text
		}
		return strings.Join(parts, "\n")
	}

	return extract.Normalize(doc.Find("body").Text())
}

// readabilityText runs go-readability over the serialized document.
func readabilityText(doc *goquery.Document, pageURL string) string {
	html, err := doc.Html()
	if err != nil {
		return ""
	}
	parsedURL, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		parsedURL = &url.URL{Scheme: "https", Host: "localhost"}
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		return ""
	}
	return extract.Normalize(article.TextContent)
}

// SuggestedFilename builds the level-stamped, timestamped name the delivery
// collaborator should use for the summary artifact.
func SuggestedFilename(level models.Level, now time.Time) string {
	return fmt.Sprintf("summary-%s-%s.txt", strings.ToLower(string(level)), now.Format("2006-01-02T15-04-05"))
}

func (p *Pipeline) emit(percent int) {
	if p.Progress == nil {
		return
	}
	p.Progress(models.ProgressEvent{Phase: models.PhaseSummarize, Percent: percent})
}
