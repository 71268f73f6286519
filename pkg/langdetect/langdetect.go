// Package langdetect identifies the language of page content so prompts can
// carry a source-language hint and run records stay queryable by language.
package langdetect

import (
	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/llm-page-leveler/pkg/extract"
)

// sampleLimit caps how much text feeds the detector; a page opening is
// plenty for a confident call.
const sampleLimit = 1500

// Detector wraps a lingua language detector restricted to the languages the
// rewrite templates can sensibly mention.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	languages := []lingua.Language{
		lingua.English,
		lingua.Spanish,
		lingua.French,
		lingua.German,
		lingua.Italian,
		lingua.Portuguese,
		lingua.Dutch,
		lingua.Swedish,
	}
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// Detect returns the language name ("English", "Spanish", ...) or "" when
// no confident call can be made.
func (d *Detector) Detect(text string) string {
	sample := extract.Truncate(text, sampleLimit)
	if sample == "" {
		return ""
	}
	language, ok := d.detector.DetectLanguageOf(sample)
	if !ok {
		return ""
	}
	return language.String()
}
