package models

import "strings"

// Level is a CEFR reading-proficiency level, A1 (lowest) through C2.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// DefaultLevel is used when a requested level is unknown. B1 sits in the
// middle of the scale, so prompts and generation parameters stay neutral.
const DefaultLevel = LevelB1

// GenerationParams are the backend knobs derived from a level.
// Temperature and diversity penalty both rise with proficiency: low levels
// want predictable, repetitive wording (repetition aids comprehension),
// high levels want varied vocabulary.
type GenerationParams struct {
	Temperature      float64
	DiversityPenalty float64
}

var levelParams = map[Level]GenerationParams{
	LevelA1: {Temperature: 0.2, DiversityPenalty: 0.0},
	LevelA2: {Temperature: 0.35, DiversityPenalty: 0.1},
	LevelB1: {Temperature: 0.5, DiversityPenalty: 0.2},
	LevelB2: {Temperature: 0.65, DiversityPenalty: 0.3},
	LevelC1: {Temperature: 0.8, DiversityPenalty: 0.4},
	LevelC2: {Temperature: 0.95, DiversityPenalty: 0.5},
}

// ParseLevel normalizes user input ("b1", " B1 ") to a Level.
// Unknown values fall back to DefaultLevel rather than erroring, so a bad
// level never kills a pipeline run.
func ParseLevel(s string) Level {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelParams[l]; ok {
		return l
	}
	return DefaultLevel
}

// IsValid reports whether l is one of the six CEFR levels.
func (l Level) IsValid() bool {
	_, ok := levelParams[l]
	return ok
}

// Params returns the generation parameters for the level. Unknown levels get
// the DefaultLevel parameters.
func (l Level) Params() GenerationParams {
	if p, ok := levelParams[l]; ok {
		return p
	}
	return levelParams[DefaultLevel]
}

// Levels returns all valid levels in ascending proficiency order.
func Levels() []Level {
	return []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}
}
