package genclient

import (
	"fmt"

	"github.com/dtnitsch/llm-page-leveler/models"
)

// System instructions fix tone and format so the generated text can be
// dropped straight into the page: no markdown, no conversational framing.
const (
	rewriteSystem = "You rewrite web page text to a target English reading level. " +
		"Respond with the rewritten text only. Do not use markdown, bullet points, or quotation wrappers. " +
		"Do not add commentary or address the reader. Keep the rewritten text roughly proportional in length to the input."

	summarySystem = "You summarize web pages for readers at a target English reading level. " +
		"Respond with a single plain paragraph. Do not use markdown or headings. " +
		"Do not add commentary, framing, or a title."
)

var bodyTemplates = map[models.Level]string{
	models.LevelA1: "Rewrite the following text for a CEFR A1 beginner. Use very short sentences and only the most common everyday words. Repeat key words instead of using synonyms.",
	models.LevelA2: "Rewrite the following text for a CEFR A2 elementary reader. Use short, simple sentences and common vocabulary.",
	models.LevelB1: "Rewrite the following text for a CEFR B1 intermediate reader. Use clear sentences and everyday vocabulary, keeping all the main information.",
	models.LevelB2: "Rewrite the following text for a CEFR B2 upper-intermediate reader. Keep the detail and nuance but smooth out dense or idiomatic phrasing.",
	models.LevelC1: "Rewrite the following text for a CEFR C1 advanced reader. Preserve the register and detail, using varied and precise vocabulary.",
	models.LevelC2: "Rewrite the following text for a CEFR C2 proficient reader. Preserve full nuance and sophistication, with rich and varied vocabulary.",
}

var titleTemplates = map[models.Level]string{
	models.LevelA1: "Rewrite this title for a CEFR A1 beginner. Use the simplest possible words and keep it short.",
	models.LevelA2: "Rewrite this title for a CEFR A2 elementary reader. Keep it short and simple.",
	models.LevelB1: "Rewrite this title for a CEFR B1 intermediate reader. Keep it concise and clear.",
	models.LevelB2: "Rewrite this title for a CEFR B2 upper-intermediate reader. Keep its tone and brevity.",
	models.LevelC1: "Rewrite this title for a CEFR C1 advanced reader. Keep its tone and brevity.",
	models.LevelC2: "Rewrite this title for a CEFR C2 proficient reader. Keep its tone, wit, and brevity.",
}

var summaryTemplates = map[models.Level]string{
	models.LevelA1: "Summarize this page in one short paragraph for a CEFR A1 beginner. Use very short sentences and only the most common words.",
	models.LevelA2: "Summarize this page in one paragraph for a CEFR A2 elementary reader. Use short, simple sentences.",
	models.LevelB1: "Summarize this page in one paragraph for a CEFR B1 intermediate reader. Use clear, everyday language.",
	models.LevelB2: "Summarize this page in one paragraph for a CEFR B2 upper-intermediate reader. Keep the important detail.",
	models.LevelC1: "Summarize this page in one paragraph for a CEFR C1 advanced reader. Be precise and information-dense.",
	models.LevelC2: "Summarize this page in one paragraph for a CEFR C2 proficient reader. Be precise, nuanced, and information-dense.",
}

// normalizeLevel maps unknown levels to the default so a bad level selects
// neutral wording instead of failing.
func normalizeLevel(level models.Level) models.Level {
	if level.IsValid() {
		return level
	}
	return models.DefaultLevel
}

func rewritePrompt(level models.Level, text string, isHeading bool, language string) string {
	templates := bodyTemplates
	if isHeading {
		templates = titleTemplates
	}
	instruction := templates[normalizeLevel(level)]
	if hint := languageHint(language); hint != "" {
		instruction = hint + " " + instruction
	}
	return fmt.Sprintf("%s\n\n%s", instruction, text)
}

func summaryPrompt(level models.Level, text string, language string) string {
	instruction := summaryTemplates[normalizeLevel(level)]
	if hint := languageHint(language); hint != "" {
		instruction = hint + " " + instruction
	}
	return fmt.Sprintf("%s\n\n%s", instruction, text)
}

func languageHint(language string) string {
	if language == "" || language == "English" {
		return ""
	}
	return fmt.Sprintf("The source text is in %s.", language)
}
