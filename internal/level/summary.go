package level

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Result is the outcome of processing one page.
type Result struct {
	Name            string // URL or file path
	Action          string
	Level           string
	Language        string
	Targets         int
	Rewritten       int
	Summary         string
	SummaryChars    int
	OutputPath      string
	RestoreVerified bool
	Duration        time.Duration
	Err             error
}

type ResultSummary struct {
	Page            string  `yaml:"page"`
	Status          string  `yaml:"status"`
	Error           string  `yaml:"error,omitempty"`
	Level           string  `yaml:"level"`
	Language        string  `yaml:"language,omitempty"`
	Targets         int     `yaml:"targets,omitempty"`
	Rewritten       int     `yaml:"rewritten,omitempty"`
	SummaryChars    int     `yaml:"summary_chars,omitempty"`
	OutputPath      string  `yaml:"output_path,omitempty"`
	RestoreVerified bool    `yaml:"restore_verified,omitempty"`
	DurationSeconds float64 `yaml:"duration_seconds"`
}

type Stats struct {
	TotalPages       int     `yaml:"total_pages"`
	Successful       int     `yaml:"successful"`
	Failed           int     `yaml:"failed"`
	TotalTimeSeconds float64 `yaml:"total_time_seconds"`
}

type RunSummary struct {
	Status  string          `yaml:"status"`
	Action  string          `yaml:"action"`
	Results []ResultSummary `yaml:"results"`
	Stats   Stats           `yaml:"stats"`
}

func BuildSummary(r Result) ResultSummary {
	summary := ResultSummary{
		Page:            r.Name,
		Level:           r.Level,
		DurationSeconds: r.Duration.Seconds(),
	}
	if r.Err != nil {
		summary.Status = "failed"
		summary.Error = r.Err.Error()
		return summary
	}
	summary.Status = "success"
	summary.Language = r.Language
	summary.Targets = r.Targets
	summary.Rewritten = r.Rewritten
	summary.SummaryChars = r.SummaryChars
	summary.OutputPath = r.OutputPath
	summary.RestoreVerified = r.RestoreVerified
	return summary
}

// WriteRunSummary writes a YAML summary of the whole run next to the
// artifacts and returns the path written.
func WriteRunSummary(results []Result, elapsed time.Duration, outputDir string) (string, error) {
	if len(results) == 0 {
		return "", nil
	}

	runSummary := RunSummary{
		Action: results[0].Action,
		Stats: Stats{
			TotalPages:       len(results),
			TotalTimeSeconds: elapsed.Seconds(),
		},
	}
	for _, r := range results {
		runSummary.Results = append(runSummary.Results, BuildSummary(r))
		if r.Err != nil {
			runSummary.Stats.Failed++
		} else {
			runSummary.Stats.Successful++
		}
	}
	switch {
	case runSummary.Stats.Failed == 0:
		runSummary.Status = "success"
	case runSummary.Stats.Successful == 0:
		runSummary.Status = "failed"
	default:
		runSummary.Status = "partial_failure"
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	outputPath := filepath.Join(outputDir, "run-summary.yaml")

	yamlBytes, err := yaml.Marshal(&runSummary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run summary to YAML: %w", err)
	}
	if err := os.WriteFile(outputPath, yamlBytes, 0600); err != nil {
		return "", fmt.Errorf("failed to write run summary: %w", err)
	}

	return outputPath, nil
}
