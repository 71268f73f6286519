// Package models defines shared data structures for configuration, levels,
// and pipeline requests.
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LevelerConfig holds runtime configuration. Values come from an optional
// YAML config file; CLI flags override anything set here.
type LevelerConfig struct {
	Endpoint  string `yaml:"endpoint"`   // text-generation backend URL
	Model     string `yaml:"model"`      // backend model identifier
	APIKey    string `yaml:"api_key"`    // optional bearer token
	Workers   int    `yaml:"workers"`    // concurrency ceiling per wave
	OutputDir string `yaml:"output_dir"` // artifact directory
	Level     string `yaml:"level"`      // default target level
}

// LoadConfig reads a YAML config file. A missing file is not an error; the
// zero config is returned so flags alone can drive a run.
func LoadConfig(path string) (*LevelerConfig, error) {
	config := &LevelerConfig{}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}
