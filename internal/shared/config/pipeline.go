package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pipeline carries the tunables of the document pipeline. It is loaded once and
// injected into the extractor, analyzer and ticket composer.
type Pipeline struct {
	Extraction ExtractionSettings `yaml:"extraction"`
	Prompts    PromptOverrides    `yaml:"prompts"`
}

// ExtractionSettings holds the text normalization thresholds.
type ExtractionSettings struct {
	RepeatThreshold  int     `yaml:"repeat_threshold"`
	MaxRemovableLen  int     `yaml:"max_removable_len"`
	HardLineCeiling  int     `yaml:"hard_line_ceiling"`
	MaxOutputChars   int     `yaml:"max_output_chars"`
	RawMinLen        int     `yaml:"raw_min_len"`
	RawKeepRatio     float64 `yaml:"raw_keep_ratio"`
	ShortFilteredLen int     `yaml:"short_filtered_len"`
	RawSurplus       int     `yaml:"raw_surplus"`
}

// PromptOverrides replaces embedded prompt templates when non-empty.
type PromptOverrides struct {
	AnalysisSystem string `yaml:"analysis_system"`
	AnalysisUser   string `yaml:"analysis_user"`
	ExampleUser    string `yaml:"example_user"`
	TicketSystem   string `yaml:"ticket_system"`
	TicketTask     string `yaml:"ticket_task"`
	TicketSpike    string `yaml:"ticket_spike"`
}

// DefaultPipeline returns the built-in thresholds with no prompt overrides.
func DefaultPipeline() Pipeline {
	return Pipeline{
		Extraction: ExtractionSettings{
			RepeatThreshold:  3,
			MaxRemovableLen:  80,
			HardLineCeiling:  120,
			MaxOutputChars:   80000,
			RawMinLen:        4000,
			RawKeepRatio:     0.35,
			ShortFilteredLen: 1200,
			RawSurplus:       2000,
		},
	}
}

// LoadPipeline reads a YAML pipeline file over the defaults. An empty path yields the defaults.
func LoadPipeline(path string) (Pipeline, error) {
	p := DefaultPipeline()
	path = strings.TrimSpace(path)
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read pipeline config %s: %w", path, err)
	}
	return ParsePipeline(raw)
}

// ParsePipeline decodes YAML over the defaults and validates the result.
func ParsePipeline(raw []byte) (Pipeline, error) {
	p := DefaultPipeline()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Pipeline{}, fmt.Errorf("parse pipeline config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}

// Validate rejects thresholds that would disable the filter silently.
func (p Pipeline) Validate() error {
	e := p.Extraction
	switch {
	case e.RepeatThreshold < 2:
		return fmt.Errorf("pipeline: repeat_threshold must be >= 2")
	case e.MaxRemovableLen <= 0:
		return fmt.Errorf("pipeline: max_removable_len must be positive")
	case e.HardLineCeiling < e.MaxRemovableLen:
		return fmt.Errorf("pipeline: hard_line_ceiling must be >= max_removable_len")
	case e.MaxOutputChars <= 0:
		return fmt.Errorf("pipeline: max_output_chars must be positive")
	case e.RawKeepRatio <= 0 || e.RawKeepRatio >= 1:
		return fmt.Errorf("pipeline: raw_keep_ratio must be between 0 and 1")
	case e.RawMinLen < 0 || e.ShortFilteredLen < 0 || e.RawSurplus < 0:
		return fmt.Errorf("pipeline: raw thresholds must not be negative")
	}
	return nil
}
