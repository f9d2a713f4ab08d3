// Package models defines data structures for configuration and processing.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ProcessConfig holds runtime configuration for a batch of document runs.
// All values come from CLI flags, not external config files.
type ProcessConfig struct {
	Files       []string
	URLs        []string
	WorkerCount int
	Mode        Mode
	PortTZ      string
	EnableOCR   bool
}

// PipelineConfig holds the tunable knobs for a single pipeline run. It is
// passed explicitly into each run so concurrent runs with different
// settings (e.g. different shipping-line vocabularies) cannot interfere.
type PipelineConfig struct {
	// AcceptedFormats gates the loader. Lowercase extensions without dots.
	AcceptedFormats []string `yaml:"accepted_formats"`

	// MinNativeChars is the per-page character density below which a page's
	// native text layer is not trusted (a scanned page with a stray
	// watermark string should not count as native text).
	MinNativeChars int `yaml:"min_native_chars"`

	// OCRConfidenceCeiling caps the extraction confidence assigned to OCR
	// pages regardless of how clean the recognized text looks.
	OCRConfidenceCeiling float64 `yaml:"ocr_confidence_ceiling"`

	// WindowLines is how many lines below an event phrase the extractor
	// scans for a timestamp when the phrase line itself has none.
	WindowLines int `yaml:"window_lines"`

	// FuzzyMinSimilarity is the Jaro-Winkler floor for fuzzy phrase matches.
	FuzzyMinSimilarity float64 `yaml:"fuzzy_min_similarity"`

	// LowConfidenceThreshold marks events for review and feeds both
	// stats.low_confidence_count and the LowConfidence anomaly rule.
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold"`

	// MaxGapMinutes maps "from>to" canonical event pairs to the maximum
	// plausible gap between them, in minutes. The "default" key applies to
	// sequence-adjacent pairs without their own entry.
	MaxGapMinutes map[string]int `yaml:"max_gap_minutes"`

	// Timeout bounds one whole document run. Exceeding it fails the run.
	Timeout time.Duration `yaml:"timeout"`

	// VocabularyPath optionally overrides the built-in event phrase table.
	VocabularyPath string `yaml:"vocabulary_path"`
}

// DefaultPipelineConfig returns the reference configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		AcceptedFormats:        []string{"pdf", "docx"},
		MinNativeChars:         40,
		OCRConfidenceCeiling:   0.85,
		WindowLines:            2,
		FuzzyMinSimilarity:     0.88,
		LowConfidenceThreshold: 0.85,
		MaxGapMinutes: map[string]int{
			"default":                                     12 * 60,
			"Vessel Arrived>NOR Tendered":                 6 * 60,
			"NOR Tendered>Loading Commenced":              24 * 60,
			"Loading Commenced>Loading Completed":         7 * 24 * 60,
			"Discharging Commenced>Discharging Completed": 7 * 24 * 60,
			"Loading Completed>Vessel Sailed":             12 * 60,
		},
		Timeout: 2 * time.Minute,
	}
}

// LoadPipelineConfig reads a YAML config file and overlays it on the
// defaults, so partial files only override what they mention.
func LoadPipelineConfig(path string) (PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Accepts reports whether the loader should accept the given format.
func (c PipelineConfig) Accepts(format string) bool {
	for _, f := range c.AcceptedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// MaxGap returns the configured gap ceiling for a canonical event pair,
// falling back to the "default" entry. Zero means no ceiling configured.
func (c PipelineConfig) MaxGap(from, to string) time.Duration {
	if m, ok := c.MaxGapMinutes[from+">"+to]; ok {
		return time.Duration(m) * time.Minute
	}
	if m, ok := c.MaxGapMinutes["default"]; ok {
		return time.Duration(m) * time.Minute
	}
	return 0
}
