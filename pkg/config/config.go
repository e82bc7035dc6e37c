// Package config provides configuration loading and management for RamanKey.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/RamanKey/pkg/batch"
	"github.com/ChrisMcGann/RamanKey/pkg/extract"
	"github.com/ChrisMcGann/RamanKey/pkg/filter"
	"github.com/ChrisMcGann/RamanKey/pkg/match"
)

// Config represents the complete RamanKey configuration
type Config struct {
	Match   MatchConfig   `yaml:"match" toml:"match"`
	Extract ExtractConfig `yaml:"extract" toml:"extract"`
	Filter  FilterConfig  `yaml:"filter" toml:"filter"`
	Run     RunConfig     `yaml:"run" toml:"run"`
}

// MatchConfig configures peak matching and classification
type MatchConfig struct {
	// Tolerance is the absolute matching window in cm-1
	Tolerance float64 `yaml:"tolerance" toml:"tolerance"`
	// RelTolerance widens the window by a fraction of the reference position
	RelTolerance float64 `yaml:"rel_tolerance" toml:"rel_tolerance"`
	// Threshold is the minimum match percentage (0-100) for a classification
	Threshold float64 `yaml:"threshold" toml:"threshold"`
}

// ExtractConfig configures how batch listings are split into samples
type ExtractConfig struct {
	Marker       string `yaml:"marker" toml:"marker"`
	SkipLeading  int    `yaml:"skip_leading" toml:"skip_leading"`
	SkipTrailing int    `yaml:"skip_trailing" toml:"skip_trailing"`
}

// FilterConfig configures optional peak filtering before matching
type FilterConfig struct {
	MinShift        float64 `yaml:"min_shift" toml:"min_shift"`
	MaxShift        float64 `yaml:"max_shift" toml:"max_shift"`
	IntensityCutoff float64 `yaml:"intensity_cutoff" toml:"intensity_cutoff"`
	TopN            int     `yaml:"top_n" toml:"top_n"`
	PositiveOnly    bool    `yaml:"positive_only" toml:"positive_only"`
}

// RunConfig configures batch orchestration
type RunConfig struct {
	// FailFast aborts the run at the first failed batch
	FailFast bool `yaml:"fail_fast" toml:"fail_fast"`
	// Workers is the number of batches processed concurrently
	Workers int `yaml:"workers" toml:"workers"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Match: MatchConfig{
			Tolerance:    5,
			RelTolerance: 0,
			Threshold:    50,
		},
		Extract: ExtractConfig{
			Marker: extract.DefaultMarker,
		},
		Run: RunConfig{
			FailFast: false,
			Workers:  1,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Match.Tolerance < 0 {
		return fmt.Errorf("match.tolerance must not be negative")
	}
	if c.Match.RelTolerance < 0 {
		return fmt.Errorf("match.rel_tolerance must not be negative")
	}
	if c.Match.Threshold < 0 || c.Match.Threshold > 100 {
		return fmt.Errorf("match.threshold must be between 0 and 100")
	}
	if strings.TrimSpace(c.Extract.Marker) == "" {
		return fmt.Errorf("extract.marker is required")
	}
	if c.Extract.SkipLeading < 0 || c.Extract.SkipTrailing < 0 {
		return fmt.Errorf("extract skip counts must not be negative")
	}
	if c.Run.Workers < 1 {
		return fmt.Errorf("run.workers must be at least 1")
	}
	f := c.filterConfig()
	if err := f.Validate(); err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	return nil
}

// BatchOptions converts the configuration into orchestrator options
func (c *Config) BatchOptions() batch.Options {
	return batch.Options{
		Tolerance: match.Tolerance{Abs: c.Match.Tolerance, Rel: c.Match.RelTolerance},
		Threshold: c.Match.Threshold,
		Extract: extract.Options{
			Marker:       c.Extract.Marker,
			Filler:       extract.DefaultFiller,
			SkipLeading:  c.Extract.SkipLeading,
			SkipTrailing: c.Extract.SkipTrailing,
		},
		Filter:   c.filterConfig(),
		FailFast: c.Run.FailFast,
		Workers:  c.Run.Workers,
	}
}

func (c *Config) filterConfig() filter.Config {
	return filter.Config{
		MinShift:        c.Filter.MinShift,
		MaxShift:        c.Filter.MaxShift,
		IntensityCutoff: c.Filter.IntensityCutoff,
		TopN:            c.Filter.TopN,
		PositiveOnly:    c.Filter.PositiveOnly,
	}
}

// LoadFromFile loads configuration from a YAML or TOML file, chosen by extension.
// Values missing from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format '%s', must be yaml or toml", filepath.Ext(path))
	}

	return config, nil
}

// LoadOptional loads the config at path, returning defaults when the file does
// not exist.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}
	return LoadFromFile(path)
}

// SaveToFile saves configuration to a YAML or TOML file, chosen by extension
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer f.Close()

	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		if err := toml.NewEncoder(f).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		return nil
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return enc.Close()
}

// Overrides holds values set explicitly on the command line. Nil fields keep
// the configured value.
type Overrides struct {
	Tolerance    *float64
	RelTolerance *float64
	Threshold    *float64
	Marker       *string
	TopN         *int
	FailFast     *bool
	Workers      *int
}

// Merge applies the non-nil overrides on top of the configuration
func (c *Config) Merge(o Overrides) {
	if o.Tolerance != nil {
		c.Match.Tolerance = *o.Tolerance
	}
	if o.RelTolerance != nil {
		c.Match.RelTolerance = *o.RelTolerance
	}
	if o.Threshold != nil {
		c.Match.Threshold = *o.Threshold
	}
	if o.Marker != nil {
		c.Extract.Marker = *o.Marker
	}
	if o.TopN != nil {
		c.Filter.TopN = *o.TopN
	}
	if o.FailFast != nil {
		c.Run.FailFast = *o.FailFast
	}
	if o.Workers != nil {
		c.Run.Workers = *o.Workers
	}
}
