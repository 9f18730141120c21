// Package models defines configuration structures shared across commands.
package models

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EventsBaseURL is where the upstream daily event exports live.
const EventsBaseURL = "http://data.gdeltproject.org/events/"

// DefaultSampleBound caps the working set of a comparison run.
const DefaultSampleBound = 10000

// RunConfig holds one aggregation run's settings. Values come from an
// optional YAML file overridden by CLI flags; ResolveDefaults fills the
// rest.
type RunConfig struct {
	// Date selects the daily export, formatted yyyyMMdd. Only used to
	// derive Input and Output defaults.
	Date string `yaml:"date"`
	// Input is the record source: a local path or an http(s) URL.
	Input string `yaml:"input"`
	// Output is the report destination prefix.
	Output string `yaml:"output"`
	// SampleBound is the reservoir size.
	SampleBound int `yaml:"sample_bound"`
	// Strategy is perkey, grouped, or both.
	Strategy string `yaml:"strategy"`
	// Workers is the aggregation partition count; zero means GOMAXPROCS.
	Workers int `yaml:"workers"`
	// ArenaCap bounds the grouped strategy's per-location subject buffer.
	ArenaCap int `yaml:"arena_cap"`
}

// LoadConfig reads a RunConfig from a YAML file.
func LoadConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// DefaultDate formats the current date the way the upstream export names
// its files.
func DefaultDate() string {
	return time.Now().Format("20060102")
}

// ResolveDefaults fills unset fields. The date default is resolved once
// here at startup, never re-evaluated mid-run.
func (c *RunConfig) ResolveDefaults() {
	if c.Date == "" {
		c.Date = DefaultDate()
	}
	if c.Input == "" {
		c.Input = EventsBaseURL + c.Date + ".export.CSV.zip"
	}
	if c.Output == "" {
		c.Output = filepath.Join(os.TempDir(), "gdelt-"+c.Date)
	}
	if c.SampleBound == 0 {
		c.SampleBound = DefaultSampleBound
	}
	if c.Strategy == "" {
		c.Strategy = "perkey"
	}
}
