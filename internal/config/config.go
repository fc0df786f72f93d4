// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Out        string `json:"out,omitempty"`        // Output file (.csv or .xlsx)
	Heuristics string `json:"heuristics,omitempty"` // Path to heuristics YAML file
	DedupeDB   string `json:"dedupe_db,omitempty"`  // SQLite file for cross-run dedup

	// Limits
	Workers     int     `json:"workers,omitempty"`      // Concurrent posting resolutions
	MaxPostings int     `json:"max_postings,omitempty"` // Cap on postings taken from a listing (0 = all)
	PostingRate float64 `json:"posting_rate,omitempty"` // Postings processed per second

	// Behavior
	NoBrowser bool `json:"no_browser,omitempty"` // Disable headless browser rendering
	Verbose   bool `json:"verbose,omitempty"`    // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if c.MaxPostings < 0 {
		return fmt.Errorf("config error: 'max_postings' must be non-negative")
	}
	if c.PostingRate < 0 {
		return fmt.Errorf("config error: 'posting_rate' must be non-negative")
	}
	if c.Out != "" {
		switch filepath.Ext(c.Out) {
		case ".csv", ".xlsx":
		default:
			return fmt.Errorf("config error: 'out' must end in .csv or .xlsx, got %s", c.Out)
		}
	}
	if c.Heuristics != "" {
		if _, err := os.Stat(c.Heuristics); os.IsNotExist(err) {
			return fmt.Errorf("config error: heuristics file not found: %s", c.Heuristics)
		}
	}
	return nil
}
