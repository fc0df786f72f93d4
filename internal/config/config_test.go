package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfigFile(t, `{
		"out": "results.xlsx",
		"workers": 4,
		"max_postings": 50,
		"posting_rate": 0.5,
		"no_browser": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "results.xlsx", cfg.Out)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 50, cfg.MaxPostings)
	assert.Equal(t, 0.5, cfg.PostingRate)
	assert.True(t, cfg.NoBrowser)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfigFile(t, `{"out": `)
	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty config", cfg: Config{}},
		{name: "csv output", cfg: Config{Out: "rows.csv"}},
		{name: "xlsx output", cfg: Config{Out: "rows.xlsx"}},
		{name: "bad extension", cfg: Config{Out: "rows.txt"}, wantErr: "'out' must end in .csv or .xlsx"},
		{name: "negative workers", cfg: Config{Workers: -1}, wantErr: "'workers' must be non-negative"},
		{name: "negative cap", cfg: Config{MaxPostings: -5}, wantErr: "'max_postings' must be non-negative"},
		{name: "negative rate", cfg: Config{PostingRate: -0.1}, wantErr: "'posting_rate' must be non-negative"},
		{name: "missing heuristics file", cfg: Config{Heuristics: "/nonexistent/h.yaml"}, wantErr: "heuristics file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_HeuristicsFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.yaml")
	require.NoError(t, os.WriteFile(path, []byte("career_keywords: [career]"), 0o644))

	cfg := Config{Heuristics: path}
	assert.NoError(t, cfg.Validate())
}
