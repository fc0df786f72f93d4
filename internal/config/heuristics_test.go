package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHeuristics_Valid(t *testing.T) {
	h := DefaultHeuristics()
	require.NoError(t, h.Validate())
	assert.Contains(t, h.CareerKeywords, "careers")
	assert.Contains(t, h.ATSHosts, "greenhouse.io")
	assert.Contains(t, h.AggregatorHosts, "linkedin.com")
}

func TestLoadHeuristics_OverridesListsWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	content := `
career_keywords:
  - careers
  - jobs
aggregator_hosts:
  - indeed.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	h, err := LoadHeuristics(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"careers", "jobs"}, h.CareerKeywords)
	assert.Equal(t, []string{"indeed.com"}, h.AggregatorHosts)
	// omitted lists keep defaults
	assert.Equal(t, DefaultHeuristics().JobPaths, h.JobPaths)
}

func TestLoadHeuristics_RejectsBadPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	content := `
career_paths:
  - careers
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadHeuristics(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid heuristics")
}

func TestLoadHeuristics_MissingFile(t *testing.T) {
	_, err := LoadHeuristics(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestMatchesKeywords(t *testing.T) {
	h := DefaultHeuristics()

	assert.True(t, h.MatchesCareer("Join our CAREERS page"))
	assert.True(t, h.MatchesJob("See every open Position here"))
	assert.True(t, h.MatchesAny("current openings"))
	assert.False(t, h.MatchesCareer("about our products"))
	assert.False(t, h.MatchesJob("company history"))
}

func TestConfigValidate(t *testing.T) {
	valid := &Config{Out: "results.csv", Workers: 2, PostingRate: 1}
	require.NoError(t, valid.Validate())

	assert.Error(t, (&Config{Workers: -1}).Validate())
	assert.Error(t, (&Config{MaxPostings: -1}).Validate())
	assert.Error(t, (&Config{Out: "results.txt"}).Validate())
}
