package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Heuristics holds the keyword lists and path conventions that drive the
// resolution pipeline. They are configuration, not code: a YAML file can
// replace any list without touching control flow. The zero value is not
// usable; start from DefaultHeuristics.
type Heuristics struct {
	// CareerKeywords mark a page or anchor as career-related.
	CareerKeywords []string `yaml:"career_keywords" validate:"min=1,dive,required"`
	// JobKeywords mark a page or anchor as an individual opening.
	JobKeywords []string `yaml:"job_keywords" validate:"min=1,dive,required"`
	// CareerPaths are conventional career-page suffixes probed against a
	// site origin, in priority order.
	CareerPaths []string `yaml:"career_paths" validate:"min=1,dive,startswith=/"`
	// JobPaths are sub-paths probed for openings when a career page has no
	// job-shaped anchors.
	JobPaths []string `yaml:"job_paths" validate:"min=1,dive,startswith=/"`
	// ATSHosts are known applicant-tracking-system host suffixes.
	ATSHosts []string `yaml:"ats_hosts" validate:"min=1,dive,required"`
	// AggregatorHosts is the denylist of hosts that must never appear in
	// any resolved output field.
	AggregatorHosts []string `yaml:"aggregator_hosts" validate:"min=1,dive,required"`
}

// DefaultHeuristics returns the compiled-in heuristics used when no YAML
// file is supplied.
func DefaultHeuristics() *Heuristics {
	return &Heuristics{
		CareerKeywords: []string{
			"career", "careers", "jobs", "join", "vacancies",
			"openings", "join-us", "work-with-us",
		},
		JobKeywords: []string{
			"job", "position", "apply", "opening", "/jobs/", "/open-positions/",
		},
		CareerPaths: []string{
			"/careers", "/careers/", "/jobs", "/jobs/",
			"/about/careers", "/company/careers", "/join-us",
		},
		JobPaths: []string{
			"/jobs", "/openings", "/careers/jobs",
		},
		ATSHosts: []string{
			"lever.co", "greenhouse.io", "workday.com",
			"smartrecruiters.com", "apply.workable.com", "jobvite.com",
		},
		AggregatorHosts: []string{
			"linkedin.com", "lnkd.in",
		},
	}
}

// LoadHeuristics reads a heuristics YAML file and validates it. Lists
// present in the file replace the defaults wholesale; omitted lists keep
// their default values.
func LoadHeuristics(path string) (*Heuristics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read heuristics file %s: %w", path, err)
	}

	h := DefaultHeuristics()
	if err := yaml.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("failed to parse heuristics YAML %s: %w", path, err)
	}

	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("invalid heuristics in %s: %w", path, err)
	}
	return h, nil
}

// Validate checks list shapes via struct tags.
func (h *Heuristics) Validate() error {
	return validator.New().Struct(h)
}

// MatchesCareer reports whether s contains any career keyword,
// case-insensitively.
func (h *Heuristics) MatchesCareer(s string) bool {
	return containsAny(s, h.CareerKeywords)
}

// MatchesJob reports whether s contains any job keyword, case-insensitively.
func (h *Heuristics) MatchesJob(s string) bool {
	return containsAny(s, h.JobKeywords)
}

// MatchesAny reports whether s contains any career or job keyword.
func (h *Heuristics) MatchesAny(s string) bool {
	return h.MatchesCareer(s) || h.MatchesJob(s)
}

func containsAny(s string, keywords []string) bool {
	s = strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
