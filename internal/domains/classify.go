// Package domains classifies URLs by ownership: the job-listing aggregator
// itself, a known applicant tracking system, or an independent company host.
package domains

import (
	"net/url"
	"strings"
)

// Kind is the ownership category of a URL's host.
type Kind string

const (
	// KindAggregator is the job-listing source's own domain.
	KindAggregator Kind = "aggregator"
	// KindATS is a known applicant-tracking-system host.
	KindATS Kind = "ats"
	// KindCompany is any other host, assumed to be an independent company.
	KindCompany Kind = "company"
)

// Classifier matches URL hosts against the aggregator denylist and the
// known ATS host list. Both lists are fixed at construction and safe for
// concurrent use.
type Classifier struct {
	aggregatorHosts []string
	atsHosts        []string
}

// NewClassifier builds a classifier from host suffix lists. Matching is
// case-insensitive substring matching on the URL host, so "linkedin.com"
// also covers "www.linkedin.com" and "de.linkedin.com".
func NewClassifier(aggregatorHosts, atsHosts []string) *Classifier {
	return &Classifier{
		aggregatorHosts: lowerAll(aggregatorHosts),
		atsHosts:        lowerAll(atsHosts),
	}
}

// IsAggregator reports whether the URL's host belongs to the aggregator.
// Unparseable or empty URLs are not aggregator URLs.
func (c *Classifier) IsAggregator(rawURL string) bool {
	return hostMatchesAny(rawURL, c.aggregatorHosts)
}

// IsATS reports whether the URL's host belongs to a known ATS platform.
func (c *Classifier) IsATS(rawURL string) bool {
	return hostMatchesAny(rawURL, c.atsHosts)
}

// Classify returns the ownership kind for a URL. Aggregator wins over ATS
// if a host somehow matches both lists.
func (c *Classifier) Classify(rawURL string) Kind {
	if c.IsAggregator(rawURL) {
		return KindAggregator
	}
	if c.IsATS(rawURL) {
		return KindATS
	}
	return KindCompany
}

// ATSHosts returns the configured ATS host list.
func (c *Classifier) ATSHosts() []string {
	return c.atsHosts
}

func hostMatchesAny(rawURL string, hosts []string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, h := range hosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
