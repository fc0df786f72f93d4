package careers

import (
	"context"
	"log"

	"github.com/jonathan/career-resolver/internal/links"
)

// Opening finds one representative job-posting URL on a career page, or
// returns "" when none can be found. An ATS-hosted career page with no
// job-shaped anchors counts as the opening itself.
func (l *Locator) Opening(ctx context.Context, careerURL string) string {
	if careerURL == "" {
		return ""
	}

	result, err := l.client.Get(ctx, careerURL)
	if err != nil {
		if l.verbose {
			log.Printf("[CAREER] career page fetch failed for %s: %v", careerURL, err)
		}
		return ""
	}

	all, err := links.FromHTML(result.Body, careerURL)
	if err == nil {
		for _, link := range all {
			if !l.heuristics.MatchesJob(link.URL) && !l.heuristics.MatchesJob(link.Text) {
				continue
			}
			if l.classifier.IsAggregator(link.URL) {
				continue
			}
			return link.URL
		}
	}

	// ATS landing pages are equivalent to a single opening.
	if l.classifier.IsATS(careerURL) {
		return careerURL
	}

	return l.probeJobPaths(ctx, careerURL)
}

// probeJobPaths tries a short fixed list of sub-paths off the career page's
// origin, returning the first reachable one whose content holds a job
// keyword.
func (l *Locator) probeJobPaths(ctx context.Context, careerURL string) string {
	base, err := links.Origin(careerURL)
	if err != nil {
		return ""
	}
	for _, p := range l.heuristics.JobPaths {
		candidate := base + p
		result, err := l.client.Get(ctx, candidate)
		if err != nil {
			continue
		}
		if l.classifier.IsAggregator(result.FinalURL) {
			continue
		}
		if l.heuristics.MatchesJob(result.Body) {
			return candidate
		}
	}
	return ""
}
