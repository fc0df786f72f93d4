// Package careers locates a company's career page and one representative
// open position on it, using ordered heuristic stages with aggregator-domain
// rejection at every step.
package careers

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/career-resolver/internal/config"
	"github.com/jonathan/career-resolver/internal/domains"
	"github.com/jonathan/career-resolver/internal/fetch"
	"github.com/jonathan/career-resolver/internal/links"
)

// Source records which heuristic stage discovered a career page.
type Source string

const (
	// SourcePathGuess means a conventional career-path suffix probe hit.
	SourcePathGuess Source = "path_guess"
	// SourceHomepageLink means a keyword anchor on the homepage led there.
	SourceHomepageLink Source = "homepage_link"
	// SourceFooterLink means a footer anchor led there.
	SourceFooterLink Source = "footer_link"
	// SourceEmbeddedATS means an ATS URL was found in inline script content.
	SourceEmbeddedATS Source = "embedded_ats"
)

// Page is a discovered career page. Reachability was verified at discovery
// time only; it is not re-checked later.
type Page struct {
	URL    string
	Source Source
}

// Locator discovers career pages and job openings on company sites.
type Locator struct {
	client     *fetch.Client
	classifier *domains.Classifier
	heuristics *config.Heuristics
	verbose    bool
}

// NewLocator creates a Locator.
func NewLocator(client *fetch.Client, classifier *domains.Classifier, heuristics *config.Heuristics, verbose bool) *Locator {
	return &Locator{
		client:     client,
		classifier: classifier,
		heuristics: heuristics,
		verbose:    verbose,
	}
}

// Locate finds a career page for a company site, or returns nil when every
// stage is exhausted. A nil result is a normal best-effort outcome; fetch
// failures along the way are logged but indistinguishable in the return
// value.
func (l *Locator) Locate(ctx context.Context, companySite string) *Page {
	if companySite == "" {
		return nil
	}

	site := l.client.FinalURL(ctx, companySite)
	if l.classifier.IsAggregator(site) {
		log.Printf("[CAREER] site %s resolves to the aggregator, rejecting", companySite)
		return nil
	}

	base, err := links.Origin(site)
	if err != nil {
		if l.verbose {
			log.Printf("[CAREER] unusable site URL %q: %v", site, err)
		}
		return nil
	}

	if page := l.locateByPathGuess(ctx, base); page != nil {
		return page
	}

	home, err := l.client.Get(ctx, base)
	if err != nil {
		if l.verbose {
			log.Printf("[CAREER] homepage fetch failed for %s: %v", base, err)
		}
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(home.Body))
	if err != nil {
		return nil
	}

	if page := l.locateByHomepageScan(ctx, doc, base); page != nil {
		return page
	}
	if page := l.locateByFooterScan(ctx, doc, base); page != nil {
		return page
	}
	return l.locateByEmbeddedATS(doc)
}

// locateByPathGuess probes conventional career-path suffixes against the
// site origin, accepting the first reachable candidate whose content holds
// a career or job keyword.
func (l *Locator) locateByPathGuess(ctx context.Context, base string) *Page {
	for _, p := range l.heuristics.CareerPaths {
		candidate := base + p
		result, err := l.client.Get(ctx, candidate)
		if err != nil {
			continue
		}
		if l.classifier.IsAggregator(result.FinalURL) {
			continue
		}
		if l.heuristics.MatchesAny(result.Body) {
			log.Printf("[CAREER] career page found by path: %s", candidate)
			return &Page{URL: candidate, Source: SourcePathGuess}
		}
	}
	return nil
}

// locateByHomepageScan collects anchors whose href or visible text carries
// a career keyword, fetching each in document order until one's content
// confirms it.
func (l *Locator) locateByHomepageScan(ctx context.Context, doc *goquery.Document, base string) *Page {
	for _, link := range links.FromSelection(doc.Selection, base) {
		if !l.heuristics.MatchesCareer(link.URL) && !l.heuristics.MatchesCareer(link.Text) {
			continue
		}
		if l.classifier.IsAggregator(link.URL) {
			continue
		}
		result, err := l.client.Get(ctx, link.URL)
		if err != nil {
			continue
		}
		if l.classifier.IsAggregator(result.FinalURL) {
			continue
		}
		if l.heuristics.MatchesAny(result.Body) {
			log.Printf("[CAREER] career page discovered: %s", link.URL)
			return &Page{URL: link.URL, Source: SourceHomepageLink}
		}
	}
	return nil
}

// locateByFooterScan restricts the keyword search to footer anchors and
// accepts the first reachable match without a content check.
func (l *Locator) locateByFooterScan(ctx context.Context, doc *goquery.Document, base string) *Page {
	for _, link := range links.FromSelection(doc.Find("footer"), base) {
		if !l.heuristics.MatchesCareer(link.URL) {
			continue
		}
		if l.classifier.IsAggregator(link.URL) {
			continue
		}
		result, err := l.client.Get(ctx, link.URL)
		if err != nil {
			continue
		}
		if l.classifier.IsAggregator(result.FinalURL) {
			continue
		}
		log.Printf("[CAREER] career page found in footer: %s", link.URL)
		return &Page{URL: link.URL, Source: SourceFooterLink}
	}
	return nil
}

// locateByEmbeddedATS scans inline script content for a URL on a known ATS
// host. ATS pages are treated as self-evidently valid career destinations,
// so no content validation happens here.
func (l *Locator) locateByEmbeddedATS(doc *goquery.Document) *Page {
	var found string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if text == "" {
			return true
		}
		for _, host := range l.classifier.ATSHosts() {
			pattern := regexp.MustCompile(`https?://[^\s'"<>]*` + regexp.QuoteMeta(host) + `[^\s'"<>]*`)
			if m := pattern.FindString(text); m != "" {
				found = m
				return false
			}
		}
		return true
	})
	if found == "" {
		return nil
	}
	log.Printf("[CAREER] embedded ATS reference found: %s", found)
	return &Page{URL: found, Source: SourceEmbeddedATS}
}
