// Package identity resolves the hiring company's name and website from a
// job posting page, using ordered heuristics with rendered and static
// fallbacks.
package identity

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/career-resolver/internal/domains"
	"github.com/jonathan/career-resolver/internal/fetch"
	"github.com/jonathan/career-resolver/internal/links"
)

// Resolved is the identity extracted from one posting. Either field may be
// empty; absence is a normal outcome, not an error.
type Resolved struct {
	CompanyName string
	CompanySite string
}

// Complete reports whether both fields were filled.
func (r Resolved) Complete() bool {
	return r.CompanyName != "" && r.CompanySite != ""
}

// Resolver extracts company identity from posting pages. It prefers a
// rendered page when a Renderer is available and fills remaining gaps from
// the static HTML.
type Resolver struct {
	client     *fetch.Client
	renderer   fetch.Renderer // may be nil
	classifier *domains.Classifier
	settle     time.Duration
	verbose    bool
}

// NewResolver creates a Resolver. renderer may be nil for static-only mode.
func NewResolver(client *fetch.Client, renderer fetch.Renderer, classifier *domains.Classifier, verbose bool) *Resolver {
	return &Resolver{
		client:     client,
		renderer:   renderer,
		classifier: classifier,
		settle:     fetch.DefaultSettleDelay,
		verbose:    verbose,
	}
}

// Resolve extracts the company name and candidate site for a posting.
// It never returns an error: every failure mode collapses to empty fields.
func (r *Resolver) Resolve(ctx context.Context, postingURL string) Resolved {
	var resolved Resolved

	if r.renderer != nil {
		html, err := r.renderer.Render(ctx, postingURL, r.settle)
		if err != nil {
			log.Printf("[IDENTITY] render failed for %s, falling back to static fetch: %v", postingURL, err)
		} else {
			resolved = r.extract(html, postingURL)
		}
	}

	if !resolved.Complete() {
		result, err := r.client.Get(ctx, postingURL)
		if err != nil {
			if r.verbose {
				log.Printf("[IDENTITY] static fetch failed for %s: %v", postingURL, err)
			}
			return resolved
		}
		static := r.extract(result.Body, postingURL)
		if resolved.CompanyName == "" {
			resolved.CompanyName = static.CompanyName
		}
		if resolved.CompanySite == "" {
			resolved.CompanySite = static.CompanySite
		}
	}

	if r.verbose {
		log.Printf("[IDENTITY] %s -> name=%q site=%q", postingURL, resolved.CompanyName, resolved.CompanySite)
	}
	return resolved
}

// extract pulls identity heuristics out of one HTML document. Missing
// metadata yields empty strings, never an error.
func (r *Resolver) extract(html, baseURL string) Resolved {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Resolved{}
	}
	return Resolved{
		CompanyName: companyName(doc),
		CompanySite: r.companySite(doc, baseURL),
	}
}

// companyName reads og:site_name metadata, falling back to the
// "<title> at <Company> | <source>" title pattern.
func companyName(doc *goquery.Document) string {
	for _, sel := range []string{`meta[property="og:site_name"]`, `meta[name="og:site_name"]`} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if name := strings.TrimSpace(content); name != "" {
				return name
			}
		}
	}

	title := doc.Find("title").First().Text()
	if !strings.Contains(title, " at ") {
		return ""
	}
	parts := strings.Split(title, " at ")
	name := parts[len(parts)-1]
	if i := strings.Index(name, "|"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// companySite finds the candidate company website: an anchor labeled
// "company website" (substring) or exactly "website", else the first
// absolute link pointing off the aggregator.
func (r *Resolver) companySite(doc *goquery.Document, baseURL string) string {
	all := links.FromSelection(doc.Selection, baseURL)

	for _, l := range all {
		text := strings.ToLower(l.Text)
		if strings.Contains(text, "company website") || strings.TrimSpace(text) == "website" {
			return l.URL
		}
	}

	for _, l := range all {
		if strings.HasPrefix(l.URL, "http") && !r.classifier.IsAggregator(l.URL) {
			return l.URL
		}
	}
	return ""
}
