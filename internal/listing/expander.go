// Package listing expands a jobs listing page into the set of individual
// posting URLs it enumerates.
package listing

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/career-resolver/internal/fetch"
	"github.com/jonathan/career-resolver/internal/links"
)

// PostingPathMarker is the path fragment identifying a single job posting.
const PostingPathMarker = "/jobs/view/"

// DefaultMaxScrolls bounds listing expansion when the page keeps loading
// more results.
const DefaultMaxScrolls = 20

// DefaultSettleDelay is the pause after each scroll before re-reading the
// rendered content.
const DefaultSettleDelay = 1500 * time.Millisecond

// IsPosting reports whether a reference URL denotes a single posting rather
// than a listing page.
func IsPosting(rawURL string) bool {
	return strings.Contains(rawURL, PostingPathMarker)
}

// Expander collects unique posting URLs from a listing page by repeatedly
// scrolling it in a renderer. Without a renderer it degrades to an empty
// result, never an error.
type Expander struct {
	renderer   fetch.Renderer // may be nil
	settle     time.Duration
	maxScrolls int
	verbose    bool
}

// NewExpander creates an Expander. renderer may be nil.
func NewExpander(renderer fetch.Renderer, settle time.Duration, maxScrolls int, verbose bool) *Expander {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	if maxScrolls <= 0 {
		maxScrolls = DefaultMaxScrolls
	}
	return &Expander{
		renderer:   renderer,
		settle:     settle,
		maxScrolls: maxScrolls,
		verbose:    verbose,
	}
}

// Expand returns the deduplicated posting URLs found on a listing page,
// sorted for determinism. Identifiers are normalized with query strings
// stripped. Expansion stops at the first full scroll iteration that adds
// nothing new, or after the scroll cap — whichever comes first.
func (e *Expander) Expand(ctx context.Context, listingURL string) []string {
	if e.renderer == nil {
		log.Printf("[LISTING] no renderer available; cannot expand %s", listingURL)
		return nil
	}

	seen := make(map[string]bool)
	first := true
	err := e.renderer.Scroll(ctx, listingURL, e.settle, e.maxScrolls, func(html string) bool {
		before := len(seen)
		collect(html, listingURL, seen)
		if e.verbose {
			log.Printf("[LISTING] %d postings after scroll", len(seen))
		}
		// The first snapshot establishes the baseline; afterwards a scroll
		// that adds nothing means the listing has stabilized.
		grew := len(seen) > before
		if first {
			first = false
			return true
		}
		return grew
	})
	if err != nil {
		log.Printf("[LISTING] expansion stopped early for %s: %v", listingURL, err)
		// Keep whatever was collected before the failure.
	}

	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// collect adds normalized posting URLs from one rendered snapshot to seen.
func collect(html, baseURL string, seen map[string]bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, PostingPathMarker) {
			return
		}
		full := links.Normalize(baseURL, href)
		if full == "" {
			return
		}
		seen[links.StripQuery(full)] = true
	})
}
