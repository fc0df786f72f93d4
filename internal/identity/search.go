package identity

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/career-resolver/internal/domains"
	"github.com/jonathan/career-resolver/internal/fetch"
)

// searchEndpoint is DuckDuckGo's static HTML results page, which works
// without script execution.
const searchEndpoint = "https://duckduckgo.com/html/"

// Searcher finds a company's website through a web search when the posting
// page yielded a name but no usable site.
type Searcher struct {
	client     *fetch.Client
	classifier *domains.Classifier
	endpoint   string
	verbose    bool
}

// NewSearcher creates a Searcher. An empty endpoint uses the default
// search engine.
func NewSearcher(client *fetch.Client, classifier *domains.Classifier, endpoint string, verbose bool) *Searcher {
	if endpoint == "" {
		endpoint = searchEndpoint
	}
	return &Searcher{
		client:     client,
		classifier: classifier,
		endpoint:   endpoint,
		verbose:    verbose,
	}
}

// CompanySite queries "<name> official website" and returns the first
// organic result, or the first external-looking link when the expected
// result markup is absent. Returns "" when nothing usable is found.
func (s *Searcher) CompanySite(ctx context.Context, companyName string) string {
	if companyName == "" {
		return ""
	}

	query := companyName + " official website"
	result, err := s.client.PostForm(ctx, s.endpoint, url.Values{"q": {query}})
	if err != nil {
		if s.verbose {
			log.Printf("[SEARCH] query %q failed: %v", query, err)
		}
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.Body))
	if err != nil {
		return ""
	}

	if href, ok := doc.Find("a.result__a").First().Attr("href"); ok && href != "" {
		return unwrapResult(href)
	}

	// Fallback: first absolute link that leaves the search engine.
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, "http") {
			return true
		}
		if u, err := url.Parse(href); err != nil || strings.Contains(strings.ToLower(u.Host), "duckduckgo.com") {
			return true
		}
		found = unwrapResult(href)
		return false
	})
	return found
}

// unwrapResult unwraps DuckDuckGo's redirect wrapper (/l/?uddg=<escaped>)
// so callers see the target URL directly. Non-wrapped URLs pass through.
func unwrapResult(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
