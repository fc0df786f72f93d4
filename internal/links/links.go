// Package links extracts and normalizes hyperlinks from HTML documents.
// This package centralizes anchor handling used by identity resolution,
// career page location and listing expansion.
package links

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is a normalized absolute hyperlink with its visible anchor text.
type Link struct {
	URL  string
	Text string
}

// ExtractionError represents a failure in extracting links from HTML.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("link extraction error: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Normalize resolves href against base and returns an absolute URL.
// Fragment-only, javascript: and mailto: hrefs normalize to the empty
// string. Protocol-relative hrefs inherit the base scheme. Normalize is
// idempotent: feeding its output back in returns the same URL.
func Normalize(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(href, "#") ||
		strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") {
		return ""
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		scheme := baseURL.Scheme
		if scheme == "" {
			scheme = "https"
		}
		href = scheme + ":" + href
	}
	hrefURL, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(hrefURL).String()
}

// StripQuery removes the query string and fragment from a URL, used to
// derive stable posting identifiers.
func StripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// Origin reduces a URL to its scheme://host root. URLs without a scheme
// are assumed to be https.
func Origin(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", &ExtractionError{Message: "failed to parse URL", Cause: err}
	}
	if u.Scheme == "" {
		u, err = url.Parse("https://" + strings.TrimSpace(raw))
		if err != nil {
			return "", &ExtractionError{Message: "failed to parse URL", Cause: err}
		}
	}
	if u.Host == "" {
		return "", &ExtractionError{Message: fmt.Sprintf("URL has no host: %s", raw)}
	}
	return u.Scheme + "://" + u.Host, nil
}

// FromHTML parses HTML and returns all normalized anchors in document
// order. Duplicate targets keep their first occurrence.
func FromHTML(htmlContent, baseURL string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &ExtractionError{Message: "failed to parse HTML", Cause: err}
	}
	return FromSelection(doc.Selection, baseURL), nil
}

// FromSelection collects normalized anchors beneath a goquery selection,
// in document order.
func FromSelection(sel *goquery.Selection, baseURL string) []Link {
	seen := make(map[string]bool)
	var out []Link
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		full := Normalize(baseURL, href)
		if full == "" || seen[full] {
			return
		}
		seen[full] = true
		out = append(out, Link{
			URL:  full,
			Text: strings.TrimSpace(a.Text()),
		})
	})
	return out
}
