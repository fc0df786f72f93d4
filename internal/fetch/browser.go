// Package fetch - browser.go provides headless browser rendering for pages
// that only populate content client-side.
package fetch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultSettleDelay is how long rendered pages are given to populate
// client-side content before the HTML is captured.
const DefaultSettleDelay = 1200 * time.Millisecond

// Renderer loads a page in an environment that executes scripts. It is an
// optional capability: callers must tolerate a nil Renderer and degrade to
// static fetching.
type Renderer interface {
	// Render navigates to url, waits settle for dynamic content, and
	// returns the rendered HTML.
	Render(ctx context.Context, url string, settle time.Duration) (string, error)
	// Scroll navigates to url and repeatedly scrolls the page, invoking
	// step with the rendered HTML after each settle period. It stops when
	// step returns false or after maxScrolls iterations.
	Scroll(ctx context.Context, url string, settle time.Duration, maxScrolls int, step func(html string) bool) error
}

// RenderError represents a browser rendering failure.
type RenderError struct {
	URL   string
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error for %s: %v", e.URL, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// ChromeRenderer renders pages with headless Chrome via chromedp.
// Requires Chrome/Chromium to be installed on the system. A mutex
// serializes browser launches; rendering one page at a time keeps a single
// Chrome process alive at most.
type ChromeRenderer struct {
	mu         sync.Mutex
	userAgent  string
	navTimeout time.Duration
	verbose    bool
}

// ChromeOptions configures a ChromeRenderer.
type ChromeOptions struct {
	UserAgent  string
	NavTimeout time.Duration
	Verbose    bool
}

// NewChromeRenderer creates a ChromeRenderer with defaults filled in.
func NewChromeRenderer(opts *ChromeOptions) *ChromeRenderer {
	if opts == nil {
		opts = &ChromeOptions{}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	nav := opts.NavTimeout
	if nav <= 0 {
		nav = 10 * time.Second
	}
	return &ChromeRenderer{
		userAgent:  ua,
		navTimeout: nav,
		verbose:    opts.Verbose,
	}
}

// Render implements Renderer.
func (r *ChromeRenderer) Render(ctx context.Context, url string, settle time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.verbose {
		log.Printf("[BROWSER] Rendering: %s", url)
	}

	browserCtx, cancel := r.newBrowserContext(ctx)
	defer cancel()

	navCtx, navCancel := context.WithTimeout(browserCtx, r.navTimeout+settle)
	defer navCancel()

	var html string
	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &RenderError{URL: url, Cause: err}
	}

	if r.verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}
	return html, nil
}

// Scroll implements Renderer. The navigation timeout applies to the initial
// load only; the caller's context bounds the scroll loop.
func (r *ChromeRenderer) Scroll(ctx context.Context, url string, settle time.Duration, maxScrolls int, step func(html string) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.verbose {
		log.Printf("[BROWSER] Expanding listing: %s", url)
	}

	browserCtx, cancel := r.newBrowserContext(ctx)
	defer cancel()

	navCtx, navCancel := context.WithTimeout(browserCtx, 30*time.Second)
	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	navCancel()
	if err != nil {
		return &RenderError{URL: url, Cause: err}
	}

	for i := 0; i < maxScrolls; i++ {
		var html string
		err := chromedp.Run(browserCtx,
			chromedp.Evaluate(`window.scrollBy(0, window.innerHeight * 2)`, nil),
			chromedp.Sleep(settle),
			chromedp.OuterHTML("html", &html),
		)
		if err != nil {
			return &RenderError{URL: url, Cause: err}
		}
		if !step(html) {
			break
		}
	}
	return nil
}

func (r *ChromeRenderer) newBrowserContext(ctx context.Context) (context.Context, context.CancelFunc) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(r.userAgent),
		)...,
	)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		browserCancel()
		allocCancel()
	}
}
