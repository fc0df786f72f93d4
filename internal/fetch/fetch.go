// Package fetch provides HTTP fetching with retry, redirect resolution and
// headless browser rendering. This package centralizes all transport logic
// used by the resolution pipeline.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 12 * time.Second

// DefaultRetries is the default number of attempts per fetch.
const DefaultRetries = 3

// DefaultBackoff is the base delay between retries; attempt n waits n times
// this value (linear backoff).
const DefaultBackoff = 1 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests. Job boards
// tend to serve stripped pages to obvious bots, so this mimics a desktop
// browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Result holds the response from a URL fetch after redirects.
type Result struct {
	FinalURL   string
	Body       string
	StatusCode int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Retries   int
	Backoff   time.Duration
	Limiter   *HostLimiter // optional per-host rate limiting
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Retries:   DefaultRetries,
		Backoff:   DefaultBackoff,
	}
}

// Client issues HTTP requests with bounded retry and linear backoff.
// The retry budget is per call, never shared across calls.
type Client struct {
	http *http.Client
	opts *Options
}

// NewClient creates a Client. A nil opts uses DefaultOptions.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Client{
		http: &http.Client{Timeout: opts.Timeout},
		opts: opts,
	}
}

// Get retrieves a URL, following redirects, retrying failed attempts with
// linear backoff. On success the Result carries the final post-redirect URL.
func (c *Client) Get(ctx context.Context, urlStr string) (*Result, error) {
	return c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	}, urlStr)
}

// PostForm submits form values to a URL with the same retry policy as Get.
func (c *Client) PostForm(ctx context.Context, urlStr string, form url.Values) (*Result, error) {
	body := form.Encode()
	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, urlStr)
}

func (c *Client) do(ctx context.Context, newReq func() (*http.Request, error), urlStr string) (*Result, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	var lastErr error
	for attempt := 0; attempt < c.opts.Retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.opts.Backoff*time.Duration(attempt)); err != nil {
				return nil, &Error{URL: urlStr, Message: "canceled during backoff", Cause: err}
			}
		}
		if c.opts.Limiter != nil {
			if err := c.opts.Limiter.WaitURL(ctx, urlStr); err != nil {
				return nil, &Error{URL: urlStr, Message: "canceled waiting for rate limiter", Cause: err}
			}
		}

		req, err := newReq()
		if err != nil {
			return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		bodyBytes, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("HTTP status %d", resp.StatusCode)
			continue
		}

		return &Result{
			FinalURL:   resp.Request.URL.String(),
			Body:       string(bodyBytes),
			StatusCode: resp.StatusCode,
		}, nil
	}

	return nil, &Error{URL: urlStr, Message: "all attempts failed", Cause: lastErr}
}

// FinalURL resolves redirects and short links to the final destination. It
// tries a HEAD request first, falls back to a full GET for hosts that
// reject HEAD, and returns the input unchanged when both fail. It never
// returns an empty string for a non-empty input and never retries.
func (c *Client) FinalURL(ctx context.Context, urlStr string) string {
	if urlStr == "" {
		return urlStr
	}
	for _, method := range []string{http.MethodHead, http.MethodGet} {
		req, err := http.NewRequestWithContext(ctx, method, urlStr, nil)
		if err != nil {
			return urlStr
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			continue
		}
		final := resp.Request.URL.String()
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode >= 400 {
			continue
		}
		if final != "" {
			return final
		}
	}
	return urlStr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
