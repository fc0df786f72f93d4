// Package pipeline sequences per-posting resolution: identity, website
// validation, career page location and job extraction, emitting one
// validated row per posting. No output field ever points back at the
// aggregator the posting came from.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jonathan/career-resolver/internal/careers"
	"github.com/jonathan/career-resolver/internal/domains"
	"github.com/jonathan/career-resolver/internal/fetch"
	"github.com/jonathan/career-resolver/internal/identity"
	"github.com/jonathan/career-resolver/internal/listing"
	"github.com/jonathan/career-resolver/internal/sink"
)

// slugPattern strips everything a bare domain guess can't contain.
var slugPattern = regexp.MustCompile(`[^a-z0-9\-.]`)

// Options tunes a pipeline run.
type Options struct {
	// Workers is the number of postings resolved concurrently. Values
	// below 2 mean sequential processing.
	Workers int
	// MaxPostings caps how many postings are taken from a listing.
	// Zero means all of them.
	MaxPostings int
	// PostingRate paces posting processing (postings per second) as a
	// politeness control. Zero disables pacing.
	PostingRate float64
	// Echo, when set, receives the company,career,job triple per emitted
	// row (stdout in the CLI).
	Echo io.Writer
	// Verbose enables detailed per-stage logging.
	Verbose bool
}

// Deps are the collaborators a pipeline orchestrates.
type Deps struct {
	Client     *fetch.Client
	Classifier *domains.Classifier
	Identity   *identity.Resolver
	Searcher   *identity.Searcher
	Locator    *careers.Locator
	Expander   *listing.Expander
	Sink       sink.Sink
}

// Pipeline resolves postings into result rows.
type Pipeline struct {
	deps    Deps
	opts    Options
	limiter *rate.Limiter

	// echoMu serializes echo writes across workers.
	echoMu sync.Mutex
}

// New creates a Pipeline.
func New(deps Deps, opts Options) *Pipeline {
	var limiter *rate.Limiter
	if opts.PostingRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.PostingRate), 1)
	}
	return &Pipeline{deps: deps, opts: opts, limiter: limiter}
}

// Run resolves the reference — a single posting or a listing page — and
// returns the number of rows emitted. Only an unrecoverable sink-write
// failure produces an error; every per-posting failure is absorbed as a
// skipped posting.
func (p *Pipeline) Run(ctx context.Context, reference string) (int, error) {
	reference = strings.TrimSpace(reference)

	var postings []string
	if listing.IsPosting(reference) {
		postings = []string{reference}
	} else {
		postings = p.deps.Expander.Expand(ctx, reference)
		if len(postings) == 0 {
			log.Printf("[PIPELINE] no postings discovered on %s", reference)
			return 0, nil
		}
		log.Printf("[PIPELINE] discovered %d postings", len(postings))
	}

	if p.opts.MaxPostings > 0 && len(postings) > p.opts.MaxPostings {
		postings = postings[:p.opts.MaxPostings]
	}

	var emitted atomic.Int64

	if p.opts.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.opts.Workers)
		for _, posting := range postings {
			posting := posting
			g.Go(func() error {
				return p.processOne(gctx, posting, &emitted)
			})
		}
		if err := g.Wait(); err != nil {
			return int(emitted.Load()), err
		}
		return int(emitted.Load()), nil
	}

	for i, posting := range postings {
		log.Printf("[PIPELINE] [%d/%d] processing %s", i+1, len(postings), posting)
		if err := p.processOne(ctx, posting, &emitted); err != nil {
			return int(emitted.Load()), err
		}
	}
	return int(emitted.Load()), nil
}

// processOne resolves a single posting end to end and appends its row.
func (p *Pipeline) processOne(ctx context.Context, postingURL string, emitted *atomic.Int64) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	row, ok := p.resolve(ctx, postingURL)
	if !ok {
		return nil
	}

	if err := p.deps.Sink.Append(postingURL, *row); err != nil {
		return fmt.Errorf("result sink write failed, aborting run: %w", err)
	}
	emitted.Add(1)

	if p.opts.Echo != nil {
		p.echoMu.Lock()
		fmt.Fprintf(p.opts.Echo, "%s,%s,%s\n", row.CompanyName, row.CareerPage, row.JobURL)
		p.echoMu.Unlock()
	}
	log.Printf("[PIPELINE] saved row for %s (company=%q career=%q)", postingURL, row.CompanyName, row.CareerPage)
	return nil
}

// resolve walks the per-posting stages. A false return means the posting
// was abandoned: no career page could be located.
func (p *Pipeline) resolve(ctx context.Context, postingURL string) (*sink.Row, bool) {
	id := p.deps.Identity.Resolve(ctx, postingURL)
	name, site := id.CompanyName, id.CompanySite

	// Validate the candidate site past redirects; an aggregator
	// destination is discarded, the name kept.
	if site != "" {
		final := p.deps.Client.FinalURL(ctx, site)
		if p.deps.Classifier.IsAggregator(final) {
			log.Printf("[PIPELINE] company website for %q resolves to the aggregator, discarding", name)
			site = ""
		} else {
			site = final
		}
	}

	if site == "" && name != "" {
		if found := p.deps.Searcher.CompanySite(ctx, name); found != "" {
			final := p.deps.Client.FinalURL(ctx, found)
			if !p.deps.Classifier.IsAggregator(final) {
				site = final
			}
		}
	}

	// Last resort: slugify the company name into a domain guess. The guess
	// is deliberately not validated here; the career-page stages validate
	// it implicitly through their fetches. Low-confidence by nature.
	if site == "" && name != "" {
		site = guessSite(name)
		log.Printf("[PIPELINE] guessed company website %s for %q (low confidence)", site, name)
	}

	page := p.deps.Locator.Locate(ctx, site)
	if page == nil || p.deps.Classifier.IsAggregator(page.URL) {
		log.Printf("[PIPELINE] no valid career page for company %q, skipping posting %s", name, postingURL)
		return nil, false
	}
	if p.opts.Verbose {
		log.Printf("[PIPELINE] career page %s (via %s)", page.URL, page.Source)
	}

	job := p.deps.Locator.Opening(ctx, page.URL)
	if job != "" && p.deps.Classifier.IsAggregator(job) {
		log.Printf("[PIPELINE] job opening resolves to the aggregator, leaving empty")
		job = ""
	}

	return &sink.Row{
		CompanyName:    name,
		CompanyWebsite: site,
		CareerPage:     page.URL,
		JobURL:         job,
	}, true
}

// guessSite forms https://www.<slug> from a company name.
func guessSite(name string) string {
	return "https://www." + slugPattern.ReplaceAllString(strings.ToLower(name), "")
}
