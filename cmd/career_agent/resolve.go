package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/career-resolver/internal/careers"
	"github.com/jonathan/career-resolver/internal/config"
	"github.com/jonathan/career-resolver/internal/domains"
	"github.com/jonathan/career-resolver/internal/fetch"
	"github.com/jonathan/career-resolver/internal/identity"
	"github.com/jonathan/career-resolver/internal/listing"
	"github.com/jonathan/career-resolver/internal/pipeline"
	"github.com/jonathan/career-resolver/internal/sink"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve postings into company/career-page/job rows",
	Long: `Resolves a job posting URL (or a listing page enumerating many postings) into validated rows of company name, company website, career page and one open position URL.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runResolve,
}

var (
	resolveConfigPath  string
	resolveURL         string
	resolveOut         string
	resolveHeuristics  string
	resolveDedupeDB    string
	resolveWorkers     int
	resolveMaxPostings int
	resolveRate        float64
	resolveNoBrowser   bool
	resolveVerbose     bool
)

func init() {
	resolveCmd.Flags().StringVar(&resolveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	resolveCmd.Flags().StringVarP(&resolveURL, "url", "u", "", "Job posting or listing page URL (required)")
	resolveCmd.Flags().StringVarP(&resolveOut, "out", "o", "results.csv", "Output file, .csv or .xlsx")
	resolveCmd.Flags().StringVar(&resolveHeuristics, "heuristics", "", "Path to heuristics YAML file (defaults to compiled-in heuristics)")
	resolveCmd.Flags().StringVar(&resolveDedupeDB, "dedupe-db", "", "SQLite file tracking emitted postings across runs (off by default)")
	resolveCmd.Flags().IntVar(&resolveWorkers, "workers", 1, "Concurrent posting resolutions")
	resolveCmd.Flags().IntVar(&resolveMaxPostings, "max-postings", 0, "Cap on postings taken from a listing (0 = all)")
	resolveCmd.Flags().Float64Var(&resolveRate, "rate", 1.0, "Postings processed per second (politeness control)")
	resolveCmd.Flags().BoolVar(&resolveNoBrowser, "no-browser", false, "Disable headless browser rendering (static fetch only)")
	resolveCmd.Flags().BoolVarP(&resolveVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := resolveCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, _ []string) error {
	cfg, err := mergedConfig(cmd)
	if err != nil {
		return err
	}

	heuristics := config.DefaultHeuristics()
	if cfg.Heuristics != "" {
		heuristics, err = config.LoadHeuristics(cfg.Heuristics)
		if err != nil {
			return err
		}
	}

	classifier := domains.NewClassifier(heuristics.AggregatorHosts, heuristics.ATSHosts)

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Limiter = fetch.NewHostLimiter(2, 2)
	client := fetch.NewClient(fetchOpts)

	var renderer fetch.Renderer
	if !cfg.NoBrowser {
		renderer = fetch.NewChromeRenderer(&fetch.ChromeOptions{Verbose: cfg.Verbose})
	} else {
		log.Printf("[RESOLVE] browser rendering disabled; running in static-fetch mode")
	}

	out, err := sink.Open(cfg.Out)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	if cfg.DedupeDB != "" {
		out, err = sink.WithDedupe(out, cfg.DedupeDB, runID)
		if err != nil {
			return err
		}
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Printf("[RESOLVE] failed to close output: %v", err)
		}
	}()

	p := pipeline.New(pipeline.Deps{
		Client:     client,
		Classifier: classifier,
		Identity:   identity.NewResolver(client, renderer, classifier, cfg.Verbose),
		Searcher:   identity.NewSearcher(client, classifier, "", cfg.Verbose),
		Locator:    careers.NewLocator(client, classifier, heuristics, cfg.Verbose),
		Expander:   listing.NewExpander(renderer, listing.DefaultSettleDelay, listing.DefaultMaxScrolls, cfg.Verbose),
		Sink:       out,
	}, pipeline.Options{
		Workers:     cfg.Workers,
		MaxPostings: cfg.MaxPostings,
		PostingRate: cfg.PostingRate,
		Echo:        os.Stdout,
		Verbose:     cfg.Verbose,
	})

	log.Printf("[RESOLVE] run %s starting for %s", runID, resolveURL)
	emitted, err := p.Run(cmd.Context(), resolveURL)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Resolved %d row(s) into %s\n", emitted, cfg.Out)
	return nil
}

// mergedConfig loads the optional JSON config and overlays explicitly set
// CLI flags on top of it.
func mergedConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if resolveConfigPath != "" {
		loaded, err := config.LoadConfig(resolveConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("out") || cfg.Out == "" {
		cfg.Out = resolveOut
	}
	if cmd.Flags().Changed("heuristics") {
		cfg.Heuristics = resolveHeuristics
	}
	if cmd.Flags().Changed("dedupe-db") {
		cfg.DedupeDB = resolveDedupeDB
	}
	if cmd.Flags().Changed("workers") || cfg.Workers == 0 {
		cfg.Workers = resolveWorkers
	}
	if cmd.Flags().Changed("max-postings") {
		cfg.MaxPostings = resolveMaxPostings
	}
	if cmd.Flags().Changed("rate") || cfg.PostingRate == 0 {
		cfg.PostingRate = resolveRate
	}
	if cmd.Flags().Changed("no-browser") {
		cfg.NoBrowser = resolveNoBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = resolveVerbose
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
