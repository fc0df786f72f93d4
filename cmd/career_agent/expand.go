package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-resolver/internal/fetch"
	"github.com/jonathan/career-resolver/internal/listing"
)

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Expand a listing page into individual posting URLs",
	Long:  "Scrolls a jobs listing page in a headless browser and prints the unique posting URLs it enumerates, one per line. Requires Chrome/Chromium.",
	RunE:  runExpand,
}

var (
	expandURL        string
	expandMaxScrolls int
	expandSettleMs   int
	expandVerbose    bool
)

func init() {
	expandCmd.Flags().StringVarP(&expandURL, "url", "u", "", "Listing page URL (required)")
	expandCmd.Flags().IntVar(&expandMaxScrolls, "max-scrolls", listing.DefaultMaxScrolls, "Maximum scroll iterations")
	expandCmd.Flags().IntVar(&expandSettleMs, "settle-ms", int(listing.DefaultSettleDelay/time.Millisecond), "Delay after each scroll before re-reading content")
	expandCmd.Flags().BoolVarP(&expandVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := expandCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}

	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, _ []string) error {
	renderer := fetch.NewChromeRenderer(&fetch.ChromeOptions{Verbose: expandVerbose})
	expander := listing.NewExpander(renderer, time.Duration(expandSettleMs)*time.Millisecond, expandMaxScrolls, expandVerbose)

	postings := expander.Expand(cmd.Context(), expandURL)
	for _, p := range postings {
		_, _ = fmt.Fprintln(os.Stdout, p)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Discovered %d posting(s)\n", len(postings))
	return nil
}
