// Package main provides the entry point for the career resolution agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "career_agent",
	Short: "Job posting company-resolution agent",
	Long:  "career_agent resolves job postings into validated (company name, company website, career page, open position) rows, expanding listing pages into individual postings when needed.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
