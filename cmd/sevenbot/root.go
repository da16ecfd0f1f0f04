// Package main provides the entry point for the sevenbot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sevenbot.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sevenbot",
		Short: "LLM-assisted news site crawler",
		Long: `sevenbot crawls news sites with a real browser, classifies pages with an
LLM, and extracts article content.

Visited URLs are remembered per domain in a local SQLite database, so
repeated runs only fetch pages that are new since the last crawl. Sites
that require a login can be crawled with credentials; the login page and
form selectors are detected automatically when not configured.

The OPENAI_API_KEY environment variable must be set for page classification.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
