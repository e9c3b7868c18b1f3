// Package main provides the entry point for the serpharvest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for serpharvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serpharvest",
		Short: "Keyword research harvester for Google search",
		Long: `serpharvest scrapes Google search result pages and recursively expands
seed keywords through the autocomplete suggestion API.

Requests pace themselves with randomized delays and can rotate through a
proxy pool; unhealthy proxies are quarantined automatically.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewExpandCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewValidateCmd())
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
