package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/serpharvest/serpharvest/internal/config"
	"github.com/serpharvest/serpharvest/internal/engine"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [keywords...]",
		Short: "Scrape Google result pages for keywords",
		Long: `Scrape fetches Google search result pages for the given keywords and
extracts organic results, related searches, and People Also Ask questions.

Pages render in headless Chrome so JS-populated blocks are present.
Requests pace themselves with randomized delays; add proxies with
--proxy and --rotate-proxy to spread the load.

Examples:
  # Scrape a single keyword
  serpharvest scrape "best coffee"

  # Scrape the first three result pages per keyword as CSV
  serpharvest scrape --pages 3 --format csv "best coffee"

  # Read keywords from a file and rotate through proxies
  serpharvest scrape --list keywords.txt \
    --proxy socks5://127.0.0.1:1080 --proxy http://proxy.example.com:8080 \
    --rotate-proxy`,
		Args: cobra.ArbitraryArgs,
		RunE: runScrapeCmd,
	}

	addCommonFlags(cmd)

	cmd.Flags().IntP("pages", "p", config.DefaultPagesPerKeyword,
		"Result pages to fetch per keyword")
	cmd.Flags().IntP("results", "n", config.DefaultResultsPerPage,
		"Results requested per page")
	cmd.Flags().String("domain", config.DefaultGoogleDomain,
		"Google domain to query (e.g. google.de)")
	cmd.Flags().Bool("headless", true,
		"Run the browser without a visible window")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCommonConfig(cmd, args)
	if err != nil {
		return err
	}

	if cfg.PagesPerKeyword, err = cmd.Flags().GetInt("pages"); err != nil {
		return err
	}
	if cfg.ResultsPerPage, err = cmd.Flags().GetInt("results"); err != nil {
		return err
	}
	if cfg.GoogleDomain, err = cmd.Flags().GetString("domain"); err != nil {
		return err
	}
	if cfg.Headless, err = cmd.Flags().GetBool("headless"); err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	e, err := engine.New(cfg, engine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	defer func() {
		if err := e.Close(); err != nil {
			logger.Error("failed to shut browser down", "error", err)
		}
	}()

	doc, err := e.Scrape(ctx)
	if err != nil {
		return err
	}

	path, err := e.Export(doc)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Scraped %d result pages (%d failed tasks)\n",
		len(doc.Results), doc.Metadata.FailedTasks)
	fmt.Fprintf(cmd.OutOrStdout(), "Export written to %s\n", path)
	return nil
}
