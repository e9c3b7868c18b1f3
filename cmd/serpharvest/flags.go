package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/serpharvest/serpharvest/internal/config"
	"github.com/serpharvest/serpharvest/internal/log"
)

// addCommonFlags registers the flags shared by scrape and expand.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("list", "l", "",
		"Read seed keywords from a file, one per line")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .serpharvest.yaml in current dir or XDG config dir)")

	// Request pacing
	cmd.Flags().DurationP("timeout", "t", config.DefaultRequestTimeout,
		"Hard timeout per request")
	cmd.Flags().Duration("min-delay", config.DefaultMinDelay,
		"Minimum delay between requests per worker")
	cmd.Flags().Duration("max-delay", config.DefaultMaxDelay,
		"Maximum delay between requests per worker")
	cmd.Flags().IntP("concurrency", "b", config.DefaultMaxConcurrency,
		"Number of concurrent workers")
	cmd.Flags().IntP("retries", "r", config.DefaultMaxRetries,
		"Retry budget per task")

	// Proxies
	cmd.Flags().StringSlice("proxy", nil,
		"Proxy endpoint (http, https or socks5 URL); repeatable")
	cmd.Flags().Bool("rotate-proxy", false,
		"Rotate requests across the proxy pool")

	// Targeting
	cmd.Flags().String("language", config.DefaultLanguage,
		"ISO 639 language code for queries")
	cmd.Flags().String("country", config.DefaultCountry,
		"ISO 3166 country code for geo-targeting")

	// Output
	cmd.Flags().StringP("format", "f", "json",
		"Export format: json, jsonl, csv, md or xlsx")
	cmd.Flags().StringP("output-dir", "o", "",
		"Directory for export files (default: XDG data dir)")
	cmd.Flags().String("output-name", "",
		"Export filename without extension (default: generated from seed and timestamp)")
	cmd.Flags().BoolP("save", "s", false,
		"Persist the run to the local SQLite store")
}

// buildCommonConfig creates a Config from the shared flags and
// positional seed arguments.
func buildCommonConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	if cfg.RequestTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.MinDelay, err = cmd.Flags().GetDuration("min-delay"); err != nil {
		return nil, err
	}
	if cfg.MaxDelay, err = cmd.Flags().GetDuration("max-delay"); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = cmd.Flags().GetInt("retries"); err != nil {
		return nil, err
	}
	if cfg.ProxyURLs, err = cmd.Flags().GetStringSlice("proxy"); err != nil {
		return nil, err
	}
	if cfg.RotateProxy, err = cmd.Flags().GetBool("rotate-proxy"); err != nil {
		return nil, err
	}
	if cfg.Language, err = cmd.Flags().GetString("language"); err != nil {
		return nil, err
	}
	if cfg.Country, err = cmd.Flags().GetString("country"); err != nil {
		return nil, err
	}
	if cfg.ExportFormat, err = cmd.Flags().GetString("format"); err != nil {
		return nil, err
	}
	if cfg.OutputDir, err = cmd.Flags().GetString("output-dir"); err != nil {
		return nil, err
	}
	if cfg.OutputName, err = cmd.Flags().GetString("output-name"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = cmd.Flags().GetBool("save"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// File settings apply before flags the user set explicitly.
	if err := applyConfigFile(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Seeds, err = collectSeeds(cmd, args)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyConfigFile loads the YAML config file when present. An explicitly
// requested file that does not exist is an error; the default locations
// are optional.
func applyConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	requested, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	path := config.FindConfigFile(requested)
	if path == "" {
		if requested != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, requested)
		}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	file.Apply(cfg)
	return nil
}

// collectSeeds merges positional keywords with the --list file.
func collectSeeds(cmd *cobra.Command, args []string) ([]string, error) {
	seeds := append([]string(nil), args...)

	listPath, err := cmd.Flags().GetString("list")
	if err != nil {
		return nil, err
	}
	if listPath != "" {
		fromFile, err := config.LoadLines(listPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read keyword list %s: %w", listPath, err)
		}
		seeds = append(seeds, fromFile...)
	}
	return seeds, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the redacting structured logger.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, verbose)
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
