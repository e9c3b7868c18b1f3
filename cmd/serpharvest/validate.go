package main

import (
	"fmt"
	"os"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	"github.com/serpharvest/serpharvest/internal/config"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [keywords...]",
		Short: "Validate configuration without running",
		Long: `Validate builds the effective configuration from flags and the config
file, checks it, and reports the result without fetching anything.

Examples:
  # Check the default config file and a seed
  serpharvest validate "best coffee"

  # Check an explicit config file
  serpharvest validate -c ./team.serpharvest.yaml "best coffee"`,
		Args: cobra.ArbitraryArgs,
		RunE: runValidateCmd,
	}

	addCommonFlags(cmd)
	return cmd
}

// runValidateCmd executes the validate command.
func runValidateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCommonConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration OK")
	fmt.Fprintf(out, "  seeds:       %d\n", len(cfg.Seeds))
	fmt.Fprintf(out, "  language:    %s (%s)\n", cfg.Language, cfg.Country)
	fmt.Fprintf(out, "  concurrency: %d\n", cfg.MaxConcurrency)
	fmt.Fprintf(out, "  delay:       %s..%s\n", cfg.MinDelay, cfg.MaxDelay)
	fmt.Fprintf(out, "  proxies:     %d (rotate: %t)\n", len(cfg.ProxyURLs), cfg.RotateProxy)
	fmt.Fprintf(out, "  format:      %s\n", cfg.ExportFormat)
	if bin, found := launcher.LookPath(); found {
		fmt.Fprintf(out, "  browser:     %s\n", bin)
	} else {
		fmt.Fprintln(out, "  browser:     not found (scrape will download one on first run)")
	}
	if cfg.OutputDir != "" {
		if err := checkOutputDir(cfg.OutputDir); err != nil {
			return fmt.Errorf("output directory unusable: %w", err)
		}
		fmt.Fprintf(out, "  output dir:  %s\n", cfg.OutputDir)
	}
	if requested, _ := cmd.Flags().GetString("config"); requested != "" {
		fmt.Fprintf(out, "  config file: %s\n", requested)
	} else if path := config.FindConfigFile(""); path != "" {
		fmt.Fprintf(out, "  config file: %s\n", path)
	}
	return nil
}

// checkOutputDir verifies the export directory exists or can be created.
func checkOutputDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0750)
}
