package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/serpharvest/serpharvest/internal/config"
	"github.com/serpharvest/serpharvest/internal/engine"
)

// NewExpandCmd creates the expand command.
func NewExpandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand [keywords...]",
		Short: "Recursively expand keywords through autocomplete",
		Long: `Expand grows a keyword tree breadth-first: each seed is queried against
the autocomplete suggestion API with modifier variants (letter suffixes,
question prefixes, preposition suffixes), and every discovered keyword is
expanded again until the depth limit.

A keyword discovered through several parents keeps only its first
discovery, so the result is a tree.

Examples:
  # Expand one seed two levels deep
  serpharvest expand --depth 2 "best coffee"

  # Only alphabet modifiers, capped at 200 keywords
  serpharvest expand --modifiers alphabet --max-keywords 200 "best coffee"

  # Persist the run for later re-export
  serpharvest expand --save "best coffee"`,
		Args: cobra.ArbitraryArgs,
		RunE: runExpandCmd,
	}

	addCommonFlags(cmd)

	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum expansion depth")
	cmd.Flags().StringSliceP("modifiers", "m",
		[]string{"alphabet", "questions", "prepositions"},
		"Modifier classes: alphabet, questions, prepositions")
	cmd.Flags().Int("max-keywords", config.DefaultMaxKeywords,
		"Stop after discovering this many keywords (0 = unlimited)")

	return cmd
}

// runExpandCmd executes the expand command.
func runExpandCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCommonConfig(cmd, args)
	if err != nil {
		return err
	}

	if cfg.MaxDepth, err = cmd.Flags().GetInt("depth"); err != nil {
		return err
	}
	if cfg.MaxKeywords, err = cmd.Flags().GetInt("max-keywords"); err != nil {
		return err
	}
	modifiers, err := cmd.Flags().GetStringSlice("modifiers")
	if err != nil {
		return err
	}
	cfg.Modifiers = cfg.Modifiers[:0]
	for _, m := range modifiers {
		cfg.Modifiers = append(cfg.Modifiers, config.Modifier(m))
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

	doc, err := e.Expand(ctx)
	if err != nil {
		return err
	}

	path, err := e.Export(doc)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Discovered %d keywords (%d failed tasks)\n",
		len(doc.Keywords), doc.Metadata.FailedTasks)
	fmt.Fprintf(cmd.OutOrStdout(), "Export written to %s\n", path)
	return nil
}
