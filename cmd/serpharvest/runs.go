package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/serpharvest/serpharvest/internal/config"
	"github.com/serpharvest/serpharvest/internal/database"
	"github.com/serpharvest/serpharvest/internal/export"
	"github.com/serpharvest/serpharvest/internal/model"
)

// NewRunsCmd creates the runs command.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List or re-export persisted runs",
		Long: `Runs lists harvest runs stored with --save. Pass a run ID to write the
stored run to stdout in the chosen format.

Examples:
  # List all stored runs
  serpharvest runs

  # Re-export one run as CSV
  serpharvest runs 7f6c1a2e-... --format csv > run.csv

  # Delete a stored run
  serpharvest runs 7f6c1a2e-... --delete`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunsCmd,
	}

	cmd.Flags().StringP("format", "f", "json",
		"Export format for a single run: json, jsonl, csv, md or xlsx")
	cmd.Flags().String("db-dir", "",
		"Run store directory (default: XDG data dir)")
	cmd.Flags().Bool("delete", false,
		"Delete the given run instead of exporting it")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no run store found (did you run with --save?): %w", err)
	}
	defer db.Close() //nolint:errcheck // read-mostly command

	if len(args) == 0 {
		return listRuns(cmd, db)
	}

	del, err := cmd.Flags().GetBool("delete")
	if err != nil {
		return err
	}
	if del {
		if err := db.DeleteRun(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
		return nil
	}

	return exportRun(cmd, db, args[0])
}

// listRuns prints a table of stored runs.
func listRuns(cmd *cobra.Command, db *database.HarvestDB) error {
	runs, err := db.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored runs.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSEEDS\tTASKS\tFAILED\tGENERATED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Kind,
			len(run.Seeds),
			run.TaskCount,
			run.FailedTasks,
			run.GeneratedAt.UTC().Format(time.RFC3339),
		)
	}
	return w.Flush()
}

// exportRun writes one stored run to stdout.
func exportRun(cmd *cobra.Command, db *database.HarvestDB, id string) error {
	ctx := cmd.Context()

	meta, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("run %s not found", id)
	}

	results, err := db.GetResults(ctx, id)
	if err != nil {
		return err
	}
	nodes, err := db.GetKeywords(ctx, id)
	if err != nil {
		return err
	}

	doc := &export.Document{
		Metadata: *meta,
		Results:  results,
		Keywords: nodes,
	}
	if len(nodes) > 0 {
		stats := model.ComputeKeywordStats(nodes)
		doc.Stats = &stats
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	w, err := export.ForFormat(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	_, err = w.Write(doc)
	return err
}
