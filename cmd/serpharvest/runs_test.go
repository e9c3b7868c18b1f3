package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/serpharvest/serpharvest/internal/database"
	"github.com/serpharvest/serpharvest/internal/model"
)

// seedRunStore creates a run store in a temp dir with one stored run and
// returns the dir and the run ID.
func seedRunStore(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck

	meta := model.RunMetadata{
		ID:          "run-cmd-test",
		Kind:        model.RunScrape,
		Language:    "en",
		Country:     "us",
		Seeds:       []string{"best coffee"},
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		TaskCount:   1,
	}
	results := []model.SerpResult{
		{
			Keyword: "best coffee",
			Page:    1,
			Organic: []model.OrganicResult{
				{
					URL:      "https://example.com/coffee",
					Title:    "Coffee Guide",
					Domain:   "example.com",
					Position: 1,
				},
			},
			ScrapedAt: meta.GeneratedAt,
		},
	}

	if err := db.SaveRun(context.Background(), meta, results, nil); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	return dir, meta.ID
}

func TestNewRunsCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRunsCmd()

	t.Run("command has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "runs [run-id]" {
			t.Errorf("expected Use to be 'runs [run-id]', got %q", cmd.Use)
		}
	})

	t.Run("command has flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"format", "db-dir", "delete"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})
}

func TestRunRunsCmd(t *testing.T) {
	t.Parallel()

	t.Run("missing store is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewRunsCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--db-dir", t.TempDir()})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected error for missing run store")
		}
		if !strings.Contains(err.Error(), "no run store found") {
			t.Errorf("err = %v, want run store hint", err)
		}
	})

	t.Run("lists stored runs", func(t *testing.T) {
		t.Parallel()

		dir, id := seedRunStore(t)

		var buf bytes.Buffer
		cmd := NewRunsCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{"--db-dir", dir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "ID") || !strings.Contains(output, "GENERATED") {
			t.Errorf("expected table header, got %q", output)
		}
		if !strings.Contains(output, id) {
			t.Errorf("expected run %s in listing, got %q", id, output)
		}
	})

	t.Run("exports a stored run", func(t *testing.T) {
		t.Parallel()

		dir, id := seedRunStore(t)

		var buf bytes.Buffer
		cmd := NewRunsCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{id, "--db-dir", dir, "--format", "json"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "best coffee") {
			t.Errorf("expected exported keyword, got %q", output)
		}
		if !strings.Contains(output, "Coffee Guide") {
			t.Errorf("expected exported result title, got %q", output)
		}
	})

	t.Run("unknown run ID is an error", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedRunStore(t)

		cmd := NewRunsCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"no-such-run", "--db-dir", dir})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected error for unknown run ID")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("err = %v, want not found", err)
		}
	})

	t.Run("deletes a stored run", func(t *testing.T) {
		t.Parallel()

		dir, id := seedRunStore(t)

		var buf bytes.Buffer
		cmd := NewRunsCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{id, "--db-dir", dir, "--delete"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Deleted run") {
			t.Errorf("expected delete confirmation, got %q", buf.String())
		}

		buf.Reset()
		list := NewRunsCmd()
		list.SetOut(&buf)
		list.SetErr(&buf)
		list.SetArgs([]string{"--db-dir", dir})
		if err := list.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No stored runs.") {
			t.Errorf("expected empty listing, got %q", buf.String())
		}
	})
}
