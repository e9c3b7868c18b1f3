package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/serpharvest/serpharvest/internal/config"
)

// newCommonCmd builds a throwaway command carrying the shared flags.
func newCommonCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	addCommonFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	return cmd
}

func TestBuildCommonConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cmd := newCommonCmd(t)
		cfg, err := buildCommonConfig(cmd, []string{"best coffee"})
		if err != nil {
			t.Fatalf("buildCommonConfig() error = %v", err)
		}

		if cfg.RequestTimeout != config.DefaultRequestTimeout {
			t.Errorf("RequestTimeout = %v, want %v", cfg.RequestTimeout, config.DefaultRequestTimeout)
		}
		if cfg.MaxConcurrency != config.DefaultMaxConcurrency {
			t.Errorf("MaxConcurrency = %d, want %d", cfg.MaxConcurrency, config.DefaultMaxConcurrency)
		}
		if cfg.Language != config.DefaultLanguage {
			t.Errorf("Language = %q, want %q", cfg.Language, config.DefaultLanguage)
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "best coffee" {
			t.Errorf("Seeds = %v, want [best coffee]", cfg.Seeds)
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()

		cmd := newCommonCmd(t,
			"--timeout", "10s",
			"--min-delay", "100ms",
			"--max-delay", "200ms",
			"--concurrency", "4",
			"--retries", "1",
			"--language", "de",
			"--country", "de",
			"--format", "csv",
			"--proxy", "http://proxy1:8080",
			"--proxy", "socks5://proxy2:1080",
			"--rotate-proxy",
			"--save",
		)
		cfg, err := buildCommonConfig(cmd, nil)
		if err != nil {
			t.Fatalf("buildCommonConfig() error = %v", err)
		}

		if cfg.RequestTimeout != 10*time.Second {
			t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
		}
		if cfg.MinDelay != 100*time.Millisecond || cfg.MaxDelay != 200*time.Millisecond {
			t.Errorf("delay = %v..%v, want 100ms..200ms", cfg.MinDelay, cfg.MaxDelay)
		}
		if cfg.MaxConcurrency != 4 {
			t.Errorf("MaxConcurrency = %d, want 4", cfg.MaxConcurrency)
		}
		if cfg.MaxRetries != 1 {
			t.Errorf("MaxRetries = %d, want 1", cfg.MaxRetries)
		}
		if cfg.Language != "de" || cfg.Country != "de" {
			t.Errorf("targeting = %s/%s, want de/de", cfg.Language, cfg.Country)
		}
		if cfg.ExportFormat != "csv" {
			t.Errorf("ExportFormat = %q, want csv", cfg.ExportFormat)
		}
		if len(cfg.ProxyURLs) != 2 {
			t.Errorf("ProxyURLs = %v, want 2 entries", cfg.ProxyURLs)
		}
		if !cfg.RotateProxy {
			t.Error("expected RotateProxy to be true")
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "nope.yaml")
		cmd := newCommonCmd(t, "--config", missing)

		_, err := buildCommonConfig(cmd, []string{"seed"})
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("err = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("config file values apply", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".serpharvest.yaml")
		yaml := "language: fr\ncountry: fr\nminDelaySeconds: 0.5\nproxies:\n  - http://proxy:8080\n"
		if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := newCommonCmd(t, "--config", path)
		cfg, err := buildCommonConfig(cmd, []string{"seed"})
		if err != nil {
			t.Fatalf("buildCommonConfig() error = %v", err)
		}

		if cfg.Language != "fr" || cfg.Country != "fr" {
			t.Errorf("targeting = %s/%s, want fr/fr", cfg.Language, cfg.Country)
		}
		if cfg.MinDelay != 500*time.Millisecond {
			t.Errorf("MinDelay = %v, want 500ms", cfg.MinDelay)
		}
		if len(cfg.ProxyURLs) != 1 || cfg.ProxyURLs[0] != "http://proxy:8080" {
			t.Errorf("ProxyURLs = %v, want [http://proxy:8080]", cfg.ProxyURLs)
		}
	})
}

func TestCollectSeeds(t *testing.T) {
	t.Parallel()

	t.Run("merges args and list file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "keywords.txt")
		content := "from file one\n\n# a comment\nfrom file two\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := newCommonCmd(t, "--list", path)
		seeds, err := collectSeeds(cmd, []string{"from args"})
		if err != nil {
			t.Fatalf("collectSeeds() error = %v", err)
		}

		want := []string{"from args", "from file one", "from file two"}
		if len(seeds) != len(want) {
			t.Fatalf("seeds = %v, want %v", seeds, want)
		}
		for i := range want {
			if seeds[i] != want[i] {
				t.Errorf("seeds[%d] = %q, want %q", i, seeds[i], want[i])
			}
		}
	})

	t.Run("missing list file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := newCommonCmd(t, "--list", filepath.Join(t.TempDir(), "missing.txt"))
		if _, err := collectSeeds(cmd, nil); err == nil {
			t.Error("expected error for missing list file")
		}
	})
}

func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	t.Run("falls back to root persistent flag", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
			t.Fatal(err)
		}

		var sub *cobra.Command
		for _, c := range root.Commands() {
			if c.Use == "version" {
				sub = c
			}
		}
		if sub == nil {
			t.Fatal("version subcommand not found")
		}
		if !getVerboseFlag(sub) {
			t.Error("expected verbose to propagate from root")
		}
	})

	t.Run("defaults to false without flag", func(t *testing.T) {
		t.Parallel()

		cmd := &cobra.Command{Use: "bare"}
		if getVerboseFlag(cmd) {
			t.Error("expected false for command without verbose flag")
		}
	})
}
