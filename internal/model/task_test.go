package model

import "testing"

// TestNormalizeKeyword tests keyword normalization.
func TestNormalizeKeyword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "Cat Food", want: "cat food"},
		{name: "collapses internal whitespace", input: "cat   food", want: "cat food"},
		{name: "trims surrounding whitespace", input: "  cat food \t", want: "cat food"},
		{name: "handles tabs and newlines", input: "cat\tfood\nbowl", want: "cat food bowl"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   ", want: ""},
		{name: "already normalized", input: "cat food", want: "cat food"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeKeyword(tt.input); got != tt.want {
				t.Errorf("NormalizeKeyword(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestVisitedKey tests dedup key construction.
func TestVisitedKey(t *testing.T) {
	t.Parallel()

	t.Run("same keyword different purpose yields different keys", func(t *testing.T) {
		t.Parallel()

		scrape := VisitedKey("cat food", PurposeScrape)
		suggest := VisitedKey("cat food", PurposeSuggest)
		if scrape == suggest {
			t.Errorf("expected distinct keys, both were %q", scrape)
		}
	})

	t.Run("normalized variants collide", func(t *testing.T) {
		t.Parallel()

		a := VisitedKey("Cat  Food", PurposeScrape)
		b := VisitedKey("cat food", PurposeScrape)
		if a != b {
			t.Errorf("expected %q == %q", a, b)
		}
	})

	t.Run("task method matches package function", func(t *testing.T) {
		t.Parallel()

		task := &FetchTask{Keyword: "Dog Toys", Purpose: PurposeSuggest}
		if task.VisitedKey() != VisitedKey("Dog Toys", PurposeSuggest) {
			t.Error("task.VisitedKey() diverged from VisitedKey()")
		}
	})
}
