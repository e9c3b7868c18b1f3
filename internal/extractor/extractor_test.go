package extractor

import (
	"testing"
)

const sampleSERP = `<!DOCTYPE html>
<html><body>
<div id="search">
  <div class="tF2Cxc">
    <a href="https://en.wikipedia.org/wiki/Cat"><h3 class="LC20lb">Cat - Wikipedia</h3></a>
    <div class="VwiC3b">The cat is a domestic species of small carnivorous mammal.</div>
  </div>
  <div class="tF2Cxc">
    <a href="https://www.catcare.example/guide"><h3>Complete Cat Care Guide</h3></a>
    <div class="VwiC3b">Everything about caring for your cat.</div>
  </div>
  <div class="tF2Cxc">
    <a href="javascript:void(0)"><h3>Broken block</h3></a>
  </div>
  <div class="Ww4FFb">
    <a href="https://cats.example/breeds"><h3 class="DKV0Md">Cat Breeds</h3></a>
  </div>
</div>
<div class="related-question-pair"><span>What do cats eat?</span></div>
<div class="related-question-pair"><span>What do cats eat?</span></div>
<div class="related-question-pair"><span>Expand all</span></div>
<div class="related-question-pair"><span>How long do cats live?</span></div>
<div class="AJLUJb"><a>cat food</a><a>cat breeds</a><a>cat food</a><a>ok</a></div>
</body></html>`

// TestExtract tests full-page extraction against representative markup.
func TestExtract(t *testing.T) {
	t.Parallel()

	result, err := Extract(sampleSERP, "cat", 1)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("organic results with gapless positions", func(t *testing.T) {
		t.Parallel()

		if len(result.Organic) != 3 {
			t.Fatalf("got %d organic results, want 3", len(result.Organic))
		}
		for i, r := range result.Organic {
			if r.Position != i+1 {
				t.Errorf("Organic[%d].Position = %d, want %d", i, r.Position, i+1)
			}
		}
		first := result.Organic[0]
		if first.URL != "https://en.wikipedia.org/wiki/Cat" {
			t.Errorf("URL = %q", first.URL)
		}
		if first.Title != "Cat - Wikipedia" {
			t.Errorf("Title = %q", first.Title)
		}
		if first.Domain != "en.wikipedia.org" {
			t.Errorf("Domain = %q", first.Domain)
		}
		if first.Description == "" {
			t.Error("Description should be populated")
		}
	})

	t.Run("malformed block skipped and counted", func(t *testing.T) {
		t.Parallel()

		if result.SkippedItems != 1 {
			t.Errorf("SkippedItems = %d, want 1", result.SkippedItems)
		}
	})

	t.Run("related keywords deduplicated", func(t *testing.T) {
		t.Parallel()

		// "cat food" appears twice, "ok" is too short to qualify.
		want := map[string]bool{"cat food": true, "cat breeds": true}
		if len(result.RelatedKeywords) != len(want) {
			t.Fatalf("RelatedKeywords = %v", result.RelatedKeywords)
		}
		for _, kw := range result.RelatedKeywords {
			if !want[kw] {
				t.Errorf("unexpected related keyword %q", kw)
			}
		}
	})

	t.Run("paa requires question mark and deduplicates", func(t *testing.T) {
		t.Parallel()

		want := map[string]bool{"What do cats eat?": true, "How long do cats live?": true}
		if len(result.PeopleAlsoAsk) != len(want) {
			t.Fatalf("PeopleAlsoAsk = %v", result.PeopleAlsoAsk)
		}
		for _, q := range result.PeopleAlsoAsk {
			if !want[q] {
				t.Errorf("unexpected PAA question %q", q)
			}
		}
	})
}

// TestExtractEdgeCases tests degenerate inputs.
func TestExtractEdgeCases(t *testing.T) {
	t.Parallel()

	t.Run("empty document yields empty result", func(t *testing.T) {
		t.Parallel()

		result, err := Extract("<html><body></body></html>", "cat", 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(result.Organic) != 0 || result.SkippedItems != 0 {
			t.Errorf("got %+v, want empty result", result)
		}
		if result.Keyword != "cat" || result.Page != 2 {
			t.Errorf("keyword/page not carried through: %+v", result)
		}
	})

	t.Run("block missing title is skipped", func(t *testing.T) {
		t.Parallel()

		html := `<div class="tF2Cxc"><a href="https://x.example/p"></a></div>`
		result, err := Extract(html, "cat", 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(result.Organic) != 0 {
			t.Errorf("got %d results, want 0", len(result.Organic))
		}
		if result.SkippedItems != 1 {
			t.Errorf("SkippedItems = %d, want 1", result.SkippedItems)
		}
	})

	t.Run("truncated markup does not abort", func(t *testing.T) {
		t.Parallel()

		html := `<div class="tF2Cxc"><a href="https://x.example/p"><h3>Ti`
		result, err := Extract(html, "cat", 1)
		if err != nil {
			t.Fatalf("tolerant parser returned error: %v", err)
		}
		if len(result.Organic) != 1 {
			t.Errorf("got %d results, want 1 (html parser repairs truncation)", len(result.Organic))
		}
	})
}
