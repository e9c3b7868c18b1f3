package model

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

// OrganicResult is a single organic entry on a search results page.
// Immutable once extracted.
type OrganicResult struct {
	// URL is the landing page address.
	URL string `json:"url"`

	// Title is the result headline.
	Title string `json:"title"`

	// Description is the snippet text shown under the title.
	// May be empty; some results render without a snippet.
	Description string `json:"description,omitempty"`

	// Domain is the hostname extracted from URL, lower-cased.
	Domain string `json:"domain"`

	// Position is the 1-based rendering order on the page.
	// Unique within a page, strictly increasing with no gaps.
	Position int `json:"position"`
}

// DomainOf extracts the lower-cased hostname from a result URL.
// Returns an empty string for unparseable input.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// SerpResult holds everything extracted from one search results page.
//
// Design decision: Related keywords and "people also ask" questions are
// stored as slices rather than maps even though they carry set semantics;
// the extractor deduplicates them at build time and exporters want a
// stable iteration order.
type SerpResult struct {
	// Keyword is the search term this page was fetched for.
	Keyword string `json:"keyword"`

	// Page is the 1-based result page number.
	Page int `json:"page"`

	// Organic holds the organic results in page order.
	Organic []OrganicResult `json:"organic_results"`

	// RelatedKeywords holds the "related searches" strings, deduplicated
	// within the page.
	RelatedKeywords []string `json:"related_keywords,omitempty"`

	// PeopleAlsoAsk holds the PAA question strings, deduplicated within
	// the page.
	PeopleAlsoAsk []string `json:"people_also_ask,omitempty"`

	// SkippedItems counts candidate result blocks that were dropped
	// because required fields were missing. Diagnostics only.
	SkippedItems int `json:"skipped_items,omitempty"`

	// ScrapedAt is the retrieval timestamp.
	ScrapedAt time.Time `json:"scraped_at"`
}

// SortOrganic orders the organic results by position. The scheduler makes
// no ordering guarantee between completions, so consumers sort at read time.
func (s *SerpResult) SortOrganic() {
	sort.Slice(s.Organic, func(i, j int) bool {
		return s.Organic[i].Position < s.Organic[j].Position
	})
}

// TotalResults returns the number of organic results on the page.
func (s *SerpResult) TotalResults() int {
	return len(s.Organic)
}
