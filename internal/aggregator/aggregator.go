// Package aggregator collects per-keyword scrape results as workers
// finish them. Workers complete in arbitrary order under concurrency;
// ordering is applied at read time, not at insert time.
package aggregator

import (
	"sort"
	"sync"

	"github.com/serpharvest/serpharvest/internal/model"
)

// Collector accumulates scrape results. Safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	results []model.SerpResult
}

// New creates an empty Collector.
func New() *Collector {
	return &Collector{}
}

// Add records one completed result page.
func (c *Collector) Add(res *model.SerpResult) {
	if res == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, *res)
}

// Results returns a copy ordered by keyword, then page. Organic entries
// within each result are ordered by position.
func (c *Collector) Results() []model.SerpResult {
	c.mu.Lock()
	out := make([]model.SerpResult, len(c.results))
	copy(out, c.results)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Keyword != out[j].Keyword {
			return out[i].Keyword < out[j].Keyword
		}
		return out[i].Page < out[j].Page
	})
	for i := range out {
		out[i].SortOrganic()
	}
	return out
}

// Len returns the number of result pages collected so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// TotalOrganic returns the organic result count across all pages.
func (c *Collector) TotalOrganic() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for i := range c.results {
		n += len(c.results[i].Organic)
	}
	return n
}

// TotalSkipped returns how many malformed result blocks were dropped
// across all pages.
func (c *Collector) TotalSkipped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for i := range c.results {
		n += c.results[i].SkippedItems
	}
	return n
}
