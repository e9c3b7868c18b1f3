package fetcher

import (
	"context"

	"github.com/serpharvest/serpharvest/internal/model"
)

// Router dispatches tasks by purpose: suggestion lookups always go over
// plain HTTP, result pages go to the scrape fetcher (browser or HTTP,
// depending on configuration).
type Router struct {
	// HTTP serves suggest tasks.
	HTTP *HTTPFetcher

	// Scrape serves scrape tasks.
	Scrape Fetcher
}

// Fetch implements Fetcher.
func (r *Router) Fetch(ctx context.Context, task *model.FetchTask, proxyEndpoint string) (*Result, error) {
	if task.Purpose == model.PurposeSuggest {
		return r.HTTP.Fetch(ctx, task, proxyEndpoint)
	}
	return r.Scrape.Fetch(ctx, task, proxyEndpoint)
}
