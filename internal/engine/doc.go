// Package engine wires configuration into a runnable harvest: proxy
// pool, rate limiter, fetchers, scheduler, and collectors. It owns the
// two top-level flows, scraping result pages and expanding keywords.
package engine
