// Package export serializes finished harvest runs. Every format writes
// the same Document shape: run metadata, scraped result pages, and
// discovered keywords.
package export
