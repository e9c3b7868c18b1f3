// Package database persists completed harvest runs in SQLite so they
// can be listed and re-exported later without scraping again.
//
// Design decision: One database file holds every run rather than one
// file per run. Cross-run queries (history for a keyword, run listings)
// stay simple and backup is a single file copy.
package database
