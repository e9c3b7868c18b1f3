// Package main provides the entry point for the serpharvest CLI.
//
// serpharvest scrapes Google search result pages and recursively
// expands seed keywords through the autocomplete suggestion API.
//
// Usage:
//
//	serpharvest scrape "best coffee"
//	serpharvest expand --depth 2 "best coffee"
//
// See --help for all available options.
package main

// main is the entry point for serpharvest.
func main() {
	Execute()
}
