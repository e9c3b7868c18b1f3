// Package model defines the core data structures used throughout the harvester.
//
// This package contains the following main types:
//   - FetchTask: A unit of work for the scheduler (one SERP page or one suggestion query)
//   - SerpResult: Structured data extracted from a single search results page
//   - KeywordNode: A discovered keyword in the expansion tree
//   - RunMetadata: Provenance attached to a completed harvest run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (scheduler, extractor, expander, export) need
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for export and
// database storage.
package model
