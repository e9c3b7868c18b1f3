package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeeds is returned when no seed keywords are provided.
	ErrNoSeeds = errors.New("no seed keywords: pass keywords as arguments or use --list")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid request timeout: must be positive")

	// ErrInvalidConcurrency is returned when max concurrency is below one.
	// At least one worker is required to drain the task queue.
	ErrInvalidConcurrency = errors.New("invalid max concurrency: must be at least 1")

	// ErrInvalidDelayRange is returned when the delay bounds are negative
	// or inverted (max below min).
	ErrInvalidDelayRange = errors.New("invalid delay range: require 0 <= min-delay <= max-delay")

	// ErrInvalidDepth is returned when the expansion depth is negative.
	ErrInvalidDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidPageCount is returned when pages per keyword is below one.
	ErrInvalidPageCount = errors.New("invalid pages per keyword: must be at least 1")

	// ErrInvalidRetries is returned when the retry budget is negative.
	ErrInvalidRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidExportFormat is returned for unknown export formats.
	ErrInvalidExportFormat = errors.New("invalid export format: must be one of json, csv, jsonl, md, xlsx")

	// ErrUnknownModifier is returned for unrecognized modifier classes.
	ErrUnknownModifier = errors.New("unknown modifier: must be one of alphabet, questions, prepositions")

	// ErrInvalidLanguage is returned when the language is not a valid
	// ISO 639 / BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language code")

	// ErrInvalidCountry is returned when the country is not a two-letter
	// ISO 3166 code.
	ErrInvalidCountry = errors.New("invalid country code: must be a two-letter ISO 3166 code")

	// ErrInvalidProxyURL is returned when a proxy URL has an unsupported
	// scheme or cannot be parsed.
	ErrInvalidProxyURL = errors.New("invalid proxy URL: must be http, https or socks5")
)
