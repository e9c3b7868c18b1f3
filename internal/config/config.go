package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"
)

// Default configuration values.
// These mirror conservative scraping practice: fully serial fetching with
// multi-second randomized delays keeps detection risk low by default, and
// users opt in to more aggressive settings.
const (
	// DefaultRequestTimeout is the hard timeout for a single fetch,
	// including browser rendering time for SERP pages.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultMinDelay is the lower bound of the randomized inter-request
	// delay. Values below ~2 seconds visibly increase challenge-page rates.
	DefaultMinDelay = 2 * time.Second

	// DefaultMaxDelay is the upper bound of the randomized inter-request delay.
	DefaultMaxDelay = 5 * time.Second

	// DefaultMaxConcurrency of 1 means fully serialized fetching.
	// Search engines aggressively fingerprint parallel traffic from a single
	// exit address, so concurrency is opt-in.
	DefaultMaxConcurrency = 1

	// DefaultMaxDepth limits keyword expansion to two hops from the seeds.
	DefaultMaxDepth = 2

	// DefaultMaxRetries is the per-task retry budget for recoverable failures.
	DefaultMaxRetries = 3

	// DefaultPagesPerKeyword fetches only the first result page per keyword.
	DefaultPagesPerKeyword = 1

	// DefaultResultsPerPage asks the search engine for ten organic results,
	// its own default page size.
	DefaultResultsPerPage = 10

	// DefaultMaxKeywords caps the total unique keywords collected per seed
	// during expansion. Prevents combinatorial blowup at higher depths.
	DefaultMaxKeywords = 100

	// DefaultGoogleDomain is the search engine domain to scrape.
	DefaultGoogleDomain = "google.com"

	// DefaultLanguage is the ISO 639 language code for queries.
	DefaultLanguage = "en"

	// DefaultCountry is the ISO 3166 country code for geo-targeting.
	DefaultCountry = "us"

	// DefaultBrowserType selects the browser engine for SERP rendering.
	DefaultBrowserType = "chromium"

	// AppName is the application name used for XDG directory paths.
	AppName = "serpharvest"
)

// DefaultUserAgents are the desktop browser identities rotated across
// requests when the user does not supply their own list.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Modifier identifies a keyword expansion modifier class.
type Modifier string

const (
	// ModifierAlphabet appends each letter a-z to the keyword.
	ModifierAlphabet Modifier = "alphabet"

	// ModifierQuestions prepends question words (how, what, why, ...).
	ModifierQuestions Modifier = "questions"

	// ModifierPrepositions appends prepositions (for, with, without, ...).
	ModifierPrepositions Modifier = "prepositions"
)

// Config holds all configuration options for a harvest run.
// It is populated from CLI flags and an optional YAML file, then passed
// through the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, ExpandConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Seeds is the list of seed keywords to scrape or expand.
	Seeds []string

	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// BrowserType selects the browser engine. Only "chromium" is currently
	// supported; the field exists so exports record what produced them.
	BrowserType string

	// RequestTimeout is the hard timeout for one fetch, including rendering.
	RequestTimeout time.Duration

	// MinDelay and MaxDelay bound the randomized inter-request delay.
	// Each worker draws a fresh uniform delay from [MinDelay, MaxDelay]
	// before every dispatch.
	MinDelay time.Duration
	MaxDelay time.Duration

	// MaxConcurrency is the fetch worker pool size. Must be >= 1.
	MaxConcurrency int

	// ProxyURLs lists proxy endpoints (http, https or socks5 URLs).
	// Empty means all requests go direct.
	ProxyURLs []string

	// RotateProxy enables proxy rotation. When false, all requests go
	// direct even if ProxyURLs is set; when true, each attempt is routed
	// through the healthiest non-quarantined endpoint.
	RotateProxy bool

	// Language is the ISO 639 language code (e.g. "en", "de").
	Language string

	// Country is the ISO 3166 country code (e.g. "us", "uk").
	Country string

	// MaxDepth is the keyword expansion depth limit. Seeds are depth 0.
	MaxDepth int

	// Modifiers selects the enabled expansion modifier classes.
	Modifiers []Modifier

	// PagesPerKeyword is the number of result pages to scrape per keyword.
	PagesPerKeyword int

	// ResultsPerPage is the number of organic results requested per page.
	ResultsPerPage int

	// GoogleDomain is the search engine domain (e.g. "google.com",
	// "google.de").
	GoogleDomain string

	// MaxRetries is the per-task retry budget.
	MaxRetries int

	// MaxKeywords caps unique keywords per seed during expansion.
	MaxKeywords int

	// UserAgents are rotated across requests. Empty uses DefaultUserAgents.
	UserAgents []string

	// OutputDir is where exports are written. Empty uses the XDG data dir.
	OutputDir string

	// ExportFormat selects the export encoding: json, csv, jsonl, md or xlsx.
	ExportFormat string

	// OutputName is the export filename without extension.
	// Empty generates a timestamped name.
	OutputName string

	// DBDir is the directory for the SQLite run store.
	// Empty disables persistence.
	DBDir string

	// SaveToDB indicates whether to persist run results.
	SaveToDB bool

	// Verbose enables debug-level logging.
	Verbose bool
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (delays, page counts).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Headless:        true,
		BrowserType:     DefaultBrowserType,
		RequestTimeout:  DefaultRequestTimeout,
		MinDelay:        DefaultMinDelay,
		MaxDelay:        DefaultMaxDelay,
		MaxConcurrency:  DefaultMaxConcurrency,
		Language:        DefaultLanguage,
		Country:         DefaultCountry,
		MaxDepth:        DefaultMaxDepth,
		Modifiers:       []Modifier{ModifierAlphabet, ModifierQuestions, ModifierPrepositions},
		PagesPerKeyword: DefaultPagesPerKeyword,
		ResultsPerPage:  DefaultResultsPerPage,
		GoogleDomain:    DefaultGoogleDomain,
		MaxRetries:      DefaultMaxRetries,
		MaxKeywords:     DefaultMaxKeywords,
		UserAgents:      DefaultUserAgents,
		ExportFormat:    "json",
	}
}

// XDGDataDir returns the XDG data directory for serpharvest.
// On Linux: ~/.local/share/serpharvest
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for serpharvest.
// On Linux: ~/.config/serpharvest
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It is called once after flag parsing, before any scheduling begins;
// configuration errors are the only fatal errors in a run.
//
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxConcurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return ErrInvalidDelayRange
	}
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.PagesPerKeyword < 1 {
		return ErrInvalidPageCount
	}
	if c.MaxRetries < 0 {
		return ErrInvalidRetries
	}

	switch c.ExportFormat {
	case "json", "csv", "jsonl", "md", "xlsx":
	default:
		return ErrInvalidExportFormat
	}

	for _, m := range c.Modifiers {
		switch m {
		case ModifierAlphabet, ModifierQuestions, ModifierPrepositions:
		default:
			return ErrUnknownModifier
		}
	}

	// Language must be a well-formed BCP 47 / ISO 639 tag.
	if _, err := language.Parse(c.Language); err != nil {
		return ErrInvalidLanguage
	}
	if len(c.Country) != 2 {
		return ErrInvalidCountry
	}

	for _, p := range c.ProxyURLs {
		if !ValidProxyURL(p) {
			return ErrInvalidProxyURL
		}
	}

	return nil
}
