package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/serpharvest/serpharvest/internal/model"
	"github.com/serpharvest/serpharvest/internal/proxy"
	"github.com/serpharvest/serpharvest/internal/suggest"
)

// maxBodyBytes caps response bodies. SERP pages and suggestion payloads
// are far smaller than this.
const maxBodyBytes = 8 << 20

// HTTPFetcher retrieves pages with plain HTTP requests. Suggest tasks
// always go through it; scrape tasks use it when the browser fetcher is
// disabled.
type HTTPFetcher struct {
	// Suggest builds and parses suggestion API URLs.
	Suggest *suggest.Client

	// GoogleDomain is the result-page host, e.g. "google.com".
	GoogleDomain string

	// Language is the hl parameter for result pages.
	Language string

	// ResultsPerPage is the num parameter for result pages.
	ResultsPerPage int

	// Timeout is the hard per-request deadline.
	Timeout time.Duration

	// Detect flags block pages. Defaults to DefaultDetector.
	Detect DetectorFunc

	// Pool receives the outcome report for every call.
	Pool Outcomes

	userAgents *uaRotation

	mu      sync.Mutex
	clients map[string]*http.Client
}

// NewHTTPFetcher builds an HTTPFetcher with per-endpoint client caching.
// pool may be nil when proxy health tracking is not wanted.
func NewHTTPFetcher(sc *suggest.Client, googleDomain, language string, resultsPerPage int, timeout time.Duration, userAgents []string, pool Outcomes) *HTTPFetcher {
	if pool == nil {
		pool = nopOutcomes{}
	}
	return &HTTPFetcher{
		Suggest:        sc,
		GoogleDomain:   googleDomain,
		Language:       language,
		ResultsPerPage: resultsPerPage,
		Timeout:        timeout,
		Detect:         DefaultDetector,
		Pool:           pool,
		userAgents:     newUARotation(userAgents),
		clients:        make(map[string]*http.Client),
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, task *model.FetchTask, proxyEndpoint string) (*Result, error) {
	targetURL, err := f.targetURL(task)
	if err != nil {
		return nil, err
	}

	client, err := f.client(proxyEndpoint)
	if err != nil {
		f.Pool.Report(proxyEndpoint, false)
		return nil, &FetchError{Kind: KindNetwork, URL: targetURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		f.Pool.Report(proxyEndpoint, false)
		return nil, &FetchError{Kind: KindNetwork, URL: targetURL, Err: err}
	}
	if ua := f.userAgents.pick(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	req.Header.Set("Accept-Language", acceptLanguage(f.Language))

	resp, err := client.Do(req)
	if err != nil {
		f.Pool.Report(proxyEndpoint, false)
		return nil, classifyTransport(targetURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		f.Pool.Report(proxyEndpoint, false)
		return nil, classifyTransport(targetURL, err)
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	detect := f.Detect
	if detect == nil {
		detect = DefaultDetector
	}
	if resp.StatusCode == http.StatusTooManyRequests || detect(body, finalURL) {
		f.Pool.Quarantine(proxyEndpoint)
		return nil, &FetchError{Kind: KindBlocked, URL: targetURL, Err: fmt.Errorf("challenge page (status %d)", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		f.Pool.Report(proxyEndpoint, false)
		return nil, &FetchError{Kind: KindNetwork, URL: targetURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	f.Pool.Report(proxyEndpoint, true)
	return &Result{Body: body, FinalURL: finalURL, StatusCode: resp.StatusCode}, nil
}

// targetURL builds the fetch URL for a task's purpose.
func (f *HTTPFetcher) targetURL(task *model.FetchTask) (string, error) {
	switch task.Purpose {
	case model.PurposeSuggest:
		if f.Suggest == nil {
			return "", errors.New("fetcher: suggest client not configured")
		}
		return f.Suggest.BuildURL(task.Keyword), nil
	case model.PurposeScrape:
		return SearchURL(f.GoogleDomain, task.Keyword, f.Language, task.Page, f.ResultsPerPage), nil
	default:
		return "", fmt.Errorf("fetcher: unknown task purpose %q", task.Purpose)
	}
}

// client returns the cached HTTP client for an endpoint, building one on
// first use. proxy.Direct maps to a plain transport.
func (f *HTTPFetcher) client(endpoint string) (*http.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[endpoint]; ok {
		return c, nil
	}
	c, err := proxy.NewClient(endpoint, f.Timeout)
	if err != nil {
		return nil, err
	}
	f.clients[endpoint] = c
	return c, nil
}

// acceptLanguage builds an Accept-Language header from the hl code.
func acceptLanguage(lang string) string {
	if lang == "" || lang == "en" {
		return "en-US,en;q=0.9"
	}
	return fmt.Sprintf("%s,en;q=0.8", lang)
}
