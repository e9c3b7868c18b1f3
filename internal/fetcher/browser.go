package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/serpharvest/serpharvest/internal/model"
	"github.com/serpharvest/serpharvest/internal/proxy"
)

// BrowserFetcher renders result pages in headless Chrome so that
// JS-populated blocks (related searches, People Also Ask) are present in
// the HTML. One browser process is launched per proxy endpoint because
// Chrome's proxy setting is process-wide.
type BrowserFetcher struct {
	// GoogleDomain is the result-page host, e.g. "google.com".
	GoogleDomain string

	// Language is the hl parameter for result pages.
	Language string

	// ResultsPerPage is the num parameter for result pages.
	ResultsPerPage int

	// Timeout is the hard per-page deadline.
	Timeout time.Duration

	// Headless toggles headless Chrome. Disable to watch what the
	// scraper sees when debugging selectors.
	Headless bool

	// Detect flags block pages. Defaults to DefaultDetector.
	Detect DetectorFunc

	// Pool receives the outcome report for every call.
	Pool Outcomes

	userAgents *uaRotation

	mu       sync.Mutex
	browsers map[string]*rod.Browser
}

// NewBrowserFetcher builds a BrowserFetcher. Browsers launch lazily on
// the first fetch through each proxy endpoint.
func NewBrowserFetcher(googleDomain, language string, resultsPerPage int, timeout time.Duration, headless bool, userAgents []string, pool Outcomes) *BrowserFetcher {
	if pool == nil {
		pool = nopOutcomes{}
	}
	return &BrowserFetcher{
		GoogleDomain:   googleDomain,
		Language:       language,
		ResultsPerPage: resultsPerPage,
		Timeout:        timeout,
		Headless:       headless,
		Detect:         DefaultDetector,
		Pool:           pool,
		userAgents:     newUARotation(userAgents),
		browsers:       make(map[string]*rod.Browser),
	}
}

// Fetch implements Fetcher. Suggest tasks do not need a rendered page
// and are rejected; route them to an HTTPFetcher instead.
func (f *BrowserFetcher) Fetch(ctx context.Context, task *model.FetchTask, proxyEndpoint string) (*Result, error) {
	if task.Purpose != model.PurposeScrape {
		return nil, fmt.Errorf("fetcher: browser fetcher cannot serve %q tasks", task.Purpose)
	}
	targetURL := SearchURL(f.GoogleDomain, task.Keyword, f.Language, task.Page, f.ResultsPerPage)

	browser, err := f.browser(proxyEndpoint)
	if err != nil {
		f.Pool.Report(proxyEndpoint, false)
		return nil, &FetchError{Kind: KindNetwork, URL: targetURL, Err: err}
	}

	html, finalURL, err := f.renderPage(ctx, browser, targetURL)
	if err != nil {
		f.Pool.Report(proxyEndpoint, false)
		return nil, classifyTransport(targetURL, err)
	}

	detect := f.Detect
	if detect == nil {
		detect = DefaultDetector
	}
	if detect([]byte(html), finalURL) {
		f.Pool.Quarantine(proxyEndpoint)
		return nil, &FetchError{Kind: KindBlocked, URL: targetURL, Err: fmt.Errorf("challenge page at %s", finalURL)}
	}

	f.Pool.Report(proxyEndpoint, true)
	return &Result{Body: []byte(html), FinalURL: finalURL, StatusCode: 200}, nil
}

// renderPage navigates a fresh tab to targetURL and returns the rendered
// HTML and the post-redirect URL.
func (f *BrowserFetcher) renderPage(ctx context.Context, browser *rod.Browser, targetURL string) (html, finalURL string, err error) {
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", "", err
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.Timeout)

	if ua := f.userAgents.pick(); ua != "" {
		_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua})
	}

	if err := page.Navigate(targetURL); err != nil {
		return "", "", err
	}

	// Block pages render quickly and never stabilize the way a SERP
	// does, so a stabilization failure is not fatal: extract whatever
	// rendered and let the detector and extractor judge it.
	_ = page.WaitStable(time.Second)

	finalURL = targetURL
	if info, err := page.Info(); err == nil {
		finalURL = info.URL
	}

	html, err = page.HTML()
	if err != nil {
		return "", "", err
	}
	return html, finalURL, nil
}

// browser returns the cached browser for an endpoint, launching one on
// first use.
func (f *BrowserFetcher) browser(endpoint string) (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.browsers[endpoint]; ok {
		return b, nil
	}

	l := launcher.New().
		Headless(f.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	var authUser, authPass string
	if endpoint != proxy.Direct {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, err
		}
		l = l.Proxy(u.Host)
		if u.User != nil {
			authUser = u.User.Username()
			authPass, _ = u.User.Password()
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, err
	}
	if authUser != "" {
		go b.MustHandleAuth(authUser, authPass)()
	}

	f.browsers[endpoint] = b
	return b, nil
}

// Close shuts down every launched browser.
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var firstErr error
	for endpoint, b := range f.browsers {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(f.browsers, endpoint)
	}
	return firstErr
}
