package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/serpharvest/serpharvest/internal/model"
)

// Result is the outcome of a successful fetch.
type Result struct {
	// Body is the raw response body. HTML for scrape tasks, the JSON
	// suggestion payload for suggest tasks.
	Body []byte

	// FinalURL is the URL after redirects.
	FinalURL string

	// StatusCode is the HTTP status, when the transport exposes one.
	StatusCode int
}

// Fetcher retrieves the page or payload a task points at through the
// given proxy endpoint. Implementations report the outcome to the proxy
// pool exactly once per call: success, failure, or quarantine on a
// detected block.
type Fetcher interface {
	Fetch(ctx context.Context, task *model.FetchTask, proxyEndpoint string) (*Result, error)
}

// Outcomes receives per-request proxy health reports.
// *proxy.Pool satisfies it.
type Outcomes interface {
	Report(endpoint string, success bool)
	Quarantine(endpoint string)
}

// nopOutcomes discards reports. Used when no pool is wired.
type nopOutcomes struct{}

func (nopOutcomes) Report(string, bool) {}
func (nopOutcomes) Quarantine(string)   {}

// SearchURL builds the result-page URL for a keyword.
// page is 1-based; pagination uses the start offset.
func SearchURL(googleDomain, keyword, lang string, page, resultsPerPage int) string {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("num", fmt.Sprint(resultsPerPage))
	if lang != "" {
		q.Set("hl", lang)
	}
	if page > 1 {
		q.Set("start", fmt.Sprint((page-1)*resultsPerPage))
	}
	return fmt.Sprintf("https://www.%s/search?%s", googleDomain, q.Encode())
}

// uaRotation hands out user agents round-robin.
type uaRotation struct {
	mu     sync.Mutex
	agents []string
	next   int
}

func newUARotation(agents []string) *uaRotation {
	return &uaRotation{agents: agents}
}

// pick returns the next user agent, or "" when none are configured.
func (r *uaRotation) pick() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.agents) == 0 {
		return ""
	}
	ua := r.agents[r.next%len(r.agents)]
	r.next++
	return ua
}
