package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/serpharvest/serpharvest/internal/model"
	"github.com/serpharvest/serpharvest/internal/suggest"
)

// recordingOutcomes captures proxy health reports for assertions.
type recordingOutcomes struct {
	mu          sync.Mutex
	successes   int
	failures    int
	quarantines int
}

func (r *recordingOutcomes) Report(_ string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if success {
		r.successes++
	} else {
		r.failures++
	}
}

func (r *recordingOutcomes) Quarantine(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quarantines++
}

func TestSearchURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		keyword string
		page    int
		want    []string
	}{
		{
			name:    "first page has no start offset",
			keyword: "best coffee",
			page:    1,
			want:    []string{"https://www.google.com/search?", "q=best+coffee", "num=10", "hl=en"},
		},
		{
			name:    "second page offsets by results per page",
			keyword: "best coffee",
			page:    2,
			want:    []string{"start=10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SearchURL("google.com", tt.keyword, "en", tt.page, 10)
			for _, part := range tt.want {
				if !strings.Contains(got, part) {
					t.Errorf("SearchURL() = %q, want it to contain %q", got, part)
				}
			}
		})
	}
}

func TestDefaultDetector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		finalURL string
		want     bool
	}{
		{
			name:     "normal page",
			body:     "<html><body><div class=\"tF2Cxc\"></div></body></html>",
			finalURL: "https://www.google.com/search?q=x",
			want:     false,
		},
		{
			name:     "unusual traffic body",
			body:     "Our systems have detected unusual traffic from your computer network",
			finalURL: "https://www.google.com/search?q=x",
			want:     true,
		},
		{
			name:     "sorry redirect",
			body:     "<html></html>",
			finalURL: "https://www.google.com/sorry/index?continue=x",
			want:     true,
		},
		{
			name:     "recaptcha widget",
			body:     "<div class=\"g-recaptcha\"></div>",
			finalURL: "https://www.google.com/search?q=x",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := DefaultDetector([]byte(tt.body), tt.finalURL); got != tt.want {
				t.Errorf("DefaultDetector() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindClassification(t *testing.T) {
	t.Parallel()

	t.Run("KindOf unwraps FetchError", func(t *testing.T) {
		t.Parallel()

		err := error(&FetchError{Kind: KindBlocked, URL: "https://example.com"})
		if got := KindOf(err); got != KindBlocked {
			t.Errorf("KindOf() = %v, want %v", got, KindBlocked)
		}
	})

	t.Run("unclassified errors default to network", func(t *testing.T) {
		t.Parallel()

		if got := KindOf(errors.New("boom")); got != KindNetwork {
			t.Errorf("KindOf() = %v, want %v", got, KindNetwork)
		}
	})

	t.Run("retryable kinds", func(t *testing.T) {
		t.Parallel()

		retryable := []Kind{KindNetwork, KindTimeout, KindParse}
		for _, k := range retryable {
			if !Retryable(&FetchError{Kind: k}) {
				t.Errorf("Retryable(%v) = false, want true", k)
			}
		}
		for _, k := range []Kind{KindBlocked, KindExhausted} {
			if Retryable(&FetchError{Kind: k}) {
				t.Errorf("Retryable(%v) = true, want false", k)
			}
		}
	})

	t.Run("deadline classifies as timeout", func(t *testing.T) {
		t.Parallel()

		fe := classifyTransport("https://example.com", context.DeadlineExceeded)
		if fe.Kind != KindTimeout {
			t.Errorf("classifyTransport().Kind = %v, want %v", fe.Kind, KindTimeout)
		}
	})
}

func newTestFetcher(t *testing.T, handler http.Handler) (*HTTPFetcher, *recordingOutcomes, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	outcomes := &recordingOutcomes{}
	sc := suggest.NewClient(srv.URL, "en", "us")
	f := NewHTTPFetcher(sc, "google.com", "en", 10, 5*time.Second, []string{"test-agent"}, outcomes)
	return f, outcomes, srv
}

func TestHTTPFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("success reports to pool once", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		f, outcomes, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			w.Write([]byte(`["coffee",["coffee shop"],[],[],{}]`))
		}))

		task := &model.FetchTask{Keyword: "coffee", Purpose: model.PurposeSuggest}
		res, err := f.Fetch(context.Background(), task, "")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !strings.Contains(string(res.Body), "coffee shop") {
			t.Errorf("Fetch() body = %q, want suggestion payload", res.Body)
		}
		if gotUA != "test-agent" {
			t.Errorf("User-Agent = %q, want %q", gotUA, "test-agent")
		}
		if outcomes.successes != 1 || outcomes.failures != 0 || outcomes.quarantines != 0 {
			t.Errorf("outcomes = %+v, want exactly one success", outcomes)
		}
	})

	t.Run("unusable proxy endpoint reports failure", func(t *testing.T) {
		t.Parallel()

		f, outcomes, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`["coffee",[]]`))
		}))

		task := &model.FetchTask{Keyword: "coffee", Purpose: model.PurposeSuggest}
		_, err := f.Fetch(context.Background(), task, "ftp://proxy.example:21")
		if KindOf(err) != KindNetwork {
			t.Fatalf("Fetch() error kind = %v, want %v", KindOf(err), KindNetwork)
		}
		if outcomes.failures != 1 || outcomes.successes != 0 || outcomes.quarantines != 0 {
			t.Errorf("outcomes = %+v, want exactly one failure report", outcomes)
		}
	})

	t.Run("challenge body quarantines the proxy", func(t *testing.T) {
		t.Parallel()

		f, outcomes, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("Our systems have detected unusual traffic"))
		}))

		task := &model.FetchTask{Keyword: "coffee", Purpose: model.PurposeSuggest}
		_, err := f.Fetch(context.Background(), task, "")
		if KindOf(err) != KindBlocked {
			t.Fatalf("Fetch() error kind = %v, want %v", KindOf(err), KindBlocked)
		}
		if outcomes.quarantines != 1 || outcomes.successes != 0 || outcomes.failures != 0 {
			t.Errorf("outcomes = %+v, want exactly one quarantine", outcomes)
		}
	})

	t.Run("status 429 quarantines the proxy", func(t *testing.T) {
		t.Parallel()

		f, outcomes, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))

		task := &model.FetchTask{Keyword: "coffee", Purpose: model.PurposeSuggest}
		_, err := f.Fetch(context.Background(), task, "")
		if KindOf(err) != KindBlocked {
			t.Fatalf("Fetch() error kind = %v, want %v", KindOf(err), KindBlocked)
		}
		if outcomes.quarantines != 1 {
			t.Errorf("outcomes = %+v, want exactly one quarantine", outcomes)
		}
	})

	t.Run("server error reports a failure", func(t *testing.T) {
		t.Parallel()

		f, outcomes, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		task := &model.FetchTask{Keyword: "coffee", Purpose: model.PurposeSuggest}
		_, err := f.Fetch(context.Background(), task, "")
		if KindOf(err) != KindNetwork {
			t.Fatalf("Fetch() error kind = %v, want %v", KindOf(err), KindNetwork)
		}
		if outcomes.failures != 1 || outcomes.successes != 0 {
			t.Errorf("outcomes = %+v, want exactly one failure", outcomes)
		}
	})

	t.Run("unreachable server reports a failure", func(t *testing.T) {
		t.Parallel()

		f, outcomes, srv := newTestFetcher(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()

		task := &model.FetchTask{Keyword: "coffee", Purpose: model.PurposeSuggest}
		_, err := f.Fetch(context.Background(), task, "")
		if err == nil {
			t.Fatal("Fetch() error = nil, want transport error")
		}
		if outcomes.failures != 1 {
			t.Errorf("outcomes = %+v, want exactly one failure", outcomes)
		}
	})

	t.Run("unknown purpose is rejected", func(t *testing.T) {
		t.Parallel()

		f, _, _ := newTestFetcher(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		task := &model.FetchTask{Keyword: "coffee", Purpose: model.Purpose("bogus")}
		if _, err := f.Fetch(context.Background(), task, ""); err == nil {
			t.Error("Fetch() error = nil, want unknown purpose error")
		}
	})
}
