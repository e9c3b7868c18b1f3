package suggest

import (
	"net/url"
	"testing"
)

// TestBuildURL tests completion URL construction.
func TestBuildURL(t *testing.T) {
	t.Parallel()

	c := NewClient("", "en", "us")
	raw := c.BuildURL("cat a")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}

	q := u.Query()
	if q.Get("client") != "chrome" {
		t.Errorf("client = %q, want chrome", q.Get("client"))
	}
	if q.Get("hl") != "en" || q.Get("gl") != "us" {
		t.Errorf("hl/gl = %q/%q", q.Get("hl"), q.Get("gl"))
	}
	if q.Get("q") != "cat a" {
		t.Errorf("q = %q, want %q", q.Get("q"), "cat a")
	}
}

// TestParse tests suggestion response parsing.
func TestParse(t *testing.T) {
	t.Parallel()

	c := NewClient("", "en", "us")

	tests := []struct {
		name string
		raw  string
		want []Suggestion
	}{
		{
			name: "full response with relevance",
			raw:  `["cat a",["cat anatomy","cat adoption"],[],[],{"google:suggestrelevance":[601,600]}]`,
			want: []Suggestion{
				{Keyword: "cat anatomy", Relevance: 601},
				{Keyword: "cat adoption", Relevance: 600},
			},
		},
		{
			name: "missing relevance metadata",
			raw:  `["cat a",["cat anatomy"]]`,
			want: []Suggestion{{Keyword: "cat anatomy"}},
		},
		{
			name: "shorter relevance list than suggestions",
			raw:  `["q",["a","b"],[],[],{"google:suggestrelevance":[500]}]`,
			want: []Suggestion{{Keyword: "a", Relevance: 500}, {Keyword: "b"}},
		},
		{
			name: "empty suggestion list",
			raw:  `["zzzz",[]]`,
			want: nil,
		},
		{
			name: "malformed json",
			raw:  `<!DOCTYPE html><html>blocked</html>`,
			want: nil,
		},
		{
			name: "wrong shape",
			raw:  `{"suggestions":["a"]}`,
			want: nil,
		},
		{
			name: "too short array",
			raw:  `["query"]`,
			want: nil,
		},
		{
			name: "non-string suggestions",
			raw:  `["q",[1,2,3]]`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := c.Parse([]byte(tt.raw))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d suggestions, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("suggestion[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
