// Package suggest builds autocomplete queries and parses their responses.
//
// The suggestion endpoint returns a JSON array in the shape
//
//	["query", ["suggestion", ...], [...], ..., {"google:suggestrelevance": [601, ...]}]
//
// with relevance weights in a trailing metadata object. Responses that do
// not match this shape are treated as "no suggestions", never as errors:
// the endpoint serves inconsistent content routinely and an empty result
// just prunes one expansion branch.
package suggest

import (
	"encoding/json"
	"net/url"
)

// DefaultEndpoint is the autocomplete completion endpoint.
const DefaultEndpoint = "https://suggestqueries.google.com/complete/search"

// Suggestion is one ranked keyword completion.
type Suggestion struct {
	// Keyword is the suggested completion text.
	Keyword string

	// Relevance is the endpoint's rank weight for the suggestion.
	// Zero when the response carries no relevance metadata.
	Relevance int
}

// Client builds suggestion query URLs for a fixed language and country.
type Client struct {
	endpoint string
	language string
	country  string
}

// NewClient creates a suggestion client. An empty endpoint uses
// DefaultEndpoint.
func NewClient(endpoint, language, country string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		language: language,
		country:  country,
	}
}

// BuildURL returns the completion URL for a prefix query.
// client=chrome selects the response variant that includes relevance
// metadata.
func (c *Client) BuildURL(prefix string) string {
	params := url.Values{}
	params.Set("client", "chrome")
	params.Set("hl", c.language)
	params.Set("gl", c.country)
	params.Set("q", prefix)
	return c.endpoint + "?" + params.Encode()
}

// Parse extracts ranked suggestions from a raw response body, most
// relevant first as served. Malformed or empty responses yield an empty
// slice and no error.
func (c *Client) Parse(raw []byte) []Suggestion {
	var payload []json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload) < 2 {
		return nil
	}

	var keywords []string
	if err := json.Unmarshal(payload[1], &keywords); err != nil {
		return nil
	}

	// Relevance lives in the trailing metadata object when present.
	var relevance []int
	if len(payload) > 4 {
		var meta struct {
			Relevance []int `json:"google:suggestrelevance"`
		}
		if err := json.Unmarshal(payload[4], &meta); err == nil {
			relevance = meta.Relevance
		}
	}

	suggestions := make([]Suggestion, 0, len(keywords))
	for i, kw := range keywords {
		s := Suggestion{Keyword: kw}
		if i < len(relevance) {
			s.Relevance = relevance[i]
		}
		suggestions = append(suggestions, s)
	}
	return suggestions
}
