package model

import "testing"

// TestDomainOf tests hostname extraction from result URLs.
func TestDomainOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain url", input: "https://example.com/page", want: "example.com"},
		{name: "lowercases host", input: "https://Example.COM/Page", want: "example.com"},
		{name: "with port", input: "http://example.com:8080/x", want: "example.com"},
		{name: "subdomain", input: "https://shop.example.co.uk/p?q=1", want: "shop.example.co.uk"},
		{name: "unparseable", input: "http://%zz", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := DomainOf(tt.input); got != tt.want {
				t.Errorf("DomainOf(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSerpResultSortOrganic tests read-time position ordering.
func TestSerpResultSortOrganic(t *testing.T) {
	t.Parallel()

	result := &SerpResult{
		Organic: []OrganicResult{
			{Position: 3, URL: "https://c.example"},
			{Position: 1, URL: "https://a.example"},
			{Position: 2, URL: "https://b.example"},
		},
	}

	result.SortOrganic()

	for i, r := range result.Organic {
		if r.Position != i+1 {
			t.Fatalf("Organic[%d].Position = %d, want %d", i, r.Position, i+1)
		}
	}
}
