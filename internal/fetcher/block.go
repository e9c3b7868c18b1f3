package fetcher

import "strings"

// DetectorFunc decides whether a response body is a block or challenge
// page rather than real content. finalURL is the URL after redirects.
type DetectorFunc func(body []byte, finalURL string) bool

// blockMarkers are substrings that identify Google's interstitial
// challenge pages.
var blockMarkers = []string{
	"detected unusual traffic",
	"unusual traffic from your computer network",
	"our systems have detected",
	"g-recaptcha",
	"recaptcha/api",
	"id=\"captcha-form\"",
}

// DefaultDetector recognizes Google's challenge pages by their redirect
// target and a handful of body signatures.
func DefaultDetector(body []byte, finalURL string) bool {
	if strings.Contains(finalURL, "/sorry/") {
		return true
	}
	haystack := strings.ToLower(string(body))
	for _, marker := range blockMarkers {
		if strings.Contains(haystack, marker) {
			return true
		}
	}
	return false
}
