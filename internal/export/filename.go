package export

import (
	"fmt"
	"strings"
	"time"
)

// maxFilenameStem bounds the keyword-derived part of generated
// filenames.
const maxFilenameStem = 60

// SanitizeFilename turns arbitrary keyword text into a safe filename
// fragment: lowercased, runs of non-alphanumerics collapsed to single
// underscores, trimmed, and length-bounded.
func SanitizeFilename(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if len(out) > maxFilenameStem {
		out = strings.Trim(out[:maxFilenameStem], "_")
	}
	if out == "" {
		out = "export"
	}
	return out
}

// DefaultFileName builds a timestamped export filename like
// "serp_best_coffee_20250601_120000.json".
func DefaultFileName(prefix, seed, format string, t time.Time) string {
	stamp := t.Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", prefix, SanitizeFilename(seed), stamp, format)
}
