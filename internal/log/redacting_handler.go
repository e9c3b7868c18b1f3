package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// sensitiveKeys contains attribute keys that are always masked entirely.
var sensitiveKeys = map[string]bool{
	"password":            true,
	"passwd":              true,
	"secret":              true,
	"token":               true,
	"authorization":       true,
	"proxy-authorization": true,
	"api_key":             true,
	"apikey":              true,
	"api-key":             true,
	"credential":          true,
	"credentials":         true,
	"cookie":              true,
	"set-cookie":          true,
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// RedactingHandler wraps an slog.Handler and sanitizes attribute values
// before they reach the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Components only ever see a plain *slog.Logger
type RedactingHandler struct {
	handler slog.Handler
}

// NewRedactingHandler creates a RedactingHandler wrapping the given handler.
// If handler is nil, the returned handler wraps slog.Default().Handler().
func NewRedactingHandler(handler slog.Handler) *RedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactingHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it on.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added,
// sanitized first.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *RedactingHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if masked, changed := MaskURLCredentials(a.Value.String()); changed {
			return slog.String(a.Key, masked)
		}
	}

	return a
}

// MaskURLCredentials strips the userinfo component from a URL-shaped string.
// Returns the masked string and whether anything was changed. Non-URL values
// and URLs without userinfo pass through untouched.
func MaskURLCredentials(value string) (string, bool) {
	if !strings.Contains(value, "@") || !strings.Contains(value, "://") {
		return value, false
	}
	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value, false
	}
	// url.User(MaskValue) would percent-encode the asterisks on String(),
	// so splice the literal mask in after stripping the userinfo.
	u.User = nil
	stripped := u.String()
	if i := strings.Index(stripped, "://"); i >= 0 {
		return stripped[:i+3] + MaskValue + "@" + stripped[i+3:], true
	}
	return stripped, true
}

// NewLogger creates a *slog.Logger with credential redaction, writing
// text-formatted records to w. Verbose selects LevelDebug, otherwise
// only warnings and errors are emitted.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactingHandler(textHandler))
}

// NewJSONLogger is like NewLogger but emits JSON records, for structured
// log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactingHandler(jsonHandler))
}
