package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a fetch failure. The scheduler's retry policy branches
// on the kind, not on the concrete error value.
type Kind int

const (
	// KindNetwork is a connection or DNS failure. Retryable.
	KindNetwork Kind = iota

	// KindTimeout means the hard request timeout elapsed. Retryable.
	KindTimeout

	// KindBlocked means a challenge or CAPTCHA page was detected.
	// The proxy that served it is quarantined immediately.
	KindBlocked

	// KindParse means a well-formed-looking response could not be
	// interpreted. Whole-page parse failures are retried like fetch
	// failures; single-item failures are swallowed upstream.
	KindParse

	// KindExhausted is terminal: the task consumed its retry budget.
	KindExhausted
)

// String returns the kind's name for logs and failure records.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindBlocked:
		return "blocked"
	case KindParse:
		return "parse"
	case KindExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// FetchError is a classified fetch failure.
type FetchError struct {
	// Kind is the failure class.
	Kind Kind

	// URL is the fetch target.
	URL string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error fetching %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("%s error fetching %s", e.Kind, e.URL)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain.
// Unclassified errors default to KindNetwork, the conservative retryable
// class.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindNetwork
}

// Retryable reports whether the scheduler may retry a task that failed
// with this error. Blocked errors are handled separately (quarantine plus
// one free retry); exhausted errors are terminal.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindTimeout, KindParse:
		return true
	default:
		return false
	}
}

// classifyTransport maps a transport-level error to a FetchError.
func classifyTransport(targetURL string, err error) *FetchError {
	kind := KindNetwork

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}

	return &FetchError{Kind: kind, URL: targetURL, Err: err}
}
