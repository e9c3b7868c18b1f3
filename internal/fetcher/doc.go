// Package fetcher retrieves pages and suggestion payloads over rotating
// proxies. It owns the error taxonomy the scheduler's retry policy is
// built on, and it is the only layer that reports request outcomes back
// to the proxy pool.
package fetcher
