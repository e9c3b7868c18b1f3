// Package proxy manages a pool of proxy endpoints with health tracking.
//
// The pool hands out the healthiest non-quarantined endpoint for each fetch
// attempt and receives an outcome report for every attempt. Endpoints that
// fail repeatedly are quarantined for a cooldown window and re-enter the
// rotation with a neutral score once it elapses.
//
// The package also builds per-endpoint HTTP transports, supporting http,
// https and socks5 proxy URLs.
package proxy
