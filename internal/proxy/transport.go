package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	xproxy "golang.org/x/net/proxy"
)

// ErrUnsupportedScheme is returned for proxy URLs the transport builder
// cannot route through.
var ErrUnsupportedScheme = errors.New("unsupported proxy scheme: must be http, https or socks5")

// NewTransport builds an http.RoundTripper that routes through the given
// endpoint. The direct sentinel yields a plain transport.
//
// Design decision: We build one transport per endpoint rather than swapping
// a shared transport's proxy function because transports cache connections
// per target; mixing exit addresses in one pool would defeat per-proxy
// health attribution.
func NewTransport(endpoint string, timeout time.Duration) (http.RoundTripper, error) {
	base := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
	}

	if endpoint == Direct {
		return base, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", endpoint, err)
	}

	switch u.Scheme {
	case "http", "https":
		base.Proxy = http.ProxyURL(u)
		return base, nil

	case "socks5":
		// SOCKS5 auth comes from the URL userinfo when present.
		// Most private proxies don't require it.
		var auth *xproxy.Auth
		if u.User != nil {
			password, _ := u.User.Password()
			auth = &xproxy.Auth{
				User:     u.User.Username(),
				Password: password,
			}
		}

		dialer, err := xproxy.SOCKS5("tcp", u.Host, auth, xproxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}

		base.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(xproxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
		return base, nil

	default:
		return nil, ErrUnsupportedScheme
	}
}

// NewClient builds an *http.Client routed through the endpoint with the
// given hard timeout covering the whole request.
func NewClient(endpoint string, timeout time.Duration) (*http.Client, error) {
	transport, err := NewTransport(endpoint, timeout)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
