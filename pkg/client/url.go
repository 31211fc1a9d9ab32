package client

import (
	"github.com/adrg/httpio/internal/httpx"
	"github.com/adrg/httpio/pkg/transport"
)

// ResolveURL parses rawURL and derives the transport.Destination to
// dial and the request-target (path plus query) to send, the "given a
// URL, derive a destination identity" step every client request starts
// from.
func ResolveURL(rawURL string) (transport.Destination, string, error) {
	u, err := httpx.ParseURL(rawURL)
	if err != nil {
		return transport.Destination{}, "", err
	}
	return destinationFromURL(u), requestTarget(u), nil
}

// destinationFromURL derives a dial destination from a parsed URL,
// defaulting the port to the scheme's well-known port when the URL
// didn't specify one.
func destinationFromURL(u *httpx.URL) transport.Destination {
	secure := u.Scheme == httpx.SchemeHTTPS
	port := u.Port
	if !u.HasPort {
		port = 80
		if secure {
			port = 443
		}
	}
	return transport.Destination{Host: u.Host, Port: port, Secure: secure}
}

// requestTarget renders the path and (if present) query of u as the
// origin-form request-target a request line carries.
func requestTarget(u *httpx.URL) string {
	target := u.Path()
	if u.HasQuery {
		target += "?" + u.RawQuery
	}
	return target
}
