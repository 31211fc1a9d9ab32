// Package client implements the HTTP/1.1 client side: a request
// builder, a per-destination connection cache, and one-shot
// convenience functions, grounded on the original crate's
// HttpClient/HttpRequestBuilder split (client.rs) but widened from a
// GET-only single-socket client to the full method set over a cache
// keyed by destination.
package client

import (
	"bytes"
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adrg/httpio/internal/httpx"
	"github.com/adrg/httpio/internal/netx"
	"github.com/adrg/httpio/pkg/transport"
)

type bytesBody struct {
	*bytes.Reader
}

func newBytesBody(b []byte) io.ReadCloser {
	return bytesBody{bytes.NewReader(b)}
}

func (bytesBody) Close() error { return nil }

// Do sends req over the connection cached for key (dialing one via
// dest if none is cached yet) and returns the parsed response. The
// response body is attached but not drained — callers must close it.
func Do[D comparable](cache *Cache[D], key D, dest transport.Destination, req *httpx.Request) (*httpx.Response, error) {
	stream, err := cache.Get(key, dest, func() string { return uuid.NewString() })
	if err != nil {
		return nil, httpx.Wrap(httpx.KindIO, "dial", err)
	}

	if err := req.Write(stream); err != nil {
		cache.Evict(key)
		return nil, err
	}
	if err := stream.Flush(); err != nil {
		cache.Evict(key)
		return nil, httpx.Wrap(httpx.KindIO, "flush request", err)
	}

	crlf := netx.NewCRLFStream(stream)
	resp, err := httpx.ParseResponse(crlf, httpx.DefaultParseLimits)
	if err != nil {
		cache.Evict(key)
		return nil, err
	}

	body, _, err := httpx.NewBodyReader(context.Background(), resp.Header, crlf.Reader(), 0)
	if err != nil {
		cache.Evict(key)
		return nil, err
	}
	resp.Body = body

	return resp, nil
}

func dialerFor(dest transport.Destination) transport.Dialer {
	if dest.Secure {
		return transport.TLSDialer{}
	}
	return transport.TCPDialer{}
}

// Get performs a one-shot GET against rawURL: parse the URL, dial, send,
// read the full response body, close the connection. It requires a
// 200 OK response, matching the original crate's top-level get()
// function's strictness.
func Get(rawURL string) ([]byte, error) {
	b, dest, err := NewBuilderForURL(httpx.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}

	cache := NewCache[transport.Destination](dialerFor(dest), zap.NewNop())
	defer cache.Close()

	resp, err := Do(cache, dest, dest, b.Build())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != httpx.StatusOK.Code {
		return nil, httpx.Wrap(httpx.KindUnexpectedStatus, "get", errUnexpectedStatus(resp.StatusCode))
	}

	return io.ReadAll(resp.Body)
}

// Put performs a one-shot PUT of a fixed-length body to rawURL. Like
// Get, it requires a 200 OK response.
func Put(rawURL string, body []byte) (*httpx.Response, error) {
	b, dest, err := NewBuilderForURL(httpx.MethodPut, rawURL)
	if err != nil {
		return nil, err
	}

	cache := NewCache[transport.Destination](dialerFor(dest), zap.NewNop())
	defer cache.Close()

	resp, err := Do(cache, dest, dest, b.Body(body).Build())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != httpx.StatusOK.Code {
		resp.Body.Close()
		return nil, httpx.Wrap(httpx.KindUnexpectedStatus, "put", errUnexpectedStatus(resp.StatusCode))
	}
	return resp, nil
}

// PutStream performs a one-shot PUT of body to rawURL using chunked
// transfer-encoding: body is read lazily and framed chunk by chunk as
// it's sent, never buffered in full, the way spec.md's outgoing body
// model requires for bodies of unknown length.
func PutStream(rawURL string, body io.Reader) (*httpx.Response, error) {
	b, dest, err := NewBuilderForURL(httpx.MethodPut, rawURL)
	if err != nil {
		return nil, err
	}

	cache := NewCache[transport.Destination](dialerFor(dest), zap.NewNop())
	defer cache.Close()

	return Do(cache, dest, dest, b.Stream(body).Build())
}

type errUnexpectedStatus int

func (e errUnexpectedStatus) Error() string {
	return "unexpected status code: " + itoa(int(e))
}
