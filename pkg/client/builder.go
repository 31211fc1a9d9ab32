package client

import (
	"context"
	"io"

	"github.com/adrg/httpio/internal/httpx"
	"github.com/adrg/httpio/pkg/transport"
)

// userAgent identifies this library on the wire, the way the original
// crate's client.rs hard-codes a User-Agent header (there a placeholder
// string not worth repeating here).
const userAgent = "httpio/1.0"

// Builder composes a Request with the default headers every request
// needs (Host, User-Agent, Accept), mirroring HttpClient::get's header
// setup in the original crate but generalized to any method.
type Builder struct {
	method  httpx.Method
	uri     string
	host    string
	header  httpx.Header
	body    []byte
	stream  io.Reader
	version httpx.Version
}

// NewBuilder starts a request builder for method against uri on host.
func NewBuilder(method httpx.Method, host, uri string) *Builder {
	return &Builder{
		method:  method,
		uri:     uri,
		host:    host,
		header:  httpx.Header{},
		version: httpx.Version11,
	}
}

// NewBuilderForURL parses rawURL and returns a Builder pre-populated
// with the Host and request-target derived from it, plus the
// transport.Destination the built request should be sent to — the
// URL-to-destination resolution step a client needs before it can dial
// anything.
func NewBuilderForURL(method httpx.Method, rawURL string) (*Builder, transport.Destination, error) {
	dest, target, err := ResolveURL(rawURL)
	if err != nil {
		return nil, transport.Destination{}, err
	}
	return NewBuilder(method, dest.Host, target), dest, nil
}

// Header sets a header on the outgoing request, canonicalizing the key.
func (b *Builder) Header(key, value string) *Builder {
	b.header.Set(key, value)
	return b
}

// Body sets a fixed-length request body and its Content-Length header.
// Mutually exclusive with Stream — whichever is called last wins.
func (b *Builder) Body(body []byte) *Builder {
	b.body = body
	b.stream = nil
	return b
}

// Stream sets a chunked, lazily-read request body: body is drained in
// fixed-size reads and chunk-framed as each read comes back, instead of
// being buffered in full up front the way Body's []byte is. Mutually
// exclusive with Body — whichever is called last wins.
func (b *Builder) Stream(body io.Reader) *Builder {
	b.stream = body
	b.body = nil
	return b
}

// Build assembles the final *httpx.Request, filling in Host, User-Agent,
// and Accept unless the caller already set them explicitly.
func (b *Builder) Build() *httpx.Request {
	h := b.header.Clone()
	if h.Get("Host") == "" {
		h.Set("Host", b.host)
	}
	if h.Get("User-Agent") == "" {
		h.Set("User-Agent", userAgent)
	}
	if h.Get("Accept") == "" {
		h.Set("Accept", "*/*")
	}

	contentLength := int64(-1)
	var bodyReader io.ReadCloser
	switch {
	case b.stream != nil:
		h.Set("Transfer-Encoding", "chunked")
		h.Del("Content-Length")
		bodyReader = io.NopCloser(b.stream)
	case b.body != nil:
		h.Set("Content-Length", itoa(len(b.body)))
		contentLength = int64(len(b.body))
		bodyReader = newBytesBody(b.body)
	}

	req := &httpx.Request{
		URL:           &httpx.URL{},
		Header:        h,
		Host:          b.host,
		ContentLength: contentLength,
	}
	req.Method = b.method
	req.RequestURI = b.uri
	req.Version = b.version
	if bodyReader != nil {
		req.Body = bodyReader
	}
	return req.WithContext(context.Background())
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := make([]byte, 0, 8)
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
