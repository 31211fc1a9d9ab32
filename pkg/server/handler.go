package server

import (
	"context"
	"io"

	"github.com/adrg/httpio/internal/httpx"
)

// Handler dispatches one method per request, mirroring the original
// crate's HttpRequestHandler trait (there Get/Put only) widened to the
// full method set a complete server needs. Only Post, Put and Delete
// receive the request body; Get, Head, Trace and Options receive none.
// contentLength is the Content-Length if known, or -1 for a chunked
// body.
type Handler interface {
	Get(ctx context.Context, url *httpx.URL, header httpx.Header) (*httpx.Response, error)
	Head(ctx context.Context, url *httpx.URL, header httpx.Header) (*httpx.Response, error)
	Post(ctx context.Context, url *httpx.URL, header httpx.Header, body io.Reader, contentLength int64) (*httpx.Response, error)
	Put(ctx context.Context, url *httpx.URL, header httpx.Header, body io.Reader, contentLength int64) (*httpx.Response, error)
	Delete(ctx context.Context, url *httpx.URL, header httpx.Header, body io.Reader, contentLength int64) (*httpx.Response, error)
	Trace(ctx context.Context, url *httpx.URL, header httpx.Header) (*httpx.Response, error)
	Options(ctx context.Context, url *httpx.URL, header httpx.Header) (*httpx.Response, error)
}

// UnimplementedHandler answers every unoverridden method with 405
// Method Not Allowed — a handler only needs to override the methods it
// actually serves. Embed it in a concrete handler the same "embed a
// default, override what you need" shape the teacher repo's tests use
// for minimal handlers.
type UnimplementedHandler struct{}

func methodNotAllowed() (*httpx.Response, error) {
	status := httpx.NewStatus(405)
	return &httpx.Response{
		Version:    httpx.Version11,
		StatusCode: status.Code,
		Reason:     status.Reason,
		Header:     httpx.Header{},
	}, nil
}

func (UnimplementedHandler) Get(context.Context, *httpx.URL, httpx.Header) (*httpx.Response, error) {
	return methodNotAllowed()
}

func (UnimplementedHandler) Head(context.Context, *httpx.URL, httpx.Header) (*httpx.Response, error) {
	return methodNotAllowed()
}

func (UnimplementedHandler) Post(context.Context, *httpx.URL, httpx.Header, io.Reader, int64) (*httpx.Response, error) {
	return methodNotAllowed()
}

func (UnimplementedHandler) Put(context.Context, *httpx.URL, httpx.Header, io.Reader, int64) (*httpx.Response, error) {
	return methodNotAllowed()
}

func (UnimplementedHandler) Delete(context.Context, *httpx.URL, httpx.Header, io.Reader, int64) (*httpx.Response, error) {
	return methodNotAllowed()
}

func (UnimplementedHandler) Trace(context.Context, *httpx.URL, httpx.Header) (*httpx.Response, error) {
	return methodNotAllowed()
}

func (UnimplementedHandler) Options(context.Context, *httpx.URL, httpx.Header) (*httpx.Response, error) {
	return methodNotAllowed()
}
