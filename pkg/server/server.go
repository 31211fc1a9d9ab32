// Package server implements the HTTP/1.1 server dispatch loop: accept a
// connection, deserialize one request, dispatch it to a Handler method,
// serialize the response. Grounded on the original crate's
// HttpServer/serve_one/serve_forever (server.rs), generalized from
// Get/Put to the full method set and with the 411 Length Required
// short-circuit the original never had.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/adrg/httpio/internal/httpx"
	"github.com/adrg/httpio/internal/netx"
	"github.com/adrg/httpio/pkg/transport"
)

// Server dispatches accepted connections to a Handler, one request per
// connection (no keep-alive — see SPEC_FULL.md's concurrency model).
type Server struct {
	Listener transport.Listener
	Handler  Handler
	Limits   httpx.ParseLimits
	Log      *zap.Logger
}

// New returns a Server with DefaultParseLimits and a no-op logger,
// ready for its fields to be overridden before Serve is called.
func New(listener transport.Listener, handler Handler) *Server {
	return &Server{
		Listener: listener,
		Handler:  handler,
		Limits:   httpx.DefaultParseLimits,
		Log:      zap.NewNop(),
	}
}

// Serve accepts connections in a loop and dispatches each one via
// ServeOne, logging (never terminating on) a per-connection error —
// the same "never stop the loop" contract as the original's
// serve_forever.
func (s *Server) Serve() error {
	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			return err
		}
		if err := s.ServeOne(conn); err != nil {
			s.Log.Error("request failed", zap.Error(err))
		}
	}
}

// ServeOne handles exactly one request on conn, then closes it.
func (s *Server) ServeOne(conn net.Conn) error {
	defer conn.Close()

	stream := transport.NewStream(conn)
	crlf := netx.NewCRLFStream(stream)

	ctx := context.Background()
	req, err := httpx.ParseRequestWithContext(ctx, crlf, s.Limits)
	if err != nil {
		return err
	}

	if req.Method.HasRequestBody() {
		hasChunked := false
		for _, coding := range strings.Split(req.Header.Get("Transfer-Encoding"), ",") {
			if strings.EqualFold(strings.TrimSpace(coding), "chunked") {
				hasChunked = true
			}
		}
		hasLength := req.Header.Get("Content-Length") != ""
		if !hasChunked && !hasLength {
			return writeResponse(stream, lengthRequiredResponse())
		}
	}

	var body io.Reader
	var contentLength int64 = -1
	if req.Method.HasRequestBody() {
		br, n, err := httpx.NewBodyReader(ctx, req.Header, crlf.Reader(), 0)
		if err != nil {
			return err
		}
		defer br.Close()
		body = br
		contentLength = n
	}

	resp, err := dispatch(ctx, s.Handler, req, body, contentLength)
	if err != nil {
		resp = errorResponse(err)
	}

	return writeResponse(stream, resp)
}

// ServeConcurrent accepts connections in a loop and dispatches each one
// to its own goroutine, for callers that want overlapping requests
// instead of Serve's one-at-a-time handling. Each connection still gets
// exactly one request/response cycle; only the accept loop itself
// becomes non-blocking.
func (s *Server) ServeConcurrent() error {
	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			return err
		}
		go func(c net.Conn) {
			if err := s.ServeOne(c); err != nil {
				s.Log.Error("request failed", zap.Error(err))
			}
		}(conn)
	}
}

func dispatch(ctx context.Context, h Handler, req *httpx.Request, body io.Reader, contentLength int64) (*httpx.Response, error) {
	switch req.Method {
	case httpx.MethodGet:
		return h.Get(ctx, req.URL, req.Header)
	case httpx.MethodHead:
		return h.Head(ctx, req.URL, req.Header)
	case httpx.MethodPost:
		return h.Post(ctx, req.URL, req.Header, body, contentLength)
	case httpx.MethodPut:
		return h.Put(ctx, req.URL, req.Header, body, contentLength)
	case httpx.MethodDelete:
		return h.Delete(ctx, req.URL, req.Header, body, contentLength)
	case httpx.MethodTrace:
		return h.Trace(ctx, req.URL, req.Header)
	case httpx.MethodOptions:
		return h.Options(ctx, req.URL, req.Header)
	default:
		return nil, httpx.Wrap(httpx.KindUnexpectedMethod, "dispatch", nil)
	}
}

func lengthRequiredResponse() *httpx.Response {
	return &httpx.Response{
		Version:    httpx.Version11,
		StatusCode: httpx.StatusLengthRequired.Code,
		Reason:     httpx.StatusLengthRequired.Reason,
		Header:     httpx.Header{},
	}
}

// errorResponse renders a handler error as a plain-text 500, per the
// Open Question decision to surface handler failures via Error()
// rather than leaking internals through a typed fault response — except
// a KindLengthRequired fault, which maps to 411 the same way the
// pre-dispatch Transfer-Encoding/Content-Length check does.
func errorResponse(err error) *httpx.Response {
	var herr *httpx.Error
	if errors.As(err, &herr) && herr.Kind == httpx.KindLengthRequired {
		return lengthRequiredResponse()
	}

	h := httpx.Header{}
	h.Set("Content-Type", "text/plain; charset=utf-8")
	body := err.Error()
	h.Set("Content-Length", itoa(len(body)))
	return &httpx.Response{
		Version:    httpx.Version11,
		StatusCode: httpx.StatusInternalError.Code,
		Reason:     httpx.StatusInternalError.Reason,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func writeResponse(stream transport.Stream, resp *httpx.Response) error {
	if err := resp.Write(context.Background(), stream); err != nil {
		return err
	}
	return stream.Flush()
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
