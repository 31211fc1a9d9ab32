package httpx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/httpio/internal/netx"
)

// requestLine models the first line of an HTTP/1.x request.
type requestLine struct {
	Method     Method
	RequestURI string
	Version    Version
}

// String returns the serialized form of the request line.
func (r requestLine) String() string {
	return fmt.Sprintf("%s %s %s", r.Method, r.RequestURI, r.Version)
}

// Request represents a parsed HTTP/1.x request.
type Request struct {
	requestLine
	URL           *URL
	Header        Header
	Host          string
	ContentLength int64
	Body          io.ReadCloser
	ctx           context.Context
}

// ParseLimits controls how many bytes can be read from a request line or headers.
type ParseLimits struct {
	MaxLineBytes   int
	MaxHeaderBytes int
}

// DefaultParseLimits matches the teacher's conservative defaults: 8KB
// for the request line, 1MB for the header block.
var DefaultParseLimits = ParseLimits{MaxLineBytes: 8 << 10, MaxHeaderBytes: 1 << 20}

// ParseRequest reads the request line and headers (but not the body —
// see NewBodyReader) from s.
func ParseRequest(s *netx.CRLFStream, limits ParseLimits) (*Request, error) {
	line, err := s.ExpectNext(limits.MaxLineBytes)
	if err != nil {
		return nil, Wrap(KindUnexpectedEOF, "read request line", err)
	}

	rl, err := parseRequestLine(string(line))
	if err != nil {
		return nil, err
	}

	u, err := ParseRequestURI(rl.RequestURI)
	if err != nil {
		return nil, err
	}

	header := make(Header)
	headerBytes := 0
	for {
		hline, ok, err := s.Next(limits.MaxLineBytes)
		if err != nil {
			return nil, Wrap(KindUnexpectedEOF, "read headers", err)
		}
		if !ok {
			break
		}
		headerBytes += len(hline)
		if limits.MaxHeaderBytes > 0 && headerBytes > limits.MaxHeaderBytes {
			return nil, Wrap(KindParseError, "read headers", fmt.Errorf("header block exceeds %d bytes", limits.MaxHeaderBytes))
		}
		key, value, err := parseHeaderLine(string(hline))
		if err != nil {
			return nil, err
		}
		header.Add(key, value)
	}

	req := &Request{
		requestLine: rl,
		URL:         u,
		Header:      header,
		ctx:         context.Background(),
	}

	if host := header.Get("Host"); host != "" {
		req.Host = strings.ToLower(host)
	} else if u.Host != "" {
		req.Host = strings.ToLower(u.Host)
	}

	if cl := header.Get("Content-Length"); cl != "" {
		n, err := parseDigits(cl)
		if err != nil {
			return nil, Wrap(KindParseInt, "parse Content-Length", err)
		}
		req.ContentLength = int64(n)
	} else {
		req.ContentLength = -1
	}

	return req, nil
}

// ParseRequestWithContext is the context-aware variant of ParseRequest,
// used by the server so a handler can be cancelled mid-read.
func ParseRequestWithContext(ctx context.Context, s *netx.CRLFStream, limits ParseLimits) (*Request, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	req, err := ParseRequest(s, limits)
	if err != nil {
		return nil, err
	}
	req.ctx = ctx
	return req, nil
}

// Write serializes the request line and headers, then streams the body
// (if any) to w. A body is framed as chunked transfer-encoding when the
// Transfer-Encoding header says so — reading it lazily, chunk by chunk,
// rather than buffering it whole — or as a raw copy otherwise (a fixed
// Content-Length body, or an until-close body on a connection the
// caller is about to stop using).
func (r *Request) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s %s %s\r\n", r.Method, r.RequestURI, r.Version); err != nil {
		return Wrap(KindIO, "write request line", err)
	}
	if err := r.Header.Write(w); err != nil {
		return Wrap(KindIO, "write request headers", err)
	}
	if r.Body == nil {
		return nil
	}

	if isChunked(r.Header.Get("Transfer-Encoding")) {
		return r.writeChunkedBody(w)
	}

	if _, err := io.Copy(w, r.Body); err != nil {
		return Wrap(KindIO, "write request body", err)
	}
	return nil
}

// writeChunkedBody drains r.Body in fixed-size reads, writing each as
// its own chunk as soon as it's read instead of buffering the whole
// body up front, matching the "lazy byte-stream" outgoing body model.
func (r *Request) writeChunkedBody(w io.Writer) error {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	cw := NewChunkedWriter(r.Context(), bw)

	buf := make([]byte, 32*1024)
	for {
		n, rerr := r.Body.Read(buf)
		if n > 0 {
			if _, werr := cw.Write(buf[:n]); werr != nil {
				return Wrap(KindIO, "write chunked request body", werr)
			}
			if ferr := bw.Flush(); ferr != nil {
				return Wrap(KindIO, "flush chunked request body", ferr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return Wrap(KindIO, "read request body", rerr)
		}
	}

	if err := cw.Finish(); err != nil {
		return Wrap(KindIO, "finish chunked request body", err)
	}
	return bw.Flush()
}

// parseRequestLine parses "METHOD SP Request-URI SP HTTP/x.y".
func parseRequestLine(line string) (rl requestLine, err error) {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return rl, Wrap(KindParseError, "parse request line", fmt.Errorf("malformed request line: %q", line))
	}

	method, err := ParseMethod(parts[0])
	if err != nil {
		return rl, err
	}

	version, err := ParseVersion(parts[2])
	if err != nil {
		return rl, err
	}

	rl = requestLine{
		Method:     method,
		RequestURI: parts[1],
		Version:    version,
	}
	return rl, nil
}

// parseHeaderLine splits "Key: Value" at the first colon. The key is
// taken verbatim (whitespace before the colon is not rejected) and the
// value has surrounding whitespace trimmed. Each header must fit on one
// line: an obs-fold continuation line has no colon and is rejected.
func parseHeaderLine(line string) (key, value string, err error) {
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", "", Wrap(KindParseError, "parse header line", fmt.Errorf("missing ':' in header line: %q", line))
	}
	key = line[:colon]
	value = strings.TrimSpace(line[colon+1:])
	if key == "" {
		return "", "", Wrap(KindParseError, "parse header line", fmt.Errorf("empty header name: %q", line))
	}
	return key, value, nil
}

// Context returns the request's context.
func (r *Request) Context() context.Context {
	if r == nil || r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r with its context replaced by ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	if r == nil {
		return nil
	}
	cp := *r
	cp.ctx = ctx
	return &cp
}

// String returns a human-readable representation of the request line.
func (r *Request) String() string {
	if r == nil {
		return "<nil request>"
	}
	return r.requestLine.String()
}
