package httpx

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Sentinel body-framing errors. Each is also reachable via errors.Is on
// the *Error these readers return, since Wrap keeps it as the Cause.
var (
	ErrBodyTooLarge   = errors.New("httpx: body too large")
	ErrBadChunk       = errors.New("httpx: invalid chunk encoding")
	ErrLengthMismatch = errors.New("httpx: content-length mismatch")
)

// isChunked reports whether te names "chunked" as (one of) its coding(s),
// matching RFC 7230 §3.3.1's comma-separated list grammar case-
// insensitively — "chunked", "gzip, chunked", "  Chunked " all count.
func isChunked(te string) bool {
	for _, coding := range strings.Split(te, ",") {
		if strings.EqualFold(strings.TrimSpace(coding), "chunked") {
			return true
		}
	}
	return false
}

// NewBodyReader chooses the appropriate body-framing reader based on
// headers, per spec: Transfer-Encoding: chunked takes precedence over
// Content-Length, which takes precedence over read-until-close.
//
// It returns an io.ReadCloser representing the body stream and the
// expected Content-Length (if known; otherwise -1).
func NewBodyReader(ctx context.Context, h Header, r io.Reader, maxSize int64) (io.ReadCloser, int64, error) {
	if isChunked(h.Get("Transfer-Encoding")) {
		return newChunkedReader(ctx, r, maxSize), -1, nil
	}

	if cl := h.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return nil, 0, Wrap(KindParseInt, "parse Content-Length", ErrLengthMismatch)
		}
		if maxSize > 0 && n > maxSize {
			return nil, 0, Wrap(KindOther, "new body reader", ErrBodyTooLarge)
		}
		return newFixedReader(ctx, r, n, maxSize), n, nil
	}

	return newCloseReader(ctx, r, maxSize), -1, nil
}

// -----------------------------------------------------------------------------
// fixedReader (Content-Length)
// -----------------------------------------------------------------------------

type fixedReader struct {
	ctx       context.Context
	r         io.Reader
	n         int64 // remaining bytes (Content-Length)
	limit     int64 // global body cap
	readTotal int64
}

func newFixedReader(ctx context.Context, r io.Reader, n, limit int64) io.ReadCloser {
	return &fixedReader{ctx: ctx, r: r, n: n, limit: limit}
}

func (f *fixedReader) Read(p []byte) (int, error) {
	select {
	case <-f.ctx.Done():
		return 0, f.ctx.Err()
	default:
	}

	if f.n <= 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > f.n {
		p = p[:f.n]
	}

	n, err := f.r.Read(p)
	f.n -= int64(n)
	f.readTotal += int64(n)

	if f.limit > 0 && f.readTotal > f.limit {
		return n, Wrap(KindOther, "read body", ErrBodyTooLarge)
	}

	if err == io.EOF && f.n > 0 {
		return n, Wrap(KindUnexpectedEOF, "read body", ErrLengthMismatch)
	}

	if f.n == 0 {
		return n, io.EOF
	}

	return n, err
}

func (f *fixedReader) Close() error { return nil }

// -----------------------------------------------------------------------------
// closeReader (no length → read-until-close)
// -----------------------------------------------------------------------------

type closeReader struct {
	ctx       context.Context
	r         io.Reader
	limit     int64
	readTotal int64
}

func newCloseReader(ctx context.Context, r io.Reader, limit int64) io.ReadCloser {
	return &closeReader{ctx: ctx, r: r, limit: limit}
}

func (c *closeReader) Read(p []byte) (int, error) {
	select {
	case <-c.ctx.Done():
		return 0, c.ctx.Err()
	default:
	}

	if c.limit > 0 {
		remaining := c.limit - c.readTotal
		if remaining <= 0 {
			return 0, io.EOF
		}
		if int64(len(p)) > remaining {
			p = p[:remaining]
		}
	}

	n, err := c.r.Read(p)
	c.readTotal += int64(n)

	if c.limit > 0 && c.readTotal > c.limit {
		return n, Wrap(KindOther, "read body", ErrBodyTooLarge)
	}

	return n, err
}

func (c *closeReader) Close() error { return nil }
