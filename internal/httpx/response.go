package httpx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/adrg/httpio/internal/netx"
)

// Response represents an HTTP/1.x response, readable from the wire by
// Parse/ParseResponse and writable by Write/WriteResponse.
type Response struct {
	Version    Version
	StatusCode int
	Reason     string
	Header     Header
	Body       io.ReadCloser // nil for a response with no body

	ctx context.Context
}

// Status returns the response's status code and reason phrase as a Status.
func (r *Response) Status() Status {
	return Status{Code: r.StatusCode, Reason: r.Reason}
}

// ParseResponse reads a status line and headers off s. The caller is
// responsible for attaching a body reader afterward via NewBodyReader,
// the same two-step split ParseRequest uses.
func ParseResponse(s *netx.CRLFStream, limits ParseLimits) (*Response, error) {
	line, err := s.ExpectNext(limits.MaxLineBytes)
	if err != nil {
		return nil, Wrap(KindUnexpectedEOF, "read status line", err)
	}

	version, code, reason, err := parseStatusLine(string(line))
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

	return &Response{
		Version:    version,
		StatusCode: code,
		Reason:     reason,
		Header:     header,
		ctx:        context.Background(),
	}, nil
}

// parseStatusLine parses "HTTP/x.y SP status-code SP reason-phrase".
func parseStatusLine(line string) (Version, int, string, error) {
	sp := strings.IndexByte(line, ' ')
	if sp < 0 {
		return Version{}, 0, "", Wrap(KindParseError, "parse status line", fmt.Errorf("malformed status line: %q", line))
	}
	version, err := ParseVersion(line[:sp])
	if err != nil {
		return Version{}, 0, "", err
	}
	rest := strings.TrimPrefix(line[sp+1:], "")
	sp2 := strings.IndexByte(rest, ' ')
	var codeStr, reason string
	if sp2 < 0 {
		codeStr = rest
	} else {
		codeStr = rest[:sp2]
		reason = rest[sp2+1:]
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return Version{}, 0, "", Wrap(KindParseInt, "parse status code", err)
	}
	return version, code, reason, nil
}

// Write serializes the response (status line, headers, body) to w,
// selecting the transfer semantics by inspecting headers:
//   - Transfer-Encoding: chunked -> chunked body
//   - Content-Length present -> fixed-length body
//   - else -> stream until EOF (caller manages connection-close semantics)
func (r *Response) Write(ctx context.Context, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	bw := bufio.NewWriter(w)

	version := r.Version
	if version == (Version{}) {
		version = Version11
	}
	reason := r.Reason
	if reason == "" {
		reason = NewStatus(r.StatusCode).Reason
	}

	if _, err := bw.WriteString(fmt.Sprintf("%s %d %s\r\n", version, r.StatusCode, reason)); err != nil {
		return Wrap(KindIO, "write status line", err)
	}

	if err := r.Header.Write(bw); err != nil {
		return Wrap(KindIO, "write response headers", err)
	}
	if err := bw.Flush(); err != nil {
		return Wrap(KindIO, "flush response headers", err)
	}

	if r.Body == nil {
		return nil
	}

	if isChunked(r.Header.Get("Transfer-Encoding")) {
		cw := NewChunkedWriter(ctx, bw)
		if _, err := io.Copy(cw, r.Body); err != nil {
			_ = cw.Finish()
			return Wrap(KindIO, "write chunked response body", err)
		}
		if err := cw.Finish(); err != nil {
			return Wrap(KindIO, "finish chunked response body", err)
		}
		return bw.Flush()
	}

	if clStr := r.Header.Get("Content-Length"); clStr != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(clStr), 10, 64)
		if err != nil || n < 0 {
			return Wrap(KindParseInt, "parse Content-Length", ErrLengthMismatch)
		}
		if _, err := io.CopyN(bw, r.Body, n); err != nil {
			return Wrap(KindIO, "write response body", err)
		}
		return bw.Flush()
	}

	if _, err := io.Copy(bw, r.Body); err != nil {
		return Wrap(KindIO, "write response body", err)
	}
	return bw.Flush()
}

// WriteResponse is a free-function wrapper over Response.Write,
// matching the teacher's original call shape for callers that don't
// hold a *Response receiver handy.
func WriteResponse(ctx context.Context, w io.Writer, resp *Response) error {
	return resp.Write(ctx, w)
}
