// Package netx implements the CRLF-terminated line stream that sits
// underneath the HTTP/1.1 request/response/header parsers.
package netx

import (
	"bufio"
	"errors"
	"io"
)

// ErrLineTooLong indicates that a line exceeded the configured maximum length.
var ErrLineTooLong = errors.New("crlf: line too long")

// ErrPeekBeyondCap indicates an attempt to peek beyond the internal buffer capacity.
var ErrPeekBeyondCap = errors.New("crlf: peek beyond internal capacity")

// ErrUnexpectedEnd indicates that ExpectNext found the end of the current
// block (an empty line, or EOF) where a line was required.
var ErrUnexpectedEnd = errors.New("crlf: expected another line")

// DefaultBufSize defines the buffer size used by NewCRLFStream.
const DefaultBufSize = 4096

// CRLFStream reads a sequence of CRLF- (or bare LF-) terminated lines from
// an underlying byte stream, the way request lines, status lines, and
// header fields are framed in HTTP/1.1. It distinguishes three outcomes
// for the caller: another line, the end of the current block (an empty
// line — the blank line that separates headers from body), and an
// underlying I/O error.
type CRLFStream struct {
	br      *bufio.Reader
	bufSize int
}

// NewCRLFStream wraps r with a buffered reader of DefaultBufSize.
func NewCRLFStream(r io.Reader) *CRLFStream {
	return &CRLFStream{
		br:      bufio.NewReaderSize(r, DefaultBufSize),
		bufSize: DefaultBufSize,
	}
}

// Reset allows reusing the stream with a new underlying source, so a
// single CRLFStream can be recycled across requests on a kept-alive
// connection.
func (r *CRLFStream) Reset(src io.Reader) {
	if r.br == nil {
		r.br = bufio.NewReaderSize(src, DefaultBufSize)
		r.bufSize = DefaultBufSize
		return
	}
	r.br.Reset(src)
}

// Next reads the next logical line, trimming the trailing CRLF or LF. ok
// is false (with a nil line and nil error) when the line is empty,
// signalling the end of the current block — the header/body boundary.
// err is non-nil only for a genuine I/O failure or an oversize line.
func (r *CRLFStream) Next(maxLineBytes int) (line []byte, ok bool, err error) {
	line, isPrefix, err := r.readLine(maxLineBytes)
	if err != nil {
		return nil, false, err
	}
	if isPrefix {
		return nil, false, ErrLineTooLong
	}
	if len(line) == 0 {
		return nil, false, nil
	}
	return line, true, nil
}

// ExpectNext reads the next line and fails with ErrUnexpectedEnd if the
// stream is at the end of the current block or exhausted — used where
// the grammar requires a line to be present (a status line, a request
// line) rather than allowing an empty line to terminate parsing.
func (r *CRLFStream) ExpectNext(maxLineBytes int) ([]byte, error) {
	line, ok, err := r.Next(maxLineBytes)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Join(ErrUnexpectedEnd, err)
		}
		return nil, err
	}
	if !ok {
		return nil, ErrUnexpectedEnd
	}
	return line, nil
}

// readLine reads a single logical line, trimming the trailing CRLF or LF.
//
// It enforces a maximum total line length (max). If the accumulated line
// exceeds that limit, it returns ErrLineTooLong with isPrefix set to true;
// isPrefix is false in every other case. A full internal buffer is not
// reported: reading simply continues until the newline or the limit.
func (r *CRLFStream) readLine(max int) (line []byte, isPrefix bool, err error) {
	if max <= 0 {
		return nil, false, errors.New("crlf: invalid max value")
	}

	var buf []byte
	for {
		part, perr := r.br.ReadSlice('\n')
		// enforce limit before appending large chunks
		if len(buf)+len(part) > max {
			return nil, true, ErrLineTooLong
		}
		buf = append(buf, part...)

		switch {
		case perr == nil:
			n := len(buf)
			if n > 0 && buf[n-1] == '\n' {
				n--
				if n > 0 && buf[n-1] == '\r' {
					n--
				}
			}
			return buf[:n], false, nil

		case errors.Is(perr, bufio.ErrBufferFull):
			continue

		case errors.Is(perr, io.EOF):
			if len(buf) == 0 {
				return nil, false, io.EOF
			}
			return buf, false, io.EOF

		default:
			return buf, false, perr
		}
	}
}

// Peek returns the next n bytes without advancing the reader.
//
// The returned slice is backed by the internal buffer and must not be
// modified. If n exceeds the buffer size or cannot be satisfied without
// growing it, ErrPeekBeyondCap is returned.
func (r *CRLFStream) Peek(n int) ([]byte, error) {
	if n > r.bufSize {
		return nil, ErrPeekBeyondCap
	}
	b, err := r.br.Peek(n)
	if err != nil && errors.Is(err, bufio.ErrBufferFull) {
		return nil, ErrPeekBeyondCap
	}
	return b, err
}

// Reader exposes the underlying buffered reader so callers (body framing
// in particular) can switch from line-oriented to raw byte reads once
// the header block has been consumed.
func (r *CRLFStream) Reader() *bufio.Reader {
	return r.br
}
