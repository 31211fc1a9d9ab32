package httpx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// chunkState names the states of the chunked-transfer-encoding reader
// state machine: BetweenChunks (waiting for a "<hex-size>\r\n" line),
// InChunk (copying chunk data out), EndOfChunk (consuming the CRLF that
// follows chunk data), Done (the zero-size chunk has been seen).
type chunkState int

const (
	stateBetweenChunks chunkState = iota
	stateInChunk
	stateEndOfChunk
	stateDone
)

// chunkedReader decodes a Transfer-Encoding: chunked body. Trailers
// after the terminating zero-size chunk are not parsed or surfaced —
// this reader stops at Done without reading or requiring the final
// blank line, so a caller that doesn't care about trailers never pays
// for them.
type chunkedReader struct {
	ctx       context.Context
	r         *bufio.Reader
	state     chunkState
	remain    int64
	limit     int64
	readTotal int64
}

func newChunkedReader(ctx context.Context, src io.Reader, limit int64) io.ReadCloser {
	return &chunkedReader{
		ctx:   ctx,
		r:     bufio.NewReader(src),
		state: stateBetweenChunks,
		limit: limit,
	}
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	select {
	case <-c.ctx.Done():
		return 0, c.ctx.Err()
	default:
	}

	switch c.state {
	case stateDone:
		return 0, io.EOF

	case stateBetweenChunks:
		size, err := c.nextChunkSize()
		if err != nil {
			return 0, err
		}
		if size == 0 {
			c.state = stateDone
			return 0, io.EOF
		}
		c.remain = size
		c.state = stateInChunk
		return 0, nil

	case stateInChunk:
		if c.remain <= 0 {
			c.state = stateEndOfChunk
			return 0, nil
		}

		if int64(len(p)) > c.remain {
			p = p[:c.remain]
		}
		n, err := c.r.Read(p)
		c.remain -= int64(n)
		c.readTotal += int64(n)

		if c.limit > 0 && c.readTotal > c.limit {
			return n, Wrap(KindOther, "read chunked body", ErrBodyTooLarge)
		}

		if err != nil {
			if c.remain > 0 {
				return n, Wrap(KindUnexpectedEOF, "read chunk data", err)
			}
			return n, err
		}
		if c.remain == 0 {
			c.state = stateEndOfChunk
		}
		return n, nil

	case stateEndOfChunk:
		line, err := c.r.ReadString('\n')
		if err != nil {
			return 0, Wrap(KindUnexpectedEOF, "read chunk terminator", err)
		}
		if line != "\r\n" {
			return 0, Wrap(KindParseError, "read chunk terminator", ErrBadChunk)
		}
		c.state = stateBetweenChunks
		return 0, nil

	default:
		return 0, fmt.Errorf("httpx: invalid chunk reader state %d", c.state)
	}
}

func (c *chunkedReader) Close() error { return nil }

// nextChunkSize parses "<hex-size>[;ext]\r\n".
func (c *chunkedReader) nextChunkSize() (int64, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		return 0, Wrap(KindUnexpectedEOF, "read chunk size", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, Wrap(KindParseError, "read chunk size", ErrBadChunk)
	}

	if semi := strings.IndexByte(line, ';'); semi >= 0 {
		line = line[:semi]
	}

	size, err := strconv.ParseInt(line, 16, 64)
	if err != nil || size < 0 {
		return 0, Wrap(KindParseError, "read chunk size", ErrBadChunk)
	}
	return size, nil
}

// ChunkedWriter encodes writes as chunked transfer-encoding, emitting
// one chunk per Write call and the terminating zero-size chunk on
// Finish.
type ChunkedWriter struct {
	ctx context.Context
	w   *bufio.Writer
}

// NewChunkedWriter wraps w so that each Write becomes one chunk.
func NewChunkedWriter(ctx context.Context, w *bufio.Writer) *ChunkedWriter {
	return &ChunkedWriter{ctx: ctx, w: w}
}

// Write emits one chunk for p: "<hex>\r\n<p>\r\n". A Write with
// len(p)==0 is a no-op — the final "0\r\n\r\n" is written by Finish.
func (cw *ChunkedWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	select {
	case <-cw.ctx.Done():
		return 0, cw.ctx.Err()
	default:
	}

	if _, err := cw.w.WriteString(strconv.FormatInt(int64(len(p)), 16)); err != nil {
		return 0, err
	}
	if _, err := cw.w.WriteString("\r\n"); err != nil {
		return 0, err
	}

	n, err := cw.w.Write(p)
	if err != nil {
		return n, err
	}

	if _, err := cw.w.WriteString("\r\n"); err != nil {
		return n, err
	}
	return n, nil
}

// Finish writes the terminating zero-size chunk: "0\r\n\r\n". No
// trailers are ever written, matching the reader's refusal to parse
// them.
func (cw *ChunkedWriter) Finish() error {
	select {
	case <-cw.ctx.Done():
		return cw.ctx.Err()
	default:
	}
	_, err := cw.w.WriteString("0\r\n\r\n")
	return err
}
