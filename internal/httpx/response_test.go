package httpx

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrg/httpio/internal/netx"
)

// A reader that returns provided chunks one-by-one on successive Read
// calls, giving deterministic chunk boundaries in tests.
type splitReader struct {
	chunks [][]byte
	i      int
}

func (s *splitReader) Read(p []byte) (int, error) {
	if s.i >= len(s.chunks) {
		return 0, io.EOF
	}
	ch := s.chunks[s.i]
	s.i++
	n := copy(p, ch)
	return n, nil
}

func TestWriteFixedLengthResponse(t *testing.T) {
	var buf bytes.Buffer

	resp := &Response{
		Version:    Version11,
		StatusCode: 200,
		Reason:     "OK",
		Header:     Header{},
		Body:       io.NopCloser(strings.NewReader("hello world")),
	}
	resp.Header.Set("Content-Type", "text/plain")
	resp.Header.Set("Content-Length", "11")

	require.NoError(t, WriteResponse(context.Background(), &buf, resp))

	got := buf.String()
	assert.True(t, strings.HasPrefix(got, "HTTP/1.1 200 OK\r\n"))
	// Header.Write sorts lexicographically: Content-Length before Content-Type.
	assert.Contains(t, got, "Content-Length: 11\r\nContent-Type: text/plain\r\n")
	assert.True(t, strings.HasSuffix(got, "\r\n\r\nhello world"))
}

func TestWriteChunkedResponse(t *testing.T) {
	var buf bytes.Buffer

	body := &splitReader{chunks: [][]byte{[]byte("Wiki"), []byte("pedia")}}

	resp := &Response{
		Version:    Version11,
		StatusCode: 200,
		Reason:     "OK",
		Header:     Header{},
		Body:       io.NopCloser(body),
	}
	resp.Header.Set("Transfer-Encoding", "chunked")

	require.NoError(t, WriteResponse(context.Background(), &buf, resp))

	want := "" +
		"HTTP/1.1 200 OK\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n" +
		"4\r\nWiki\r\n" +
		"5\r\npedia\r\n" +
		"0\r\n\r\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteUntilCloseResponse(t *testing.T) {
	var buf bytes.Buffer

	resp := &Response{
		Version:    Version11,
		StatusCode: 200,
		Reason:     "OK",
		Header:     Header{},
		Body:       io.NopCloser(strings.NewReader("abc")),
	}
	resp.Header.Set("Content-Type", "text/plain")

	require.NoError(t, WriteResponse(context.Background(), &buf, resp))

	wantPrefix := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\n"
	got := buf.String()
	require.True(t, strings.HasPrefix(got, wantPrefix))
	assert.Equal(t, "abc", got[len(wantPrefix):])
}

func TestContextCancelDuringWrite(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := &Response{
		StatusCode: 200,
		Reason:     "OK",
		Header:     Header{},
		Body:       io.NopCloser(strings.NewReader("should-not-write")),
	}

	err := WriteResponse(ctx, &buf, resp)
	assert.Error(t, err)
}

func TestParseResponse(t *testing.T) {
	raw := "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"
	s := netx.NewCRLFStream(bytes.NewBufferString(raw))
	resp, err := ParseResponse(s, ParseLimits{MaxLineBytes: 4096})
	require.NoError(t, err)

	assert.Equal(t, Version11, resp.Version)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "Not Found", resp.Reason)
	assert.Equal(t, "0", resp.Header.Get("Content-Length"))
}

func TestParseResponseNoReasonPhrase(t *testing.T) {
	raw := "HTTP/1.1 204\r\n\r\n"
	s := netx.NewCRLFStream(bytes.NewBufferString(raw))
	resp, err := ParseResponse(s, ParseLimits{MaxLineBytes: 4096})
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
	assert.Equal(t, "", resp.Reason)
}
