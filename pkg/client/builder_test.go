package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adrg/httpio/internal/httpx"
)

func TestBuilderFillsDefaultHeaders(t *testing.T) {
	req := NewBuilder(httpx.MethodGet, "example.com", "/widgets").Build()

	assert.Equal(t, "example.com", req.Header.Get("Host"))
	assert.Equal(t, userAgent, req.Header.Get("User-Agent"))
	assert.Equal(t, "*/*", req.Header.Get("Accept"))
	assert.Equal(t, httpx.MethodGet, req.Method)
	assert.Equal(t, "/widgets", req.RequestURI)
	assert.Equal(t, httpx.Version11, req.Version)
	assert.Equal(t, int64(-1), req.ContentLength)
	assert.Nil(t, req.Body)
}

func TestBuilderRespectsExplicitHeaders(t *testing.T) {
	req := NewBuilder(httpx.MethodGet, "example.com", "/widgets").
		Header("Host", "override.example").
		Header("Accept", "application/json").
		Build()

	assert.Equal(t, "override.example", req.Header.Get("Host"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestBuilderBodySetsContentLength(t *testing.T) {
	req := NewBuilder(httpx.MethodPut, "example.com", "/widgets").
		Body([]byte("hello")).
		Build()

	assert.Equal(t, "5", req.Header.Get("Content-Length"))
	assert.Equal(t, int64(5), req.ContentLength)
	assert.NotNil(t, req.Body)
}
