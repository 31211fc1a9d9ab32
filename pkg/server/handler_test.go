package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrg/httpio/internal/httpx"
)

func TestUnimplementedHandlerReturns405(t *testing.T) {
	var h UnimplementedHandler
	ctx := context.Background()
	url := &httpx.URL{}
	header := httpx.Header{}
	wantCode := httpx.NewStatus(405).Code

	resp, err := h.Get(ctx, url, header)
	require.NoError(t, err)
	assert.Equal(t, wantCode, resp.StatusCode)

	resp, err = h.Head(ctx, url, header)
	require.NoError(t, err)
	assert.Equal(t, wantCode, resp.StatusCode)

	resp, err = h.Post(ctx, url, header, nil, -1)
	require.NoError(t, err)
	assert.Equal(t, wantCode, resp.StatusCode)

	resp, err = h.Put(ctx, url, header, nil, -1)
	require.NoError(t, err)
	assert.Equal(t, wantCode, resp.StatusCode)

	resp, err = h.Delete(ctx, url, header, nil, -1)
	require.NoError(t, err)
	assert.Equal(t, wantCode, resp.StatusCode)

	resp, err = h.Trace(ctx, url, header)
	require.NoError(t, err)
	assert.Equal(t, wantCode, resp.StatusCode)

	resp, err = h.Options(ctx, url, header)
	require.NoError(t, err)
	assert.Equal(t, wantCode, resp.StatusCode)
}
