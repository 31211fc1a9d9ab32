package client

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrg/httpio/pkg/transport"
)

type fakeStream struct {
	net.Conn
	closed bool
}

func (f *fakeStream) Flush() error { return nil }
func (f *fakeStream) Close() error {
	f.closed = true
	return f.Conn.Close()
}

type fakeDialer struct {
	dials int
	fail  bool
}

func (d *fakeDialer) Dial(dest transport.Destination) (transport.Stream, error) {
	if d.fail {
		return nil, errors.New("dial failed")
	}
	d.dials++
	server, client := net.Pipe()
	go func() { server.Close() }()
	return &fakeStream{Conn: client}, nil
}

func TestCacheDialsOnceAndReusesConnection(t *testing.T) {
	dialer := &fakeDialer{}
	cache := NewCache[transport.Destination](dialer, nil)
	dest := transport.Destination{Host: "example.com", Port: 80}

	s1, err := cache.Get(dest, dest, func() string { return "id-1" })
	require.NoError(t, err)
	assert.Equal(t, 1, dialer.dials)

	s2, err := cache.Get(dest, dest, func() string { return "id-2" })
	require.NoError(t, err)
	assert.Equal(t, 1, dialer.dials)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheEvictForcesRedial(t *testing.T) {
	dialer := &fakeDialer{}
	cache := NewCache[transport.Destination](dialer, nil)
	dest := transport.Destination{Host: "example.com", Port: 80}

	_, err := cache.Get(dest, dest, func() string { return "id-1" })
	require.NoError(t, err)

	cache.Evict(dest)
	assert.Equal(t, 0, cache.Len())

	_, err = cache.Get(dest, dest, func() string { return "id-2" })
	require.NoError(t, err)
	assert.Equal(t, 2, dialer.dials)
}

func TestCacheGetPropagatesDialError(t *testing.T) {
	dialer := &fakeDialer{fail: true}
	cache := NewCache[transport.Destination](dialer, nil)
	dest := transport.Destination{Host: "example.com", Port: 80}

	_, err := cache.Get(dest, dest, func() string { return "id-1" })
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheCloseEvictsEverything(t *testing.T) {
	dialer := &fakeDialer{}
	cache := NewCache[transport.Destination](dialer, nil)
	a := transport.Destination{Host: "a.example", Port: 80}
	b := transport.Destination{Host: "b.example", Port: 80}

	_, err := cache.Get(a, a, func() string { return "id-a" })
	require.NoError(t, err)
	_, err = cache.Get(b, b, func() string { return "id-b" })
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	cache.Close()
	assert.Equal(t, 0, cache.Len())
}
