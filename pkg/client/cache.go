package client

import (
	"go.uber.org/zap"

	"github.com/adrg/httpio/pkg/transport"
)

// entry pairs a cached connection with the id used to correlate log
// lines across the lifetime of that connection.
type entry struct {
	stream        transport.Stream
	correlationID string
}

// Cache keeps at most one open connection per destination, the way the
// original crate's client held a single socket per HttpClient instance
// widened to multiple destinations. It is not safe for concurrent use —
// exactly like http_io's client, it assumes a single owner drives the
// request/response cycle serially. There is no automatic eviction: a
// connection stays cached until the caller explicitly evicts it (the
// peer closed it, a write failed) or the whole Cache is discarded.
type Cache[D comparable] struct {
	dialer  transport.Dialer
	entries map[D]*entry
	log     *zap.Logger
}

// NewCache returns an empty connection cache that dials new connections
// with dialer.
func NewCache[D comparable](dialer transport.Dialer, log *zap.Logger) *Cache[D] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache[D]{
		dialer:  dialer,
		entries: make(map[D]*entry),
		log:     log,
	}
}

// Get returns the cached stream for key. If none exists yet it dials
// dest with the cache's dialer and caches the new stream under an id
// from newConnID, which is used only in log fields.
func (c *Cache[D]) Get(key D, dest transport.Destination, newConnID func() string) (transport.Stream, error) {
	if e, ok := c.entries[key]; ok {
		c.log.Debug("connection cache hit", zap.String("destination", dest.String()), zap.String("connection_id", e.correlationID))
		return e.stream, nil
	}

	stream, err := c.dialer.Dial(dest)
	if err != nil {
		c.log.Debug("connection cache dial failed", zap.String("destination", dest.String()), zap.Error(err))
		return nil, err
	}

	id := newConnID()
	c.entries[key] = &entry{stream: stream, correlationID: id}
	c.log.Debug("connection cache miss, dialed", zap.String("destination", dest.String()), zap.String("connection_id", id))
	return stream, nil
}

// Evict closes and removes the cached connection for key, if any. The
// caller must call this after a stream read/write error — the cache
// never probes liveness itself.
func (c *Cache[D]) Evict(key D) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	_ = e.stream.Close()
	delete(c.entries, key)
}

// Close evicts every cached connection.
func (c *Cache[D]) Close() {
	for key := range c.entries {
		c.Evict(key)
	}
}

// Len reports how many connections are currently cached.
func (c *Cache[D]) Len() int {
	return len(c.entries)
}
