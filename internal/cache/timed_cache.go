// Package cache provides TimedCache, a keyed store that remembers when each
// value was written and only returns values younger than the caller's TTL.
package cache

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"infinite-experiment/briefing/internal/logging"
	"infinite-experiment/briefing/internal/metrics"
)

// Entry is a stored value together with its insertion time.
type Entry struct {
	Value      []byte    `msgpack:"v"`
	InsertedAt time.Time `msgpack:"t"`
}

// Store is the backing key/value storage of a TimedCache. Single-key reads
// and writes must be atomic; no cross-key consistency is required.
type Store interface {
	Load(ctx context.Context, key string) (Entry, bool)
	Save(ctx context.Context, key string, e Entry)
	Close() error
}

// TimedCache maps string keys to values of type V with insertion times.
// Stale entries are not evicted on read; they are superseded by the next Put.
type TimedCache[V any] struct {
	store   Store
	prefix  string
	now     func() time.Time
	metrics *metrics.MetricsRegistry
}

type Option[V any] func(*TimedCache[V])

// WithClock replaces time.Now, for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *TimedCache[V]) { c.now = now }
}

// WithMetrics counts hits and misses under the cache's key prefix.
func WithMetrics[V any](m *metrics.MetricsRegistry) Option[V] {
	return func(c *TimedCache[V]) { c.metrics = m }
}

// New creates a TimedCache. prefix namespaces keys inside a shared store.
func New[V any](store Store, prefix string, opts ...Option[V]) *TimedCache[V] {
	c := &TimedCache[V]{
		store:  store,
		prefix: prefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetFresh returns the value stored under key if it was written less than ttl
// ago.
func (c *TimedCache[V]) GetFresh(ctx context.Context, key string, ttl time.Duration) (V, bool) {
	var zero V

	e, ok := c.store.Load(ctx, c.prefix+key)
	if !ok || c.now().Sub(e.InsertedAt) >= ttl {
		c.metrics.IncCacheMiss(c.prefix)
		return zero, false
	}

	var v V
	if err := msgpack.Unmarshal(e.Value, &v); err != nil {
		logging.Warn("Cache entry could not be decoded",
			"key", c.prefix+key,
			"error", err.Error(),
		)
		c.metrics.IncCacheMiss(c.prefix)
		return zero, false
	}

	c.metrics.IncCacheHit(c.prefix)
	return v, true
}

// Put stores value under key with the current time, replacing any prior entry.
func (c *TimedCache[V]) Put(ctx context.Context, key string, value V) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		logging.Warn("Cache value could not be encoded",
			"key", c.prefix+key,
			"error", err.Error(),
		)
		return
	}
	c.store.Save(ctx, c.prefix+key, Entry{Value: data, InsertedAt: c.now()})
}

// Close releases the underlying store.
func (c *TimedCache[V]) Close() error {
	return c.store.Close()
}
