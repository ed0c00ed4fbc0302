package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"infinite-experiment/briefing/internal/logging"
)

// MemoryStore keeps entries in process memory. Entries are dropped by a
// janitor once older than retention, which must be at least the longest TTL
// callers ask for.
type MemoryStore struct {
	cache *gocache.Cache
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(retention, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{cache: gocache.New(retention, cleanupInterval)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (Entry, bool) {
	v, found := s.cache.Get(key)
	if !found {
		return Entry{}, false
	}
	e, ok := v.(Entry)
	return e, ok
}

func (s *MemoryStore) Save(_ context.Context, key string, e Entry) {
	s.cache.SetDefault(key, e)
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}

// LRUStore bounds the number of entries, evicting the least recently used.
type LRUStore struct {
	cache *lru.Cache[string, Entry]
}

var _ Store = (*LRUStore)(nil)

func NewLRUStore(size int) (*LRUStore, error) {
	c, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU store: %w", err)
	}
	return &LRUStore{cache: c}, nil
}

func (s *LRUStore) Load(_ context.Context, key string) (Entry, bool) {
	return s.cache.Get(key)
}

func (s *LRUStore) Save(_ context.Context, key string, e Entry) {
	s.cache.Add(key, e)
}

func (s *LRUStore) Close() error {
	s.cache.Purge()
	return nil
}

// RedisStore shares entries between service instances. Redis failures are
// logged and treated as misses.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	retention time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client. Keys expire in Redis after
// retention; zero keeps them until overwritten.
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: "fpl:",
		retention: retention,
	}
}

func (s *RedisStore) Load(ctx context.Context, key string) (Entry, bool) {
	data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return Entry{}, false
	}
	if err != nil {
		logging.Warn("Redis cache: failed to get key", "key", key, "error", err.Error())
		return Entry{}, false
	}

	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		logging.Warn("Redis cache: failed to decode entry", "key", key, "error", err.Error())
		return Entry{}, false
	}
	return e, true
}

func (s *RedisStore) Save(ctx context.Context, key string, e Entry) {
	data, err := msgpack.Marshal(e)
	if err != nil {
		logging.Warn("Redis cache: failed to encode entry", "key", key, "error", err.Error())
		return
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, data, s.retention).Err(); err != nil {
		logging.Warn("Redis cache: failed to set key", "key", key, "error", err.Error())
	}
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
