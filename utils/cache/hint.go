package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// HintCache stores short-lived boolean hints, such as the "index is empty"
// flag the query path checks before embedding. Hints are advisory; a miss or
// backend error just means the caller recomputes.
type HintCache interface {
	GetBool(ctx context.Context, key string) (value bool, ok bool)
	SetBool(ctx context.Context, key string, value bool, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
}

type memoryEntry struct {
	value     bool
	expiresAt time.Time
}

// MemoryHintCache is the default in-process hint store
type MemoryHintCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryHintCache creates an in-memory hint cache
func NewMemoryHintCache() *MemoryHintCache {
	return &MemoryHintCache{entries: make(map[string]memoryEntry)}
}

func (m *MemoryHintCache) GetBool(_ context.Context, key string) (bool, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return false, false
	}
	return entry.value, true
}

func (m *MemoryHintCache) SetBool(_ context.Context, key string, value bool, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

func (m *MemoryHintCache) Invalidate(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// RedisHintCache shares hints across instances via Redis
type RedisHintCache struct {
	redis *RedisCache
}

// NewRedisHintCache creates a Redis-backed hint cache
func NewRedisHintCache(redis *RedisCache) *RedisHintCache {
	return &RedisHintCache{redis: redis}
}

func (r *RedisHintCache) GetBool(ctx context.Context, key string) (bool, bool) {
	val, err := r.redis.Get(ctx, key)
	if err != nil {
		return false, false
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return parsed, true
}

func (r *RedisHintCache) SetBool(ctx context.Context, key string, value bool, ttl time.Duration) {
	// best effort; a failed write only costs a recompute
	_ = r.redis.Set(ctx, key, strconv.FormatBool(value), ttl)
}

func (r *RedisHintCache) Invalidate(ctx context.Context, key string) {
	_ = r.redis.Delete(ctx, key)
}
