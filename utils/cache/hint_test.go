package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryHintCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryHintCache()

	if _, ok := c.GetBool(ctx, "missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}

	c.SetBool(ctx, "empty", true, time.Minute)
	value, ok := c.GetBool(ctx, "empty")
	if !ok || !value {
		t.Fatalf("expected (true, true), got (%v, %v)", value, ok)
	}

	c.SetBool(ctx, "empty", false, time.Minute)
	value, ok = c.GetBool(ctx, "empty")
	if !ok || value {
		t.Fatalf("expected (false, true), got (%v, %v)", value, ok)
	}

	c.Invalidate(ctx, "empty")
	if _, ok := c.GetBool(ctx, "empty"); ok {
		t.Fatalf("expected miss after invalidation")
	}
}

func TestMemoryHintCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryHintCache()

	c.SetBool(ctx, "empty", true, 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.GetBool(ctx, "empty"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func newTestRedisHintCache(t *testing.T) (*RedisHintCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisHintCache(NewRedisCacheFromClient(client)), mr
}

func TestRedisHintCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedisHintCache(t)

	if _, ok := c.GetBool(ctx, "missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}

	c.SetBool(ctx, "empty", true, time.Minute)
	value, ok := c.GetBool(ctx, "empty")
	if !ok || !value {
		t.Fatalf("expected (true, true), got (%v, %v)", value, ok)
	}

	c.Invalidate(ctx, "empty")
	if _, ok := c.GetBool(ctx, "empty"); ok {
		t.Fatalf("expected miss after invalidation")
	}
}

func TestRedisHintCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisHintCache(t)

	c.SetBool(ctx, "empty", true, 30*time.Second)
	mr.FastForward(time.Minute)

	if _, ok := c.GetBool(ctx, "empty"); ok {
		t.Fatalf("expected expired key to miss")
	}
}

func TestRedisHintCacheDegradesOnBackendFailure(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisHintCache(t)

	c.SetBool(ctx, "empty", true, time.Minute)
	mr.Close()

	// a dead backend is a miss, never an error the caller sees
	if _, ok := c.GetBool(ctx, "empty"); ok {
		t.Fatalf("expected miss when backend is down")
	}
	c.SetBool(ctx, "empty", false, time.Minute)
	c.Invalidate(ctx, "empty")
}

func TestRedisHintCacheIgnoresCorruptValue(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisHintCache(t)

	mr.Set("empty", "not-a-bool")
	if _, ok := c.GetBool(ctx, "empty"); ok {
		t.Fatalf("expected unparseable value to read as a miss")
	}
}
