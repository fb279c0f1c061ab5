package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = toString(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = toString(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func TestKeyNamespacing(t *testing.T) {
	c := &Client{store: newFakeStore()}

	if got := c.IdempotencyKey("ingest", "evt-1"); got != "pl:idempotency:ingest:evt-1" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := c.QueryCacheKey("abc123"); got != "pl:query_cache:abc123" {
		t.Fatalf("unexpected query cache key %q", got)
	}
}

func TestGetReturnsCacheMiss(t *testing.T) {
	c := &Client{store: newFakeStore()}
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); err != ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set(ctx, "present", "value", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := c.Get(ctx, "present")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "value" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestSetNXOnlyOnce(t *testing.T) {
	c := &Client{store: newFakeStore()}
	ctx := context.Background()

	first, err := c.SetNX(ctx, "k", "1", time.Minute)
	if err != nil || !first {
		t.Fatalf("first SetNX should succeed: %v %v", first, err)
	}
	second, err := c.SetNX(ctx, "k", "2", time.Minute)
	if err != nil || second {
		t.Fatalf("second SetNX should not set: %v %v", second, err)
	}
}
