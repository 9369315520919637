package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Month string  `json:"month"`
	Funds float64 `json:"funds"`
}

func newTestCache(t *testing.T, opts ...MemoryOption) *MemoryCache {
	t.Helper()
	mc := NewMemoryCache(opts...)
	t.Cleanup(func() { _ = mc.Close() })
	return mc
}

func TestMemorySetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := newTestCache(t)

	if err := mc.Set(ctx, "k", payload{Month: "2024-01", Funds: 125}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got payload
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Month != "2024-01" || got.Funds != 125 {
		t.Fatalf("unexpected %+v", got)
	}

	_ = mc.Delete(ctx, "k")
	if err := mc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	mc := newTestCache(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	_ = mc.Set(ctx, "k", 1, time.Second)
	now = now.Add(2 * time.Second)

	var v int
	if err := mc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired miss, got %v", err)
	}
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := newTestCache(t, WithMemoryMaxSize(2))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { now = now.Add(time.Millisecond); return now }

	_ = mc.Set(ctx, "a", 1, 0)
	_ = mc.Set(ctx, "b", 2, 0)
	var v int
	_ = mc.Get(ctx, "a", &v)
	_ = mc.Set(ctx, "c", 3, 0)

	if err := mc.Get(ctx, "b", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("b should have been evicted")
	}
	if err := mc.Get(ctx, "a", &v); err != nil || v != 1 {
		t.Fatalf("a should survive, got %v %v", v, err)
	}
}

func TestMemoryTryLock(t *testing.T) {
	ctx := context.Background()
	mc := newTestCache(t)

	ok, err := mc.TryLock(ctx, "lock", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock should succeed: %v %v", ok, err)
	}
	if ok, _ := mc.TryLock(ctx, "lock", time.Minute); ok {
		t.Fatalf("second lock should fail while held")
	}
	_ = mc.Unlock(ctx, "lock")
	if ok, _ := mc.TryLock(ctx, "lock", time.Minute); !ok {
		t.Fatalf("lock should be free after unlock")
	}
}
