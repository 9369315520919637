package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowRefills(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(60, 2)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("burst of two should pass")
	}
	if l.Allow("a") {
		t.Fatalf("third call should be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("keys have separate buckets")
	}

	now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Fatalf("one token should refill after a second")
	}
}

func TestReserveReportsWait(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(30, 1)
	l.now = func() time.Time { return now }
	l.Allow("k")
	if d := l.reserve("k"); d != 2*time.Second {
		t.Fatalf("expected 2s wait, got %v", d)
	}
}

func TestDisabledLimiter(t *testing.T) {
	l := New(0, 1)
	for i := 0; i < 100; i++ {
		if !l.Allow("k") {
			t.Fatalf("disabled limiter must always allow")
		}
	}
	var nilLimiter *Limiter
	if err := nilLimiter.Wait(context.Background(), "k"); err != nil {
		t.Fatalf("nil limiter wait: %v", err)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 1)
	l.now = func() time.Time { return now }
	l.Allow("k")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "k"); err == nil {
		t.Fatalf("expected context error")
	}
}
