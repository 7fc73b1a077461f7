package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/storage"
)

func TestUserLimiter(t *testing.T) {
	store := storage.NewMemoryStore()
	l := NewUserLimiter(store, 3)
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "u1") {
			t.Fatalf("message %d got=blocked want=allowed", i+1)
		}
		clock = clock.Add(time.Second)
	}
	if l.Allow(ctx, "u1") {
		t.Fatalf("4th message within a minute got=allowed want=blocked")
	}
	if !l.Allow(ctx, "u2") {
		t.Fatalf("other user got=blocked want=allowed")
	}

	clock = clock.Add(time.Minute)
	if !l.Allow(ctx, "u1") {
		t.Fatalf("after window got=blocked want=allowed")
	}

	// Two hours later everything older than one hour is pruned
	clock = clock.Add(2 * time.Hour)
	l.Allow(ctx, "u1")
	var w userWindow
	if err := storage.GetJSON(ctx, store, storage.BucketRateLimits, "u1", &w); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if len(w.Timestamps) != 1 {
		t.Fatalf("timestamps after pruning got=%d want=1", len(w.Timestamps))
	}
}

func TestUserLimiter_CorruptWindowAllows(t *testing.T) {
	store := storage.NewMemoryStore()
	_ = store.Put(context.Background(), storage.BucketRateLimits, "u1", []byte("garbage"))
	l := NewUserLimiter(store, 1)
	if !l.Allow(context.Background(), "u1") {
		t.Fatalf("unreadable window got=blocked want=allowed")
	}
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Fatalf("second Wait got=nil want=context error")
	}
}
