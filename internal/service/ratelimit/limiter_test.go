package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowConsumesBurst(t *testing.T) {
	l := New()
	for i := 0; i < 2; i++ {
		if !l.Allow("k", 2, 0.001) {
			t.Fatalf("call %d within capacity denied", i)
		}
	}
	if l.Allow("k", 2, 0.001) {
		t.Fatalf("call beyond capacity allowed")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()
	if !l.Allow("k", 1, 100) {
		t.Fatalf("first call denied")
	}
	if l.Allow("k", 1, 100) {
		t.Fatalf("empty bucket allowed")
	}
	time.Sleep(50 * time.Millisecond)
	if !l.Allow("k", 1, 100) {
		t.Fatalf("bucket did not refill")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0.001) {
		t.Fatalf("key a denied")
	}
	if !l.Allow("b", 1, 0.001) {
		t.Fatalf("key b denied after draining a")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	if !l.Allow("k", 1, 0.001) {
		t.Fatalf("first call denied")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "k", 1, 0.001); err == nil {
		t.Fatalf("wait on empty bucket must end with the context")
	}
}
