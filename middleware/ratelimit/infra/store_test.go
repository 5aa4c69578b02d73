package infra

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"translate-gateway/middleware/ratelimit/domain"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestMemoryStore_FirstCallCreatesRecord(t *testing.T) {
	s := NewMemoryStore()

	rec, ok, err := s.Admit(context.Background(), "k", 10, time.Minute, t0)
	if err != nil || !ok {
		t.Fatalf("expected first call allowed, got ok=%v err=%v", ok, err)
	}
	if rec.Count != 1 {
		t.Fatalf("expected count=1, got %d", rec.Count)
	}
	if !rec.ResetAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("expected resetAt=now+window, got %s", rec.ResetAt)
	}
}

func TestMemoryStore_RejectsAfterLimitWithoutIncrementing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, ok, _ := s.Admit(ctx, "k", 10, time.Minute, t0.Add(time.Duration(i)*time.Second)); !ok {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}

	rec, ok, _ := s.Admit(ctx, "k", 10, time.Minute, t0.Add(30*time.Second))
	if ok {
		t.Fatalf("11th call inside the window must be rejected")
	}
	if rec.Count != 10 {
		t.Fatalf("rejected call must not increment, got count=%d", rec.Count)
	}
}

func TestMemoryStore_ResetsAfterWindow(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, _, _ = s.Admit(ctx, "k", 10, time.Minute, t0)
	}

	// now == resetAt ainda está na janela (reset só quando now > resetAt)
	if _, ok, _ := s.Admit(ctx, "k", 10, time.Minute, t0.Add(time.Minute)); ok {
		t.Fatalf("expected rejection at exactly resetAt")
	}

	rec, ok, _ := s.Admit(ctx, "k", 10, time.Minute, t0.Add(time.Minute+time.Millisecond))
	if !ok || rec.Count != 1 {
		t.Fatalf("expected window reset with count=1, got ok=%v count=%d", ok, rec.Count)
	}
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _, _ = s.Admit(ctx, "a", 1, time.Minute, t0)
	if _, ok, _ := s.Admit(ctx, "a", 1, time.Minute, t0); ok {
		t.Fatalf("expected key a to be exhausted")
	}
	if _, ok, _ := s.Admit(ctx, "b", 1, time.Minute, t0); !ok {
		t.Fatalf("expected key b to have its own window")
	}
}

func TestMemoryStore_ConcurrentAdmitsNeverExceedLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := s.Admit(ctx, "hot", 10, time.Minute, t0); ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := admitted.Load(); got != 10 {
		t.Fatalf("expected exactly 10 admitted, got %d", got)
	}
}

func TestMemoryStore_CleanupRemovesExpiredWindows(t *testing.T) {
	now := t0
	s := NewMemoryStore(WithClock(func() time.Time { return now }), WithCleanupEvery(0))
	ctx := context.Background()

	_, _, _ = s.Admit(ctx, "old", 10, time.Minute, t0)
	_, _, _ = s.Admit(ctx, "fresh", 10, time.Minute, t0.Add(50*time.Second))

	now = t0.Add(61 * time.Second)
	s.Cleanup()

	if s.Len() != 1 {
		t.Fatalf("expected only the fresh key to survive, got %d keys", s.Len())
	}
}

func TestMemoryStore_MaxKeysEvictsOldestWindow(t *testing.T) {
	s := NewMemoryStore(WithMaxKeys(2))
	ctx := context.Background()

	_, _, _ = s.Admit(ctx, "a", 1, time.Minute, t0)
	_, _, _ = s.Admit(ctx, "b", 1, time.Minute, t0.Add(time.Second))
	_, _, _ = s.Admit(ctx, "c", 1, time.Minute, t0.Add(2*time.Second))

	if s.Len() != 2 {
		t.Fatalf("expected bound of 2 keys, got %d", s.Len())
	}
	// "a" foi descartada, então volta com janela nova
	if _, ok, _ := s.Admit(ctx, "a", 1, time.Minute, t0.Add(3*time.Second)); !ok {
		t.Fatalf("expected evicted key to start a fresh window")
	}
}

func TestMemoryStore_EmptyKey(t *testing.T) {
	s := NewMemoryStore()
	if _, _, err := s.Admit(context.Background(), domain.Key(""), 1, time.Minute, t0); err != domain.ErrKeyRequired {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
}
