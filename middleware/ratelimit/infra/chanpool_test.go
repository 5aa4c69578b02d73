package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"translate-gateway/middleware/ratelimit/domain"
)

func TestChanPool_AcquireRelease(t *testing.T) {
	p := NewChanPool(1)

	release, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("expected first acquire to succeed: %v", err)
	}
	if p.InUse() != 1 || p.Cap() != 1 {
		t.Fatalf("expected 1/1 slots, got %d/%d", p.InUse(), p.Cap())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(ctx)
	if !errors.Is(err, domain.ErrNoSlot) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected ErrNoSlot wrapping the deadline, got %v", err)
	}

	release()
	release()
	if p.InUse() != 0 {
		t.Fatalf("expected slot to be released once, in use %d", p.InUse())
	}
}

func TestChanPool_FreeSlotWinsOverCancelledContext(t *testing.T) {
	p := NewChanPool(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("expected acquire with a free slot to succeed, got %v", err)
	}
	release()
}

func TestNewChanPool_MinimumSize(t *testing.T) {
	if got := NewChanPool(0).Cap(); got != 1 {
		t.Fatalf("expected cap 1, got %d", got)
	}
}
