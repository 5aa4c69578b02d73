package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"translate-gateway/middleware/ratelimit/domain"
)

// blockingPool nunca libera vaga; só retorna quando o ctx encerra.
type blockingPool struct{}

func (blockingPool) Acquire(ctx context.Context) (domain.Release, error) {
	<-ctx.Done()
	return nil, domain.ErrNoSlot
}
func (blockingPool) Cap() int   { return 1 }
func (blockingPool) InUse() int { return 1 }

type countingPool struct {
	acquired int
}

func (p *countingPool) Acquire(context.Context) (domain.Release, error) {
	p.acquired++
	return func() {}, nil
}
func (p *countingPool) Cap() int   { return 10 }
func (p *countingPool) InUse() int { return p.acquired }

func TestConcurrencyService_AllowsWhenNoPool(t *testing.T) {
	svc := NewConcurrencyService(nil, 0)
	release, err := svc.Acquire(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	release()
	if svc.InFlight() != 0 {
		t.Fatalf("expected nothing in flight")
	}
}

func TestConcurrencyService_GivesUpAfterWait(t *testing.T) {
	svc := NewConcurrencyService(blockingPool{}, 10*time.Millisecond)

	start := time.Now()
	if _, err := svc.Acquire(context.Background()); !errors.Is(err, domain.ErrNoSlot) {
		t.Fatalf("expected ErrNoSlot, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("acquire did not honour the wait")
	}
	if svc.Rejected() != 1 {
		t.Fatalf("expected 1 rejection, got %d", svc.Rejected())
	}
}

func TestConcurrencyService_WithoutWaitDelegates(t *testing.T) {
	pool := &countingPool{}
	svc := NewConcurrencyService(pool, 0)
	if _, err := svc.Acquire(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if pool.acquired != 1 || svc.InFlight() != 1 {
		t.Fatalf("expected pool Acquire to be called once, got %d", pool.acquired)
	}
}
