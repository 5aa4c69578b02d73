package infra

import (
	"context"
	"fmt"
	"sync"

	"translate-gateway/middleware/ratelimit/domain"
)

// ChanPool é um semáforo sobre um channel bufferizado.
type ChanPool struct {
	slots chan struct{}
}

var _ domain.SlotPool = (*ChanPool)(nil)

// NewChanPool aceita size >= 1.
func NewChanPool(size int) *ChanPool {
	if size < 1 {
		size = 1
	}
	return &ChanPool{slots: make(chan struct{}, size)}
}

func (p *ChanPool) Acquire(ctx context.Context) (domain.Release, error) {
	// vaga livre tem prioridade sobre ctx já cancelado
	select {
	case p.slots <- struct{}{}:
		return p.release(), nil
	default:
	}

	select {
	case p.slots <- struct{}{}:
		return p.release(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", domain.ErrNoSlot, ctx.Err())
	}
}

func (p *ChanPool) release() domain.Release {
	var once sync.Once
	return func() { once.Do(func() { <-p.slots }) }
}

func (p *ChanPool) Cap() int { return cap(p.slots) }

func (p *ChanPool) InUse() int { return len(p.slots) }
