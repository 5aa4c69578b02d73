package application

import (
	"context"
	"sync/atomic"
	"time"

	"translate-gateway/middleware/ratelimit/domain"
)

// ConcurrencyService guarda a porta de entrada do servidor: no máximo
// Pool.Cap() requisições em andamento, esperando até Wait por uma vaga.
type ConcurrencyService struct {
	pool     domain.SlotPool
	wait     time.Duration
	rejected atomic.Int64
}

// NewConcurrencyService com pool nil deixa tudo passar. wait <= 0 espera
// enquanto o ctx da requisição durar.
func NewConcurrencyService(pool domain.SlotPool, wait time.Duration) *ConcurrencyService {
	return &ConcurrencyService{pool: pool, wait: wait}
}

func (s *ConcurrencyService) Acquire(ctx context.Context) (domain.Release, error) {
	if s.pool == nil {
		return func() {}, nil
	}
	if s.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.wait)
		defer cancel()
	}
	release, err := s.pool.Acquire(ctx)
	if err != nil {
		s.rejected.Add(1)
		return nil, err
	}
	return release, nil
}

// Rejected conta as requisições recusadas por falta de vaga.
func (s *ConcurrencyService) Rejected() int64 { return s.rejected.Load() }

// InFlight devolve as vagas ocupadas agora.
func (s *ConcurrencyService) InFlight() int {
	if s.pool == nil {
		return 0
	}
	return s.pool.InUse()
}
