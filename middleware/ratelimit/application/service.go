package application

import (
	"context"
	"time"

	"translate-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit por janela fixa.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// Limit/Window zerados assumem domain.DefaultLimit e domain.DefaultWindow.
type Service struct {
	Store  domain.WindowStore
	Limit  int
	Window time.Duration
	Now    func() time.Time
}

var _ domain.Admitter = Service{}

func (s Service) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Store == nil {
		return domain.Decision{Allowed: true}, nil
	}
	if key == "" {
		return domain.Decision{}, domain.ErrKeyRequired
	}
	limit, window := s.Limit, s.Window
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	if window <= 0 {
		window = domain.DefaultWindow
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	rec, allowed, err := s.Store.Admit(ctx, key, limit, window, now)
	if err != nil {
		return domain.Decision{}, err
	}

	dec := domain.Decision{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: max(0, limit-rec.Count),
		ResetAt:   rec.ResetAt,
	}
	if allowed {
		return dec, nil
	}

	// retryAfter = ceil((resetAt - now) / 1s), sempre dentro de [0, window]
	wait := rec.ResetAt.Sub(now)
	if wait < 0 {
		wait = 0
	}
	if wait > window {
		wait = window
	}
	secs := wait / time.Second
	if wait%time.Second != 0 {
		secs++
	}
	dec.RetryAfter = secs * time.Second
	if dec.RetryAfter > window {
		dec.RetryAfter = window
	}
	return dec, nil
}
