// Package application contém a resolução de fonte com failover: sonda as
// candidatas em ordem, memoriza a escolhida e troca de fonte quando a carga falha.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"translate-gateway/source/domain"
)

// Resolver é o estado de uma sessão: a fonte corrente e as que já falharam.
// Seguro para uso concorrente.
type Resolver struct {
	candidates []domain.Candidate
	prober     domain.Prober
	logger     *slog.Logger

	mu       sync.Mutex
	current  *domain.Candidate
	excluded map[string]bool
}

type Option func(*Resolver)

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver ordena as candidatas por prioridade (estável: empate mantém a ordem dada).
func NewResolver(candidates []domain.Candidate, prober domain.Prober, opts ...Option) (*Resolver, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoCandidates
	}
	if prober == nil {
		return nil, errors.New("source: prober is required")
	}
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b domain.Candidate) int { return a.Priority - b.Priority })

	r := &Resolver{
		candidates: sorted,
		prober:     prober,
		logger:     slog.Default(),
		excluded:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Candidates devolve a lista ordenada.
func (r *Resolver) Candidates() []domain.Candidate {
	return slices.Clone(r.candidates)
}

// Current devolve a fonte memorizada, se houver.
func (r *Resolver) Current() (domain.Candidate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return domain.Candidate{}, false
	}
	return *r.current, true
}

// Resolve devolve a fonte da sessão. Na primeira chamada sonda as candidatas
// em ordem; a primeira que responde é memorizada. Se nenhuma responde, memoriza
// a candidata secundária fixa (índice 1) para que o chamador sempre tenha algo a tentar.
func (r *Resolver) Resolve(ctx context.Context) (domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(ctx)
}

func (r *Resolver) resolveLocked(ctx context.Context) (domain.Candidate, error) {
	if r.current != nil {
		return *r.current, nil
	}

	remaining := r.remainingLocked()
	if len(remaining) == 0 {
		return domain.Candidate{}, domain.ErrSourceUnreachable
	}

	for _, c := range remaining {
		if err := ctx.Err(); err != nil {
			return domain.Candidate{}, err
		}
		err := r.prober.Probe(ctx, c)
		if err == nil {
			r.logger.DebugContext(ctx, "source selected", "source", c.String(), "url", c.URL)
			r.current = &c
			return c, nil
		}
		r.logger.DebugContext(ctx, "source probe failed", "source", c.String(), "error", err)
	}

	fb := r.fallbackLocked(remaining)
	r.logger.WarnContext(ctx, "no source answered the probe, using fallback", "source", fb.String())
	r.current = &fb
	return fb, nil
}

// fallbackLocked: antes de qualquer falha de carga, o índice 1 da lista estática;
// depois, a primeira candidata ainda não descartada.
func (r *Resolver) fallbackLocked(remaining []domain.Candidate) domain.Candidate {
	if len(r.candidates) > 1 && !r.excluded[r.candidates[1].URL] {
		return r.candidates[1]
	}
	return remaining[0]
}

func (r *Resolver) remainingLocked() []domain.Candidate {
	out := make([]domain.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		if !r.excluded[c.URL] {
			out = append(out, c)
		}
	}
	return out
}

// MarkFailed descarta c e esquece a fonte corrente, forçando nova resolução.
func (r *Resolver) MarkFailed(c domain.Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markFailedLocked(c)
}

func (r *Resolver) markFailedLocked(c domain.Candidate) {
	r.excluded[c.URL] = true
	if r.current != nil && r.current.URL == c.URL {
		r.current = nil
	}
}

// Reset volta ao estado inicial (nenhuma fonte escolhida, nenhuma descartada).
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
	r.excluded = make(map[string]bool)
}

// Load executa fn contra a fonte corrente. Se fn falhar por culpa da fonte
// (domain.SourceFailure), a fonte é descartada e a próxima é resolvida; o laço
// tem no máximo len(candidates) voltas. Erros que não são da fonte voltam direto.
func (r *Resolver) Load(ctx context.Context, fn func(ctx context.Context, c domain.Candidate) error) (domain.Candidate, error) {
	var lastErr error
	for range len(r.candidates) {
		c, err := r.Resolve(ctx)
		if err != nil {
			return domain.Candidate{}, errors.Join(err, lastErr)
		}

		err = fn(ctx, c)
		if err == nil {
			return c, nil
		}
		if !domain.IsSourceFailure(err) {
			return c, err
		}

		r.logger.WarnContext(ctx, "source failed while loading, trying next", "source", c.String(), "error", err)
		r.MarkFailed(c)
		lastErr = err
	}
	return domain.Candidate{}, fmt.Errorf("%w: %w", domain.ErrSourceUnreachable, lastErr)
}
