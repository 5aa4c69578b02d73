package infra

import (
	"context"
	"maps"
	"sync"

	"translate-gateway/middleware/ratelimit/domain"
)

// Counters soma as decisões de um recorte (total, rota ou cliente).
type Counters struct {
	Allowed  int64 `json:"allowed"`
	Rejected int64 `json:"rejected"`
}

// StatsSnapshot é uma cópia consistente dos contadores de MemoryStatsStore.
// Rotas vazias (chamadas em processo) ficam sob "".
type StatsSnapshot struct {
	Total   Counters            `json:"total"`
	Routes  map[string]Counters `json:"routes"`
	Clients map[string]Counters `json:"clients,omitempty"`
}

// MemoryStatsStore conta decisões desta réplica desde o início do processo.
// Nada expira; com trackKeys o mapa por cliente cresce com o número de clientes.
type MemoryStatsStore struct {
	mu        sync.Mutex
	snap      StatsSnapshot
	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{snap: StatsSnapshot{
		Routes:  map[string]Counters{},
		Clients: map[string]Counters{},
	}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func bump(m map[string]Counters, k string, allowed bool) {
	c := m[k]
	if allowed {
		c.Allowed++
	} else {
		c.Rejected++
	}
	m[k] = c
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Allowed {
		s.snap.Total.Allowed++
	} else {
		s.snap.Total.Rejected++
	}
	bump(s.snap.Routes, ev.Route(), ev.Allowed)
	if s.trackKeys {
		bump(s.snap.Clients, string(ev.Key), ev.Allowed)
	}
	return nil
}

func (s *MemoryStatsStore) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := StatsSnapshot{
		Total:  s.snap.Total,
		Routes: maps.Clone(s.snap.Routes),
	}
	if s.trackKeys {
		out.Clients = maps.Clone(s.snap.Clients)
	}
	return out
}

// FanoutStats manda cada evento para todos os stores (nil é pulado) e devolve
// o primeiro erro.
type FanoutStats []domain.StatsStore

func (f FanoutStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	var first error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
