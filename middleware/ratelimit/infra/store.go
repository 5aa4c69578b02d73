package infra

import (
	"context"
	"sync"
	"time"

	"translate-gateway/middleware/ratelimit/domain"
)

// MemoryStore é a janela fixa por chave em memória, com limpeza periódica
// de janelas vencidas e, opcionalmente, um teto de chaves rastreadas.
type MemoryStore struct {
	mu           sync.Mutex
	records      map[domain.Key]*domain.RateRecord
	maxKeys      int
	cleanupEvery time.Duration
	now          func() time.Time
}

var _ domain.WindowStore = (*MemoryStore)(nil)

type StoreOption func(*MemoryStore)

// WithMaxKeys limita o número de clientes rastreados. Ao estourar, o registro
// com o reset mais antigo é descartado. 0 = sem limite.
func WithMaxKeys(n int) StoreOption {
	return func(s *MemoryStore) { s.maxKeys = n }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *MemoryStore) { s.cleanupEvery = d }
}

// WithClock troca o relógio usado pelo janitor (testes).
func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		records:      make(map[domain.Key]*domain.RateRecord),
		maxKeys:      100_000,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Admit implementa domain.WindowStore.
func (s *MemoryStore) Admit(_ context.Context, key domain.Key, limit int, window time.Duration, now time.Time) (domain.RateRecord, bool, error) {
	if key == "" {
		return domain.RateRecord{}, false, domain.ErrKeyRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		if s.maxKeys > 0 && len(s.records) >= s.maxKeys {
			s.evictOldestLocked()
		}
		rec = &domain.RateRecord{Key: key, Count: 1, ResetAt: now.Add(window)}
		s.records[key] = rec
		return *rec, true, nil
	}

	if now.After(rec.ResetAt) {
		rec.Count = 1
		rec.ResetAt = now.Add(window)
		return *rec, true, nil
	}

	if rec.Count < limit {
		rec.Count++
		return *rec, true, nil
	}
	return *rec, false, nil
}

// Len devolve quantas chaves estão sendo rastreadas.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Cleanup remove janelas que já venceram; a próxima requisição da chave
// recria o registro do zero, o que é equivalente.
func (s *MemoryStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, rec := range s.records {
		if now.After(rec.ResetAt) {
			delete(s.records, k)
		}
	}
}

func (s *MemoryStore) evictOldestLocked() {
	var (
		oldest   domain.Key
		oldestAt time.Time
		found    bool
	)
	for k, rec := range s.records {
		if !found || rec.ResetAt.Before(oldestAt) {
			oldest, oldestAt, found = k, rec.ResetAt, true
		}
	}
	if found {
		delete(s.records, oldest)
	}
}

// StartJanitor inicia uma goroutine que limpa janelas vencidas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context no janitor.
type DoneContext interface {
	Done() <-chan struct{}
}
