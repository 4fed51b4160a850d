package infra

import (
	"context"
	"sync"
	"time"
)

// MemoryCounterStore é um contador em memória com expiração por chave.
// Útil para testes e para um único processo em desenvolvimento.
//
// Não é compartilhado entre processos; em produção use RedisCounterStore.
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*counterEntry
	now     func() time.Time
}

type counterEntry struct {
	n         int64
	expiresAt time.Time // zero = sem expiração
}

type MemoryCounterOption func(*MemoryCounterStore)

// WithClock troca o relógio (testes).
func WithClock(now func() time.Time) MemoryCounterOption {
	return func(s *MemoryCounterStore) { s.now = now }
}

func NewMemoryCounterStore(opts ...MemoryCounterOption) *MemoryCounterStore {
	s := &MemoryCounterStore{
		entries: make(map[string]*counterEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || ent.expired(now) {
		ent = &counterEntry{}
		s.entries[key] = ent
	}
	ent.n++
	return ent.n, nil
}

func (s *MemoryCounterStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok && !ent.expired(now) {
		ent.expiresAt = now.Add(ttl)
	}
	return nil
}

// Cleanup remove contadores expirados.
func (s *MemoryCounterStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.expired(now) {
			delete(s.entries, k)
		}
	}
}

func (s *MemoryCounterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (e *counterEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
