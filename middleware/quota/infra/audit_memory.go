package infra

import (
	"context"
	"sort"
	"sync"
	"time"

	"poi-gateway/middleware/quota/domain"
)

// MemoryAuditStore agrega a auditoria por dia UTC em memória, no mesmo formato
// do RedisAuditStore ("role:outcome" -> n). Usado quando não há Redis.
//
// Não é compartilhado entre processos e zera no restart.
type MemoryAuditStore struct {
	mu   sync.Mutex
	days map[string]map[string]int64
	// retain é quantos dias ficam guardados (0 = todos)
	retain int
}

type MemoryAuditOption func(*MemoryAuditStore)

// WithRetainDays mantém só os n dias mais recentes.
func WithRetainDays(n int) MemoryAuditOption {
	return func(s *MemoryAuditStore) { s.retain = n }
}

func NewMemoryAuditStore(opts ...MemoryAuditOption) *MemoryAuditStore {
	s := &MemoryAuditStore{days: make(map[string]map[string]int64)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryAuditStore) Record(_ context.Context, ev domain.AuditEvent) error {
	day := eventTime(ev).UTC().Format(domain.DayLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.days[day]
	if !ok {
		bucket = make(map[string]int64)
		s.days[day] = bucket
		s.prune()
	}
	bucket[string(ev.Role)+":"+string(ev.Outcome)]++
	return nil
}

// DailyUsage implementa domain.UsageReader.
func (s *MemoryAuditStore) DailyUsage(_ context.Context, day time.Time) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.days[day.UTC().Format(domain.DayLayout)]
	out := make(map[string]int64, len(bucket))
	for k, v := range bucket {
		out[k] = v
	}
	return out, nil
}

// prune descarta os dias mais antigos além de retain. Chamar com mu travado.
func (s *MemoryAuditStore) prune() {
	if s.retain <= 0 || len(s.days) <= s.retain {
		return
	}
	keys := make([]string, 0, len(s.days))
	for k := range s.days {
		keys = append(keys, k)
	}
	// YYYY-MM-DD ordena lexicograficamente
	sort.Strings(keys)
	for _, k := range keys[:len(keys)-s.retain] {
		delete(s.days, k)
	}
}
