package infra

import (
	"context"
	"sync"
	"time"

	"poi-gateway/metrics"
	"poi-gateway/middleware/quota/domain"

	"golang.org/x/time/rate"
)

// ThrottleStore guarda um token bucket (x/time/rate) por cliente.
// Buckets sem uso por mais de idleTTL são descartados pelo janitor.
type ThrottleStore struct {
	mu      sync.Mutex
	clients map[string]*client

	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	sweep   time.Duration
	now     func() time.Time
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

type ThrottleOption func(*ThrottleStore)

func WithIdleTTL(d time.Duration) ThrottleOption {
	return func(s *ThrottleStore) { s.idleTTL = d }
}

// WithSweepEvery define o intervalo do janitor (<= 0 desliga).
func WithSweepEvery(d time.Duration) ThrottleOption {
	return func(s *ThrottleStore) { s.sweep = d }
}

// WithThrottleClock troca o relógio dos buckets (testes).
func WithThrottleClock(now func() time.Time) ThrottleOption {
	return func(s *ThrottleStore) { s.now = now }
}

// NewThrottleStore cria buckets de perSecond tokens/s com rajada burst.
func NewThrottleStore(perSecond float64, burst int, opts ...ThrottleOption) *ThrottleStore {
	s := &ThrottleStore{
		clients: make(map[string]*client),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: 15 * time.Minute,
		sweep:   2 * time.Minute,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implementa domain.LimiterStore.
func (s *ThrottleStore) Get(key string) domain.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[key]
	if !ok {
		c = &client{bucket: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = c
		metrics.ThrottleClients.Set(float64(len(s.clients)))
	}
	c.lastSeen = now
	return clientLimiter{bucket: c.bucket, now: s.now}
}

// Len é o número de clientes com bucket ativo.
func (s *ThrottleStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Sweep descarta os buckets ociosos.
func (s *ThrottleStore) Sweep() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, c := range s.clients {
		if c.lastSeen.Before(cutoff) {
			delete(s.clients, k)
		}
	}
	metrics.ThrottleClients.Set(float64(len(s.clients)))
}

// StartJanitor roda Sweep periodicamente até o ctx encerrar.
func (s *ThrottleStore) StartJanitor(ctx context.Context) {
	if s.sweep <= 0 {
		return
	}

	t := time.NewTicker(s.sweep)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Sweep()
			}
		}
	}()
}

// clientLimiter consulta o bucket com o relógio da store.
type clientLimiter struct {
	bucket *rate.Limiter
	now    func() time.Time
}

func (l clientLimiter) Allow() bool { return l.bucket.AllowN(l.now(), 1) }
