package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"poi-gateway/metrics"
	"poi-gateway/middleware/quota/domain"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings controla quando o circuito abre e quanto tempo fica aberto.
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

// BreakerCounterStore coloca um circuit breaker na frente de outro CounterStore.
//
// Com o circuito aberto as chamadas falham na hora com domain.ErrStoreUnavailable,
// e o gateway libera em fail-open sem pagar um round-trip por request.
type BreakerCounterStore struct {
	next domain.CounterStore
	cb   *gobreaker.CircuitBreaker[int64]
}

func NewBreakerCounterStore(next domain.CounterStore, cfg BreakerSettings) *BreakerCounterStore {
	if cfg.Name == "" {
		cfg.Name = "counter-store"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}

	st := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: storeHealthy,
		OnStateChange: func(_ string, _, to gobreaker.State) {
			metrics.CounterBreakerState.Set(breakerStateValue(to))
		},
	}
	return &BreakerCounterStore{next: next, cb: gobreaker.NewCircuitBreaker[int64](st)}
}

func (s *BreakerCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.cb.Execute(func() (int64, error) {
		return s.next.Incr(ctx, key)
	})
	if err != nil {
		metrics.CounterStoreErrors.WithLabelValues("incr").Inc()
		return 0, wrapBreakerErr(err)
	}
	return n, nil
}

func (s *BreakerCounterStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	_, err := s.cb.Execute(func() (int64, error) {
		return 0, s.next.Expire(ctx, key, ttl)
	})
	if err != nil {
		metrics.CounterStoreErrors.WithLabelValues("expire").Inc()
		return wrapBreakerErr(err)
	}
	return nil
}

// State expõe o estado atual do circuito (reportado no /healthz).
func (s *BreakerCounterStore) State() gobreaker.State { return s.cb.State() }

// storeHealthy diz se o erro conta a favor do store. Cliente que desconecta no meio
// do INCR cancela o ctx; isso não é falha do Redis e não pode abrir o circuito.
func storeHealthy(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func wrapBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
