package application

import (
	"context"
	"time"

	"poi-gateway/middleware/quota/domain"
)

// ConcurrencyService limita quantos requests ficam em voo ao mesmo tempo,
// sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta obter uma vaga.
// Sem Pool, libera sempre. Com AcquireTimeout <= 0 espera até o ctx encerrar.
// Em caso de falha devolve domain.ErrNoSlot e nenhuma vaga fica presa.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}

	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(ctx)
	if !ok {
		return nil, domain.ErrNoSlot
	}
	return release, nil
}
