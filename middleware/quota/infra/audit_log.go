package infra

import (
	"context"
	"errors"
	"time"

	"poi-gateway/middleware/quota/domain"

	"github.com/rs/zerolog"
)

// LogAuditSink escreve um registro estruturado por chamada da API.
type LogAuditSink struct {
	Logger zerolog.Logger
}

func (s LogAuditSink) Record(_ context.Context, ev domain.AuditEvent) error {
	e := s.Logger.Info().
		Str("event", "FRANCHISE_API_CALL").
		Time("at", ev.At.UTC()).
		Str("ip", ev.IP).
		Str("key", ev.Key).
		Str("role", string(ev.Role)).
		Str("outcome", string(ev.Outcome))
	if ev.Franchise != "" {
		e = e.Str("franchise", ev.Franchise)
	}
	if ev.Status != "" {
		e = e.Str("status", ev.Status)
	}
	if ev.Region != "" {
		e = e.Str("region", ev.Region)
	}
	e.Msg("franchise api call")
	return nil
}

// MultiAuditSink repassa o evento para todos os sinks, mesmo que algum falhe.
type MultiAuditSink []domain.AuditSink

func (m MultiAuditSink) Record(ctx context.Context, ev domain.AuditEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func eventTime(ev domain.AuditEvent) time.Time {
	if ev.At.IsZero() {
		return time.Now()
	}
	return ev.At
}
