package application

import (
	"context"
	"fmt"
	"time"

	"poi-gateway/middleware/quota/domain"

	"github.com/rs/zerolog"
)

const (
	DefaultNamespace = "franchise_api"
	DefaultWindowTTL = 24 * time.Hour
)

// Service orquestra resolver + política + contador para cada chamada.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna um veredito.
// Falhas do contador nunca sobem: a chamada passa como não contada (fail-open).
type Service struct {
	Resolver *Resolver
	Policy   Policy
	// Counter nil equivale a store não configurado (fail-open).
	Counter domain.CounterStore
	Audit   domain.AuditSink

	Namespace string
	TTL       time.Duration
	Now       func() time.Time
	Logger    zerolog.Logger
}

func (s Service) Authorize(ctx context.Context, req domain.Request) domain.Verdict {
	if !s.Resolver.Configured() {
		s.Logger.Error().Msg("no api keys configured on server")
		return domain.Verdict{Outcome: domain.OutcomeServerMisconfigured}
	}

	now := s.now()
	role, ok := s.Resolver.Resolve(req.Credential)
	if !ok {
		v := domain.Verdict{Outcome: domain.OutcomeUnauthorized, Role: domain.RoleInvalid}
		s.audit(ctx, now, req, v)
		return v
	}

	v := s.count(ctx, now, role, req.Credential)
	s.audit(ctx, now, req, v)
	return v
}

func (s Service) count(ctx context.Context, now time.Time, role domain.Role, cred domain.Credential) domain.Verdict {
	q := s.Policy.Quota(role)
	if q.Unlimited {
		// nada a limitar: não toca no contador
		return domain.Verdict{Outcome: domain.OutcomeAllowed, Role: role, Unlimited: true}
	}

	failOpen := domain.Verdict{
		Outcome:   domain.OutcomeAllowed,
		Role:      role,
		Remaining: q.Limit,
		Limit:     q.Limit,
		Degraded:  true,
	}

	if s.Counter == nil {
		s.Logger.Warn().Str("role", string(role)).Msg("counter store not configured, skipping quota check")
		return failOpen
	}

	key := domain.CounterKey(s.namespace(), role, cred, now)
	used, err := s.incr(ctx, key)
	if err != nil {
		s.Logger.Warn().Err(err).
			Str("role", string(role)).
			Str("key", domain.Redact(cred)).
			Msg("counter store unavailable, allowing request")
		return failOpen
	}

	// só a chamada que criou o contador define a expiração; repetir empurraria a janela
	if used == 1 {
		if err := s.expire(ctx, key); err != nil {
			s.Logger.Warn().Err(err).Str("role", string(role)).Msg("failed to set counter expiry")
		}
	}

	ev := s.Policy.Evaluate(role, used)
	v := domain.Verdict{
		Outcome:   domain.OutcomeAllowed,
		Role:      role,
		Used:      ev.Used,
		Remaining: ev.Remaining,
		Limit:     q.Limit,
	}
	if ev.Exceeded {
		v.Outcome = domain.OutcomeQuotaExceeded
		v.Remaining = 0
		s.Logger.Warn().
			Str("role", string(role)).
			Str("key", domain.Redact(cred)).
			Int64("used", v.Used).
			Int64("remaining", v.Remaining).
			Msg("daily quota exceeded")
	}
	return v
}

// incr converte panic do store em ErrStoreUnavailable.
func (s Service) incr(ctx context.Context, key string) (n int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: panic: %v", domain.ErrStoreUnavailable, r)
		}
	}()
	return s.Counter.Incr(ctx, key)
}

// expire tem a mesma proteção de incr; falha aqui não desfaz a contagem.
func (s Service) expire(ctx context.Context, key string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrStoreUnavailable, r)
		}
	}()
	return s.Counter.Expire(ctx, key, s.ttl())
}

func (s Service) audit(ctx context.Context, now time.Time, req domain.Request, v domain.Verdict) {
	if s.Audit == nil {
		return
	}
	ip := req.ClientIP
	if ip == "" {
		ip = "unknown"
	}
	err := s.Audit.Record(ctx, domain.AuditEvent{
		At:        now,
		IP:        ip,
		Key:       domain.Redact(req.Credential),
		Role:      v.Role,
		Outcome:   v.Outcome,
		Franchise: req.Franchise,
		Status:    req.Status,
		Region:    req.Region,
		Used:      v.Used,
		Remaining: v.Remaining,
	})
	if err != nil {
		s.Logger.Debug().Err(err).Msg("audit record failed")
	}
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) namespace() string {
	if s.Namespace == "" {
		return DefaultNamespace
	}
	return s.Namespace
}

func (s Service) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultWindowTTL
	}
	return s.TTL
}
