package infra

import (
	"context"
	"strconv"
	"strings"
	"time"

	"poi-gateway/middleware/quota/domain"

	"github.com/redis/go-redis/v9"
)

// RedisAuditStore agrega a auditoria em hashes no Redis:
//
//	<prefix>:total                 outcome -> n (cumulativo, não expira)
//	<prefix>:day:<YYYY-MM-DD>      role:outcome -> n
//	<prefix>:key:<masked key>      outcome -> n (só com trackKeys)
type RedisAuditStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas nas chaves por dia / por key.
	ttl time.Duration

	trackKeys bool
}

type RedisAuditOption func(*RedisAuditStore)

func WithAuditPrefix(prefix string) RedisAuditOption {
	return func(s *RedisAuditStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithAuditTTL(d time.Duration) RedisAuditOption {
	return func(s *RedisAuditStore) { s.ttl = d }
}

func WithAuditTrackKeys(track bool) RedisAuditOption {
	return func(s *RedisAuditStore) { s.trackKeys = track }
}

func NewRedisAuditStore(rdb redis.Cmdable, opts ...RedisAuditOption) *RedisAuditStore {
	s := &RedisAuditStore{
		rdb:    rdb,
		prefix: "franchise_api:stats",
		ttl:    7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisAuditStore) Record(ctx context.Context, ev domain.AuditEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	outcome := string(ev.Outcome)
	dayKey := s.DayKey(eventTime(ev))

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", outcome, 1)
	pipe.HIncrBy(ctx, dayKey, string(ev.Role)+":"+outcome, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, dayKey, s.ttl)
	}

	if s.trackKeys {
		if k := strings.TrimSpace(ev.Key); k != "" {
			keyKey := s.prefix + ":key:" + k
			pipe.HIncrBy(ctx, keyKey, outcome, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, keyKey, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// DayKey é a chave do hash diário (data UTC).
func (s *RedisAuditStore) DayKey(at time.Time) string {
	return s.prefix + ":day:" + at.UTC().Format(domain.DayLayout)
}

// DailyUsage lê o hash do dia: "role:outcome" -> contagem.
func (s *RedisAuditStore) DailyUsage(ctx context.Context, day time.Time) (map[string]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, s.DayKey(day)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		out[field] = n
	}
	return out, nil
}
