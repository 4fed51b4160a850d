package infra

import (
	"context"
	"fmt"
	"time"

	"poi-gateway/middleware/quota/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore implementa domain.CounterStore sobre INCR/EXPIRE.
// A atomicidade do incremento é garantida pelo próprio Redis.
type RedisCounterStore struct {
	rdb redis.Cmdable
}

func NewRedisCounterStore(rdb redis.Cmdable) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	if s == nil || s.rdb == nil {
		return 0, domain.ErrStoreUnavailable
	}
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: incr: %w", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

func (s *RedisCounterStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if s == nil || s.rdb == nil {
		return domain.ErrStoreUnavailable
	}
	if err := s.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("%w: expire: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
