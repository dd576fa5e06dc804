package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"staydesk/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
)

const idempotencyKeyPrefix = "staydesk:idempotency:"

// RedisIdempotencyStore shares cached responses between replicas. Entries
// expire through Redis TTLs, so there is nothing to clean up locally.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl, log: log}
}

// Get treats Redis failures as a miss; the request then runs normally.
func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	data, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.log.Warn("idempotency cache read failed", "error", err)
		return nil, false
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		s.log.Warn("idempotency cache entry is corrupt", "error", err)
		return nil, false
	}
	return &cached, true
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	data, err := json.Marshal(response)
	if err != nil {
		s.log.Warn("idempotency cache encode failed", "error", err)
		return
	}
	if err := s.client.Set(ctx, idempotencyKeyPrefix+key, data, s.ttl).Err(); err != nil {
		s.log.Warn("idempotency cache write failed", "error", err)
	}
}

// Stop is a no-op; the Redis client is owned and closed by client.Client.
func (s *RedisIdempotencyStore) Stop() {}
