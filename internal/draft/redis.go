package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

// RedisStore is a Redis-backed Store with TTL, shared across replicas.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed draft store. Drafts expire after
// ttl; a zero ttl keeps them forever.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Save upserts the draft under key, refreshing the TTL.
func (s *RedisStore) Save(ctx context.Context, key string, d model.Draft) error {
	data, err := Encode(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Load retrieves the draft under key.
func (s *RedisStore) Load(ctx context.Context, key string) (model.Draft, bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return model.Draft{}, false, nil
	}
	if err != nil {
		return model.Draft{}, false, fmt.Errorf("redis get %q: %w", key, err)
	}

	d, err := Decode(raw)
	if err != nil {
		return model.Draft{}, false, fmt.Errorf("decode draft %q: %w", key, err)
	}
	return d, true, nil
}

// Clear removes the draft under key.
func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Ping checks connectivity, for readiness probes.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
