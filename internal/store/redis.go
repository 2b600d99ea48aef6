package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/weatherpi/internal/weather"
)

// DefaultRedisKey is the key the record is stored under.
const DefaultRedisKey = "weatherpi:forecast"

// RedisStore keeps the record as a JSON blob under a single key.
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisStore creates a RedisStore. An empty key selects DefaultRedisKey.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{redis: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (weather.Record, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return weather.Record{}, weather.ErrCacheMiss
	}
	if err != nil {
		return weather.Record{}, fmt.Errorf("failed to get cache from Redis: %w", err)
	}
	return decodeRecord(data)
}

// Save overwrites the key without a TTL; expiry is decided by the forecast age, not by Redis.
func (s *RedisStore) Save(ctx context.Context, rec weather.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal cache record: %w", err)
	}
	if err := s.redis.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set cache in Redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.redis.Close()
}
