package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"gatherly/internal/domain"
)

// envelope wraps a cached payload with its absolute deadline. Redis only
// tracks a single TTL per key, which we use for the sliding window; the
// ceiling rides along inside the value.
type envelope struct {
	Payload  []byte        `json:"payload"`
	Deadline time.Time     `json:"deadline"`
	Sliding  time.Duration `json:"sliding"`
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) domain.CacheStore {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		// Unreadable entry: drop it and report a miss.
		s.client.Del(ctx, key)
		return nil, false, nil
	}

	remaining := time.Until(env.Deadline)
	if remaining <= 0 {
		s.client.Del(ctx, key)
		return nil, false, nil
	}

	// Re-arm the sliding window, never past the absolute deadline.
	s.client.Expire(ctx, key, min(env.Sliding, remaining))
	return env.Payload, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, sliding, absolute time.Duration) error {
	env := envelope{
		Payload:  value,
		Deadline: time.Now().Add(absolute),
		Sliding:  sliding,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, min(sliding, absolute)).Err()
}

func (s *redisStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
