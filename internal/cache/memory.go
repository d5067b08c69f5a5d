package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"gatherly/internal/domain"
)

type memoryEntry struct {
	payload  []byte
	deadline time.Time
	sliding  time.Duration
}

// memoryStore is the single-process fallback used when no Redis address is
// configured. Same sliding/absolute semantics as the Redis store.
type memoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore() domain.CacheStore {
	return &memoryStore{
		c: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	entry, ok := v.(memoryEntry)
	if !ok {
		s.c.Delete(key)
		return nil, false, nil
	}

	remaining := time.Until(entry.deadline)
	if remaining <= 0 {
		s.c.Delete(key)
		return nil, false, nil
	}

	s.c.Set(key, entry, min(entry.sliding, remaining))
	return entry.payload, true, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, sliding, absolute time.Duration) error {
	entry := memoryEntry{
		payload:  value,
		deadline: time.Now().Add(absolute),
		sliding:  sliding,
	}
	s.c.Set(key, entry, min(sliding, absolute))
	return nil
}

func (s *memoryStore) Remove(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.c.Delete(key)
	}
	return nil
}
