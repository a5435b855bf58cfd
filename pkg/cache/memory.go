package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps encoded values in process memory.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	// Purge expired items every 10 minutes
	return &MemoryStore{
		cache: gocache.New(defaultTTL, 10*time.Minute),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	x, found := s.cache.Get(key)
	if !found {
		return false, nil
	}
	raw, ok := x.([]byte)
	if !ok {
		s.cache.Delete(key)
		return false, nil
	}
	if err := decode(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached value: %w", err)
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := encode(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	s.cache.Set(key, raw, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
