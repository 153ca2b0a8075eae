package kv

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore is an in-process store for local development and tests.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates a store whose entries expire after their own TTL
// and are swept every cleanup interval.
func NewMemoryStore(cleanup time.Duration) *MemoryStore {
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &MemoryStore{cache: cache.New(cache.NoExpiration, cleanup)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	x, found := s.cache.Get(key)
	if !found {
		return nil, ErrNotFound
	}
	return append([]byte(nil), x.([]byte)...), nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	s.cache.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Len reports stored entries, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}
