// Package kv provides TTL-bounded byte stores used for coaching session
// state. Every backend returns ErrNotFound for a missing or expired key.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the key is absent or has expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is a get/put-with-TTL byte store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*DynamoStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
