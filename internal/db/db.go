// Package db defines the key-value storage contract backing the place
// cache.
package db

import (
	"context"
	"time"
)

// Store is the narrow KV contract this service needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}
