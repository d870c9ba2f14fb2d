// Package cache declares the key-value store shared by the catalog snapshot
// and the filter result caches. redisstore.Client implements it.
package cache

import (
	"context"
	"time"
)

type Interface interface {
	// Get returns redisstore.ErrMiss for absent keys.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	DelPrefix(ctx context.Context, prefix string) (int, error)
}
