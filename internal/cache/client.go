// Package cache provides the key/value cache used for read-heavy listings.
// Backends implement Client; Soft turns every backend failure into a miss and
// Versioned groups keys into families that can be invalidated in one step.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Client.Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Client is the minimal store contract a cache backend must satisfy.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Close() error
}
