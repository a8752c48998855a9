package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"bizdir/internal/metrics"
)

// Soft wraps a Client so that cache failures never reach callers. Reads that
// fail for any reason report a miss, writes and increments that fail are
// logged and dropped.
type Soft struct {
	client Client
	log    *zap.SugaredLogger
}

// NewSoft wraps client. A nil logger disables logging.
func NewSoft(client Client, log *zap.SugaredLogger) *Soft {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Soft{client: client, log: log}
}

// Get returns the cached value and whether it was found, and records the
// lookup as a hit or miss.
func (s *Soft) Get(ctx context.Context, key string) ([]byte, bool) {
	val, ok := s.read(ctx, key)
	if !ok {
		metrics.CacheLookups.WithLabelValues(metrics.CacheResultMiss).Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues(metrics.CacheResultHit).Inc()
	return val, true
}

// read is Get without lookup metrics, for bookkeeping keys.
func (s *Soft) read(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			s.log.Warnw("Cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (s *Soft) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl); err != nil {
		s.log.Warnw("Cache write failed", "key", key, "error", err)
	}
}

// Incr returns the new counter value, or false when the backend failed.
func (s *Soft) Incr(ctx context.Context, key string) (int64, bool) {
	n, err := s.client.Incr(ctx, key)
	if err != nil {
		s.log.Warnw("Cache increment failed", "key", key, "error", err)
		return 0, false
	}
	return n, true
}
