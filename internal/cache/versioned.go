package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Cache families. Every key belongs to exactly one family.
const (
	FamilyCities     = "cities"
	FamilyPromotions = "promotions"
)

const versionKeyPrefix = "cache:version:"

// Versioned namespaces keys by a per-family version token. Bumping the token
// makes every earlier key in the family unreachable, which invalidates the
// family without enumerating its keys.
type Versioned struct {
	soft *Soft
	ttl  time.Duration
	log  *zap.SugaredLogger
}

// NewVersioned builds a versioned cache over client with the given entry TTL.
func NewVersioned(client Client, ttl time.Duration, log *zap.SugaredLogger) *Versioned {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Versioned{soft: NewSoft(client, log), ttl: ttl, log: log}
}

func versionKey(family string) string {
	return versionKeyPrefix + family
}

// Version returns the family's current token. A missing or unreadable token
// reads as zero.
func (v *Versioned) Version(ctx context.Context, family string) int64 {
	raw, ok := v.soft.read(ctx, versionKey(family))
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Key returns the fully qualified key for key within family.
func (v *Versioned) Key(ctx context.Context, family, key string) string {
	return fmt.Sprintf("%s:v%d:%s", family, v.Version(ctx, family), key)
}

// Bump invalidates every key in family.
func (v *Versioned) Bump(ctx context.Context, family string) {
	if v == nil {
		return
	}
	if _, ok := v.soft.Incr(ctx, versionKey(family)); ok {
		v.log.Debugw("Cache family invalidated", "family", family)
	}
}

func (v *Versioned) load(ctx context.Context, family, key string, dst any) bool {
	raw, ok := v.soft.Get(ctx, v.Key(ctx, family, key))
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		v.log.Warnw("Cache entry undecodable", "family", family, "key", key, "error", err)
		return false
	}
	return true
}

func (v *Versioned) store(ctx context.Context, family, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		v.log.Warnw("Cache entry unencodable", "family", family, "key", key, "error", err)
		return
	}
	v.soft.Set(ctx, v.Key(ctx, family, key), raw, v.ttl)
}

// Remember returns the cached value for key in family, or calls load and
// caches its result. Errors from load are returned and nothing is cached.
// A nil cache always calls load.
func Remember[T any](ctx context.Context, v *Versioned, family, key string, load func() (T, error)) (T, error) {
	var cached T
	if v != nil && v.load(ctx, family, key, &cached) {
		return cached, nil
	}

	fresh, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	if v != nil {
		v.store(ctx, family, key, fresh)
	}
	return fresh, nil
}
