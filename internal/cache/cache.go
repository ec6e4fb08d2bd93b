// Package cache memoizes backend reads per tenant with a staleness window and
// explicit invalidation after mutations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/tenant"
)

// ErrMiss is returned by a Store when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Collections cached by the services.
const (
	Students      = "students"
	Professionals = "professionals"
	Units         = "units"
	Classes       = "classes"
	Plans         = "plans"
	Recurrences   = "recurrences"
	Invoices      = "invoices"
	Expenses      = "expenses"
	Movements     = "movements"
	Payouts       = "payouts"
	Templates     = "templates"
	Dashboard     = "dashboard"
)

// Store is the raw key/value backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Cache stores JSON encoded values. A Cache without a store is disabled and
// always calls through to the loader.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// New builds a cache over store. A nil store disables caching.
func New(store Store, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{store: store, ttl: ttl, logger: logger}
}

// Enabled reports whether a store is configured.
func (c *Cache) Enabled() bool {
	return c != nil && c.store != nil
}

// Key builds a tenant scoped key: <tenant>:<collection>:<parts...>.
func Key(ctx context.Context, collection string, parts ...string) string {
	segments := append([]string{tenant.FromContext(ctx), collection}, parts...)
	return strings.Join(segments, ":")
}

// Invalidate drops every cached entry of a collection for the current tenant.
func (c *Cache) Invalidate(ctx context.Context, collection string) {
	if !c.Enabled() {
		return
	}
	prefix := Key(ctx, collection) + ":"
	if err := c.store.DeletePrefix(ctx, prefix); err != nil {
		c.logger.Warn("cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

// Remember returns the cached value under key or loads, stores and returns it.
// Store failures are logged and never surface to the caller. A ttl of zero
// uses the cache default.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return load(ctx)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var cached T
		if uerr := json.Unmarshal(raw, &cached); uerr == nil {
			return cached, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, ErrMiss):
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := c.store.Set(ctx, key, encoded, ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(fmt.Errorf("set %s: %w", key, err)))
	}
	return value, nil
}
