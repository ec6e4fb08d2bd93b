// Package tenant carries the franchise tenant of a request through contexts.
package tenant

import (
	"context"
	"strings"
)

// Default is used when a request does not name a tenant.
const Default = "default"

type ctxKey struct{}

// WithID returns a context carrying the tenant id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, Normalize(id))
}

// FromContext returns the tenant id stored in ctx, or Default.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return Default
	}
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return id
	}
	return Default
}

// Normalize lowercases and trims a tenant id; empty ids become Default.
func Normalize(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return Default
	}
	return id
}
