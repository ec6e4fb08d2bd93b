package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/franchise/internal/tenant"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func TestRememberLoadsOnceUntilInvalidated(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil)
	ctx := tenant.WithID(context.Background(), "Centro")

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	key := Key(ctx, Invoices, "2025-10")
	assert.Equal(t, "centro:invoices:2025-10", key)

	for i := 0; i < 3; i++ {
		got, err := Remember(ctx, c, key, 0, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, time.Minute, store.ttls[key])

	c.Invalidate(ctx, Invoices)
	_, err := Remember(ctx, c, key, 0, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestInvalidateIsTenantScoped(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil)
	a := tenant.WithID(context.Background(), "a")
	b := tenant.WithID(context.Background(), "b")

	load := func(context.Context) (int, error) { return 1, nil }
	_, _ = Remember(a, c, Key(a, Units, "all"), 0, load)
	_, _ = Remember(b, c, Key(b, Units, "all"), 0, load)

	c.Invalidate(a, Units)

	_, okA := store.data["a:units:all"]
	_, okB := store.data["b:units:all"]
	assert.False(t, okA)
	assert.True(t, okB)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil)
	ctx := context.Background()
	boom := errors.New("backend down")

	_, err := Remember(ctx, c, "k", 0, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.data)
}

func TestRememberFallsThroughOnStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	c := New(store, time.Minute, nil)

	got, err := Remember(context.Background(), c, "k", 0, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestDisabledCacheCallsThrough(t *testing.T) {
	c := New(nil, 0, nil)
	assert.False(t, c.Enabled())

	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Remember(context.Background(), c, "k", 0, func(context.Context) (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
	c.Invalidate(context.Background(), Units)
}
