package service

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func TestCacheServiceRoundTrip(t *testing.T) {
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, nil, true)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "dashboard:admin", map[string]int{"students": 12}, 0))
	var out map[string]int
	hit, err := cache.Get(ctx, "dashboard:admin", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 12, out["students"])

	require.NoError(t, cache.Invalidate(ctx, "dashboard:*"))
	hit, err = cache.Get(ctx, "dashboard:admin", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceDisabled(t *testing.T) {
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, nil, false)

	require.NoError(t, cache.Set(context.Background(), "k", "v", 0))
	assert.False(t, store.has("k"))

	var nilCache *CacheService
	hit, err := nilCache.Get(context.Background(), "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
}
