package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"promptbay-backend/domain/catalog"
	"promptbay-backend/infrastructure/cache"
)

func newTestResultCache(t *testing.T) (*ResultCache, *cache.MemoryStore) {
	t.Helper()
	kv := cache.NewMemoryStore()
	t.Cleanup(func() { kv.Close() })
	return NewResultCache(promptsResource, kv, 0, zap.NewNop()), kv
}

func TestResultCache_RoundTrip(t *testing.T) {
	rc, _ := newTestResultCache(t)
	ctx := context.Background()

	q := catalog.Query{Category: "Marketing", Limit: 10}
	page := catalog.NewPage([]catalog.Document{{ID: "a"}}, 1, 10, 0)

	_, ok := rc.Get(ctx, q)
	assert.False(t, ok)

	rc.Put(ctx, q, page)

	got, ok := rc.Get(ctx, q)
	require.True(t, ok)
	assert.Equal(t, 1, got.TotalCount)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "a", got.Items[0].ID)
}

func TestResultCache_EmptyPageIsCacheable(t *testing.T) {
	rc, _ := newTestResultCache(t)
	ctx := context.Background()

	q := catalog.Query{Search: "no matches"}
	rc.Put(ctx, q, catalog.NewPage([]catalog.Document{}, 0, catalog.DefaultLimit, 0))

	got, ok := rc.Get(ctx, q)
	require.True(t, ok, "an empty page is a valid cached value, not a negative-cache sentinel")
	assert.Equal(t, 0, got.TotalCount)
	assert.Empty(t, got.Items)
}

func TestResultCache_PurgeDropsAllPages(t *testing.T) {
	rc, kv := newTestResultCache(t)
	ctx := context.Background()

	rc.Put(ctx, catalog.Query{Category: "A"}, catalog.NewPage(nil, 0, 20, 0))
	rc.Put(ctx, catalog.Query{Category: "B"}, catalog.NewPage(nil, 0, 20, 0))
	// A key outside the result prefix survives the purge.
	require.NoError(t, kv.Set(ctx, promptsResource.DocumentKey("x"), []byte("{}"), 0))

	require.NoError(t, rc.Purge(ctx))

	_, ok := rc.Get(ctx, catalog.Query{Category: "A"})
	assert.False(t, ok)
	_, ok = rc.Get(ctx, catalog.Query{Category: "B"})
	assert.False(t, ok)

	_, found, err := kv.Get(ctx, promptsResource.DocumentKey("x"))
	require.NoError(t, err)
	assert.True(t, found)
}

func TestResultCache_StoreFailuresDegrade(t *testing.T) {
	rc := NewResultCache(promptsResource, &failingCacheStore{err: errors.New("kv down")}, 0, zap.NewNop())
	ctx := context.Background()

	q := catalog.Query{Limit: 10}

	// Failed get is a miss, failed put is a no-op; neither panics or
	// surfaces an error to the read path.
	_, ok := rc.Get(ctx, q)
	assert.False(t, ok)
	rc.Put(ctx, q, catalog.NewPage(nil, 0, 10, 0))
}

func TestResultCache_DropsUndecodableEntries(t *testing.T) {
	rc, kv := newTestResultCache(t)
	ctx := context.Background()

	q := catalog.Query{Limit: 10}
	key := q.CacheKey(promptsResource.ResultPrefix())
	require.NoError(t, kv.Set(ctx, key, []byte("not json"), 0))

	_, ok := rc.Get(ctx, q)
	assert.False(t, ok)

	_, found, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found, "corrupt entry should be evicted")
}
