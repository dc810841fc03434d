package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"promptbay-backend/application/ports"
	"promptbay-backend/domain/catalog"
)

// DefaultResultTTL bounds how long a cached page can outlive the
// invalidation fan-out. Invalidation, not expiry, is the correctness
// mechanism; the TTL only caps the damage of a missed purge.
const DefaultResultTTL = 5 * time.Minute

// ResultCache stores computed list pages in the key-value store, keyed
// by the canonical query key. All cache store failures degrade: a
// failed Get is a miss, a failed Put skips caching. The read path
// stays correct with the cache store entirely down.
type ResultCache struct {
	resource catalog.Resource
	kv       ports.CacheStore
	ttl      time.Duration
	logger   *zap.Logger
}

// NewResultCache creates a result cache for one resource. A
// non-positive ttl falls back to DefaultResultTTL.
func NewResultCache(resource catalog.Resource, kv ports.CacheStore, ttl time.Duration, logger *zap.Logger) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &ResultCache{resource: resource, kv: kv, ttl: ttl, logger: logger}
}

// Get returns the cached page for the query, or false on a miss. An
// empty page is a valid cached value; there is no negative-result
// sentinel distinct from it.
func (rc *ResultCache) Get(ctx context.Context, q catalog.Query) (*catalog.Page, bool) {
	key := q.CacheKey(rc.resource.ResultPrefix())
	data, found, err := rc.kv.Get(ctx, key)
	if err != nil {
		rc.logger.Warn("result cache get failed, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	var page catalog.Page
	if err := json.Unmarshal(data, &page); err != nil {
		rc.logger.Warn("dropping undecodable result cache entry",
			zap.String("key", key), zap.Error(err))
		if delErr := rc.kv.Delete(ctx, key); delErr != nil {
			rc.logger.Warn("failed to drop result cache entry", zap.String("key", key), zap.Error(delErr))
		}
		return nil, false
	}
	return &page, true
}

// Put caches a computed page under the query's canonical key.
func (rc *ResultCache) Put(ctx context.Context, q catalog.Query, page *catalog.Page) {
	key := q.CacheKey(rc.resource.ResultPrefix())
	data, err := json.Marshal(page)
	if err != nil {
		rc.logger.Warn("failed to encode result page", zap.String("key", key), zap.Error(err))
		return
	}
	if err := rc.kv.Set(ctx, key, data, rc.ttl); err != nil {
		rc.logger.Warn("result cache put failed, skipping",
			zap.String("key", key), zap.Error(err))
	}
}

// Purge drops every cached page for the resource. The key space is
// combinatorial, so invalidation is a coarse prefix purge rather than
// targeted deletes.
func (rc *ResultCache) Purge(ctx context.Context) error {
	return rc.kv.DeleteByPattern(ctx, rc.resource.ResultPattern())
}
