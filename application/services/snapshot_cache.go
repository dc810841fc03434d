package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"promptbay-backend/application/ports"
	"promptbay-backend/domain/catalog"
)

// DefaultStalenessBudget is how old a snapshot may get before a read
// triggers a rescan.
const DefaultStalenessBudget = 24 * time.Hour

// SnapshotCache owns the in-process copy of one resource's full
// collection. The snapshot is rebuilt wholesale from the document
// store and swapped atomically under the lock, so readers never see a
// partially rebuilt snapshot and lastRefreshed never moves backwards.
//
// Refreshes are coalesced through singleflight: concurrent
// EnsureFresh/ForceRefresh callers join the in-flight scan instead of
// issuing redundant ones.
type SnapshotCache struct {
	resource catalog.Resource
	store    ports.DocumentStore
	kv       ports.CacheStore
	budget   time.Duration
	logger   *zap.Logger

	group singleflight.Group

	mu            sync.RWMutex
	docs          []catalog.Document
	lastRefreshed time.Time
}

// NewSnapshotCache creates a snapshot cache for one resource. A
// non-positive budget falls back to DefaultStalenessBudget.
func NewSnapshotCache(
	resource catalog.Resource,
	store ports.DocumentStore,
	kv ports.CacheStore,
	budget time.Duration,
	logger *zap.Logger,
) *SnapshotCache {
	if budget <= 0 {
		budget = DefaultStalenessBudget
	}
	return &SnapshotCache{
		resource: resource,
		store:    store,
		kv:       kv,
		budget:   budget,
		logger:   logger,
	}
}

// Snapshot returns the current snapshot without refreshing. The slice
// is replaced wholesale on refresh and must not be mutated by callers.
func (c *SnapshotCache) Snapshot() ([]catalog.Document, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.docs, c.lastRefreshed, c.docs != nil
}

// EnsureFresh returns a usable snapshot, rescanning the document store
// if none exists or the staleness budget is exceeded. If the rescan
// fails but a stale snapshot exists, the stale snapshot is returned
// and the failure only logged; with no snapshot at all the failure is
// a hard error.
func (c *SnapshotCache) EnsureFresh(ctx context.Context) ([]catalog.Document, error) {
	c.mu.RLock()
	docs, last := c.docs, c.lastRefreshed
	c.mu.RUnlock()

	if docs != nil && time.Since(last) <= c.budget {
		return docs, nil
	}

	fresh, err := c.refresh(ctx)
	if err == nil {
		return fresh, nil
	}
	if docs != nil {
		c.logger.Warn("snapshot refresh failed, serving stale snapshot",
			zap.String("resource", c.resource.Name),
			zap.Time("lastRefreshed", last),
			zap.Error(err),
		)
		return docs, nil
	}
	return nil, fmt.Errorf("no %s snapshot available: %w", c.resource.Name, err)
}

// ForceRefresh rescans unconditionally (joining any scan already in
// flight). The invalidation coordinator calls this after every
// mutation.
func (c *SnapshotCache) ForceRefresh(ctx context.Context) error {
	_, err := c.refresh(ctx)
	return err
}

func (c *SnapshotCache) refresh(ctx context.Context) ([]catalog.Document, error) {
	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		docs, err := c.store.ScanAll(ctx)
		if err != nil {
			return nil, err
		}
		if docs == nil {
			docs = []catalog.Document{}
		}

		c.mu.Lock()
		c.docs = docs
		c.lastRefreshed = time.Now()
		c.mu.Unlock()

		// Cheap count queries read this key instead of the snapshot.
		countKey := c.resource.CountKey()
		if err := c.kv.Set(ctx, countKey, []byte(strconv.Itoa(len(docs))), 0); err != nil {
			c.logger.Warn("failed to cache document count",
				zap.String("key", countKey),
				zap.Error(err),
			)
		}

		c.logger.Debug("snapshot refreshed",
			zap.String("resource", c.resource.Name),
			zap.Int("documents", len(docs)),
		)
		return docs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Document), nil
}
