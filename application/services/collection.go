package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"promptbay-backend/application/ports"
	"promptbay-backend/domain/catalog"
)

// DefaultDocumentTTL is the TTL for single-document cache entries.
const DefaultDocumentTTL = 10 * time.Minute

// CollectionConfig tunes one cache-backed collection.
type CollectionConfig struct {
	StalenessBudget time.Duration
	ResultTTL       time.Duration
	DocumentTTL     time.Duration
}

// Collection is the cache-backed view over one resource type. It wires
// the snapshot cache, query engine, result cache and invalidation
// coordinator behind the operations the HTTP handlers need, and is
// instantiated once per resource (prompts, tools).
type Collection struct {
	resource    catalog.Resource
	store       ports.DocumentStore
	kv          ports.CacheStore
	snapshot    *SnapshotCache
	results     *ResultCache
	invalidator *Invalidator
	docTTL      time.Duration
	logger      *zap.Logger
}

// NewCollection builds a cache-backed collection for one resource.
func NewCollection(
	resource catalog.Resource,
	store ports.DocumentStore,
	kv ports.CacheStore,
	cfg CollectionConfig,
	logger *zap.Logger,
) *Collection {
	if cfg.DocumentTTL <= 0 {
		cfg.DocumentTTL = DefaultDocumentTTL
	}
	snapshot := NewSnapshotCache(resource, store, kv, cfg.StalenessBudget, logger)
	results := NewResultCache(resource, kv, cfg.ResultTTL, logger)
	return &Collection{
		resource:    resource,
		store:       store,
		kv:          kv,
		snapshot:    snapshot,
		results:     results,
		invalidator: NewInvalidator(resource, snapshot, results, kv, logger),
		docTTL:      cfg.DocumentTTL,
		logger:      logger,
	}
}

// Resource returns the resource descriptor the collection serves.
func (c *Collection) Resource() catalog.Resource { return c.resource }

// Warm loads the initial snapshot. Callable at startup so the first
// request does not pay for the full scan; failure is not fatal since
// reads refresh lazily.
func (c *Collection) Warm(ctx context.Context) error {
	return c.snapshot.ForceRefresh(ctx)
}

// List computes one page of results, consulting the result cache
// first. Pages served from the cache carry FromCache=true.
func (c *Collection) List(ctx context.Context, q catalog.Query) (*catalog.Page, error) {
	q = q.Normalize()

	if page, ok := c.results.Get(ctx, q); ok {
		page.FromCache = true
		return page, nil
	}

	docs, err := c.snapshot.EnsureFresh(ctx)
	if err != nil {
		return nil, err
	}

	items, total := catalog.Execute(docs, q)
	page := catalog.NewPage(items, total, q.Limit, q.Offset)
	c.results.Put(ctx, q, page)
	return page, nil
}

// Get fetches a single document, read-through via its cache entry
// unless skipCache is set.
func (c *Collection) Get(ctx context.Context, id string, skipCache bool) (*catalog.Document, bool, error) {
	key := c.resource.DocumentKey(id)

	if !skipCache {
		data, found, err := c.kv.Get(ctx, key)
		if err != nil {
			c.logger.Warn("document cache get failed, treating as miss",
				zap.String("key", key), zap.Error(err))
		} else if found {
			var doc catalog.Document
			if err := json.Unmarshal(data, &doc); err == nil {
				return &doc, true, nil
			}
			c.logger.Warn("dropping undecodable document cache entry", zap.String("key", key))
			if err := c.kv.Delete(ctx, key); err != nil {
				c.logger.Warn("failed to drop document cache entry", zap.String("key", key), zap.Error(err))
			}
		}
	}

	doc, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(doc); err == nil {
		if err := c.kv.Set(ctx, key, data, c.docTTL); err != nil {
			c.logger.Warn("document cache put failed, skipping",
				zap.String("key", key), zap.Error(err))
		}
	}
	return doc, false, nil
}

// Create persists a new document. The store assigns the ID and
// timestamps; the caches are invalidated once the write commits.
func (c *Collection) Create(ctx context.Context, doc catalog.Document) (*catalog.Document, error) {
	doc.Likes = nil
	doc.LikeCount = 0
	doc.ViewCount = 0
	if doc.Category == "" {
		doc.Category = catalog.CategoryAll
	}

	id, err := c.store.Add(ctx, doc)
	if err != nil {
		return nil, err
	}

	c.invalidator.OnMutation(ctx, Mutation{
		Type:          MutationCreate,
		DocumentID:    id,
		AfterCategory: doc.Category,
	})

	created, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies a partial update and invalidates, purging the count
// entries for both the old and new category when the patch moves the
// document.
func (c *Collection) Update(ctx context.Context, id string, patch catalog.DocumentPatch) (*catalog.Document, error) {
	before, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := c.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	c.invalidator.OnMutation(ctx, Mutation{
		Type:           MutationUpdate,
		DocumentID:     id,
		BeforeCategory: before.Category,
		AfterCategory:  updated.Category,
	})
	return updated, nil
}

// Delete removes the document and every cache entry that could still
// serve it.
func (c *Collection) Delete(ctx context.Context, id string) error {
	doc, err := c.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	c.invalidator.OnMutation(ctx, Mutation{
		Type:           MutationDelete,
		DocumentID:     id,
		BeforeCategory: doc.Category,
	})
	return nil
}

// ToggleLike flips the user's like through the store's transactional
// read-modify-write path, which keeps likeCount equal to the like set
// size under concurrent likers. It returns the updated document and
// whether the user now likes it.
func (c *Collection) ToggleLike(ctx context.Context, id, userID string) (*catalog.Document, bool, error) {
	liked := false
	doc, err := c.store.RunTransaction(ctx, id, func(d *catalog.Document) error {
		liked = d.ToggleLike(userID)
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	c.invalidator.OnMutation(ctx, Mutation{
		Type:           MutationLike,
		DocumentID:     id,
		BeforeCategory: doc.Category,
		AfterCategory:  doc.Category,
	})
	return doc, liked, nil
}

// IncrementView bumps the view counter via the store's atomic
// increment.
func (c *Collection) IncrementView(ctx context.Context, id string) error {
	if err := c.store.IncrementField(ctx, id, "ViewCount", 1); err != nil {
		return err
	}
	c.invalidator.OnMutation(ctx, Mutation{
		Type:       MutationView,
		DocumentID: id,
	})
	return nil
}

// Count returns the total document count, read-through via the
// well-known count key the snapshot refresh maintains.
func (c *Collection) Count(ctx context.Context) (int, error) {
	if n, ok := c.cachedCount(ctx, c.resource.CountKey()); ok {
		return n, nil
	}
	docs, err := c.snapshot.EnsureFresh(ctx)
	if err != nil {
		return 0, err
	}
	n := len(docs)
	c.putCount(ctx, c.resource.CountKey(), n)
	return n, nil
}

// CountByCategory returns the document count for one category,
// read-through via the per-category count key.
func (c *Collection) CountByCategory(ctx context.Context, category string) (int, error) {
	if category == "" || category == catalog.CategoryAll {
		return c.Count(ctx)
	}
	key := c.resource.CategoryCountKey(category)
	if n, ok := c.cachedCount(ctx, key); ok {
		return n, nil
	}
	docs, err := c.snapshot.EnsureFresh(ctx)
	if err != nil {
		return 0, err
	}
	n := catalog.CountByCategory(docs, category)
	c.putCount(ctx, key, n)
	return n, nil
}

func (c *Collection) cachedCount(ctx context.Context, key string) (int, bool) {
	data, found, err := c.kv.Get(ctx, key)
	if err != nil || !found {
		if err != nil {
			c.logger.Warn("count cache get failed, treating as miss",
				zap.String("key", key), zap.Error(err))
		}
		return 0, false
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *Collection) putCount(ctx context.Context, key string, n int) {
	if err := c.kv.Set(ctx, key, []byte(strconv.Itoa(n)), 0); err != nil {
		c.logger.Warn("count cache put failed, skipping",
			zap.String("key", key), zap.Error(err))
	}
}
