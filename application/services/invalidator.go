package services

import (
	"context"

	"go.uber.org/zap"

	"promptbay-backend/application/ports"
	"promptbay-backend/domain/catalog"
)

// MutationType classifies the document store write that triggered an
// invalidation.
type MutationType string

const (
	MutationCreate MutationType = "create"
	MutationUpdate MutationType = "update"
	MutationDelete MutationType = "delete"
	MutationLike   MutationType = "like"
	MutationView   MutationType = "view"
)

// Mutation describes one committed document store write.
type Mutation struct {
	Type           MutationType
	DocumentID     string
	BeforeCategory string
	AfterCategory  string
}

// Invalidator fans out cache invalidation after a successful mutation:
// force-refresh the snapshot, coarse-purge all cached query pages,
// drop the single-document entry, and drop the affected count entries.
// Every step is best-effort; the mutation already committed and must
// not fail for cache-consistency reasons, so failures are logged and
// the fan-out continues.
type Invalidator struct {
	resource catalog.Resource
	snapshot *SnapshotCache
	results  *ResultCache
	kv       ports.CacheStore
	logger   *zap.Logger
}

// NewInvalidator wires the invalidation coordinator for one resource.
func NewInvalidator(
	resource catalog.Resource,
	snapshot *SnapshotCache,
	results *ResultCache,
	kv ports.CacheStore,
	logger *zap.Logger,
) *Invalidator {
	return &Invalidator{
		resource: resource,
		snapshot: snapshot,
		results:  results,
		kv:       kv,
		logger:   logger,
	}
}

// OnMutation runs the invalidation steps in order. It is called
// synchronously after the document store write commits.
func (iv *Invalidator) OnMutation(ctx context.Context, m Mutation) {
	log := iv.logger.With(
		zap.String("resource", iv.resource.Name),
		zap.String("mutation", string(m.Type)),
		zap.String("documentID", m.DocumentID),
	)

	if err := iv.snapshot.ForceRefresh(ctx); err != nil {
		log.Warn("snapshot refresh after mutation failed", zap.Error(err))
	}

	if err := iv.results.Purge(ctx); err != nil {
		log.Warn("result cache purge failed", zap.Error(err))
	}

	if m.DocumentID != "" {
		if err := iv.kv.Delete(ctx, iv.resource.DocumentKey(m.DocumentID)); err != nil {
			log.Warn("document cache purge failed", zap.Error(err))
		}
	}

	categories := make([]string, 0, 2)
	if m.BeforeCategory != "" {
		categories = append(categories, m.BeforeCategory)
	}
	if m.AfterCategory != "" && m.AfterCategory != m.BeforeCategory {
		categories = append(categories, m.AfterCategory)
	}
	for _, cat := range categories {
		if err := iv.kv.Delete(ctx, iv.resource.CategoryCountKey(cat)); err != nil {
			log.Warn("category count purge failed", zap.String("category", cat), zap.Error(err))
		}
	}

	if err := iv.kv.Delete(ctx, iv.resource.CountKey()); err != nil {
		log.Warn("total count purge failed", zap.Error(err))
	}
}
