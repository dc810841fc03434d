// Package ports defines the interfaces the application core needs from
// its collaborators. Infrastructure packages provide implementations;
// tests provide fakes.
package ports

import (
	"context"
	"time"

	"promptbay-backend/domain/catalog"
)

// DocumentStore is the durable collection of documents for one
// resource type. Implementations must assign IDs on Add and order
// ScanAll results by creation time descending.
type DocumentStore interface {
	// ScanAll reads the entire collection, newest first.
	ScanAll(ctx context.Context) ([]catalog.Document, error)

	// GetByID returns the document or a NOT_FOUND error.
	GetByID(ctx context.Context, id string) (*catalog.Document, error)

	// Add persists a new document and returns its assigned ID.
	Add(ctx context.Context, doc catalog.Document) (string, error)

	// Update applies a partial update and returns the updated document.
	Update(ctx context.Context, id string, patch catalog.DocumentPatch) (*catalog.Document, error)

	// Delete removes the document.
	Delete(ctx context.Context, id string) error

	// IncrementField atomically adds delta to a numeric field. The
	// increment happens store-side; no read-modify-write in memory.
	IncrementField(ctx context.Context, id string, field string, delta int) error

	// RunTransaction re-reads the document, applies fn, and writes the
	// result back only if the document was not modified concurrently,
	// retrying on conflict. Used for the like toggle so likeCount and
	// the like set stay consistent under concurrent writers.
	RunTransaction(ctx context.Context, id string, fn func(*catalog.Document) error) (*catalog.Document, error)
}

// CacheStore is the shared key-value cache (Redis in production, an
// in-memory implementation in tests and development).
type CacheStore interface {
	// Get returns the raw value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeleteByPattern removes every key matching the glob pattern.
	DeleteByPattern(ctx context.Context, pattern string) error
}
