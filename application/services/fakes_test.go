package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"promptbay-backend/domain/catalog"
	apperrors "promptbay-backend/pkg/errors"
)

// fakeDocumentStore is an in-memory ports.DocumentStore with failure
// injection and scan instrumentation.
type fakeDocumentStore struct {
	mu      sync.Mutex
	docs    map[string]*catalog.Document
	clock   time.Time
	scanErr error

	scanCalls int32
	scanDelay time.Duration
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{
		docs:  make(map[string]*catalog.Document),
		clock: time.Now().Add(-time.Hour),
	}
}

// tick hands out strictly increasing creation times so sort order is
// deterministic.
func (s *fakeDocumentStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *fakeDocumentStore) seed(doc catalog.Document) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.tick()
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	copied := doc
	s.docs[doc.ID] = &copied
	return doc.ID
}

func (s *fakeDocumentStore) failScans(err error) {
	s.mu.Lock()
	s.scanErr = err
	s.mu.Unlock()
}

func (s *fakeDocumentStore) scans() int32 {
	return atomic.LoadInt32(&s.scanCalls)
}

func (s *fakeDocumentStore) ScanAll(ctx context.Context) ([]catalog.Document, error) {
	atomic.AddInt32(&s.scanCalls, 1)
	if s.scanDelay > 0 {
		time.Sleep(s.scanDelay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanErr != nil {
		return nil, s.scanErr
	}

	docs := make([]catalog.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, *doc)
	}
	// Newest first, matching the store contract.
	for i := 0; i < len(docs); i++ {
		for j := i + 1; j < len(docs); j++ {
			if docs[j].CreatedAt.After(docs[i].CreatedAt) {
				docs[i], docs[j] = docs[j], docs[i]
			}
		}
	}
	return docs, nil
}

func (s *fakeDocumentStore) GetByID(ctx context.Context, id string) (*catalog.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("document")
	}
	copied := *doc
	return &copied, nil
}

func (s *fakeDocumentStore) Add(ctx context.Context, doc catalog.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.ID = uuid.New().String()
	doc.CreatedAt = s.tick()
	doc.UpdatedAt = doc.CreatedAt
	doc.Version = 1
	copied := doc
	s.docs[doc.ID] = &copied
	return doc.ID, nil
}

func (s *fakeDocumentStore) Update(ctx context.Context, id string, patch catalog.DocumentPatch) (*catalog.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("document")
	}
	patch.Apply(doc)
	doc.UpdatedAt = time.Now()
	doc.Version++
	copied := *doc
	return &copied, nil
}

func (s *fakeDocumentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return apperrors.NewNotFoundError("document")
	}
	delete(s.docs, id)
	return nil
}

func (s *fakeDocumentStore) IncrementField(ctx context.Context, id string, field string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return apperrors.NewNotFoundError("document")
	}
	switch field {
	case "ViewCount":
		doc.ViewCount += delta
	case "LikeCount":
		doc.LikeCount += delta
	}
	return nil
}

func (s *fakeDocumentStore) RunTransaction(ctx context.Context, id string, fn func(*catalog.Document) error) (*catalog.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("document")
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	doc.Version++
	doc.UpdatedAt = time.Now()
	copied := *doc
	return &copied, nil
}

// failingCacheStore errors on every operation; used to verify the read
// path degrades instead of failing.
type failingCacheStore struct{ err error }

func (f *failingCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f *failingCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return f.err
}

func (f *failingCacheStore) Delete(ctx context.Context, keys ...string) error {
	return f.err
}

func (f *failingCacheStore) DeleteByPattern(ctx context.Context, pattern string) error {
	return f.err
}
