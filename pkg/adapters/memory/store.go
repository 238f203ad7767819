package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gucorpling/squeezer/pkg/domain"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Document),
	}
}

// NewStoreFrom creates a store seeded with documents.
func NewStoreFrom(docs ...*domain.Document) *Store {
	s := NewStore()
	for _, d := range docs {
		s.data[d.ID] = d.Clone()
	}
	return s
}

// Save persists the document in memory.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[doc.ID] = copied
	return nil
}

// Load retrieves the document from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}

	// Copy on read so callers can't mutate store state directly by pointer
	return doc.Clone(), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored document IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
