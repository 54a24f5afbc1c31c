// Package document persists disclosure documents. Stores return sentinel
// errors; the service layer translates them.
package document

import (
	"context"
	"sync"

	"homedisclose/internal/disclosure/models"
	"homedisclose/pkg/domain"
	"homedisclose/pkg/platform/sentinel"
)

// InMemoryStore keeps deep copies so callers never share state with the map.
type InMemoryStore struct {
	mu         sync.RWMutex
	documents  map[domain.DocumentID]*models.Document
	byProperty map[domain.PropertyID]domain.DocumentID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		documents:  make(map[domain.DocumentID]*models.Document),
		byProperty: make(map[domain.PropertyID]domain.DocumentID),
	}
}

// Create inserts doc. A second document for the same property is a conflict.
func (s *InMemoryStore) Create(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byProperty[doc.PropertyID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.documents[doc.ID]; exists {
		return sentinel.ErrConflict
	}
	s.documents[doc.ID] = doc.Clone()
	s.byProperty[doc.PropertyID] = doc.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *InMemoryStore) FindByPropertyID(_ context.Context, propertyID domain.PropertyID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byProperty[propertyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.documents[id].Clone(), nil
}

// Update replaces the stored document.
func (s *InMemoryStore) Update(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.documents[doc.ID] = doc.Clone()
	return nil
}
