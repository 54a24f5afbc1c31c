package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"homedisclose/internal/ledger/models"
	"homedisclose/pkg/domain"
)

// InMemoryStore keeps ledger entries per document in append order.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.DocumentID][]models.Event
}

func New() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.DocumentID][]models.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.RecordedAt.IsZero() {
		event.RecordedAt = time.Now().UTC()
	}
	s.events[event.DocumentID] = append(s.events[event.DocumentID], event)
	return nil
}

// CountByType aggregates a document's entries per event type.
func (s *InMemoryStore) CountByType(_ context.Context, documentID domain.DocumentID) ([]models.TypeCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byType := make(map[models.EventType]*models.TypeCount)
	for _, e := range s.events[documentID] {
		c, ok := byType[e.Type]
		if !ok {
			c = &models.TypeCount{Type: e.Type}
			byType[e.Type] = c
		}
		c.Count++
		if e.OccurredAt.After(c.LastOccurred) {
			c.LastOccurred = e.OccurredAt
		}
	}
	out := make([]models.TypeCount, 0, len(byType))
	for _, t := range models.AllEventTypes {
		if c, ok := byType[t]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

// ListByDocument returns one page, newest first, plus the filtered total.
func (s *InMemoryStore) ListByDocument(_ context.Context, documentID domain.DocumentID, q models.TimelineQuery) ([]models.Event, int, error) {
	s.mu.RLock()
	matched := make([]models.Event, 0, len(s.events[documentID]))
	for _, e := range s.events[documentID] {
		if len(q.Types) == 0 || slices.Contains(q.Types, e.Type) {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	// stable on append order so equal timestamps keep newest-appended first
	slices.Reverse(matched)
	slices.SortStableFunc(matched, func(a, b models.Event) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})

	total := len(matched)
	if q.Offset >= total {
		return []models.Event{}, total, nil
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total, nil
}

// ListShareEvents returns entries correlated with a share, oldest first.
func (s *InMemoryStore) ListShareEvents(_ context.Context, documentID domain.DocumentID) ([]models.Event, error) {
	s.mu.RLock()
	var out []models.Event
	for _, e := range s.events[documentID] {
		if _, ok := e.CorrelatedShare(); ok {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.Event) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	return out, nil
}
