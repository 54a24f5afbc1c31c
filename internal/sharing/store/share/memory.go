// Package share persists share grants. Every status-changing operation is a
// single conditional step so concurrent requests cannot lose updates.
package share

import (
	"context"
	"sort"
	"sync"
	"time"

	"homedisclose/internal/sharing/models"
	"homedisclose/pkg/domain"
	"homedisclose/pkg/email"
	"homedisclose/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.Mutex
	shares  map[domain.ShareID]*models.Share
	byToken map[string]domain.ShareID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		shares:  make(map[domain.ShareID]*models.Share),
		byToken: make(map[string]domain.ShareID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, share *models.Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.shares[share.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byToken[share.AccessToken]; exists {
		return sentinel.ErrConflict
	}
	s.shares[share.ID] = share.Clone()
	s.byToken[share.AccessToken] = share.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.ShareID) (*models.Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	share, ok := s.shares[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return share.Clone(), nil
}

func (s *InMemoryStore) FindByToken(_ context.Context, token string) (*models.Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.shares[id].Clone(), nil
}

// ListByDocument returns the document's grants, newest first.
func (s *InMemoryStore) ListByDocument(_ context.Context, documentID domain.DocumentID) ([]*models.Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Share
	for _, share := range s.shares {
		if share.DocumentID == documentID {
			out = append(out, share.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListForRecipient returns grants bound to userID or addressed to address.
func (s *InMemoryStore) ListForRecipient(_ context.Context, userID domain.UserID, address string) ([]*models.Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Share
	for _, share := range s.shares {
		bound := share.RecipientUserID != nil && *share.RecipientUserID == userID
		if bound || email.Equal(share.RecipientEmail, address) {
			out = append(out, share.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// BindRecipient sets the recipient user id when it is still unset. Binding
// to the same user again is a no-op; a different user is ErrInvalidState.
func (s *InMemoryStore) BindRecipient(_ context.Context, id domain.ShareID, userID domain.UserID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	share, ok := s.shares[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if share.RecipientUserID != nil {
		if *share.RecipientUserID == userID {
			return nil
		}
		return sentinel.ErrInvalidState
	}
	share.RecipientUserID = &userID
	share.UpdatedAt = now
	return nil
}

// RecordView applies one view under the store lock.
func (s *InMemoryStore) RecordView(_ context.Context, id domain.ShareID, now time.Time) (*models.Share, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	share, ok := s.shares[id]
	if !ok {
		return nil, false, sentinel.ErrNotFound
	}
	first := share.ApplyView(now)
	return share.Clone(), first, nil
}

// Transition moves the grant from expected to next. A grant found in any
// other status is ErrInvalidState.
func (s *InMemoryStore) Transition(_ context.Context, id domain.ShareID, expected, next models.Status, now time.Time) (*models.Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	share, ok := s.shares[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if share.Status != expected || !expected.CanTransitionTo(next) {
		return nil, sentinel.ErrInvalidState
	}
	share.ApplyTransition(next, now)
	return share.Clone(), nil
}

func sortNewestFirst(shares []*models.Share) {
	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].CreatedAt.Equal(shares[j].CreatedAt) {
			return shares[i].ID.String() < shares[j].ID.String()
		}
		return shares[i].CreatedAt.After(shares[j].CreatedAt)
	})
}
