package models

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
	"homedisclose/pkg/requestcontext"
)

type ShareSuite struct {
	suite.Suite
	now   time.Time
	share *Share
}

func TestShareSuite(t *testing.T) {
	suite.Run(t, new(ShareSuite))
}

func (s *ShareSuite) SetupTest() {
	s.now = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	share, err := NewShare(domain.NewShareID(), domain.NewDocumentID(), domain.UserID(uuid.New()),
		CreateInput{RecipientEmail: "  Buyer@Example.com "}, s.now)
	s.Require().NoError(err)
	s.share = share
}

func (s *ShareSuite) TestNewShare() {
	s.Run("normalizes email and derives a name", func() {
		s.Equal("buyer@example.com", s.share.RecipientEmail)
		s.Equal("Buyer", s.share.RecipientName)
		s.Equal(StatusPending, s.share.Status)
		s.Zero(s.share.ViewCount)
	})

	s.Run("token is 32 random bytes in base64url", func() {
		raw, err := base64.RawURLEncoding.DecodeString(s.share.AccessToken)
		s.Require().NoError(err)
		s.Len(raw, 32)
	})

	s.Run("rejects missing and malformed email", func() {
		for _, addr := range []string{"", "not-an-email", "Buyer <buyer@example.com>"} {
			_, err := NewShare(domain.NewShareID(), domain.NewDocumentID(), domain.UserID(uuid.New()), CreateInput{RecipientEmail: addr}, s.now)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), addr)
		}
	})

	s.Run("rejects past expiration", func() {
		past := s.now.Add(-time.Hour)
		_, err := NewShare(domain.NewShareID(), domain.NewDocumentID(), domain.UserID(uuid.New()),
			CreateInput{RecipientEmail: "a@x.com", ExpiresAt: &past}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ShareSuite) TestViewIsExactlyOnceFirst() {
	s.True(s.share.ApplyView(s.now))
	first := *s.share.FirstViewedAt

	later := s.now.Add(time.Hour)
	s.False(s.share.ApplyView(later))
	s.Equal(first, *s.share.FirstViewedAt)
	s.Equal(later, *s.share.LastViewedAt)
	s.Equal(2, s.share.ViewCount)
	s.Equal(StatusViewed, s.share.Status)
}

func (s *ShareSuite) TestAcknowledgeGuard() {
	s.True(dErrors.HasCode(s.share.CanAcknowledge(), dErrors.CodeInvalidTransition), "pending must view first")

	s.share.ApplyView(s.now)
	s.Require().NoError(s.share.CanAcknowledge())
	s.share.ApplyTransition(StatusAcknowledged, s.now)
	s.NotNil(s.share.AcknowledgedAt)

	s.True(dErrors.HasCode(s.share.CanAcknowledge(), dErrors.CodeInvalidTransition), "re-acknowledge is an error")

	s.share.ApplyView(s.now)
	s.Equal(StatusAcknowledged, s.share.Status, "views never regress status")
}

func (s *ShareSuite) TestSignGuard() {
	s.NoError(s.share.CanSign(), "sign is legal straight from pending")
	s.share.ApplyTransition(StatusSigned, s.now)
	s.True(dErrors.HasCode(s.share.CanSign(), dErrors.CodeInvalidTransition))
	s.True(dErrors.HasCode(s.share.CanAcknowledge(), dErrors.CodeInvalidTransition))
}

func (s *ShareSuite) TestMatchRecipient() {
	userID := domain.UserID(uuid.New())

	_, ok := s.share.MatchRecipient(requestcontext.Identity{})
	s.False(ok, "anonymous callers never match")

	path, ok := s.share.MatchRecipient(requestcontext.Identity{UserID: userID, Email: "BUYER@example.com"})
	s.True(ok)
	s.Equal(AccessByEmail, path)
	s.True(s.share.NeedsBinding(path))

	s.share.RecipientUserID = &userID
	path, ok = s.share.MatchRecipient(requestcontext.Identity{UserID: userID, Email: "changed@example.com"})
	s.True(ok)
	s.Equal(AccessByUserID, path)

	_, ok = s.share.MatchRecipient(requestcontext.Identity{UserID: domain.UserID(uuid.New()), Email: "other@example.com"})
	s.False(ok)
}

func (s *ShareSuite) TestExpiry() {
	expires := s.now.Add(time.Hour)
	s.share.ExpiresAt = &expires
	s.False(s.share.IsExpired(s.now))
	s.True(s.share.IsExpired(expires))
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusViewed, true},
		{StatusPending, StatusAcknowledged, false},
		{StatusViewed, StatusAcknowledged, true},
		{StatusAcknowledged, StatusViewed, false},
		{StatusPending, StatusSigned, true},
		{StatusAcknowledged, StatusSigned, true},
		{StatusSigned, StatusSigned, false},
		{StatusSigned, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestClone(t *testing.T) {
	share, err := NewShare(domain.NewShareID(), domain.NewDocumentID(), domain.UserID(uuid.New()), CreateInput{RecipientEmail: "a@x.com"}, time.Now())
	require.NoError(t, err)
	share.ApplyView(time.Now())

	c := share.Clone()
	c.ApplyView(time.Now().Add(time.Minute))
	assert.Equal(t, 1, share.ViewCount)
	assert.NotSame(t, share.FirstViewedAt, c.FirstViewedAt)
}
