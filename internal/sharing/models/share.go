package models

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
	"homedisclose/pkg/email"
	"homedisclose/pkg/requestcontext"
)

const (
	tokenBytes       = 32
	maxMessageLength = 2000
	maxNameLength    = 200
)

// Share is a token-and-email-bound right for one recipient to view,
// acknowledge and counter-sign one document.
//
// Invariants:
//   - Status only moves forward
//   - FirstViewedAt is set exactly once, on the first view
//   - RecipientUserID is only ever set once
type Share struct {
	ID              domain.ShareID    `json:"id"`
	DocumentID      domain.DocumentID `json:"document_id"`
	RecipientEmail  string            `json:"recipient_email"`
	RecipientName   string            `json:"recipient_name"`
	Message         string            `json:"message,omitempty"`
	RecipientUserID *domain.UserID    `json:"recipient_user_id,omitempty"`
	AccessToken     string            `json:"-"`
	Status          Status            `json:"status"`
	ViewCount       int               `json:"view_count"`
	FirstViewedAt   *time.Time        `json:"first_viewed_at,omitempty"`
	LastViewedAt    *time.Time        `json:"last_viewed_at,omitempty"`
	AcknowledgedAt  *time.Time        `json:"acknowledged_at,omitempty"`
	SignedAt        *time.Time        `json:"signed_at,omitempty"`
	ExpiresAt       *time.Time        `json:"expires_at,omitempty"`
	CreatedBy       domain.UserID     `json:"created_by"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// CreateInput is what a seller supplies when sharing.
type CreateInput struct {
	RecipientEmail string
	RecipientName  string
	Message        string
	ExpiresAt      *time.Time
}

// NewShare validates the input and returns a pending grant with a fresh
// access token.
func NewShare(id domain.ShareID, documentID domain.DocumentID, createdBy domain.UserID, in CreateInput, now time.Time) (*Share, error) {
	recipient := email.Normalize(in.RecipientEmail)
	if recipient == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "recipient email is required")
	}
	if !email.IsValid(recipient) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "recipient email is invalid")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "expiration must be in the future")
	}
	if len(in.Message) > maxMessageLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "message is too long")
	}

	name := strings.TrimSpace(in.RecipientName)
	if name == "" {
		first, last := email.DeriveNameFromEmail(recipient)
		name = strings.TrimSpace(first + " " + last)
	}
	if len(name) > maxNameLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "recipient name is too long")
	}

	token, err := GenerateToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate access token")
	}

	var expires *time.Time
	if in.ExpiresAt != nil {
		t := in.ExpiresAt.UTC()
		expires = &t
	}
	return &Share{
		ID:             id,
		DocumentID:     documentID,
		RecipientEmail: recipient,
		RecipientName:  name,
		Message:        strings.TrimSpace(in.Message),
		AccessToken:    token,
		Status:         StatusPending,
		ExpiresAt:      expires,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// GenerateToken returns 32 random bytes, base64url encoded without padding.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *Share) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// AccessPath names how a caller was matched to a grant.
type AccessPath string

const (
	AccessByUserID AccessPath = "recipient_user_id"
	AccessByEmail  AccessPath = "recipient_email"
	AccessByToken  AccessPath = "access_token"
)

// MatchRecipient reports whether an authenticated caller is this grant's
// recipient, either by bound user id or by email.
func (s *Share) MatchRecipient(caller requestcontext.Identity) (AccessPath, bool) {
	if !caller.IsAuthenticated() {
		return "", false
	}
	if s.RecipientUserID != nil && *s.RecipientUserID == caller.UserID {
		return AccessByUserID, true
	}
	if email.Equal(s.RecipientEmail, caller.Email) {
		return AccessByEmail, true
	}
	return "", false
}

// NeedsBinding reports whether an email match should back-fill the user id.
func (s *Share) NeedsBinding(path AccessPath) bool {
	return path == AccessByEmail && s.RecipientUserID == nil
}

// CanAcknowledge checks the acknowledge guard against the current status.
func (s *Share) CanAcknowledge() error {
	switch s.Status {
	case StatusPending:
		return dErrors.New(dErrors.CodeInvalidTransition, "disclosure must be viewed before it is acknowledged")
	case StatusAcknowledged:
		return dErrors.New(dErrors.CodeInvalidTransition, "disclosure is already acknowledged")
	case StatusSigned:
		return dErrors.New(dErrors.CodeInvalidTransition, "disclosure is already signed")
	}
	return nil
}

// CanSign checks the buyer sign guard.
func (s *Share) CanSign() error {
	if s.Status == StatusSigned {
		return dErrors.New(dErrors.CodeInvalidTransition, "disclosure is already signed")
	}
	return nil
}

// ApplyView records one view. It reports whether this was the first.
// Stores call it inside their per-grant critical section.
func (s *Share) ApplyView(now time.Time) (firstView bool) {
	s.ViewCount++
	s.LastViewedAt = &now
	if s.FirstViewedAt == nil {
		s.FirstViewedAt = &now
		firstView = true
	}
	if s.Status == StatusPending {
		s.Status = StatusViewed
	}
	s.UpdatedAt = now
	return firstView
}

// ApplyTransition moves to next and stamps the matching timestamp.
// Must only be called after CanTransitionTo returns true.
func (s *Share) ApplyTransition(next Status, now time.Time) {
	s.Status = next
	switch next {
	case StatusAcknowledged:
		s.AcknowledgedAt = &now
	case StatusSigned:
		s.SignedAt = &now
	}
	s.UpdatedAt = now
}

func (s *Share) Clone() *Share {
	if s == nil {
		return nil
	}
	c := *s
	c.RecipientUserID = cloneUserID(s.RecipientUserID)
	c.FirstViewedAt = cloneTime(s.FirstViewedAt)
	c.LastViewedAt = cloneTime(s.LastViewedAt)
	c.AcknowledgedAt = cloneTime(s.AcknowledgedAt)
	c.SignedAt = cloneTime(s.SignedAt)
	c.ExpiresAt = cloneTime(s.ExpiresAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUserID(id *domain.UserID) *domain.UserID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
