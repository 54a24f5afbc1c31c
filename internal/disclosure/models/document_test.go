package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
)

type DocumentSuite struct {
	suite.Suite
	now    time.Time
	seller domain.UserID
	doc    *Document
}

func TestDocumentSuite(t *testing.T) {
	suite.Run(t, new(DocumentSuite))
}

func (s *DocumentSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.seller = domain.UserID(uuid.New())
	doc, err := NewDocument(domain.NewDocumentID(), domain.PropertyID(uuid.New()), s.seller, s.now)
	s.Require().NoError(err)
	s.doc = doc
}

func (s *DocumentSuite) fillAll() {
	for _, key := range []SectionKey{Section1, Section5, Section8, Section10} {
		s.doc.ApplySectionWrite(key, NewSectionValue(map[string]any{"smoke_detector_status": "working"}), s.now)
	}
	for key, v := range scenarioBSections() {
		s.doc.ApplySectionWrite(key, v, s.now)
	}
}

func (s *DocumentSuite) sellerSig() Signature {
	uid := s.seller
	return Signature{Data: "data:image/png;base64,AAAA", PrintedName: "Pat Seller", SignerUserID: &uid}
}

func (s *DocumentSuite) TestConstruction() {
	s.Run("new document is an empty draft", func() {
		s.Equal(StatusDraft, s.doc.Status)
		s.Equal(0, s.doc.CompletionPercentage)
		s.False(s.doc.Validation().Valid)
		s.NotEmpty(s.doc.Validation().Errors)
	})

	s.Run("rejects nil owner", func() {
		_, err := NewDocument(domain.NewDocumentID(), domain.PropertyID(uuid.New()), domain.UserID{}, s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *DocumentSuite) TestSectionWrites() {
	s.Run("first write moves draft to in_progress and recomputes completion", func() {
		s.doc.ApplySectionWrite(Section2, NewSectionValue(map[string]any{"roof_type": "Tile"}), s.now)
		s.Equal(StatusInProgress, s.doc.Status)
		s.Equal(15, s.doc.CompletionPercentage)
		s.NoError(s.doc.CheckInvariants())
	})

	s.Run("null clears a section", func() {
		s.doc.ApplySectionWrite(Section2, NewSectionValue(nil), s.now)
		s.Equal(0, s.doc.CompletionPercentage)
		s.NotContains(s.doc.Sections, Section2)
	})

	s.Run("writing to a completed document reopens it", func() {
		s.fillAll()
		s.Require().NoError(s.doc.CanComplete(DefaultSigningThreshold))
		s.doc.ApplyCompletion(s.now)
		s.Equal(StatusCompleted, s.doc.Status)

		reopened := s.doc.ApplySectionWrite(Section5, NewSectionValue(map[string]any{"cracks": "no"}), s.now)
		s.True(reopened)
		s.Equal(StatusInProgress, s.doc.Status)
	})
}

func (s *DocumentSuite) TestCompletionGate() {
	s.Run("invalid document fails with validation payload", func() {
		err := s.doc.CanComplete(DefaultSigningThreshold)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		var verr *ValidationError
		s.Require().True(errors.As(err, &verr))
		s.NotEmpty(verr.Result.Errors)
	})

	s.Run("valid but below threshold is an invalid transition", func() {
		for key, v := range scenarioBSections() {
			s.doc.ApplySectionWrite(key, v, s.now)
		}
		s.Equal(60, s.doc.CompletionPercentage)
		err := s.doc.CanComplete(DefaultSigningThreshold)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.NoError(s.doc.CanComplete(60))
	})

	s.Run("completing twice is rejected", func() {
		s.fillAll()
		s.doc.ApplyCompletion(s.now)
		err := s.doc.CanComplete(DefaultSigningThreshold)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *DocumentSuite) TestSellerSigning() {
	s.Run("refused while validation fails", func() {
		_, err := s.doc.CanSellerSign(s.seller, DefaultSigningThreshold)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("only the owner signs as seller", func() {
		_, err := s.doc.CanSellerSign(domain.UserID(uuid.New()), DefaultSigningThreshold)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("fills seller1 then seller2 then rejects", func() {
		s.fillAll()

		slot, err := s.doc.CanSellerSign(s.seller, DefaultSigningThreshold)
		s.Require().NoError(err)
		s.Equal(SlotSeller1, slot)
		s.doc.ApplySellerSignature(slot, s.sellerSig(), s.now)
		s.Equal(StatusSigned, s.doc.Status)
		s.NotNil(s.doc.CompletedAt)
		s.NoError(s.doc.CheckInvariants())

		slot, err = s.doc.CanSellerSign(s.seller, DefaultSigningThreshold)
		s.Require().NoError(err)
		s.Equal(SlotSeller2, slot)
		s.doc.ApplySellerSignature(slot, s.sellerSig(), s.now)

		_, err = s.doc.CanSellerSign(s.seller, DefaultSigningThreshold)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		s.Equal("Pat Seller", s.doc.Signatures.Seller1.PrintedName)
	})

	s.Run("signed documents are locked for edits", func() {
		s.True(dErrors.HasCode(s.doc.CanEdit(), dErrors.CodeInvalidTransition))
	})
}

func (s *DocumentSuite) TestBuyerSigning() {
	s.Run("draft documents cannot be counter-signed", func() {
		_, err := s.doc.CanBuyerSign()
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("fills buyer1 then buyer2 then rejects", func() {
		s.fillAll()
		s.doc.ApplyCompletion(s.now)

		for _, want := range []SignatureSlot{SlotBuyer1, SlotBuyer2} {
			slot, err := s.doc.CanBuyerSign()
			s.Require().NoError(err)
			s.Equal(want, slot)
			s.doc.ApplyBuyerSignature(slot, Signature{Data: "blob", PrintedName: string(want)}, s.now)
		}
		s.Equal("buyer1", s.doc.Signatures.Buyer1.PrintedName)
		s.Equal(StatusCompleted, s.doc.Status, "buyer signatures do not move document status")

		_, err := s.doc.CanBuyerSign()
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *DocumentSuite) TestAttachments() {
	a, err := NewAttachment(domain.NewAttachmentID(), AttachmentInput{
		Name: "inspection.pdf", URL: "https://files.example.com/a.pdf", Size: 2048, Type: "application/PDF",
	}, s.now)
	s.Require().NoError(err)
	s.Equal("application/pdf", a.Type)

	b, err := NewAttachment(domain.NewAttachmentID(), AttachmentInput{
		Name: "roof.jpg", URL: "https://files.example.com/r.jpg", Size: 10, Type: "image/jpeg",
	}, s.now)
	s.Require().NoError(err)

	s.Require().NoError(s.doc.AddAttachment(*a, s.now))
	s.Require().NoError(s.doc.AddAttachment(*b, s.now))

	removed, err := s.doc.RemoveAttachment(a.ID, s.now)
	s.Require().NoError(err)
	s.Equal("inspection.pdf", removed.Name)
	s.Len(s.doc.Attachments, 1)
	s.Equal(b.ID, s.doc.Attachments[0].ID)

	_, err = s.doc.RemoveAttachment(a.ID, s.now)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = NewAttachment(domain.NewAttachmentID(), AttachmentInput{Name: "x", URL: "ftp://nope", Size: 1, Type: "a/b"}, s.now)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *DocumentSuite) TestCloneDoesNotShareState() {
	s.doc.ApplySectionWrite(Section4, NewSectionValue(true), s.now)
	c := s.doc.Clone()
	c.ApplySectionWrite(Section6, NewSectionValue(true), s.now)
	s.NotContains(s.doc.Sections, Section6)
	s.Equal(5, s.doc.CompletionPercentage)
}

func (s *DocumentSuite) TestCheckTransition() {
	s.Run("unchanged status is always allowed", func() {
		s.NoError(s.doc.CheckTransition(StatusDraft))
	})

	s.Run("section write moves draft forward", func() {
		s.doc.ApplySectionWrite(Section1, NewSectionValue(map[string]any{"notes": "none"}), s.now)
		s.NoError(s.doc.CheckTransition(StatusDraft))
	})

	s.Run("signed documents cannot fall back", func() {
		s.doc.Status = StatusInProgress
		err := s.doc.CheckTransition(StatusSigned)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("drafts cannot jump to completed", func() {
		s.doc.Status = StatusCompleted
		err := s.doc.CheckTransition(StatusDraft)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusInProgress, true},
		{StatusDraft, StatusSigned, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusSigned, true},
		{StatusCompleted, StatusInProgress, true},
		{StatusCompleted, StatusDraft, false},
		{StatusSigned, StatusSigned, true},
		{StatusSigned, StatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}
