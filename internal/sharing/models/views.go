package models

import (
	"time"

	disclosure "homedisclose/internal/disclosure/models"
	"homedisclose/pkg/domain"
)

// SellerContact is the only seller information a recipient sees.
type SellerContact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// RecipientShare is the grant as its recipient sees it. The creating
// seller's account is not exposed.
type RecipientShare struct {
	ID             domain.ShareID    `json:"id"`
	DocumentID     domain.DocumentID `json:"document_id"`
	RecipientEmail string            `json:"recipient_email"`
	RecipientName  string            `json:"recipient_name"`
	Message        string            `json:"message,omitempty"`
	Status         Status            `json:"status"`
	ViewCount      int               `json:"view_count"`
	FirstViewedAt  *time.Time        `json:"first_viewed_at,omitempty"`
	LastViewedAt   *time.Time        `json:"last_viewed_at,omitempty"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
	SignedAt       *time.Time        `json:"signed_at,omitempty"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func NewRecipientShare(s *Share) *RecipientShare {
	return &RecipientShare{
		ID:             s.ID,
		DocumentID:     s.DocumentID,
		RecipientEmail: s.RecipientEmail,
		RecipientName:  s.RecipientName,
		Message:        s.Message,
		Status:         s.Status,
		ViewCount:      s.ViewCount,
		FirstViewedAt:  s.FirstViewedAt,
		LastViewedAt:   s.LastViewedAt,
		AcknowledgedAt: s.AcknowledgedAt,
		SignedAt:       s.SignedAt,
		ExpiresAt:      s.ExpiresAt,
		CreatedAt:      s.CreatedAt,
	}
}

// RecipientSignature is a filled slot without the signer's account or email.
type RecipientSignature struct {
	Data        string    `json:"data"`
	PrintedName string    `json:"printed_name"`
	SignedAt    time.Time `json:"signed_at"`
}

// RecipientDocument is the read-only projection of a disclosure handed to
// buyers. Seller and co-buyer identities never leave the service through it.
type RecipientDocument struct {
	ID                   domain.DocumentID                                `json:"id"`
	PropertyID           domain.PropertyID                                `json:"property_id"`
	Status               disclosure.Status                                `json:"status"`
	Header               disclosure.Header                                `json:"header"`
	Sections             disclosure.Sections                              `json:"sections"`
	CompletionPercentage int                                              `json:"completion_percentage"`
	Signatures           map[disclosure.SignatureSlot]*RecipientSignature `json:"signatures"`
	Attachments          []disclosure.Attachment                          `json:"attachments"`
	PDFURL               string                                           `json:"pdf_url,omitempty"`
	PDFGeneratedAt       *time.Time                                       `json:"pdf_generated_at,omitempty"`
	CompletedAt          *time.Time                                       `json:"completed_at,omitempty"`
	UpdatedAt            time.Time                                        `json:"updated_at"`
}

var recipientSlots = []disclosure.SignatureSlot{
	disclosure.SlotSeller1,
	disclosure.SlotSeller2,
	disclosure.SlotBuyer1,
	disclosure.SlotBuyer2,
}

func NewRecipientDocument(doc *disclosure.Document) *RecipientDocument {
	out := &RecipientDocument{
		ID:                   doc.ID,
		PropertyID:           doc.PropertyID,
		Status:               doc.Status,
		Header:               doc.Header,
		Sections:             doc.Sections.Clone(),
		CompletionPercentage: doc.CompletionPercentage,
		Signatures:           make(map[disclosure.SignatureSlot]*RecipientSignature, len(recipientSlots)),
		Attachments:          append([]disclosure.Attachment{}, doc.Attachments...),
		PDFURL:               doc.PDFURL,
		PDFGeneratedAt:       doc.PDFGeneratedAt,
		CompletedAt:          doc.CompletedAt,
		UpdatedAt:            doc.UpdatedAt,
	}
	for _, slot := range recipientSlots {
		sig := doc.Signatures.Get(slot)
		if sig.IsEmpty() {
			continue
		}
		out.Signatures[slot] = &RecipientSignature{
			Data:        sig.Data,
			PrintedName: sig.PrintedName,
			SignedAt:    sig.SignedAt,
		}
	}
	return out
}

// SharedDisclosure is what a recipient gets back from a view.
type SharedDisclosure struct {
	Share     *RecipientShare    `json:"share"`
	Document  *RecipientDocument `json:"document"`
	Seller    SellerContact      `json:"seller"`
	FirstView bool               `json:"first_view"`
}

// SellerShare is a grant as its seller sees it, with the recipient link.
type SellerShare struct {
	*Share
	ShareURL string `json:"share_url"`
}

// CreateResult carries the new grant. Warning is set when the invitation
// could not be delivered; the grant exists regardless.
type CreateResult struct {
	Share   SellerShare `json:"share"`
	Warning string      `json:"warning,omitempty"`
}
