package models

import (
	"strings"
	"time"

	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
)

// DefaultSigningThreshold is the completion percentage a seller must reach
// before signing when no threshold is configured.
const DefaultSigningThreshold = 80

// Header carries the free-form identification block printed above the form.
type Header struct {
	PropertyAddress string   `json:"property_address"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	PostalCode      string   `json:"postal_code"`
	SellerNames     []string `json:"seller_names"`
	YearBuilt       int      `json:"year_built,omitempty"`
	OccupancyNote   string   `json:"occupancy_note,omitempty"`
}

// Document is the aggregate root for one property's seller disclosure.
//
// Invariants:
//   - CompletionPercentage always equals ComputeCompletion(Sections)
//   - Status signed implies a non-empty seller1 signature
//   - filled signature slots are never overwritten
//   - PropertyID and SellerID are immutable after construction
type Document struct {
	ID                   domain.DocumentID `json:"id"`
	PropertyID           domain.PropertyID `json:"property_id"`
	SellerID             domain.UserID     `json:"seller_id"`
	Status               Status            `json:"status"`
	Header               Header            `json:"header"`
	Sections             Sections          `json:"sections"`
	CompletionPercentage int               `json:"completion_percentage"`
	Signatures           Signatures        `json:"signatures"`
	Attachments          []Attachment      `json:"attachments"`
	PDFURL               string            `json:"pdf_url,omitempty"`
	PDFGeneratedAt       *time.Time        `json:"pdf_generated_at,omitempty"`
	CompletedAt          *time.Time        `json:"completed_at,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// NewDocument returns an empty draft.
func NewDocument(id domain.DocumentID, propertyID domain.PropertyID, sellerID domain.UserID, now time.Time) (*Document, error) {
	if propertyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "property id cannot be empty")
	}
	if sellerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "seller id cannot be empty")
	}
	return &Document{
		ID:          id,
		PropertyID:  propertyID,
		SellerID:    sellerID,
		Status:      StatusDraft,
		Sections:    Sections{},
		Attachments: []Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsOwnedBy reports whether user is the document's seller.
func (d *Document) IsOwnedBy(user domain.UserID) bool {
	return !user.IsNil() && d.SellerID == user
}

// CanEdit refuses form edits once the document is signed.
func (d *Document) CanEdit() error {
	if d.Status == StatusSigned {
		return dErrors.New(dErrors.CodeInvalidTransition, "document is signed and can no longer be edited")
	}
	return nil
}

// ApplyHeader replaces the header block.
// Must only be called after CanEdit returns nil.
func (d *Document) ApplyHeader(h Header, now time.Time) {
	h.PropertyAddress = strings.TrimSpace(h.PropertyAddress)
	h.City = strings.TrimSpace(h.City)
	h.State = strings.TrimSpace(h.State)
	h.PostalCode = strings.TrimSpace(h.PostalCode)
	d.Header = h
	d.touch(now)
}

// ApplySectionWrite stores one section payload and recomputes completion.
// A completed document goes back to in_progress so it is re-validated before
// signing. Returns true when the write reopened a completed document.
// Must only be called after CanEdit returns nil.
func (d *Document) ApplySectionWrite(key SectionKey, value SectionValue, now time.Time) (reopened bool) {
	if d.Sections == nil {
		d.Sections = Sections{}
	}
	if value.IsNull() {
		delete(d.Sections, key)
	} else {
		d.Sections[key] = value
	}
	d.RecomputeCompletion()
	reopened = d.Status == StatusCompleted
	if d.Status == StatusDraft || reopened {
		d.Status = StatusInProgress
	}
	d.touch(now)
	return reopened
}

// RecomputeCompletion derives CompletionPercentage from the sections.
func (d *Document) RecomputeCompletion() int {
	d.CompletionPercentage = ComputeCompletion(d.Sections)
	return d.CompletionPercentage
}

// Validation runs the section rules against the current payloads.
func (d *Document) Validation() ValidationResult {
	return Validate(d.Sections)
}

// CheckReadiness applies both signing gates: the rule-based validation and
// the completion threshold. A failed validation returns a CodeValidation
// error wrapping *ValidationError.
func (d *Document) CheckReadiness(threshold int) error {
	result := d.Validation()
	if !result.Valid {
		return dErrors.Wrap(&ValidationError{Result: result}, dErrors.CodeValidation, "document has missing required answers")
	}
	if d.CompletionPercentage < threshold {
		return dErrors.New(dErrors.CodeInvalidTransition, "document completion is below the signing threshold")
	}
	return nil
}

// CanComplete checks the document may be marked completed.
func (d *Document) CanComplete(threshold int) error {
	switch d.Status {
	case StatusCompleted:
		return dErrors.New(dErrors.CodeInvalidTransition, "document is already completed")
	case StatusSigned:
		return dErrors.New(dErrors.CodeInvalidTransition, "document is already signed")
	}
	return d.CheckReadiness(threshold)
}

// ApplyCompletion marks the document completed.
// Must only be called after CanComplete returns nil.
func (d *Document) ApplyCompletion(now time.Time) {
	d.Status = StatusCompleted
	d.CompletedAt = &now
	d.touch(now)
}

// CanSellerSign returns the slot a seller signature would fill.
func (d *Document) CanSellerSign(seller domain.UserID, threshold int) (SignatureSlot, error) {
	if !d.IsOwnedBy(seller) {
		return "", dErrors.New(dErrors.CodeForbidden, "only the document's seller can sign as seller")
	}
	if err := d.CheckReadiness(threshold); err != nil {
		return "", err
	}
	return d.Signatures.NextSlot(SignerSeller)
}

// ApplySellerSignature fills slot and moves the document to signed.
// Must only be called after CanSellerSign returns slot.
func (d *Document) ApplySellerSignature(slot SignatureSlot, sig Signature, now time.Time) {
	sig.SignedAt = now
	d.Signatures.set(slot, &sig)
	if d.CompletedAt == nil {
		d.CompletedAt = &now
	}
	d.Status = StatusSigned
	d.touch(now)
}

// CanBuyerSign returns the buyer slot a counter-signature would fill.
func (d *Document) CanBuyerSign() (SignatureSlot, error) {
	if !d.Status.IsShareable() {
		return "", dErrors.New(dErrors.CodeInvalidTransition, "document is not ready for buyer signatures")
	}
	return d.Signatures.NextSlot(SignerBuyer)
}

// ApplyBuyerSignature fills a buyer slot. Status is unchanged.
// Must only be called after CanBuyerSign returns slot.
func (d *Document) ApplyBuyerSignature(slot SignatureSlot, sig Signature, now time.Time) {
	sig.SignedAt = now
	d.Signatures.set(slot, &sig)
	d.touch(now)
}

// AddAttachment appends a reference.
func (d *Document) AddAttachment(a Attachment, now time.Time) error {
	if len(d.Attachments) >= MaxAttachments {
		return dErrors.New(dErrors.CodeInvalidInput, "attachment limit reached")
	}
	d.Attachments = append(d.Attachments, a)
	d.touch(now)
	return nil
}

// RemoveAttachment drops the reference with id, keeping order.
func (d *Document) RemoveAttachment(id domain.AttachmentID, now time.Time) (Attachment, error) {
	for i, a := range d.Attachments {
		if a.ID == id {
			d.Attachments = append(d.Attachments[:i:i], d.Attachments[i+1:]...)
			d.touch(now)
			return a, nil
		}
	}
	return Attachment{}, dErrors.New(dErrors.CodeNotFound, "attachment not found")
}

// ApplyPDF records a freshly rendered PDF.
func (d *Document) ApplyPDF(url string, now time.Time) {
	d.PDFURL = url
	d.PDFGeneratedAt = &now
	d.touch(now)
}

// CheckTransition rejects a status change from the state the document was
// loaded in that the state machine does not allow.
func (d *Document) CheckTransition(from Status) error {
	if from == d.Status || from.CanTransitionTo(d.Status) {
		return nil
	}
	return dErrors.New(dErrors.CodeInvariantViolation, "illegal document status change")
}

// CheckInvariants reports a corrupt aggregate. The service calls it before
// every write.
func (d *Document) CheckInvariants() error {
	if !d.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown document status")
	}
	if d.CompletionPercentage != ComputeCompletion(d.Sections) {
		return dErrors.New(dErrors.CodeInvariantViolation, "completion percentage is out of date")
	}
	if d.Status == StatusSigned && d.Signatures.Seller1.IsEmpty() {
		return dErrors.New(dErrors.CodeInvariantViolation, "signed document has no seller signature")
	}
	return nil
}

// Clone returns a deep enough copy for stores to hand out without sharing
// mutable maps or slices.
func (d *Document) Clone() *Document {
	out := *d
	out.Sections = d.Sections.Clone()
	out.Attachments = append([]Attachment(nil), d.Attachments...)
	out.Header.SellerNames = append([]string(nil), d.Header.SellerNames...)
	out.Signatures = Signatures{
		Seller1: cloneSignature(d.Signatures.Seller1),
		Seller2: cloneSignature(d.Signatures.Seller2),
		Buyer1:  cloneSignature(d.Signatures.Buyer1),
		Buyer2:  cloneSignature(d.Signatures.Buyer2),
	}
	return &out
}

func cloneSignature(s *Signature) *Signature {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func (d *Document) touch(now time.Time) {
	d.UpdatedAt = now
}

// Readiness reports where the document stands against the signing gates.
type Readiness struct {
	ValidationResult
	CompletionPercentage int  `json:"completion_percentage"`
	Threshold            int  `json:"threshold"`
	ReadyToSign          bool `json:"ready_to_sign"`
}

func (d *Document) Readiness(threshold int) Readiness {
	result := d.Validation()
	return Readiness{
		ValidationResult:     result,
		CompletionPercentage: d.CompletionPercentage,
		Threshold:            threshold,
		ReadyToSign:          result.Valid && d.CompletionPercentage >= threshold && d.Status != StatusSigned,
	}
}
