package models

import (
	"strings"
	"time"

	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
)

// SignerRole distinguishes the two signature pairs.
type SignerRole string

const (
	SignerSeller SignerRole = "seller"
	SignerBuyer  SignerRole = "buyer"
)

// SignatureSlot names one of the four fixed signature positions.
type SignatureSlot string

const (
	SlotSeller1 SignatureSlot = "seller1"
	SlotSeller2 SignatureSlot = "seller2"
	SlotBuyer1  SignatureSlot = "buyer1"
	SlotBuyer2  SignatureSlot = "buyer2"
)

const maxSignatureDataLen = 512 * 1024

// Signature is one filled slot. Data is an opaque image blob, usually a
// base64 data URL. Buyer slots also carry the signer's identity.
type Signature struct {
	Data         string         `json:"data"`
	PrintedName  string         `json:"printed_name"`
	SignedAt     time.Time      `json:"signed_at"`
	SignerUserID *domain.UserID `json:"signer_user_id,omitempty"`
	SignerEmail  string         `json:"signer_email,omitempty"`
}

// IsEmpty reports an unfilled slot.
func (s *Signature) IsEmpty() bool {
	return s == nil || s.Data == ""
}

// Signatures holds the four slots. A slot, once filled, is never overwritten.
type Signatures struct {
	Seller1 *Signature `json:"seller1,omitempty"`
	Seller2 *Signature `json:"seller2,omitempty"`
	Buyer1  *Signature `json:"buyer1,omitempty"`
	Buyer2  *Signature `json:"buyer2,omitempty"`
}

// SignatureInput is the caller-supplied part of a signature.
type SignatureInput struct {
	Data        string
	PrintedName string
}

// Validate checks the signature payload before any slot is assigned.
func (in SignatureInput) Validate() error {
	if strings.TrimSpace(in.Data) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "signature data is required")
	}
	if len(in.Data) > maxSignatureDataLen {
		return dErrors.New(dErrors.CodeInvalidInput, "signature data is too large")
	}
	if strings.TrimSpace(in.PrintedName) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "printed name is required")
	}
	return nil
}

// NextSlot returns the first empty slot for role, or an invalid-transition
// error when both slots are filled.
func (s *Signatures) NextSlot(role SignerRole) (SignatureSlot, error) {
	switch role {
	case SignerSeller:
		if s.Seller1.IsEmpty() {
			return SlotSeller1, nil
		}
		if s.Seller2.IsEmpty() {
			return SlotSeller2, nil
		}
		return "", dErrors.New(dErrors.CodeInvalidTransition, "both seller signatures are already recorded")
	case SignerBuyer:
		if s.Buyer1.IsEmpty() {
			return SlotBuyer1, nil
		}
		if s.Buyer2.IsEmpty() {
			return SlotBuyer2, nil
		}
		return "", dErrors.New(dErrors.CodeInvalidTransition, "both buyer signatures are already recorded")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown signer role")
	}
}

// Get returns the signature held in slot.
func (s *Signatures) Get(slot SignatureSlot) *Signature {
	switch slot {
	case SlotSeller1:
		return s.Seller1
	case SlotSeller2:
		return s.Seller2
	case SlotBuyer1:
		return s.Buyer1
	case SlotBuyer2:
		return s.Buyer2
	}
	return nil
}

func (s *Signatures) set(slot SignatureSlot, sig *Signature) {
	switch slot {
	case SlotSeller1:
		s.Seller1 = sig
	case SlotSeller2:
		s.Seller2 = sig
	case SlotBuyer1:
		s.Buyer1 = sig
	case SlotBuyer2:
		s.Buyer2 = sig
	}
}
