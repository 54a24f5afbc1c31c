package handler

import (
	"time"

	disclosure "homedisclose/internal/disclosure/models"
	"homedisclose/internal/sharing/models"
)

type CreateShareRequest struct {
	RecipientEmail string     `json:"recipient_email"`
	RecipientName  string     `json:"recipient_name"`
	Message        string     `json:"message"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

func (r CreateShareRequest) Input() models.CreateInput {
	return models.CreateInput{
		RecipientEmail: r.RecipientEmail,
		RecipientName:  r.RecipientName,
		Message:        r.Message,
		ExpiresAt:      r.ExpiresAt,
	}
}

type SignRequest struct {
	SignatureData string `json:"signature_data"`
	PrintedName   string `json:"printed_name"`
}

func (r SignRequest) Input() disclosure.SignatureInput {
	return disclosure.SignatureInput{Data: r.SignatureData, PrintedName: r.PrintedName}
}

// ShareListResponse wraps list results so the envelope can grow.
type ShareListResponse[T any] struct {
	Shares []T `json:"shares"`
	Total  int `json:"total"`
}

func newShareList[T any](items []T) ShareListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ShareListResponse[T]{Shares: items, Total: len(items)}
}
