package models

import (
	"net/url"
	"strings"
	"time"

	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
)

const (
	// MaxAttachments bounds the attachment list of one document.
	MaxAttachments = 25
	// MaxAttachmentSize is the largest file the upload collaborator accepts.
	MaxAttachmentSize int64 = 25 << 20
)

// Attachment references a file held by the upload collaborator. Bytes are
// never stored here.
type Attachment struct {
	ID         domain.AttachmentID `json:"id"`
	Name       string              `json:"name"`
	URL        string              `json:"url"`
	Size       int64               `json:"size"`
	Type       string              `json:"type"`
	UploadedAt time.Time           `json:"uploaded_at"`
}

// AttachmentInput is the reference returned by the upload collaborator.
type AttachmentInput struct {
	Name string
	URL  string
	Size int64
	Type string
}

// NewAttachment validates the reference and stamps it.
func NewAttachment(id domain.AttachmentID, in AttachmentInput, now time.Time) (*Attachment, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "attachment name is required")
	}
	if len(name) > 255 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "attachment name must be 255 characters or less")
	}
	u, err := url.Parse(strings.TrimSpace(in.URL))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "attachment url must be an absolute http(s) url")
	}
	if in.Size <= 0 || in.Size > MaxAttachmentSize {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "attachment size is out of range")
	}
	if strings.TrimSpace(in.Type) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "attachment type is required")
	}
	return &Attachment{
		ID:         id,
		Name:       name,
		URL:        u.String(),
		Size:       in.Size,
		Type:       strings.ToLower(strings.TrimSpace(in.Type)),
		UploadedAt: now,
	}, nil
}
