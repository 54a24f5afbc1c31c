// Package domain holds typed identifiers shared across the disclosure modules.
//
// Every entity id is a distinct named UUID type so a ShareID can never be passed
// where a DocumentID is expected. Construct them from external input with the
// Parse* functions; direct conversion from uuid.UUID is reserved for stores and
// id generation.
package domain

import (
	"github.com/google/uuid"

	dErrors "homedisclose/pkg/domain-errors"
)

type (
	UserID       uuid.UUID
	PropertyID   uuid.UUID
	DocumentID   uuid.UUID
	ShareID      uuid.UUID
	EventID      uuid.UUID
	AttachmentID uuid.UUID
)

// maxIDLength bounds input before uuid.Parse sees it.
const maxIDLength = 64

func parseID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseID(s, "user id")
	return UserID(u), err
}

func ParsePropertyID(s string) (PropertyID, error) {
	u, err := parseID(s, "property id")
	return PropertyID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseID(s, "document id")
	return DocumentID(u), err
}

func ParseShareID(s string) (ShareID, error) {
	u, err := parseID(s, "share id")
	return ShareID(u), err
}

func ParseEventID(s string) (EventID, error) {
	u, err := parseID(s, "event id")
	return EventID(u), err
}

func ParseAttachmentID(s string) (AttachmentID, error) {
	u, err := parseID(s, "attachment id")
	return AttachmentID(u), err
}

func NewDocumentID() DocumentID     { return DocumentID(uuid.New()) }
func NewShareID() ShareID           { return ShareID(uuid.New()) }
func NewEventID() EventID           { return EventID(uuid.New()) }
func NewAttachmentID() AttachmentID { return AttachmentID(uuid.New()) }

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id PropertyID) String() string   { return uuid.UUID(id).String() }
func (id DocumentID) String() string   { return uuid.UUID(id).String() }
func (id ShareID) String() string      { return uuid.UUID(id).String() }
func (id EventID) String() string      { return uuid.UUID(id).String() }
func (id AttachmentID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id PropertyID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ShareID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id AttachmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps ids as canonical strings in JSON payloads.

func (id UserID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id PropertyID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id DocumentID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id ShareID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id AttachmentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PropertyID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DocumentID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ShareID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EventID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *AttachmentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
