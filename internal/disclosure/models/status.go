package models

// Status is the seller-side lifecycle of a disclosure document.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSigned     Status = "signed"
)

// IsValid reports whether s is one of the persisted status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusSigned:
		return true
	}
	return false
}

// CanTransitionTo encodes the document state machine:
//
//	draft -> in_progress -> completed -> signed
//	completed -> in_progress   (section edited after completion)
//	in_progress -> signed      (seller signs without an explicit complete)
//	signed -> signed           (second seller)
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusInProgress || next == StatusCompleted || next == StatusSigned
	case StatusCompleted:
		return next == StatusInProgress || next == StatusSigned
	case StatusSigned:
		return next == StatusSigned
	}
	return false
}

// IsShareable reports whether buyers may be invited to the document.
func (s Status) IsShareable() bool {
	return s == StatusCompleted || s == StatusSigned
}
