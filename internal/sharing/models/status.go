package models

// Status is the share grant's own lifecycle, independent of the document's.
//
//	pending ──view──▶ viewed ──acknowledge──▶ acknowledged
//	   │                 │                         │
//	   └──────sign───────┴──────────sign───────────┴──▶ signed
//
// Views never move a grant backwards. Signing is refused only once the grant
// is already signed; it does not require a prior acknowledgement.
type Status string

const (
	StatusPending      Status = "pending"
	StatusViewed       Status = "viewed"
	StatusAcknowledged Status = "acknowledged"
	StatusSigned       Status = "signed"
)

func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusViewed:
		return 1
	case StatusAcknowledged:
		return 2
	case StatusSigned:
		return 3
	default:
		return -1
	}
}

func (s Status) IsValid() bool {
	return s.rank() >= 0
}

// CanTransitionTo reports whether next is a legal forward move.
func (s Status) CanTransitionTo(next Status) bool {
	switch next {
	case StatusViewed:
		return s == StatusPending
	case StatusAcknowledged:
		return s == StatusViewed
	case StatusSigned:
		return s.IsValid() && s != StatusSigned
	default:
		return false
	}
}

// AtLeast reports whether s is at or beyond other in the lifecycle.
func (s Status) AtLeast(other Status) bool {
	return s.rank() >= other.rank()
}
