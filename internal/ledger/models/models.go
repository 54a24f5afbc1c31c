// Package models defines the append-only ledger entry and the read models
// computed from it.
package models

import (
	"time"

	"homedisclose/pkg/domain"
)

// EventType is the closed set of ledger events. Values are persisted and
// consumed by reports.
type EventType string

const (
	EventCreated           EventType = "created"
	EventViewed            EventType = "viewed"
	EventSectionSaved      EventType = "section_saved"
	EventCompleted         EventType = "completed"
	EventSignedSeller      EventType = "signed_seller"
	EventSignedBuyer       EventType = "signed_buyer"
	EventPDFGenerated      EventType = "pdf_generated"
	EventShared            EventType = "shared"
	EventShareViewed       EventType = "share_viewed"
	EventShareAcknowledged EventType = "share_acknowledged"
	EventShareSigned       EventType = "share_signed"
	EventAttachmentAdded   EventType = "attachment_added"
	EventAttachmentRemoved EventType = "attachment_removed"
)

// AllEventTypes lists every event type in lifecycle order.
var AllEventTypes = []EventType{
	EventCreated, EventViewed, EventSectionSaved, EventCompleted,
	EventSignedSeller, EventSignedBuyer, EventPDFGenerated,
	EventShared, EventShareViewed, EventShareAcknowledged, EventShareSigned,
	EventAttachmentAdded, EventAttachmentRemoved,
}

func (t EventType) IsValid() bool {
	for _, known := range AllEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsView reports whether the event counts towards view totals.
func (t EventType) IsView() bool {
	return t == EventViewed || t == EventShareViewed
}

// Metadata keys written by the lifecycle services.
const (
	MetaShareID        = "share_id"
	MetaRecipientEmail = "recipient_email"
	MetaSection        = "section"
	MetaCompletion     = "completion_percentage"
	MetaSlot           = "slot"
	MetaFirstView      = "first_view"
	MetaViewCount      = "view_count"
	MetaAccessPath     = "access_path"
	MetaAttachmentID   = "attachment_id"
	MetaAttachmentName = "attachment_name"
	MetaPDFURL         = "pdf_url"
	MetaRequestID      = "request_id"
	MetaReopened       = "reopened"
)

// Origin describes where a request came from.
type Origin struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
	Mobile    bool   `json:"mobile"`
}

// Event is one ledger entry. ShareID is the correlation column; the same id
// is mirrored in Metadata for consumers that only read the payload.
type Event struct {
	ID          domain.EventID    `json:"id"`
	DocumentID  domain.DocumentID `json:"document_id"`
	Type        EventType         `json:"event_type"`
	ActorUserID *domain.UserID    `json:"actor_user_id,omitempty"`
	ShareID     *domain.ShareID   `json:"share_id,omitempty"`
	Metadata    map[string]any    `json:"metadata"`
	Origin      Origin            `json:"origin"`
	OccurredAt  time.Time         `json:"occurred_at"`
	RecordedAt  time.Time         `json:"recorded_at"`
}

// CorrelatedShare returns the share this event belongs to, reading the
// column first and falling back to metadata for rows written without it.
func (e Event) CorrelatedShare() (domain.ShareID, bool) {
	if e.ShareID != nil && !e.ShareID.IsNil() {
		return *e.ShareID, true
	}
	raw, ok := e.Metadata[MetaShareID].(string)
	if !ok {
		return domain.ShareID{}, false
	}
	id, err := domain.ParseShareID(raw)
	if err != nil {
		return domain.ShareID{}, false
	}
	return id, true
}

// Summary aggregates a document's ledger.
type Summary struct {
	DocumentID   domain.DocumentID `json:"document_id"`
	TotalEvents  int               `json:"total_events"`
	Views        int               `json:"views"`
	ShareViews   int               `json:"share_views"`
	Shares       int               `json:"shares"`
	LastViewedAt *time.Time        `json:"last_viewed_at,omitempty"`
	ByType       map[EventType]int `json:"by_type"`
}

// TimelineQuery pages through a document's events newest first.
type TimelineQuery struct {
	Limit  int
	Offset int
	Types  []EventType
}

type TimelinePage struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// ShareEvent is one entry of a share bucket.
type ShareEvent struct {
	Type       EventType `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ShareBucket groups the ledger entries correlated with one share.
type ShareBucket struct {
	ShareID        domain.ShareID `json:"share_id"`
	RecipientEmail string         `json:"recipient_email,omitempty"`
	Events         []ShareEvent   `json:"events"`
}

// DriftEntry compares a share's denormalized view counter with the ledger.
type DriftEntry struct {
	ShareID         domain.ShareID `json:"share_id"`
	RecipientEmail  string         `json:"recipient_email"`
	RecordedViews   int            `json:"recorded_views"`
	LedgerViews     int            `json:"ledger_views"`
	Drift           int            `json:"drift"`
	MissingInLedger bool           `json:"missing_in_ledger"`
}

type DriftReport struct {
	DocumentID domain.DocumentID `json:"document_id"`
	Entries    []DriftEntry      `json:"entries"`
	Drifted    int               `json:"drifted"`
}

// TypeCount is one row of the per-type aggregate a store computes.
type TypeCount struct {
	Type         EventType
	Count        int
	LastOccurred time.Time
}

// NewSummary folds per-type counts into a Summary.
func NewSummary(documentID domain.DocumentID, counts []TypeCount) *Summary {
	s := &Summary{DocumentID: documentID, ByType: make(map[EventType]int, len(counts))}
	for _, c := range counts {
		s.ByType[c.Type] += c.Count
		s.TotalEvents += c.Count
		switch c.Type {
		case EventShareViewed:
			s.ShareViews += c.Count
		case EventShared:
			s.Shares += c.Count
		}
		if c.Type.IsView() {
			s.Views += c.Count
			if s.LastViewedAt == nil || c.LastOccurred.After(*s.LastViewedAt) {
				last := c.LastOccurred
				s.LastViewedAt = &last
			}
		}
	}
	return s
}

// RecordedShare is the share grant's own view counter, as the sharing store
// keeps it.
type RecordedShare struct {
	ShareID        domain.ShareID
	RecipientEmail string
	ViewCount      int
}
