// Package service answers read queries over the ledger. Every aggregate is
// derived from ledger entries alone, never from document or share rows, except
// the drift audit which exists to compare the two.
package service

import (
	"context"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"homedisclose/internal/ledger/models"
	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
)

const (
	DefaultTimelineLimit = 50
	MaxTimelineLimit     = 200
)

// Store is the read side of the ledger store.
type Store interface {
	CountByType(ctx context.Context, documentID domain.DocumentID) ([]models.TypeCount, error)
	ListByDocument(ctx context.Context, documentID domain.DocumentID, q models.TimelineQuery) ([]models.Event, int, error)
	ListShareEvents(ctx context.Context, documentID domain.DocumentID) ([]models.Event, error)
}

// DocumentAuthorizer confirms the caller owns the document. Analytics are
// seller-only.
type DocumentAuthorizer interface {
	AuthorizeOwner(ctx context.Context, documentID domain.DocumentID, userID domain.UserID) error
}

// ShareViewCounter lists the view counters kept on a document's share grants.
type ShareViewCounter interface {
	RecordedShares(ctx context.Context, documentID domain.DocumentID) ([]models.RecordedShare, error)
}

type Service struct {
	store    Store
	authz    DocumentAuthorizer
	shares   ShareViewCounter
	logger   *slog.Logger
	tracer   trace.Tracer
	maxLimit int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMaxTimelineLimit caps the page size a caller may request.
func WithMaxTimelineLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

func New(store Store, authz DocumentAuthorizer, shares ShareViewCounter, opts ...Option) *Service {
	s := &Service{
		store:    store,
		authz:    authz,
		shares:   shares,
		logger:   slog.Default(),
		tracer:   otel.Tracer("homedisclose/ledger"),
		maxLimit: MaxTimelineLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) authorize(ctx context.Context, documentID domain.DocumentID, caller domain.UserID) error {
	if caller.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return s.authz.AuthorizeOwner(ctx, documentID, caller)
}

// Summary aggregates the document's ledger.
func (s *Service) Summary(ctx context.Context, documentID domain.DocumentID, caller domain.UserID) (*models.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Summary", trace.WithAttributes(attribute.String("document_id", documentID.String())))
	defer span.End()

	if err := s.authorize(ctx, documentID, caller); err != nil {
		return nil, err
	}
	counts, err := s.store.CountByType(ctx, documentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ledger summary")
	}
	return models.NewSummary(documentID, counts), nil
}

// Timeline pages through entries newest first. Limit defaults to 50 and is
// capped at the configured maximum.
func (s *Service) Timeline(ctx context.Context, documentID domain.DocumentID, caller domain.UserID, q models.TimelineQuery) (*models.TimelinePage, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Timeline", trace.WithAttributes(attribute.String("document_id", documentID.String())))
	defer span.End()

	if q.Offset < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "offset must not be negative")
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultTimelineLimit
	case q.Limit > s.maxLimit:
		q.Limit = s.maxLimit
	}
	for _, t := range q.Types {
		if !t.IsValid() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown event type: "+string(t))
		}
	}
	if err := s.authorize(ctx, documentID, caller); err != nil {
		return nil, err
	}

	events, total, err := s.store.ListByDocument(ctx, documentID, q)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ledger timeline")
	}
	return &models.TimelinePage{Events: events, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

// ShareAnalytics buckets share-correlated entries by share. Shares removed
// elsewhere still get a bucket because only the ledger is consulted.
func (s *Service) ShareAnalytics(ctx context.Context, documentID domain.DocumentID, caller domain.UserID) ([]models.ShareBucket, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.ShareAnalytics", trace.WithAttributes(attribute.String("document_id", documentID.String())))
	defer span.End()

	if err := s.authorize(ctx, documentID, caller); err != nil {
		return nil, err
	}
	events, err := s.store.ListShareEvents(ctx, documentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load share analytics")
	}
	return bucketByShare(events), nil
}

// Drift compares each grant's view counter with the ledger's share_viewed
// entries for it.
func (s *Service) Drift(ctx context.Context, documentID domain.DocumentID, caller domain.UserID) (*models.DriftReport, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Drift", trace.WithAttributes(attribute.String("document_id", documentID.String())))
	defer span.End()

	if err := s.authorize(ctx, documentID, caller); err != nil {
		return nil, err
	}

	var (
		events   []models.Event
		recorded []models.RecordedShare
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.store.ListShareEvents(gctx, documentID)
		return err
	})
	g.Go(func() error {
		var err error
		recorded, err = s.shares.RecordedShares(gctx, documentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load drift inputs")
	}

	report := buildDriftReport(documentID, events, recorded)
	if report.Drifted > 0 {
		s.logger.WarnContext(ctx, "share view counters drift from ledger",
			"document_id", documentID.String(),
			"drifted", report.Drifted,
		)
	}
	return report, nil
}

func bucketByShare(events []models.Event) []models.ShareBucket {
	index := make(map[domain.ShareID]int)
	buckets := make([]models.ShareBucket, 0)
	for _, e := range events {
		shareID, ok := e.CorrelatedShare()
		if !ok {
			continue
		}
		i, seen := index[shareID]
		if !seen {
			i = len(buckets)
			index[shareID] = i
			buckets = append(buckets, models.ShareBucket{ShareID: shareID, Events: []models.ShareEvent{}})
		}
		b := &buckets[i]
		if b.RecipientEmail == "" {
			if email, ok := e.Metadata[models.MetaRecipientEmail].(string); ok {
				b.RecipientEmail = email
			}
		}
		b.Events = append(b.Events, models.ShareEvent{Type: e.Type, OccurredAt: e.OccurredAt})
	}
	for i := range buckets {
		slices.SortStableFunc(buckets[i].Events, func(a, b models.ShareEvent) int {
			return a.OccurredAt.Compare(b.OccurredAt)
		})
	}
	return buckets
}

func buildDriftReport(documentID domain.DocumentID, events []models.Event, recorded []models.RecordedShare) *models.DriftReport {
	views := make(map[domain.ShareID]int)
	shared := make(map[domain.ShareID]bool)
	for _, e := range events {
		shareID, ok := e.CorrelatedShare()
		if !ok {
			continue
		}
		switch e.Type {
		case models.EventShareViewed:
			views[shareID]++
		case models.EventShared:
			shared[shareID] = true
		}
	}

	report := &models.DriftReport{DocumentID: documentID, Entries: make([]models.DriftEntry, 0, len(recorded))}
	for _, r := range recorded {
		entry := models.DriftEntry{
			ShareID:         r.ShareID,
			RecipientEmail:  r.RecipientEmail,
			RecordedViews:   r.ViewCount,
			LedgerViews:     views[r.ShareID],
			MissingInLedger: !shared[r.ShareID],
		}
		entry.Drift = entry.RecordedViews - entry.LedgerViews
		if entry.Drift != 0 || entry.MissingInLedger {
			report.Drifted++
		}
		report.Entries = append(report.Entries, entry)
	}
	return report
}
