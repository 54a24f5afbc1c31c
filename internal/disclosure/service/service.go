// Package service orchestrates the seller side of the disclosure lifecycle:
// lazy creation, section auto-save, validation, completion, seller signing,
// attachments and PDF generation. Every mutation runs inside a transaction
// keyed by document; ledger entries are emitted after commit and never affect
// the outcome.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"homedisclose/internal/collaborators/directory"
	"homedisclose/internal/collaborators/notifier"
	"homedisclose/internal/disclosure/metrics"
	"homedisclose/internal/disclosure/models"
	ledger "homedisclose/internal/ledger/models"
	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
	"homedisclose/pkg/platform/sentinel"
	txcontext "homedisclose/pkg/platform/tx"
	"homedisclose/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id domain.DocumentID) (*models.Document, error)
	FindByPropertyID(ctx context.Context, propertyID domain.PropertyID) (*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
}

// Tracker records ledger entries. It never fails the caller.
type Tracker interface {
	Track(ctx context.Context, event ledger.Event)
}

// Renderer produces a PDF for a document snapshot and returns its URL. An
// empty URL means no PDF was produced.
type Renderer interface {
	Render(ctx context.Context, snapshot *models.Document) (string, error)
}

// Notifier confirms signatures to the seller. Failures are logged only.
type Notifier interface {
	Notify(ctx context.Context, note notifier.Notification) error
}

// PropertyDirectory seeds the header of new documents.
type PropertyDirectory interface {
	Property(ctx context.Context, propertyID domain.PropertyID) (*directory.Property, error)
}

type Service struct {
	store     Store
	tx        txcontext.Runner
	ledger    Tracker
	renderer  Renderer
	directory PropertyDirectory
	notifier  Notifier
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	threshold int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithRenderer(r Renderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithDirectory(d PropertyDirectory) Option {
	return func(s *Service) {
		s.directory = d
	}
}

// WithSigningThreshold sets the minimum completion percentage for completing
// and signing.
func WithSigningThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold >= 0 && threshold <= models.MaxCompletion {
			s.threshold = threshold
		}
	}
}

func New(store Store, runner txcontext.Runner, tracker Tracker, opts ...Option) *Service {
	s := &Service{
		store:     store,
		tx:        runner,
		ledger:    tracker,
		logger:    slog.Default(),
		tracer:    otel.Tracer("homedisclose/disclosure"),
		threshold: models.DefaultSigningThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SigningThreshold is the configured completion gate.
func (s *Service) SigningThreshold() int {
	return s.threshold
}

// GetOrCreate returns the property's document, creating an empty draft on
// first access. Concurrent first accesses converge on one document.
func (s *Service) GetOrCreate(ctx context.Context, propertyID domain.PropertyID, caller domain.UserID) (doc *models.Document, err error) {
	ctx, span := s.start(ctx, "disclosure.GetOrCreate", attribute.String("property_id", propertyID.String()))
	defer func() { endSpan(span, err) }()
	defer s.observe("get_or_create", time.Now())

	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	doc, err = s.store.FindByPropertyID(ctx, propertyID)
	switch {
	case err == nil:
		if !doc.IsOwnedBy(caller) {
			return nil, dErrors.New(dErrors.CodeForbidden, "not the owner of this disclosure")
		}
		return doc, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load disclosure")
	}

	now := requestcontext.Now(ctx).UTC()
	doc, err = models.NewDocument(domain.NewDocumentID(), propertyID, caller, now)
	if err != nil {
		return nil, err
	}
	s.seedHeader(ctx, doc, now)

	if err := s.store.Create(ctx, doc); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// lost the creation race; the winner's document is the one
			return s.existing(ctx, propertyID, caller)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create disclosure")
	}

	if s.metrics != nil {
		s.metrics.DocumentsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "disclosure created",
		"request_id", requestcontext.RequestID(ctx),
		"document_id", doc.ID.String(),
		"property_id", propertyID.String(),
	)
	s.track(ctx, doc.ID, ledger.EventCreated, nil)
	return doc, nil
}

func (s *Service) existing(ctx context.Context, propertyID domain.PropertyID, caller domain.UserID) (*models.Document, error) {
	doc, err := s.store.FindByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load disclosure")
	}
	if !doc.IsOwnedBy(caller) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not the owner of this disclosure")
	}
	return doc, nil
}

func (s *Service) seedHeader(ctx context.Context, doc *models.Document, now time.Time) {
	if s.directory == nil {
		return
	}
	p, err := s.directory.Property(ctx, doc.PropertyID)
	if err != nil {
		s.logger.WarnContext(ctx, "property lookup failed, header left empty",
			"property_id", doc.PropertyID.String(),
			"error", err,
		)
		return
	}
	doc.ApplyHeader(models.Header{
		PropertyAddress: p.Address,
		City:            p.City,
		State:           p.State,
		PostalCode:      p.PostalCode,
		YearBuilt:       p.YearBuilt,
	}, now)
}

// Get returns the document to its owner and records the view.
func (s *Service) Get(ctx context.Context, id domain.DocumentID, caller domain.UserID) (doc *models.Document, err error) {
	ctx, span := s.start(ctx, "disclosure.Get", attribute.String("document_id", id.String()))
	defer func() { endSpan(span, err) }()

	doc, err = s.loadOwned(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	s.track(ctx, id, ledger.EventViewed, nil)
	return doc, nil
}

// AuthorizeOwner succeeds when userID is the document's seller.
func (s *Service) AuthorizeOwner(ctx context.Context, id domain.DocumentID, userID domain.UserID) error {
	_, err := s.loadOwned(ctx, id, userID)
	return err
}

func (s *Service) UpdateHeader(ctx context.Context, id domain.DocumentID, caller domain.UserID, header models.Header) (doc *models.Document, err error) {
	ctx, span := s.start(ctx, "disclosure.UpdateHeader", attribute.String("document_id", id.String()))
	defer func() { endSpan(span, err) }()

	return s.mutate(ctx, id, caller, func(doc *models.Document, now time.Time) error {
		if err := doc.CanEdit(); err != nil {
			return err
		}
		doc.ApplyHeader(header, now)
		return nil
	})
}

// SaveSection stores one section payload. A null value clears the section.
// Saving into a completed document reopens it.
func (s *Service) SaveSection(ctx context.Context, id domain.DocumentID, caller domain.UserID, key models.SectionKey, value models.SectionValue) (doc *models.Document, err error) {
	ctx, span := s.start(ctx, "disclosure.SaveSection",
		attribute.String("document_id", id.String()),
		attribute.String("section", string(key)),
	)
	defer func() { endSpan(span, err) }()
	defer s.observe("save_section", time.Now())

	if _, ok := models.LookupSection(key); !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown section: "+string(key))
	}

	var reopened bool
	doc, err = s.mutate(ctx, id, caller, func(doc *models.Document, now time.Time) error {
		if err := doc.CanEdit(); err != nil {
			return err
		}
		reopened = doc.ApplySectionWrite(key, value, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SectionSaves.Inc()
		if reopened {
			s.metrics.Reopened.Inc()
		}
	}
	metadata := map[string]any{
		ledger.MetaSection:    string(key),
		ledger.MetaCompletion: doc.CompletionPercentage,
	}
	if reopened {
		metadata[ledger.MetaReopened] = true
	}
	s.track(ctx, id, ledger.EventSectionSaved, metadata)
	return doc, nil
}

// Validation reports errors, warnings and the signing gates without
// mutating anything.
func (s *Service) Validation(ctx context.Context, id domain.DocumentID, caller domain.UserID) (*models.Readiness, error) {
	doc, err := s.loadOwned(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	r := doc.Readiness(s.threshold)
	return &r, nil
}

// Complete marks a valid document at or above the threshold as completed and
// renders its PDF.
func (s *Service) Complete(ctx context.Context, id domain.DocumentID, caller domain.UserID) (doc *models.Document, err error) {
	ctx, span := s.start(ctx, "disclosure.Complete", attribute.String("document_id", id.String()))
	defer func() { endSpan(span, err) }()
	defer s.observe("complete", time.Now())

	doc, err = s.mutate(ctx, id, caller, func(doc *models.Document, now time.Time) error {
		if err := doc.CanComplete(s.threshold); err != nil {
			s.rejected(err)
			return err
		}
		doc.ApplyCompletion(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Completions.Inc()
	}
	s.logger.InfoContext(ctx, "disclosure completed",
		"request_id", requestcontext.RequestID(ctx),
		"document_id", id.String(),
		"completion_percentage", doc.CompletionPercentage,
	)
	s.track(ctx, id, ledger.EventCompleted, map[string]any{ledger.MetaCompletion: doc.CompletionPercentage})
	return s.renderAfterCommit(ctx, doc), nil
}

// Sign applies the seller's signature to seller1, or seller2 when seller1 is
// taken. The document must pass validation and the completion threshold.
func (s *Service) Sign(ctx context.Context, id domain.DocumentID, caller requestcontext.Identity, in models.SignatureInput) (doc *models.Document, err error) {
	ctx, span := s.start(ctx, "disclosure.Sign", attribute.String("document_id", id.String()))
	defer func() { endSpan(span, err) }()
	defer s.observe("seller_sign", time.Now())

	if err := in.Validate(); err != nil {
		return nil, err
	}

	var slot models.SignatureSlot
	doc, err = s.mutate(ctx, id, caller.UserID, func(doc *models.Document, now time.Time) error {
		var err error
		slot, err = doc.CanSellerSign(caller.UserID, s.threshold)
		if err != nil {
			s.rejected(err)
			return err
		}
		signer := caller.UserID
		doc.ApplySellerSignature(slot, models.Signature{
			Data:         in.Data,
			PrintedName:  in.PrintedName,
			SignerUserID: &signer,
			SignerEmail:  caller.Email,
		}, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncSignature(string(models.SignerSeller), string(slot))
	}
	s.logger.InfoContext(ctx, "disclosure signed by seller",
		"request_id", requestcontext.RequestID(ctx),
		"document_id", id.String(),
		"slot", string(slot),
	)
	s.track(ctx, id, ledger.EventSignedSeller, map[string]any{ledger.MetaSlot: string(slot)})
	s.notify(ctx, caller.Email, notifier.TemplateSellerSigned, map[string]any{
		"document_id": id.String(),
		"slot":        string(slot),
	})
	return s.renderAfterCommit(ctx, doc), nil
}

func (s *Service) AddAttachment(ctx context.Context, id domain.DocumentID, caller domain.UserID, in models.AttachmentInput) (att *models.Attachment, err error) {
	ctx, span := s.start(ctx, "disclosure.AddAttachment", attribute.String("document_id", id.String()))
	defer func() { endSpan(span, err) }()

	_, err = s.mutate(ctx, id, caller, func(doc *models.Document, now time.Time) error {
		if err := doc.CanEdit(); err != nil {
			return err
		}
		a, err := models.NewAttachment(domain.NewAttachmentID(), in, now)
		if err != nil {
			return err
		}
		if err := doc.AddAttachment(*a, now); err != nil {
			return err
		}
		att = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.track(ctx, id, ledger.EventAttachmentAdded, map[string]any{
		ledger.MetaAttachmentID:   att.ID.String(),
		ledger.MetaAttachmentName: att.Name,
	})
	return att, nil
}

func (s *Service) RemoveAttachment(ctx context.Context, id domain.DocumentID, caller domain.UserID, attachmentID domain.AttachmentID) (err error) {
	ctx, span := s.start(ctx, "disclosure.RemoveAttachment", attribute.String("document_id", id.String()))
	defer func() { endSpan(span, err) }()

	var removed models.Attachment
	_, err = s.mutate(ctx, id, caller, func(doc *models.Document, now time.Time) error {
		if err := doc.CanEdit(); err != nil {
			return err
		}
		var err error
		removed, err = doc.RemoveAttachment(attachmentID, now)
		return err
	})
	if err != nil {
		return err
	}
	s.track(ctx, id, ledger.EventAttachmentRemoved, map[string]any{
		ledger.MetaAttachmentID:   removed.ID.String(),
		ledger.MetaAttachmentName: removed.Name,
	})
	return nil
}

// GeneratePDF renders the current document on demand. Unlike the automatic
// renders after completion and signing, failures are returned.
func (s *Service) GeneratePDF(ctx context.Context, id domain.DocumentID, caller domain.UserID) (doc *models.Document, err error) {
	ctx, span := s.start(ctx, "disclosure.GeneratePDF", attribute.String("document_id", id.String()))
	defer func() { endSpan(span, err) }()

	doc, err = s.loadOwned(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if s.renderer == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "pdf rendering is not configured")
	}
	return s.render(ctx, doc)
}

// RefreshPDF re-renders a document changed outside this service, such as a
// buyer counter-signature. Failures are logged only.
func (s *Service) RefreshPDF(ctx context.Context, id domain.DocumentID) {
	if s.renderer == nil {
		return
	}
	doc, err := s.store.FindByID(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "pdf refresh skipped",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", id.String(),
			"error", err,
		)
		return
	}
	s.renderAfterCommit(ctx, doc)
}

func (s *Service) renderAfterCommit(ctx context.Context, doc *models.Document) *models.Document {
	if s.renderer == nil {
		return doc
	}
	rendered, err := s.render(ctx, doc)
	if err != nil {
		s.logger.WarnContext(ctx, "pdf render failed",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", doc.ID.String(),
			"error", err,
		)
		return doc
	}
	return rendered
}

func (s *Service) render(ctx context.Context, snapshot *models.Document) (*models.Document, error) {
	url, err := s.renderer.Render(ctx, snapshot)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RenderFailures.Inc()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render pdf")
	}
	if url == "" {
		return snapshot, nil
	}

	doc, err := s.mutate(ctx, snapshot.ID, snapshot.SellerID, func(doc *models.Document, now time.Time) error {
		doc.ApplyPDF(url, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.track(ctx, doc.ID, ledger.EventPDFGenerated, map[string]any{ledger.MetaPDFURL: url})
	return doc, nil
}

// mutate loads the caller's document inside a transaction, applies fn and
// saves the result.
func (s *Service) mutate(ctx context.Context, id domain.DocumentID, caller domain.UserID, fn func(doc *models.Document, now time.Time) error) (*models.Document, error) {
	var out *models.Document
	err := s.tx.RunInTx(ctx, id.String(), func(ctx context.Context) error {
		doc, err := s.loadOwned(ctx, id, caller)
		if err != nil {
			return err
		}
		from := doc.Status
		if err := fn(doc, requestcontext.Now(ctx).UTC()); err != nil {
			return err
		}
		if err := doc.CheckTransition(from); err != nil {
			return err
		}
		if err := s.save(ctx, doc); err != nil {
			return err
		}
		out = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) loadOwned(ctx context.Context, id domain.DocumentID, caller domain.UserID) (*models.Document, error) {
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	doc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "disclosure not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load disclosure")
	}
	if !doc.IsOwnedBy(caller) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not the owner of this disclosure")
	}
	return doc, nil
}

func (s *Service) save(ctx context.Context, doc *models.Document) error {
	if err := doc.CheckInvariants(); err != nil {
		return err
	}
	if err := s.store.Update(ctx, doc); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "disclosure not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save disclosure")
	}
	return nil
}

func (s *Service) track(ctx context.Context, id domain.DocumentID, eventType ledger.EventType, metadata map[string]any) {
	s.ledger.Track(ctx, ledger.Event{
		DocumentID: id,
		Type:       eventType,
		Metadata:   metadata,
	})
}

func (s *Service) notify(ctx context.Context, recipient, template string, data map[string]any) {
	if s.notifier == nil || recipient == "" {
		return
	}
	err := s.notifier.Notify(ctx, notifier.Notification{Template: template, Recipient: recipient, Data: data})
	if err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			"request_id", requestcontext.RequestID(ctx),
			"template", template,
			"error", err,
		)
	}
}

func (s *Service) rejected(err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case dErrors.HasCode(err, dErrors.CodeValidation):
		s.metrics.IncReadinessRejected("validation")
	case dErrors.HasCode(err, dErrors.CodeInvalidTransition):
		s.metrics.IncReadinessRejected("state")
	}
}

func (s *Service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, start)
	}
}

func (s *Service) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
