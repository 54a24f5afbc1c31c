// Package service implements the share-grant side of the lifecycle: creating
// grants, resolving a caller to a grant through one of three identity paths,
// and the view, acknowledge and counter-sign transitions.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"homedisclose/internal/collaborators/directory"
	"homedisclose/internal/collaborators/notifier"
	disclosure "homedisclose/internal/disclosure/models"
	ledger "homedisclose/internal/ledger/models"
	"homedisclose/internal/sharing/metrics"
	"homedisclose/internal/sharing/models"
	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
	"homedisclose/pkg/platform/sentinel"
	"homedisclose/pkg/requestcontext"
)

// Generic on purpose: token and id misses must not reveal which grants exist.
const notFoundMessage = "disclosure share not found"

const (
	// invitationWarning is returned next to a share whose invitation failed.
	invitationWarning = "share created, but the invitation email could not be sent"
	maxTokenAttempts  = 3
)

type Store interface {
	Create(ctx context.Context, share *models.Share) error
	FindByID(ctx context.Context, id domain.ShareID) (*models.Share, error)
	FindByToken(ctx context.Context, token string) (*models.Share, error)
	ListByDocument(ctx context.Context, documentID domain.DocumentID) ([]*models.Share, error)
	ListForRecipient(ctx context.Context, userID domain.UserID, email string) ([]*models.Share, error)
	BindRecipient(ctx context.Context, id domain.ShareID, userID domain.UserID, now time.Time) error
	RecordView(ctx context.Context, id domain.ShareID, now time.Time) (*models.Share, bool, error)
	Transition(ctx context.Context, id domain.ShareID, expected, next models.Status, now time.Time) (*models.Share, error)
}

// DocumentStore is the disclosure document store. Sharing reads documents and
// writes only the buyer signature slots.
type DocumentStore interface {
	FindByID(ctx context.Context, id domain.DocumentID) (*disclosure.Document, error)
	Update(ctx context.Context, doc *disclosure.Document) error
}

type Tracker interface {
	Track(ctx context.Context, event ledger.Event)
}

type Notifier interface {
	Notify(ctx context.Context, note notifier.Notification) error
}

// SellerDirectory supplies the contact card shown to recipients.
type SellerDirectory interface {
	SellerProfile(ctx context.Context, sellerID domain.UserID) (*directory.SellerProfile, error)
}

// PDFRefresher re-renders a document after a buyer signs it.
type PDFRefresher interface {
	RefreshPDF(ctx context.Context, id domain.DocumentID)
}

type Service struct {
	shares    Store
	documents DocumentStore
	tx        SigningTx
	ledger    Tracker
	notifier  Notifier
	sellers   SellerDirectory
	pdf       PDFRefresher
	baseURL   string
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
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

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithSellerDirectory(d SellerDirectory) Option {
	return func(s *Service) {
		s.sellers = d
	}
}

func WithPDFRefresher(r PDFRefresher) Option {
	return func(s *Service) {
		s.pdf = r
	}
}

// WithPublicBaseURL sets the buyer-facing app that share links point at.
func WithPublicBaseURL(base string) Option {
	return func(s *Service) {
		s.baseURL = strings.TrimRight(base, "/")
	}
}

func New(shares Store, documents DocumentStore, tx SigningTx, tracker Tracker, opts ...Option) *Service {
	s := &Service{
		shares:    shares,
		documents: documents,
		tx:        tx,
		ledger:    tracker,
		logger:    slog.Default(),
		tracer:    otel.Tracer("homedisclose/sharing"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShareURL is the recipient link for a grant.
func (s *Service) ShareURL(share *models.Share) string {
	return s.baseURL + "/disclosures/shared/" + url.PathEscape(share.AccessToken)
}

// Create shares a completed or signed document with one recipient. The grant
// is persisted before the invitation goes out; a failed invitation is
// reported as a warning, not an error.
func (s *Service) Create(ctx context.Context, documentID domain.DocumentID, caller requestcontext.Identity, in models.CreateInput) (result *models.CreateResult, err error) {
	ctx, span := s.start(ctx, "sharing.Create", attribute.String("document_id", documentID.String()))
	defer func() { endSpan(span, err) }()

	doc, err := s.ownedDocument(ctx, documentID, caller.UserID)
	if err != nil {
		return nil, err
	}
	if !doc.Status.IsShareable() {
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "only completed or signed disclosures can be shared")
	}

	now := requestcontext.Now(ctx).UTC()
	share, err := models.NewShare(domain.NewShareID(), documentID, caller.UserID, in, now)
	if err != nil {
		return nil, err
	}
	if err := s.createWithFreshToken(ctx, share); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create share")
	}

	if s.metrics != nil {
		s.metrics.SharesCreated.Inc()
	}
	s.logger.InfoContext(ctx, "disclosure shared",
		"request_id", requestcontext.RequestID(ctx),
		"document_id", documentID.String(),
		"share_id", share.ID.String(),
	)
	s.track(ctx, share, ledger.EventShared, map[string]any{
		ledger.MetaRecipientEmail: share.RecipientEmail,
	})

	result = &models.CreateResult{Share: models.SellerShare{Share: share, ShareURL: s.ShareURL(share)}}
	err = s.notify(ctx, share.RecipientEmail, notifier.TemplateDisclosureShared, map[string]any{
		"recipient_name": share.RecipientName,
		"message":        share.Message,
		"share_url":      result.Share.ShareURL,
		"address":        doc.Header.PropertyAddress,
	})
	if err != nil {
		result.Warning = invitationWarning
	}
	return result, nil
}

// createWithFreshToken retries token collisions, which only a broken random
// source makes likely.
func (s *Service) createWithFreshToken(ctx context.Context, share *models.Share) error {
	for attempt := 1; ; attempt++ {
		err := s.shares.Create(ctx, share)
		if !errors.Is(err, sentinel.ErrConflict) || attempt == maxTokenAttempts {
			return err
		}
		token, err := models.GenerateToken()
		if err != nil {
			return err
		}
		share.AccessToken = token
	}
}

// ListForDocument returns the document's grants to its seller.
func (s *Service) ListForDocument(ctx context.Context, documentID domain.DocumentID, caller domain.UserID) ([]models.SellerShare, error) {
	if _, err := s.ownedDocument(ctx, documentID, caller); err != nil {
		return nil, err
	}
	shares, err := s.shares.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list shares")
	}
	out := make([]models.SellerShare, 0, len(shares))
	for _, share := range shares {
		out = append(out, models.SellerShare{Share: share, ShareURL: s.ShareURL(share)})
	}
	return out, nil
}

// Inbox lists the grants visible to an authenticated buyer.
func (s *Service) Inbox(ctx context.Context, caller requestcontext.Identity) ([]*models.Share, error) {
	if !caller.IsAuthenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	shares, err := s.shares.ListForRecipient(ctx, caller.UserID, caller.Email)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list shared disclosures")
	}
	return shares, nil
}

// RecordedShares reports each grant's stored view counter, for drift audits.
func (s *Service) RecordedShares(ctx context.Context, documentID domain.DocumentID) ([]ledger.RecordedShare, error) {
	shares, err := s.shares.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.RecordedShare, 0, len(shares))
	for _, share := range shares {
		out = append(out, ledger.RecordedShare{
			ShareID:        share.ID,
			RecipientEmail: share.RecipientEmail,
			ViewCount:      share.ViewCount,
		})
	}
	return out, nil
}

// ViewAsRecipient resolves an authenticated caller to the grant and records
// the view. An email match binds the grant to the caller's account.
func (s *Service) ViewAsRecipient(ctx context.Context, shareID domain.ShareID, caller requestcontext.Identity) (view *models.SharedDisclosure, err error) {
	ctx, span := s.start(ctx, "sharing.View", attribute.String("share_id", shareID.String()))
	defer func() { endSpan(span, err) }()

	share, path, err := s.resolveRecipient(ctx, shareID, caller)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, share, path)
}

// ViewByToken is the anonymous path. It has the same side effects as an
// authenticated view.
func (s *Service) ViewByToken(ctx context.Context, token string) (view *models.SharedDisclosure, err error) {
	ctx, span := s.start(ctx, "sharing.ViewByToken")
	defer func() { endSpan(span, err) }()

	share, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, share, models.AccessByToken)
}

func (s *Service) AcknowledgeAsRecipient(ctx context.Context, shareID domain.ShareID, caller requestcontext.Identity) (share *models.Share, err error) {
	ctx, span := s.start(ctx, "sharing.Acknowledge", attribute.String("share_id", shareID.String()))
	defer func() { endSpan(span, err) }()

	share, path, err := s.resolveRecipient(ctx, shareID, caller)
	if err != nil {
		return nil, err
	}
	return s.acknowledge(ctx, share, path)
}

func (s *Service) AcknowledgeByToken(ctx context.Context, token string) (share *models.Share, err error) {
	ctx, span := s.start(ctx, "sharing.AcknowledgeByToken")
	defer func() { endSpan(span, err) }()

	share, err = s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.acknowledge(ctx, share, models.AccessByToken)
}

func (s *Service) SignAsRecipient(ctx context.Context, shareID domain.ShareID, caller requestcontext.Identity, in disclosure.SignatureInput) (share *models.Share, err error) {
	ctx, span := s.start(ctx, "sharing.Sign", attribute.String("share_id", shareID.String()))
	defer func() { endSpan(span, err) }()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	share, path, err := s.resolveRecipient(ctx, shareID, caller)
	if err != nil {
		return nil, err
	}
	return s.sign(ctx, share, path, caller, in)
}

func (s *Service) SignByToken(ctx context.Context, token string, in disclosure.SignatureInput) (share *models.Share, err error) {
	ctx, span := s.start(ctx, "sharing.SignByToken")
	defer func() { endSpan(span, err) }()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	share, err = s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.sign(ctx, share, models.AccessByToken, requestcontext.Caller(ctx), in)
}

// resolveRecipient applies the user-id and email identity paths. Either one
// is sufficient, even when the grant is bound to a different account. An
// email match on an unbound grant binds it.
func (s *Service) resolveRecipient(ctx context.Context, shareID domain.ShareID, caller requestcontext.Identity) (*models.Share, models.AccessPath, error) {
	if !caller.IsAuthenticated() {
		return nil, "", dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	share, err := s.shares.FindByID(ctx, shareID)
	if err != nil {
		return nil, "", s.lookupError(err)
	}
	path, ok := share.MatchRecipient(caller)
	if !ok {
		s.resolutionFailed()
		return nil, "", dErrors.New(dErrors.CodeNotFound, notFoundMessage)
	}
	now := requestcontext.Now(ctx).UTC()
	if share.IsExpired(now) {
		return nil, "", s.expired()
	}

	if share.NeedsBinding(path) {
		if err := s.shares.BindRecipient(ctx, share.ID, caller.UserID, now); err != nil {
			if !errors.Is(err, sentinel.ErrInvalidState) {
				return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to bind share recipient")
			}
			// Another account bound the grant first. The email still
			// matches, so access proceeds without rebinding.
			s.logger.InfoContext(ctx, "share already bound to another account",
				"request_id", requestcontext.RequestID(ctx),
				"share_id", share.ID.String(),
			)
			return share, path, nil
		}
		uid := caller.UserID
		share.RecipientUserID = &uid
		s.logger.InfoContext(ctx, "share bound to recipient account",
			"request_id", requestcontext.RequestID(ctx),
			"share_id", share.ID.String(),
		)
	}
	return share, path, nil
}

func (s *Service) resolveToken(ctx context.Context, token string) (*models.Share, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, dErrors.New(dErrors.CodeNotFound, notFoundMessage)
	}
	share, err := s.shares.FindByToken(ctx, token)
	if err != nil {
		return nil, s.lookupError(err)
	}
	if share.IsExpired(requestcontext.Now(ctx).UTC()) {
		return nil, s.expired()
	}
	return share, nil
}

func (s *Service) view(ctx context.Context, share *models.Share, path models.AccessPath) (*models.SharedDisclosure, error) {
	doc, err := s.document(ctx, share.DocumentID)
	if err != nil {
		return nil, err
	}
	updated, first, err := s.shares.RecordView(ctx, share.ID, requestcontext.Now(ctx).UTC())
	if err != nil {
		return nil, s.lookupError(err)
	}

	if s.metrics != nil {
		s.metrics.IncView(string(path), first)
	}
	metadata := map[string]any{
		ledger.MetaFirstView:  first,
		ledger.MetaViewCount:  updated.ViewCount,
		ledger.MetaAccessPath: string(path),
	}
	s.track(ctx, updated, ledger.EventShareViewed, metadata)

	return &models.SharedDisclosure{
		Share:     models.NewRecipientShare(updated),
		Document:  models.NewRecipientDocument(doc),
		Seller:    s.sellerContact(ctx, doc.SellerID),
		FirstView: first,
	}, nil
}

func (s *Service) acknowledge(ctx context.Context, share *models.Share, path models.AccessPath) (*models.Share, error) {
	if err := share.CanAcknowledge(); err != nil {
		return nil, err
	}
	updated, err := s.shares.Transition(ctx, share.ID, models.StatusViewed, models.StatusAcknowledged, requestcontext.Now(ctx).UTC())
	if err != nil {
		return nil, s.transitionError(err)
	}

	if s.metrics != nil {
		s.metrics.IncTransition(string(models.StatusAcknowledged))
	}
	s.track(ctx, updated, ledger.EventShareAcknowledged, map[string]any{ledger.MetaAccessPath: string(path)})
	s.notifySeller(ctx, updated, notifier.TemplateDisclosureAcknowledged)
	return updated, nil
}

// sign moves the grant to signed and fills the document's next buyer slot in
// one transaction. Everything is checked before the first write; the document
// is written first and restored if the grant transition then fails.
func (s *Service) sign(ctx context.Context, share *models.Share, path models.AccessPath, caller requestcontext.Identity, in disclosure.SignatureInput) (*models.Share, error) {
	var (
		updated *models.Share
		slot    disclosure.SignatureSlot
	)
	err := s.tx.RunInTx(ctx, share.DocumentID, func(ctx context.Context, stores TxStores) error {
		current, err := stores.Shares.FindByID(ctx, share.ID)
		if err != nil {
			return s.lookupError(err)
		}
		if err := current.CanSign(); err != nil {
			return err
		}
		doc, err := stores.Documents.FindByID(ctx, share.DocumentID)
		if err != nil {
			return s.documentError(err)
		}
		slot, err = doc.CanBuyerSign()
		if err != nil {
			return err
		}

		now := requestcontext.Now(ctx).UTC()
		original := doc.Clone()
		doc.ApplyBuyerSignature(slot, disclosure.Signature{
			Data:         in.Data,
			PrintedName:  in.PrintedName,
			SignerUserID: signerID(current, caller),
			SignerEmail:  current.RecipientEmail,
		}, now)
		if err := doc.CheckTransition(original.Status); err != nil {
			return err
		}
		if err := doc.CheckInvariants(); err != nil {
			return err
		}

		if err := stores.Documents.Update(ctx, doc); err != nil {
			return s.documentError(err)
		}
		updated, err = stores.Shares.Transition(ctx, current.ID, current.Status, models.StatusSigned, now)
		if err != nil {
			// Not every runner rolls back, so the slot is released here.
			if restoreErr := stores.Documents.Update(ctx, original); restoreErr != nil {
				s.logger.ErrorContext(ctx, "failed to release buyer slot",
					"request_id", requestcontext.RequestID(ctx),
					"document_id", original.ID.String(),
					"slot", string(slot),
					"error", restoreErr,
				)
			}
			return s.transitionError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncTransition(string(models.StatusSigned))
		s.metrics.IncBuyerSignature(string(slot))
	}
	s.logger.InfoContext(ctx, "disclosure counter-signed",
		"request_id", requestcontext.RequestID(ctx),
		"share_id", updated.ID.String(),
		"slot", string(slot),
	)
	s.track(ctx, updated, ledger.EventShareSigned, map[string]any{ledger.MetaAccessPath: string(path)})
	s.track(ctx, updated, ledger.EventSignedBuyer, map[string]any{ledger.MetaSlot: string(slot)})
	s.notifySeller(ctx, updated, notifier.TemplateDisclosureSigned)
	if s.pdf != nil {
		s.pdf.RefreshPDF(ctx, updated.DocumentID)
	}
	return updated, nil
}

func signerID(share *models.Share, caller requestcontext.Identity) *domain.UserID {
	if caller.IsAuthenticated() {
		uid := caller.UserID
		return &uid
	}
	if share.RecipientUserID != nil {
		uid := *share.RecipientUserID
		return &uid
	}
	return nil
}

func (s *Service) ownedDocument(ctx context.Context, documentID domain.DocumentID, caller domain.UserID) (*disclosure.Document, error) {
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	doc, err := s.document(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.IsOwnedBy(caller) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not the owner of this disclosure")
	}
	return doc, nil
}

func (s *Service) document(ctx context.Context, id domain.DocumentID) (*disclosure.Document, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, s.documentError(err)
	}
	return doc, nil
}

func (s *Service) sellerContact(ctx context.Context, sellerID domain.UserID) models.SellerContact {
	if s.sellers == nil {
		return models.SellerContact{}
	}
	profile, err := s.sellers.SellerProfile(ctx, sellerID)
	if err != nil {
		s.logger.WarnContext(ctx, "seller profile unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return models.SellerContact{}
	}
	return models.SellerContact{
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Phone:     profile.Phone,
	}
}

func (s *Service) notifySeller(ctx context.Context, share *models.Share, template string) {
	if s.sellers == nil {
		return
	}
	doc, err := s.documents.FindByID(ctx, share.DocumentID)
	if err != nil {
		return
	}
	profile, err := s.sellers.SellerProfile(ctx, doc.SellerID)
	if err != nil || profile.Email == "" {
		return
	}
	_ = s.notify(ctx, profile.Email, template, map[string]any{
		"recipient_email": share.RecipientEmail,
		"recipient_name":  share.RecipientName,
		"document_id":     share.DocumentID.String(),
	})
}

// notify delivers one notification. Failures are logged and counted; the
// caller decides whether they matter.
func (s *Service) notify(ctx context.Context, recipient, template string, data map[string]any) error {
	if s.notifier == nil {
		return nil
	}
	err := s.notifier.Notify(ctx, notifier.Notification{Template: template, Recipient: recipient, Data: data})
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncNotifyFailure(template)
		}
		s.logger.WarnContext(ctx, "notification failed",
			"request_id", requestcontext.RequestID(ctx),
			"template", template,
			"error", err,
		)
	}
	return err
}

func (s *Service) track(ctx context.Context, share *models.Share, eventType ledger.EventType, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata[ledger.MetaShareID] = share.ID.String()
	if _, ok := metadata[ledger.MetaRecipientEmail]; !ok {
		metadata[ledger.MetaRecipientEmail] = share.RecipientEmail
	}
	shareID := share.ID
	s.ledger.Track(ctx, ledger.Event{
		DocumentID: share.DocumentID,
		Type:       eventType,
		ShareID:    &shareID,
		Metadata:   metadata,
	})
}

func (s *Service) lookupError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		s.resolutionFailed()
		return dErrors.New(dErrors.CodeNotFound, notFoundMessage)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load share")
}

func (s *Service) documentError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "disclosure not found")
	}
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load disclosure")
}

func (s *Service) transitionError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidTransition, "share status changed concurrently")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMessage)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update share")
	}
}

func (s *Service) expired() error {
	if s.metrics != nil {
		s.metrics.ExpiredAccess.Inc()
	}
	return dErrors.New(dErrors.CodeExpired, "this disclosure share has expired")
}

func (s *Service) resolutionFailed() {
	if s.metrics != nil {
		s.metrics.ResolutionFailures.Inc()
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
