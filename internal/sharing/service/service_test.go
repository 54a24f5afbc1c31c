package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"homedisclose/internal/collaborators/directory"
	"homedisclose/internal/collaborators/notifier"
	disclosure "homedisclose/internal/disclosure/models"
	"homedisclose/internal/disclosure/store/document"
	ledger "homedisclose/internal/ledger/models"
	"homedisclose/internal/sharing/metrics"
	"homedisclose/internal/sharing/models"
	"homedisclose/internal/sharing/service/mocks"
	"homedisclose/internal/sharing/store/share"
	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
	"homedisclose/pkg/platform/sentinel"
	txcontext "homedisclose/pkg/platform/tx"
	"homedisclose/pkg/requestcontext"
)

type SharingServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	shares    *share.InMemoryStore
	documents *document.InMemoryStore
	tracker   *mocks.MockTracker
	notifier  *mocks.MockNotifier
	sellers   *mocks.MockSellerDirectory
	pdf       *mocks.MockPDFRefresher
	metrics   *metrics.Metrics
	service   *Service

	ctx       context.Context
	now       time.Time
	seller    requestcontext.Identity
	buyer     requestcontext.Identity
	doc       *disclosure.Document
	events    []ledger.Event
	notes     []notifier.Notification
	notifyErr error
}

func TestSharingServiceSuite(t *testing.T) {
	suite.Run(t, new(SharingServiceSuite))
}

func (s *SharingServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.shares = share.NewInMemory()
	s.documents = document.NewInMemory()
	s.tracker = mocks.NewMockTracker(s.ctrl)
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.sellers = mocks.NewMockSellerDirectory(s.ctrl)
	s.pdf = mocks.NewMockPDFRefresher(s.ctrl)
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.events = nil
	s.notes = nil
	s.notifyErr = nil

	runner := txcontext.NewShardedRunner(txcontext.DefaultTimeout)
	s.service = New(s.shares, s.documents, NewSigningTx(runner, s.shares, s.documents), s.tracker,
		WithNotifier(s.notifier),
		WithSellerDirectory(s.sellers),
		WithPDFRefresher(s.pdf),
		WithMetrics(s.metrics),
		WithPublicBaseURL("https://homes.example.com/"),
	)

	s.now = time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.seller = requestcontext.Identity{UserID: domain.UserID(uuid.New()), Email: "seller@example.com", Role: "seller"}
	s.buyer = requestcontext.Identity{UserID: domain.UserID(uuid.New()), Email: "buyer@example.com", Role: "buyer"}

	s.tracker.EXPECT().Track(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e ledger.Event) {
		s.events = append(s.events, e)
	}).AnyTimes()
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n notifier.Notification) error {
		s.notes = append(s.notes, n)
		return s.notifyErr
	}).AnyTimes()
	s.sellers.EXPECT().SellerProfile(gomock.Any(), s.seller.UserID).Return(&directory.SellerProfile{
		FirstName: "Pat", LastName: "Seller", Phone: "555-0100", Email: s.seller.Email,
	}, nil).AnyTimes()

	s.doc = s.completedDocument()
}

func (s *SharingServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SharingServiceSuite) completedDocument() *disclosure.Document {
	doc, err := disclosure.NewDocument(domain.NewDocumentID(), domain.PropertyID(uuid.New()), s.seller.UserID, s.now)
	s.Require().NoError(err)
	values := map[disclosure.SectionKey]any{
		disclosure.Section1:  map[string]any{"notes": "none"},
		disclosure.Section2:  map[string]any{"roof_type": "Tile", "roof_age": "8 years"},
		disclosure.Section3:  map[string]any{"water_provider": "city"},
		disclosure.Section5:  map[string]any{"cracks": "no"},
		disclosure.Section8:  map[string]any{"smoke_detector_status": "working"},
		disclosure.Section10: map[string]any{"hoa": "none"},
	}
	for _, key := range []disclosure.SectionKey{disclosure.Section4, disclosure.Section6, disclosure.Section7, disclosure.Section9, disclosure.Section11, disclosure.Section12, disclosure.Section13} {
		values[key] = map[string]any{"answer": "no"}
	}
	for key, v := range values {
		doc.ApplySectionWrite(key, disclosure.NewSectionValue(v), s.now)
	}
	s.Require().NoError(doc.CanComplete(disclosure.DefaultSigningThreshold))
	doc.ApplyCompletion(s.now)
	s.Require().NoError(s.documents.Create(s.ctx, doc))
	return doc
}

func (s *SharingServiceSuite) share(email string) *models.Share {
	result, err := s.service.Create(s.ctx, s.doc.ID, s.seller, models.CreateInput{RecipientEmail: email})
	s.Require().NoError(err)
	return result.Share.Share
}

func (s *SharingServiceSuite) eventTypes() []ledger.EventType {
	out := make([]ledger.EventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

func (s *SharingServiceSuite) lastEvent(t ledger.EventType) ledger.Event {
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Type == t {
			return s.events[i]
		}
	}
	s.FailNow("no event", string(t))
	return ledger.Event{}
}

func (s *SharingServiceSuite) TestCreate() {
	s.Run("persists the grant, tracks it and invites the recipient", func() {
		result, err := s.service.Create(s.ctx, s.doc.ID, s.seller, models.CreateInput{
			RecipientEmail: " Buyer@Example.com ",
			Message:        "Please review before Friday",
		})
		s.Require().NoError(err)
		s.Empty(result.Warning)

		grant := result.Share.Share
		s.Equal("buyer@example.com", grant.RecipientEmail)
		s.Equal(models.StatusPending, grant.Status)
		s.Equal("https://homes.example.com/disclosures/shared/"+grant.AccessToken, result.Share.ShareURL)

		e := s.lastEvent(ledger.EventShared)
		s.Require().NotNil(e.ShareID)
		s.Equal(grant.ID, *e.ShareID)
		s.Equal(grant.ID.String(), e.Metadata[ledger.MetaShareID])
		s.Equal("buyer@example.com", e.Metadata[ledger.MetaRecipientEmail])

		s.Require().Len(s.notes, 1)
		s.Equal(notifier.TemplateDisclosureShared, s.notes[0].Template)
		s.Equal("buyer@example.com", s.notes[0].Recipient)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.SharesCreated))
	})

	s.Run("a failed invitation is a warning, not an error", func() {
		s.notifyErr = errors.New("smtp down")
		result, err := s.service.Create(s.ctx, s.doc.ID, s.seller, models.CreateInput{RecipientEmail: "other@example.com"})
		s.Require().NoError(err)
		s.Equal(invitationWarning, result.Warning)

		stored, err := s.shares.FindByID(s.ctx, result.Share.ID)
		s.Require().NoError(err)
		s.Equal("other@example.com", stored.RecipientEmail)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.NotifyFailures.WithLabelValues(notifier.TemplateDisclosureShared)))
	})

	s.Run("only the seller may share", func() {
		_, err := s.service.Create(s.ctx, s.doc.ID, s.buyer, models.CreateInput{RecipientEmail: "x@example.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("drafts cannot be shared", func() {
		draft, err := disclosure.NewDocument(domain.NewDocumentID(), domain.PropertyID(uuid.New()), s.seller.UserID, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.documents.Create(s.ctx, draft))

		_, err = s.service.Create(s.ctx, draft.ID, s.seller, models.CreateInput{RecipientEmail: "x@example.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("invalid email is rejected before anything is stored", func() {
		before, err := s.shares.ListByDocument(s.ctx, s.doc.ID)
		s.Require().NoError(err)

		_, err = s.service.Create(s.ctx, s.doc.ID, s.seller, models.CreateInput{RecipientEmail: "not-an-email"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		after, err := s.shares.ListByDocument(s.ctx, s.doc.ID)
		s.Require().NoError(err)
		s.Len(after, len(before))
	})
}

func (s *SharingServiceSuite) TestListAndInbox() {
	grant := s.share("buyer@example.com")
	s.share("someone@example.com")

	list, err := s.service.ListForDocument(s.ctx, s.doc.ID, s.seller.UserID)
	s.Require().NoError(err)
	s.Len(list, 2)
	for _, item := range list {
		s.Contains(item.ShareURL, item.AccessToken)
	}

	_, err = s.service.ListForDocument(s.ctx, s.doc.ID, s.buyer.UserID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	inbox, err := s.service.Inbox(s.ctx, s.buyer)
	s.Require().NoError(err)
	s.Require().Len(inbox, 1)
	s.Equal(grant.ID, inbox[0].ID)

	_, err = s.service.Inbox(s.ctx, requestcontext.Identity{})
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

// Anonymous token access moves the grant to viewed; a later login with the
// same email binds the account without resetting status.
func (s *SharingServiceSuite) TestTokenViewThenEmailBinding() {
	grant := s.share("buyer@example.com")

	view, err := s.service.ViewByToken(s.ctx, grant.AccessToken)
	s.Require().NoError(err)
	s.True(view.FirstView)
	s.Equal(models.StatusViewed, view.Share.Status)
	s.Equal(1, view.Share.ViewCount)
	s.Equal(s.doc.ID, view.Document.ID)
	s.Equal(models.SellerContact{FirstName: "Pat", LastName: "Seller", Phone: "555-0100"}, view.Seller)

	e := s.lastEvent(ledger.EventShareViewed)
	s.Equal(true, e.Metadata[ledger.MetaFirstView])
	s.Equal(string(models.AccessByToken), e.Metadata[ledger.MetaAccessPath])

	view, err = s.service.ViewAsRecipient(s.ctx, grant.ID, s.buyer)
	s.Require().NoError(err)
	s.False(view.FirstView)
	s.Equal(models.StatusViewed, view.Share.Status)
	s.Equal(2, view.Share.ViewCount)

	stored, err := s.shares.FindByID(s.ctx, grant.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.RecipientUserID)
	s.Equal(s.buyer.UserID, *stored.RecipientUserID)
	s.Equal(string(models.AccessByEmail), s.lastEvent(ledger.EventShareViewed).Metadata[ledger.MetaAccessPath])

	s.Run("bound grants match by user id even after an email change", func() {
		renamed := s.buyer
		renamed.Email = "new-address@example.com"
		view, err := s.service.ViewAsRecipient(s.ctx, grant.ID, renamed)
		s.Require().NoError(err)
		s.Equal(3, view.Share.ViewCount)
		s.Equal(string(models.AccessByUserID), s.lastEvent(ledger.EventShareViewed).Metadata[ledger.MetaAccessPath])
	})

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.FirstViews))
}

func (s *SharingServiceSuite) TestResolutionFailuresAreGeneric() {
	grant := s.share("buyer@example.com")
	stranger := requestcontext.Identity{UserID: domain.UserID(uuid.New()), Email: "stranger@example.com"}

	_, errStranger := s.service.ViewAsRecipient(s.ctx, grant.ID, stranger)
	_, errMissing := s.service.ViewAsRecipient(s.ctx, domain.NewShareID(), s.buyer)
	_, errToken := s.service.ViewByToken(s.ctx, "no-such-token")
	_, errEmpty := s.service.ViewByToken(s.ctx, "  ")

	for _, err := range []error{errStranger, errMissing, errToken, errEmpty} {
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(notFoundMessage, dErrors.MessageOf(err))
	}

	_, err := s.service.ViewAsRecipient(s.ctx, grant.ID, requestcontext.Identity{})
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	stored, err := s.shares.FindByID(s.ctx, grant.ID)
	s.Require().NoError(err)
	s.Equal(0, stored.ViewCount)
	s.Nil(stored.RecipientUserID)
}

func (s *SharingServiceSuite) TestExpiredGrant() {
	expires := s.now.Add(time.Hour)
	result, err := s.service.Create(s.ctx, s.doc.ID, s.seller, models.CreateInput{
		RecipientEmail: "buyer@example.com",
		ExpiresAt:      &expires,
	})
	s.Require().NoError(err)
	grant := result.Share.Share

	later := requestcontext.WithTime(context.Background(), expires.Add(time.Minute))
	_, err = s.service.ViewByToken(later, grant.AccessToken)
	s.True(dErrors.HasCode(err, dErrors.CodeExpired))
	_, err = s.service.ViewAsRecipient(later, grant.ID, s.buyer)
	s.True(dErrors.HasCode(err, dErrors.CodeExpired))
	_, err = s.service.SignByToken(later, grant.AccessToken, disclosure.SignatureInput{Data: "sig", PrintedName: "Bo Buyer"})
	s.True(dErrors.HasCode(err, dErrors.CodeExpired))

	s.Equal(float64(3), testutil.ToFloat64(s.metrics.ExpiredAccess))
}

func (s *SharingServiceSuite) TestAcknowledge() {
	grant := s.share("buyer@example.com")

	s.Run("pending grants must be viewed first", func() {
		_, err := s.service.AcknowledgeByToken(s.ctx, grant.AccessToken)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("viewed grants move to acknowledged and notify the seller", func() {
		_, err := s.service.ViewAsRecipient(s.ctx, grant.ID, s.buyer)
		s.Require().NoError(err)

		updated, err := s.service.AcknowledgeAsRecipient(s.ctx, grant.ID, s.buyer)
		s.Require().NoError(err)
		s.Equal(models.StatusAcknowledged, updated.Status)
		s.NotNil(updated.AcknowledgedAt)
		s.Contains(s.eventTypes(), ledger.EventShareAcknowledged)

		last := s.notes[len(s.notes)-1]
		s.Equal(notifier.TemplateDisclosureAcknowledged, last.Template)
		s.Equal(s.seller.Email, last.Recipient)
	})

	s.Run("acknowledging twice is rejected", func() {
		_, err := s.service.AcknowledgeAsRecipient(s.ctx, grant.ID, s.buyer)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func (s *SharingServiceSuite) TestSign() {
	first := s.share("buyer@example.com")
	second := s.share("cobuyer@example.com")
	third := s.share("late@example.com")
	input := disclosure.SignatureInput{Data: "data:image/png;base64,BBBB", PrintedName: "Bo Buyer"}

	s.Run("first counter-signature lands in buyer1", func() {
		s.pdf.EXPECT().RefreshPDF(gomock.Any(), s.doc.ID)

		updated, err := s.service.SignAsRecipient(s.ctx, first.ID, s.buyer, input)
		s.Require().NoError(err)
		s.Equal(models.StatusSigned, updated.Status)
		s.NotNil(updated.SignedAt)

		doc, err := s.documents.FindByID(s.ctx, s.doc.ID)
		s.Require().NoError(err)
		s.Require().NotNil(doc.Signatures.Buyer1)
		s.Equal("Bo Buyer", doc.Signatures.Buyer1.PrintedName)
		s.Equal(s.now, doc.Signatures.Buyer1.SignedAt)
		s.Equal("buyer@example.com", doc.Signatures.Buyer1.SignerEmail)
		s.Require().NotNil(doc.Signatures.Buyer1.SignerUserID)
		s.Equal(s.buyer.UserID, *doc.Signatures.Buyer1.SignerUserID)
		s.Nil(doc.Signatures.Buyer2)
		s.Equal(disclosure.StatusCompleted, doc.Status)

		s.Equal(string(disclosure.SlotBuyer1), s.lastEvent(ledger.EventSignedBuyer).Metadata[ledger.MetaSlot])
		s.Contains(s.eventTypes(), ledger.EventShareSigned)
		s.Equal(notifier.TemplateDisclosureSigned, s.notes[len(s.notes)-1].Template)
	})

	s.Run("signing an already signed grant is rejected", func() {
		_, err := s.service.SignAsRecipient(s.ctx, first.ID, s.buyer, input)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("anonymous token signature fills buyer2 without a signer id", func() {
		s.pdf.EXPECT().RefreshPDF(gomock.Any(), s.doc.ID)

		_, err := s.service.SignByToken(s.ctx, second.AccessToken, input)
		s.Require().NoError(err)

		doc, err := s.documents.FindByID(s.ctx, s.doc.ID)
		s.Require().NoError(err)
		s.Require().NotNil(doc.Signatures.Buyer2)
		s.Nil(doc.Signatures.Buyer2.SignerUserID)
		s.Equal("cobuyer@example.com", doc.Signatures.Buyer2.SignerEmail)
	})

	s.Run("full buyer slots leave the grant untouched", func() {
		_, err := s.service.SignByToken(s.ctx, third.AccessToken, input)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		stored, err := s.shares.FindByID(s.ctx, third.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, stored.Status)
	})

	s.Run("signature input is validated first", func() {
		_, err := s.service.SignByToken(s.ctx, third.AccessToken, disclosure.SignatureInput{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.BuyerSignatures.WithLabelValues(string(disclosure.SlotBuyer1))))
}

func (s *SharingServiceSuite) TestSignSurfacesDocumentWriteFailures() {
	grant := s.share("buyer@example.com")

	documents := mocks.NewMockDocumentStore(s.ctrl)
	svc := New(s.shares, documents, NewSigningTx(txcontext.NewShardedRunner(txcontext.DefaultTimeout), s.shares, documents), s.tracker)

	doc := s.doc.Clone()
	documents.EXPECT().FindByID(gomock.Any(), s.doc.ID).Return(doc, nil)
	documents.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := svc.SignByToken(s.ctx, grant.AccessToken, disclosure.SignatureInput{Data: "sig", PrintedName: "Bo Buyer"})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	stored, err := s.shares.FindByID(s.ctx, grant.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, stored.Status)
	s.Nil(stored.SignedAt)
	s.NotContains(s.eventTypes(), ledger.EventShareSigned)
}

func (s *SharingServiceSuite) TestSignReleasesBuyerSlotWhenGrantMoves() {
	grant := s.share("buyer@example.com")

	store := mocks.NewMockStore(s.ctrl)
	svc := New(store, s.documents, NewSigningTx(txcontext.NewShardedRunner(txcontext.DefaultTimeout), store, s.documents), s.tracker)

	store.EXPECT().FindByToken(gomock.Any(), grant.AccessToken).Return(grant.Clone(), nil)
	store.EXPECT().FindByID(gomock.Any(), grant.ID).Return(grant.Clone(), nil)
	store.EXPECT().Transition(gomock.Any(), grant.ID, models.StatusPending, models.StatusSigned, gomock.Any()).
		Return(nil, sentinel.ErrInvalidState)

	_, err := svc.SignByToken(s.ctx, grant.AccessToken, disclosure.SignatureInput{Data: "sig", PrintedName: "Bo Buyer"})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	doc, err := s.documents.FindByID(s.ctx, s.doc.ID)
	s.Require().NoError(err)
	s.Nil(doc.Signatures.Buyer1)
	s.Equal(disclosure.StatusCompleted, doc.Status)
}

// A token view must not carry the seller's account or any other buyer's
// contact details, only the seller's name and phone.
func (s *SharingServiceSuite) TestRecipientViewHidesPrivateIdentities() {
	doc, err := s.documents.FindByID(s.ctx, s.doc.ID)
	s.Require().NoError(err)
	slot, err := doc.CanSellerSign(s.seller.UserID, disclosure.DefaultSigningThreshold)
	s.Require().NoError(err)
	sellerID := s.seller.UserID
	doc.ApplySellerSignature(slot, disclosure.Signature{
		Data:         "data:image/png;base64,AAAA",
		PrintedName:  "Pat Seller",
		SignerUserID: &sellerID,
		SignerEmail:  s.seller.Email,
	}, s.now)
	s.Require().NoError(s.documents.Update(s.ctx, doc))

	first := s.share("buyer@example.com")
	second := s.share("partner@example.com")
	s.pdf.EXPECT().RefreshPDF(gomock.Any(), s.doc.ID)
	_, err = s.service.SignAsRecipient(s.ctx, first.ID, s.buyer, disclosure.SignatureInput{Data: "sig", PrintedName: "Bo Buyer"})
	s.Require().NoError(err)

	view, err := s.service.ViewByToken(s.ctx, second.AccessToken)
	s.Require().NoError(err)
	s.Require().Contains(view.Document.Signatures, disclosure.SlotSeller1)
	s.Equal("Pat Seller", view.Document.Signatures[disclosure.SlotSeller1].PrintedName)
	s.Require().Contains(view.Document.Signatures, disclosure.SlotBuyer1)
	s.Equal("Bo Buyer", view.Document.Signatures[disclosure.SlotBuyer1].PrintedName)

	raw, err := json.Marshal(view)
	s.Require().NoError(err)
	body := string(raw)
	s.NotContains(body, s.seller.Email)
	s.NotContains(body, s.seller.UserID.String())
	s.NotContains(body, "buyer@example.com")
	s.NotContains(body, s.buyer.UserID.String())
	s.Contains(body, "555-0100")
}

func (s *SharingServiceSuite) TestEmailMatchOnGrantBoundElsewhere() {
	grant := s.share("buyer@example.com")
	_, err := s.service.ViewAsRecipient(s.ctx, grant.ID, s.buyer)
	s.Require().NoError(err)

	s.Run("a second account with the recipient email still has access", func() {
		other := requestcontext.Identity{UserID: domain.UserID(uuid.New()), Email: "Buyer@Example.com"}
		view, err := s.service.ViewAsRecipient(s.ctx, grant.ID, other)
		s.Require().NoError(err)
		s.Equal(2, view.Share.ViewCount)
		s.Equal(string(models.AccessByEmail), s.lastEvent(ledger.EventShareViewed).Metadata[ledger.MetaAccessPath])

		stored, err := s.shares.FindByID(s.ctx, grant.ID)
		s.Require().NoError(err)
		s.Require().NotNil(stored.RecipientUserID)
		s.Equal(s.buyer.UserID, *stored.RecipientUserID)
	})

	s.Run("losing the binding race does not deny access", func() {
		unbound := s.share("late@example.com")
		caller := requestcontext.Identity{UserID: domain.UserID(uuid.New()), Email: "late@example.com"}

		store := mocks.NewMockStore(s.ctrl)
		svc := New(store, s.documents, NewSigningTx(txcontext.NewShardedRunner(txcontext.DefaultTimeout), store, s.documents), s.tracker)

		viewed := unbound.Clone()
		viewed.ApplyView(s.now)
		store.EXPECT().FindByID(gomock.Any(), unbound.ID).Return(unbound.Clone(), nil)
		store.EXPECT().BindRecipient(gomock.Any(), unbound.ID, caller.UserID, gomock.Any()).Return(sentinel.ErrInvalidState)
		store.EXPECT().RecordView(gomock.Any(), unbound.ID, gomock.Any()).Return(viewed, true, nil)

		view, err := svc.ViewAsRecipient(s.ctx, unbound.ID, caller)
		s.Require().NoError(err)
		s.True(view.FirstView)
		s.Equal(models.StatusViewed, view.Share.Status)
	})
}

func (s *SharingServiceSuite) TestRecordedShares() {
	grant := s.share("buyer@example.com")
	s.share("other@example.com")
	_, err := s.service.ViewByToken(s.ctx, grant.AccessToken)
	s.Require().NoError(err)

	recorded, err := s.service.RecordedShares(s.ctx, s.doc.ID)
	s.Require().NoError(err)
	s.Len(recorded, 2)
	counts := map[domain.ShareID]int{}
	for _, r := range recorded {
		counts[r.ShareID] = r.ViewCount
	}
	s.Equal(1, counts[grant.ID])
}

func (s *SharingServiceSuite) TestCreateRetriesTokenCollisions() {
	store := mocks.NewMockStore(s.ctrl)
	svc := New(store, s.documents, NewSigningTx(txcontext.NewShardedRunner(txcontext.DefaultTimeout), store, s.documents), s.tracker)

	var tokens []string
	store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, sh *models.Share) error {
		tokens = append(tokens, sh.AccessToken)
		if len(tokens) == 1 {
			return sentinel.ErrConflict
		}
		return nil
	}).Times(2)

	_, err := svc.Create(s.ctx, s.doc.ID, s.seller, models.CreateInput{RecipientEmail: "buyer@example.com"})
	s.Require().NoError(err)
	s.Require().Len(tokens, 2)
	s.NotEqual(tokens[0], tokens[1])
}
