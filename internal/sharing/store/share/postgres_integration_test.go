//go:build integration

package share_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	disclosure "homedisclose/internal/disclosure/models"
	"homedisclose/internal/disclosure/store/document"
	"homedisclose/internal/sharing/models"
	"homedisclose/internal/sharing/store/share"
	"homedisclose/pkg/domain"
	"homedisclose/pkg/platform/sentinel"
	txcontext "homedisclose/pkg/platform/tx"
	"homedisclose/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *share.PostgresStore
	documents *document.PostgresStore
	doc       *disclosure.Document
	now       time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = share.NewPostgres(s.postgres.DB)
	s.documents = document.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "share_grants", "disclosure_documents"))
	s.now = time.Now().UTC().Truncate(time.Microsecond)

	doc, err := disclosure.NewDocument(domain.NewDocumentID(), domain.PropertyID(uuid.New()), domain.UserID(uuid.New()), s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.documents.Create(ctx, doc))
	s.doc = doc
}

func (s *PostgresStoreSuite) newShare(email string) *models.Share {
	sh, err := models.NewShare(domain.NewShareID(), s.doc.ID, s.doc.SellerID, models.CreateInput{RecipientEmail: email}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), sh))
	return sh
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	sh := s.newShare("buyer@example.com")

	byID, err := s.store.FindByID(ctx, sh.ID)
	s.Require().NoError(err)
	s.Equal(sh.RecipientEmail, byID.RecipientEmail)
	s.Equal(models.StatusPending, byID.Status)
	s.Equal(sh.AccessToken, byID.AccessToken)

	byToken, err := s.store.FindByToken(ctx, sh.AccessToken)
	s.Require().NoError(err)
	s.Equal(sh.ID, byToken.ID)

	_, err = s.store.FindByToken(ctx, "missing")
	s.True(errors.Is(err, sentinel.ErrNotFound))

	dup := *sh
	dup.ID = domain.NewShareID()
	s.True(errors.Is(s.store.Create(ctx, &dup), sentinel.ErrConflict), "tokens are unique")
}

func (s *PostgresStoreSuite) TestListForRecipient() {
	ctx := context.Background()
	userID := domain.UserID(uuid.New())
	byEmail := s.newShare("buyer@example.com")
	bound := s.newShare("old-address@example.com")
	s.newShare("someone-else@example.com")
	s.Require().NoError(s.store.BindRecipient(ctx, bound.ID, userID, s.now))

	shares, err := s.store.ListForRecipient(ctx, userID, "Buyer@Example.com")
	s.Require().NoError(err)
	ids := []domain.ShareID{}
	for _, sh := range shares {
		ids = append(ids, sh.ID)
	}
	s.ElementsMatch([]domain.ShareID{byEmail.ID, bound.ID}, ids)
}

func (s *PostgresStoreSuite) TestBindRecipient() {
	ctx := context.Background()
	sh := s.newShare("buyer@example.com")
	userID := domain.UserID(uuid.New())

	s.Require().NoError(s.store.BindRecipient(ctx, sh.ID, userID, s.now))
	s.Require().NoError(s.store.BindRecipient(ctx, sh.ID, userID, s.now), "rebinding the same user is a no-op")

	err := s.store.BindRecipient(ctx, sh.ID, domain.UserID(uuid.New()), s.now)
	s.True(errors.Is(err, sentinel.ErrInvalidState))

	stored, err := s.store.FindByID(ctx, sh.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.RecipientUserID)
	s.Equal(userID, *stored.RecipientUserID)
}

func (s *PostgresStoreSuite) TestConcurrentViewsHaveOneFirstView() {
	ctx := context.Background()
	sh := s.newShare("buyer@example.com")

	var firsts atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, first, err := s.store.RecordView(ctx, sh.ID, time.Now().UTC())
			if err == nil && first {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()

	stored, err := s.store.FindByID(ctx, sh.ID)
	s.Require().NoError(err)
	s.Equal(int32(1), firsts.Load())
	s.Equal(20, stored.ViewCount)
	s.Equal(models.StatusViewed, stored.Status)
	s.NotNil(stored.FirstViewedAt)
}

func (s *PostgresStoreSuite) TestTransition() {
	ctx := context.Background()
	sh := s.newShare("buyer@example.com")

	_, err := s.store.Transition(ctx, sh.ID, models.StatusViewed, models.StatusAcknowledged, s.now)
	s.True(errors.Is(err, sentinel.ErrInvalidState), "stale expected status")

	_, _, err = s.store.RecordView(ctx, sh.ID, s.now)
	s.Require().NoError(err)
	updated, err := s.store.Transition(ctx, sh.ID, models.StatusViewed, models.StatusAcknowledged, s.now)
	s.Require().NoError(err)
	s.Equal(models.StatusAcknowledged, updated.Status)
	s.Require().NotNil(updated.AcknowledgedAt)

	_, err = s.store.Transition(ctx, domain.NewShareID(), models.StatusViewed, models.StatusSigned, s.now)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestSQLRunnerRollsBackTheGrantTransition() {
	ctx := context.Background()
	sh := s.newShare("buyer@example.com")
	runner := txcontext.NewSQLRunner(s.postgres.DB, txcontext.DefaultTimeout)
	boom := errors.New("document write failed")

	err := runner.RunInTx(ctx, s.doc.ID.String(), func(ctx context.Context) error {
		if _, err := s.store.Transition(ctx, sh.ID, models.StatusPending, models.StatusSigned, s.now); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	stored, err := s.store.FindByID(ctx, sh.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, stored.Status)
}
