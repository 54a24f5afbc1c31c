//go:build integration

package document_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"homedisclose/internal/disclosure/models"
	"homedisclose/internal/disclosure/store/document"
	"homedisclose/pkg/domain"
	"homedisclose/pkg/platform/sentinel"
	"homedisclose/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *document.PostgresStore
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = document.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "share_grants", "disclosure_documents"))
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) newDocument() *models.Document {
	doc, err := models.NewDocument(domain.NewDocumentID(), domain.PropertyID(uuid.New()), domain.UserID(uuid.New()), s.now)
	s.Require().NoError(err)
	return doc
}

func (s *PostgresStoreSuite) TestCreateEnforcesOneDocumentPerProperty() {
	ctx := context.Background()
	doc := s.newDocument()
	s.Require().NoError(s.store.Create(ctx, doc))

	again := s.newDocument()
	again.PropertyID = doc.PropertyID
	s.True(errors.Is(s.store.Create(ctx, again), sentinel.ErrConflict))

	found, err := s.store.FindByPropertyID(ctx, doc.PropertyID)
	s.Require().NoError(err)
	s.Equal(doc.ID, found.ID)

	_, err = s.store.FindByID(ctx, domain.NewDocumentID())
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestUpdateRoundTripsSectionsAndSignatures() {
	ctx := context.Background()
	doc := s.newDocument()
	s.Require().NoError(s.store.Create(ctx, doc))

	doc.ApplySectionWrite(models.Section2, models.NewSectionValue(map[string]any{"roof_type": "Tile"}), s.now)
	doc.ApplySectionWrite(models.Section4, models.NewSectionValue(false), s.now)
	doc.Header.PropertyAddress = "12 Elm St"
	uid := doc.SellerID
	doc.Signatures.Seller1 = &models.Signature{Data: "blob", PrintedName: "Pat Seller", SignedAt: s.now, SignerUserID: &uid}
	s.Require().NoError(s.store.Update(ctx, doc))

	found, err := s.store.FindByID(ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, found.Status)
	s.Equal(doc.CompletionPercentage, found.CompletionPercentage)
	s.Equal("12 Elm St", found.Header.PropertyAddress)

	obj, ok := found.Sections[models.Section2].Object()
	s.Require().True(ok)
	s.Equal("Tile", obj["roof_type"])
	b, ok := found.Sections[models.Section4].Bool()
	s.Require().True(ok)
	s.False(b)

	s.Require().NotNil(found.Signatures.Seller1)
	s.Equal("Pat Seller", found.Signatures.Seller1.PrintedName)
	s.WithinDuration(s.now, found.Signatures.Seller1.SignedAt, time.Millisecond)
}
