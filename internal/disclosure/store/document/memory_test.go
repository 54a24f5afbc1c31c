package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"homedisclose/internal/disclosure/models"
	"homedisclose/pkg/domain"
	"homedisclose/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func newDoc(s *InMemoryStoreSuite) *models.Document {
	doc, err := models.NewDocument(domain.NewDocumentID(), domain.PropertyID(uuid.New()), domain.UserID(uuid.New()), time.Now())
	s.Require().NoError(err)
	return doc
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	doc := newDoc(s)
	s.Require().NoError(s.store.Create(s.ctx, doc))

	byID, err := s.store.FindByID(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(doc.PropertyID, byID.PropertyID)

	byProperty, err := s.store.FindByPropertyID(s.ctx, doc.PropertyID)
	s.Require().NoError(err)
	s.Equal(doc.ID, byProperty.ID)
}

func (s *InMemoryStoreSuite) TestOneDocumentPerProperty() {
	doc := newDoc(s)
	s.Require().NoError(s.store.Create(s.ctx, doc))

	dup := newDoc(s)
	dup.PropertyID = doc.PropertyID
	err := s.store.Create(s.ctx, dup)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *InMemoryStoreSuite) TestReturnedDocumentsAreCopies() {
	doc := newDoc(s)
	s.Require().NoError(s.store.Create(s.ctx, doc))

	loaded, err := s.store.FindByID(s.ctx, doc.ID)
	s.Require().NoError(err)
	loaded.ApplySectionWrite(models.Section4, models.NewSectionValue(true), time.Now())

	again, err := s.store.FindByID(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Empty(again.Sections)

	s.Require().NoError(s.store.Update(s.ctx, loaded))
	again, err = s.store.FindByID(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(5, again.CompletionPercentage)
}

func (s *InMemoryStoreSuite) TestMissing() {
	_, err := s.store.FindByID(s.ctx, domain.NewDocumentID())
	s.True(errors.Is(err, sentinel.ErrNotFound))
	_, err = s.store.FindByPropertyID(s.ctx, domain.PropertyID(uuid.New()))
	s.True(errors.Is(err, sentinel.ErrNotFound))
	s.True(errors.Is(s.store.Update(s.ctx, newDoc(s)), sentinel.ErrNotFound))
}
