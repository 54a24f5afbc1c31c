package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	disclosure "homedisclose/internal/disclosure/models"
	"homedisclose/internal/sharing/handler/mocks"
	"homedisclose/internal/sharing/models"
	"homedisclose/pkg/domain"
	dErrors "homedisclose/pkg/domain-errors"
	"homedisclose/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/sharing-mocks.go -package=mocks Service
type SharingHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	caller  requestcontext.Identity
}

func TestSharingHandlerSuite(t *testing.T) {
	suite.Run(t, new(SharingHandlerSuite))
}

func (s *SharingHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.caller = requestcontext.Identity{UserID: domain.UserID(uuid.New()), Email: "buyer@example.com"}

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.RegisterPublic(s.router)
	s.router.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := requestcontext.WithIdentity(r.Context(), s.caller)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		})
		h.Register(r)
	})
}

func (s *SharingHandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *SharingHandlerSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *SharingHandlerSuite) TestCreate() {
	docID := domain.NewDocumentID()
	expires := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	s.service.EXPECT().Create(gomock.Any(), docID, s.caller, models.CreateInput{
		RecipientEmail: "buyer@example.com",
		Message:        "hi",
		ExpiresAt:      &expires,
	}).Return(&models.CreateResult{
		Share: models.SellerShare{
			Share:    &models.Share{ID: domain.NewShareID(), RecipientEmail: "buyer@example.com", AccessToken: "secret", Status: models.StatusPending},
			ShareURL: "https://homes.example.com/disclosures/shared/secret",
		},
		Warning: "share created, but the invitation email could not be sent",
	}, nil)

	w := s.do(http.MethodPost, "/disclosures/"+docID.String()+"/shares",
		`{"recipient_email":"buyer@example.com","message":"hi","expires_at":"2026-07-01T00:00:00Z"}`)
	s.Equal(http.StatusCreated, w.Code)

	body := s.decode(w)
	share := body["share"].(map[string]any)
	s.Equal("pending", share["status"])
	s.Equal("https://homes.example.com/disclosures/shared/secret", share["share_url"])
	s.NotContains(share, "access_token")
	s.NotEmpty(body["warning"])
}

func (s *SharingHandlerSuite) TestListWrapsEmptyResults() {
	docID := domain.NewDocumentID()
	s.service.EXPECT().ListForDocument(gomock.Any(), docID, s.caller.UserID).Return(nil, nil)

	w := s.do(http.MethodGet, "/disclosures/"+docID.String()+"/shares", "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"shares":[],"total":0}`, w.Body.String())
}

func (s *SharingHandlerSuite) TestRecipientRoutes() {
	shareID := domain.NewShareID()

	s.Run("view", func() {
		s.service.EXPECT().ViewAsRecipient(gomock.Any(), shareID, s.caller).Return(&models.SharedDisclosure{
			Share:     &models.RecipientShare{ID: shareID, Status: models.StatusViewed, ViewCount: 1},
			Document:  &models.RecipientDocument{Status: disclosure.StatusCompleted},
			Seller:    models.SellerContact{FirstName: "Pat"},
			FirstView: true,
		}, nil)

		w := s.do(http.MethodGet, "/shared-disclosures/"+shareID.String(), "")
		s.Equal(http.StatusOK, w.Code)
		body := s.decode(w)
		s.Equal(true, body["first_view"])
		s.Equal("Pat", body["seller"].(map[string]any)["first_name"])
	})

	s.Run("acknowledge before viewing is a conflict", func() {
		s.service.EXPECT().AcknowledgeAsRecipient(gomock.Any(), shareID, s.caller).
			Return(nil, dErrors.New(dErrors.CodeInvalidTransition, "disclosure must be viewed before it is acknowledged"))

		w := s.do(http.MethodPost, "/shared-disclosures/"+shareID.String()+"/acknowledge", "")
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("sign decodes the signature", func() {
		s.service.EXPECT().SignAsRecipient(gomock.Any(), shareID, s.caller, disclosure.SignatureInput{Data: "blob", PrintedName: "Bo Buyer"}).
			Return(&models.Share{ID: shareID, Status: models.StatusSigned}, nil)

		w := s.do(http.MethodPost, "/shared-disclosures/"+shareID.String()+"/sign", `{"signature_data":"blob","printed_name":"Bo Buyer"}`)
		s.Equal(http.StatusOK, w.Code)
		s.Equal("signed", s.decode(w)["status"])
	})

	s.Run("malformed share id", func() {
		w := s.do(http.MethodGet, "/shared-disclosures/not-a-uuid", "")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *SharingHandlerSuite) TestTokenRoutes() {
	s.Run("unknown token is a generic not found", func() {
		s.service.EXPECT().ViewByToken(gomock.Any(), "missing").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "disclosure share not found"))

		w := s.do(http.MethodGet, "/public/disclosures/missing", "")
		s.Equal(http.StatusNotFound, w.Code)
		s.Equal("disclosure share not found", s.decode(w)["error_description"])
	})

	s.Run("expired token is gone", func() {
		s.service.EXPECT().AcknowledgeByToken(gomock.Any(), "old").
			Return(nil, dErrors.New(dErrors.CodeExpired, "this disclosure share has expired"))

		w := s.do(http.MethodPost, "/public/disclosures/old/acknowledge", "")
		s.Equal(http.StatusGone, w.Code)
	})

	s.Run("sign requires a body", func() {
		w := s.do(http.MethodPost, "/public/disclosures/tok/sign", "")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("sign", func() {
		s.service.EXPECT().SignByToken(gomock.Any(), "tok", disclosure.SignatureInput{Data: "blob", PrintedName: "Bo"}).
			Return(&models.Share{Status: models.StatusSigned}, nil)

		w := s.do(http.MethodPost, "/public/disclosures/tok/sign", `{"signature_data":"blob","printed_name":"Bo"}`)
		s.Equal(http.StatusOK, w.Code)
	})
}
