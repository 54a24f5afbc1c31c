package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"homedisclose/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return v.claims, v.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func captureIdentity(got *requestcontext.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = requestcontext.Caller(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuth(t *testing.T) {
	uid := uuid.New()
	valid := stubValidator{claims: &JWTClaims{UserID: uid.String(), Email: " Buyer@Example.com ", Role: "buyer"}}

	t.Run("valid token populates identity", func(t *testing.T) {
		var got requestcontext.Identity
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()

		RequireAuth(valid, discardLogger())(captureIdentity(&got)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, uid.String(), got.UserID.String())
		assert.Equal(t, "buyer@example.com", got.Email)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		var got requestcontext.Identity
		rr := httptest.NewRecorder()
		RequireAuth(valid, discardLogger())(captureIdentity(&got)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`, rr.Body.String())
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		var got requestcontext.Identity
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rr := httptest.NewRecorder()
		RequireAuth(stubValidator{err: errors.New("bad")}, discardLogger())(captureIdentity(&got)).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	t.Run("anonymous passes through", func(t *testing.T) {
		var got requestcontext.Identity
		rr := httptest.NewRecorder()
		OptionalAuth(stubValidator{err: errors.New("unused")}, discardLogger())(captureIdentity(&got)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.False(t, got.IsAuthenticated())
	})

	t.Run("present but invalid token is rejected", func(t *testing.T) {
		var got requestcontext.Identity
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rr := httptest.NewRecorder()
		OptionalAuth(stubValidator{err: errors.New("bad")}, discardLogger())(captureIdentity(&got)).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
