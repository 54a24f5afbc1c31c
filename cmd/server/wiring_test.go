package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "homedisclose/internal/jwt_token"
	"homedisclose/internal/platform/config"
	"homedisclose/internal/platform/logger"
	"homedisclose/pkg/testutil"
)

// The app registers its collectors on the default Prometheus registry, so the
// router is built once for the whole test.
func TestRouterInMemory(t *testing.T) {
	cfg := config.Defaults()
	cfg.Sharing.PublicRequestsPerWindow = 2
	log := logger.NewWithWriter(io.Discard, "error", "json")

	in := &infra{}
	a := buildApp(cfg, log, in)
	t.Cleanup(a.dispatcher.Close)
	srv := httptest.NewServer(newRouter(cfg, log, in, a))
	t.Cleanup(srv.Close)

	jwt := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	seller := uuid.New()
	token, err := jwt.GenerateAccessToken(seller, "seller@example.com", "user", time.Hour)
	require.NoError(t, err)

	do := func(method, path, bearer string) *http.Response {
		req, err := http.NewRequest(method, srv.URL+path, nil)
		require.NoError(t, err)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	testutil.Given(t, "a router with no external backends", func(t *testing.T) {
		testutil.When(t, "probing health", func(t *testing.T) {
			resp := do(http.MethodGet, "/health", "")
			testutil.Then(t, "it reports ok with a request id", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
			})
		})

		testutil.When(t, "calling a seller route anonymously", func(t *testing.T) {
			resp := do(http.MethodGet, "/properties/"+uuid.NewString()+"/disclosure", "")
			testutil.Then(t, "it is unauthorized", func(t *testing.T) {
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})
		})

		testutil.When(t, "a seller opens a document", func(t *testing.T) {
			resp := do(http.MethodGet, "/properties/"+uuid.NewString()+"/disclosure", token)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var doc struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))

			testutil.Then(t, "it is a draft whose shares and analytics are readable", func(t *testing.T) {
				assert.Equal(t, "draft", doc.Status)
				assert.Equal(t, http.StatusOK, do(http.MethodGet, "/disclosures/"+doc.ID+"/analytics/summary", token).StatusCode)
				assert.Equal(t, http.StatusOK, do(http.MethodGet, "/disclosures/"+doc.ID+"/shares", token).StatusCode)
			})
		})

		testutil.When(t, "an anonymous client keeps probing share tokens", func(t *testing.T) {
			var statuses []int
			var last *http.Response
			for i := 0; i < 3; i++ {
				last = do(http.MethodGet, "/public/disclosures/unknown-token", "")
				statuses = append(statuses, last.StatusCode)
			}
			testutil.Then(t, "it is throttled after the per-IP allowance", func(t *testing.T) {
				assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests}, statuses)
				assert.NotEmpty(t, last.Header.Get("Retry-After"))
			})
		})
	})
}
