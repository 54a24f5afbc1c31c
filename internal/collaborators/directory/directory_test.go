package directory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homedisclose/pkg/domain"
	"homedisclose/pkg/platform/circuit"
	"homedisclose/pkg/platform/sentinel"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestHTTPDirectory_CachesSellerProfiles(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(SellerProfile{FirstName: "Pat", LastName: "Seller", Phone: "555-0100"})
	}))
	defer srv.Close()

	d := NewHTTPDirectory(srv.URL, time.Second, 8, nil, discard)
	seller := domain.UserID(uuid.New())
	for range 3 {
		p, err := d.SellerProfile(context.Background(), seller)
		require.NoError(t, err)
		assert.Equal(t, "Pat", p.FirstName)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPDirectory_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	d := NewHTTPDirectory(srv.URL, time.Second, 8, nil, discard)
	_, err := d.Property(context.Background(), domain.PropertyID(uuid.New()))
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestHTTPDirectory_BreakerFailsFast(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	breaker := circuit.New("directory", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	d := NewHTTPDirectory(srv.URL, time.Second, 8, breaker, discard)
	for range 5 {
		_, _ = d.SellerProfile(context.Background(), domain.UserID(uuid.New()))
	}
	assert.Equal(t, int32(2), hits.Load())

	_, err := d.SellerProfile(context.Background(), domain.UserID(uuid.New()))
	assert.True(t, errors.Is(err, sentinel.ErrUnavailable))
}

func TestStaticDirectory(t *testing.T) {
	d := NewStaticDirectory()
	seller := domain.UserID(uuid.New())
	d.PutSeller(seller, SellerProfile{FirstName: "Ana"})

	p, err := d.SellerProfile(context.Background(), seller)
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.FirstName)

	_, err = d.SellerProfile(context.Background(), domain.UserID(uuid.New()))
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}
