// Package directory looks up seller contact details and property facts owned
// by the listing side of the platform.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"homedisclose/pkg/domain"
	"homedisclose/pkg/platform/circuit"
	"homedisclose/pkg/platform/sentinel"
)

const cacheTTL = 5 * time.Minute

// SellerProfile is the contact card exposed on public disclosure views.
type SellerProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
}

// Property seeds a new document's header.
type Property struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	YearBuilt  int    `json:"year_built"`
}

// HTTPDirectory reads the directory service through a per-instance cache.
// While the breaker is open lookups fail fast with sentinel.ErrUnavailable.
type HTTPDirectory struct {
	client     *http.Client
	baseURL    string
	logger     *slog.Logger
	breaker    *circuit.Breaker
	sellers    *expirable.LRU[domain.UserID, *SellerProfile]
	properties *expirable.LRU[domain.PropertyID, *Property]
}

func NewHTTPDirectory(baseURL string, timeout time.Duration, cacheSize int, breaker *circuit.Breaker, logger *slog.Logger) *HTTPDirectory {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &HTTPDirectory{
		client:     &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With(slog.String("component", "directory_client")),
		breaker:    breaker,
		sellers:    expirable.NewLRU[domain.UserID, *SellerProfile](cacheSize, nil, cacheTTL),
		properties: expirable.NewLRU[domain.PropertyID, *Property](cacheSize, nil, cacheTTL),
	}
}

func (d *HTTPDirectory) SellerProfile(ctx context.Context, sellerID domain.UserID) (*SellerProfile, error) {
	if p, ok := d.sellers.Get(sellerID); ok {
		return p, nil
	}
	var p SellerProfile
	if err := d.get(ctx, "/sellers/"+sellerID.String(), &p); err != nil {
		return nil, err
	}
	d.sellers.Add(sellerID, &p)
	return &p, nil
}

func (d *HTTPDirectory) Property(ctx context.Context, propertyID domain.PropertyID) (*Property, error) {
	if p, ok := d.properties.Get(propertyID); ok {
		return p, nil
	}
	var p Property
	if err := d.get(ctx, "/properties/"+propertyID.String(), &p); err != nil {
		return nil, err
	}
	d.properties.Add(propertyID, &p)
	return &p, nil
}

func (d *HTTPDirectory) get(ctx context.Context, path string, out any) error {
	if d.breaker != nil && !d.breaker.Allow() {
		return sentinel.ErrUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.recordFailure(ctx)
		return fmt.Errorf("directory request %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		d.recordSuccess(ctx)
		return sentinel.ErrNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		d.recordFailure(ctx)
		return fmt.Errorf("directory returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		d.recordSuccess(ctx)
		return fmt.Errorf("directory returned %d", resp.StatusCode)
	}
	d.recordSuccess(ctx)
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode directory response: %w", err)
	}
	return nil
}

func (d *HTTPDirectory) recordFailure(ctx context.Context) {
	if d.breaker == nil {
		return
	}
	if _, change := d.breaker.RecordFailure(); change.Opened {
		d.logger.WarnContext(ctx, "directory circuit breaker opened")
	}
}

func (d *HTTPDirectory) recordSuccess(ctx context.Context) {
	if d.breaker == nil {
		return
	}
	if _, change := d.breaker.RecordSuccess(); change.Closed {
		d.logger.InfoContext(ctx, "directory circuit breaker closed")
	}
}

// StaticDirectory serves fixed records, for development and tests.
type StaticDirectory struct {
	mu         sync.RWMutex
	sellers    map[domain.UserID]SellerProfile
	properties map[domain.PropertyID]Property
}

func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		sellers:    make(map[domain.UserID]SellerProfile),
		properties: make(map[domain.PropertyID]Property),
	}
}

func (d *StaticDirectory) PutSeller(id domain.UserID, p SellerProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sellers[id] = p
}

func (d *StaticDirectory) PutProperty(id domain.PropertyID, p Property) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.properties[id] = p
}

func (d *StaticDirectory) SellerProfile(_ context.Context, sellerID domain.UserID) (*SellerProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.sellers[sellerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (d *StaticDirectory) Property(_ context.Context, propertyID domain.PropertyID) (*Property, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.properties[propertyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}
