// Package renderer turns a document snapshot into a PDF and returns where it
// was stored. Rendering itself happens in an external service.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"homedisclose/internal/disclosure/models"
)

// HTTPRenderer posts the snapshot to the rendering service.
type HTTPRenderer struct {
	client *http.Client
	url    string
}

func NewHTTPRenderer(url string, timeout time.Duration) *HTTPRenderer {
	return &HTTPRenderer{client: &http.Client{Timeout: timeout}, url: url}
}

type renderResponse struct {
	URL string `json:"url"`
}

func (r *HTTPRenderer) Render(ctx context.Context, snapshot *models.Document) (string, error) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("renderer returned %d", resp.StatusCode)
	}
	var out renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode render response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("renderer returned no url")
	}
	return out.URL, nil
}

// NoopRenderer produces nothing. The service keeps the previous PDF reference.
type NoopRenderer struct{}

func (NoopRenderer) Render(context.Context, *models.Document) (string, error) {
	return "", nil
}
