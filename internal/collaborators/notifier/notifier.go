// Package notifier delivers lifecycle notifications (share invitations,
// acknowledgements, counter-signatures). Delivery internals live behind a
// webhook; the engine only hands over a template name and data.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Templates the lifecycle services send.
const (
	TemplateDisclosureShared       = "disclosure_shared"
	TemplateDisclosureAcknowledged = "disclosure_acknowledged"
	TemplateDisclosureSigned       = "disclosure_signed_by_buyer"
	TemplateSellerSigned           = "disclosure_signed_by_seller"
)

type Notification struct {
	Template  string         `json:"template"`
	Recipient string         `json:"recipient"`
	Data      map[string]any `json:"data"`
}

// LogNotifier writes notifications to the log. Used when no webhook is set.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, note Notification) error {
	n.logger.InfoContext(ctx, "notification",
		"template", note.Template,
		"recipient", note.Recipient,
	)
	return nil
}

// WebhookNotifier posts notifications as JSON to a delivery service.
type WebhookNotifier struct {
	client *http.Client
	url    string
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{client: &http.Client{Timeout: timeout}, url: url}
}

func (n *WebhookNotifier) Notify(ctx context.Context, note Notification) error {
	body, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notification webhook returned %d", resp.StatusCode)
	}
	return nil
}
