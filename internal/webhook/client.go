// Package webhook delivers due notifications to the external push gateway.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client posts notification payloads to the configured delivery webhook
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	stubMode   bool
}

// NewClient creates a webhook client. With stubMode true no HTTP calls are
// made and every delivery reports success, which keeps local development
// working without a push gateway.
func NewClient(baseURL, secret string, stubMode bool) *Client {
	return &Client{
		baseURL:    baseURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		stubMode:   stubMode,
	}
}

// Payload is one notification delivery request
type Payload struct {
	NotificationID int64     `json:"notification_id"`
	UserID         int64     `json:"user_id"`
	Title          string    `json:"title"`
	NotifyTime     time.Time `json:"notify_time"`
}

// Deliver pushes one notification to the gateway
func (c *Client) Deliver(ctx context.Context, payload Payload) error {
	if c.stubMode {
		return nil
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notify", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Webhook-Secret", c.secret)
	req.Header.Set("Content-Type", "application/json")
	// Delivery id lets the gateway correlate retries in its own logs.
	req.Header.Set("X-Delivery-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
