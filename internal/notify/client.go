// Package notify delivers check-in notifications to a messaging gateway
// (WhatsApp or SMS bridge) over a JSON webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Notification is the webhook payload.
type Notification struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Role     string `json:"role"`
	Class    string `json:"class,omitempty"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Message  string `json:"message"`
}

// Sender delivers one notification.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// ErrSkipped is returned by a client configured to skip delivery.
var ErrSkipped = errors.New("notification delivery disabled")

// Client posts notifications to the gateway.
type Client struct {
	URL  string
	HTTP *http.Client
	Skip bool
}

// New creates a client; skip or an empty url disables delivery.
func New(url string, skip bool) *Client {
	return &Client{
		URL:  url,
		Skip: skip || url == "",
		HTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts n as JSON. Any status >= 300 is an error.
func (c *Client) Send(ctx context.Context, n Notification) error {
	if c.Skip {
		return ErrSkipped
	}

	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("notification gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("notification gateway error %s: %s", resp.Status, string(bodyBytes))
	}
	return nil
}
