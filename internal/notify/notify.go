package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultWebhookTimeout = 10 * time.Second

// LeadNotification is the payload sent to chat channels for a high-value lead.
type LeadNotification struct {
	LeadID   uint
	Name     string
	Email    string
	Company  string
	Phone    string
	Service  string
	Budget   string
	Timeline string
	Source   string
	Score    int
	Message  string
	AdminURL string
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, n LeadNotification) error
}

// WebhookError is returned when a webhook answers with a non-2xx status.
type WebhookError struct {
	Channel    string
	StatusCode int
	Body       string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("%s webhook status %d: %s", e.Channel, e.StatusCode, e.Body)
}

func postJSON(ctx context.Context, client *http.Client, channel, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode payload: %w", channel, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", channel, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send: %w", channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &WebhookError{Channel: channel, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func newHTTPClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultWebhookTimeout}
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
