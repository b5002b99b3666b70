package posthog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const DefaultHost = "https://us.i.posthog.com"

type Event struct {
	Name       string
	DistinctID string
	Properties map[string]any
	Timestamp  time.Time
}

// Client forwards events to the PostHog capture API. A client without an API
// key is disabled and Capture is a no-op.
type Client struct {
	apiKey string
	host   string
	http   *http.Client
}

func NewClient(apiKey, host string, httpClient *http.Client) *Client {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = DefaultHost
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{apiKey: strings.TrimSpace(apiKey), host: host, http: httpClient}
}

func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type captureRequest struct {
	APIKey     string         `json:"api_key"`
	Event      string         `json:"event"`
	DistinctID string         `json:"distinct_id"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  string         `json:"timestamp,omitempty"`
}

func (c *Client) Capture(ctx context.Context, event Event) error {
	if !c.Enabled() {
		return nil
	}

	payload := captureRequest{
		APIKey:     c.apiKey,
		Event:      event.Name,
		DistinctID: event.DistinctID,
		Properties: event.Properties,
	}
	if !event.Timestamp.IsZero() {
		payload.Timestamp = event.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("posthog: encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/capture/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posthog: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posthog: send: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("posthog: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	// Capture answers {"status": 1} on success; an explicit 0 means the event was dropped.
	if status := gjson.GetBytes(raw, "status"); status.Exists() && status.Int() != 1 {
		return fmt.Errorf("posthog: event rejected: %s", strings.TrimSpace(string(raw)))
	}

	return nil
}
