package email

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/metrics"
	"github.com/hudsondigital/hds-platform/pkg/circuitbreaker"
	"github.com/hudsondigital/hds-platform/pkg/retry"
	"github.com/tidwall/gjson"
)

const DefaultResendAPIURL = "https://api.resend.com"

type ResendConfig struct {
	APIKey  string
	BaseURL string
	From    string
	Timeout time.Duration
	Retry   *retry.Config
	Breaker *circuitbreaker.Config
}

// ResendError carries a non-2xx answer from the Resend API.
type ResendError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *ResendError) Error() string {
	return fmt.Sprintf("resend: status %d: %s: %s", e.StatusCode, e.Name, e.Message)
}

type ResendClient struct {
	apiKey  string
	baseURL string
	from    string
	http    *http.Client
	retry   retry.RetryPolicy
	breaker circuitbreaker.CircuitBreaker
	logger  *log.Logger
	metrics *metrics.Recorder
}

func NewResendClient(cfg ResendConfig, logger *log.Logger, recorder *metrics.Recorder) *ResendClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultResendAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if logger == nil {
		logger = log.NewDiscardLogger()
	}

	breakerCfg := cfg.Breaker
	if breakerCfg == nil {
		breakerCfg = &circuitbreaker.Config{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
			SuccessThreshold: 1,
		}
	}
	breakerCfg.Name = "resend"
	breakerCfg.IsFailure = isProviderFailure
	breakerCfg.OnStateChange = func(name string, from, to circuitbreaker.CircuitState) {
		logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
	}

	return &ResendClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		from:    cfg.From,
		http:    &http.Client{Timeout: timeout},
		retry:   retry.NewExponentialBackoff(cfg.Retry),
		breaker: circuitbreaker.NewCircuitBreaker(breakerCfg),
		logger:  logger,
		metrics: recorder,
	}
}

func (c *ResendClient) Enabled() bool {
	return true
}

type resendTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type resendRequest struct {
	From    string      `json:"from"`
	To      []string    `json:"to"`
	Subject string      `json:"subject"`
	HTML    string      `json:"html,omitempty"`
	Text    string      `json:"text,omitempty"`
	ReplyTo string      `json:"reply_to,omitempty"`
	Tags    []resendTag `json:"tags,omitempty"`
}

func (c *ResendClient) Send(ctx context.Context, msg Message) (string, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, c.logger)

	if len(msg.To) == 0 {
		return "", errors.New("resend: message has no recipients")
	}

	body, err := json.Marshal(c.toRequest(msg))
	if err != nil {
		return "", fmt.Errorf("resend: encode request: %w", err)
	}

	key := msg.IdempotencyKey
	if key == "" {
		key = idempotencyKeyFor(body)
	}

	var id string
	err = c.breaker.Call(ctx, func(ctx context.Context) error {
		return c.retry.Execute(ctx, func(ctx context.Context) error {
			sentID, sendErr := c.post(ctx, body, key)
			if sendErr != nil {
				return sendErr
			}
			id = sentID
			return nil
		})
	})
	if err != nil {
		logger.Error("Email delivery failed", "template", msg.Template, "error", err)
		c.metrics.Email(msg.Template, metrics.OutcomeFailure)
		return "", err
	}

	if id == "" {
		logger.Warn("Email accepted without a message id", "template", msg.Template)
	} else {
		logger.Info("Email sent", "template", msg.Template, "message_id", id)
	}
	c.metrics.Email(msg.Template, metrics.OutcomeSuccess)
	return id, nil
}

func (c *ResendClient) toRequest(msg Message) resendRequest {
	req := resendRequest{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}

	tags := make(map[string]string, len(msg.Tags)+1)
	for k, v := range msg.Tags {
		tags[k] = v
	}
	if msg.Template != "" {
		tags["template"] = msg.Template
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		req.Tags = append(req.Tags, resendTag{Name: sanitizeTag(k), Value: sanitizeTag(tags[k])})
	}

	return req
}

// idempotencyKeyFor keys a request by its encoded body, so every attempt of
// one Send carries the same key.
func idempotencyKeyFor(body []byte) string {
	sum := sha256.Sum256(body)
	return "hds-" + hex.EncodeToString(sum[:16])
}

// post performs one attempt. Network errors, 429 and 5xx are retryable.
// A 2xx answer means the message was accepted even if it carries no id.
func (c *ResendClient) post(ctx context.Context, body []byte, idempotencyKey string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("resend: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", retry.Retryable(fmt.Errorf("resend: send: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", retry.Retryable(fmt.Errorf("resend: read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		parsed := gjson.ParseBytes(raw)
		apiErr := &ResendError{
			StatusCode: resp.StatusCode,
			Name:       parsed.Get("name").String(),
			Message:    parsed.Get("message").String(),
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", retry.Retryable(apiErr)
		}
		return "", apiErr
	}

	return gjson.GetBytes(raw, "id").String(), nil
}

// isProviderFailure keeps caller mistakes (4xx other than 429) from opening the breaker.
func isProviderFailure(err error) bool {
	var apiErr *ResendError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled)
}

// Resend tag names and values allow ASCII letters, numbers, underscores and dashes.
func sanitizeTag(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
