package email

import (
	"context"
	"errors"

	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/metrics"
)

// ErrEmailDisabled is returned by NoopSender; callers treat it like any other
// best-effort delivery failure.
var ErrEmailDisabled = errors.New("email delivery is not configured")

type Message struct {
	To       []string
	Subject  string
	HTML     string
	Text     string
	ReplyTo  string
	Template string
	Tags     map[string]string

	// IdempotencyKey lets the provider drop a duplicate of a message it already
	// accepted. Empty derives a key from the rendered message.
	IdempotencyKey string
}

type Sender interface {
	// Send delivers msg and returns the provider message id.
	Send(ctx context.Context, msg Message) (string, error)
	Enabled() bool
}

type NoopSender struct {
	logger  *log.Logger
	metrics *metrics.Recorder
}

func NewNoopSender(logger *log.Logger, recorder *metrics.Recorder) *NoopSender {
	return &NoopSender{logger: logger, metrics: recorder}
}

func (s *NoopSender) Send(ctx context.Context, msg Message) (string, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)
	logger.Warn("Email not sent; provider not configured", "template", msg.Template, "subject", msg.Subject)
	s.metrics.Email(msg.Template, metrics.OutcomeSkipped)
	return "", ErrEmailDisabled
}

func (s *NoopSender) Enabled() bool {
	return false
}
