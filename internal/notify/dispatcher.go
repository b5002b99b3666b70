package notify

import (
	"context"
	"net/http"

	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Result reports the outcome of one channel for a single dispatch.
type Result struct {
	Channel string `json:"channel"`
	Err     error  `json:"-"`
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Dispatcher fans a notification out to every configured channel. Channels
// are independent: one failing never stops the others, and nothing is retried.
type Dispatcher struct {
	notifiers []Notifier
	logger    *log.Logger
	metrics   *metrics.Recorder
}

func NewDispatcher(logger *log.Logger, recorder *metrics.Recorder, notifiers ...Notifier) *Dispatcher {
	active := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &Dispatcher{notifiers: active, logger: logger, metrics: recorder}
}

// NewWebhookDispatcher builds a dispatcher from webhook URLs; empty URLs are skipped.
func NewWebhookDispatcher(logger *log.Logger, recorder *metrics.Recorder, slackURL, discordURL string, client *http.Client) *Dispatcher {
	var notifiers []Notifier
	if slackURL != "" {
		notifiers = append(notifiers, NewSlackNotifier(slackURL, client))
	}
	if discordURL != "" {
		notifiers = append(notifiers, NewDiscordNotifier(discordURL, client))
	}
	return NewDispatcher(logger, recorder, notifiers...)
}

func (d *Dispatcher) Enabled() bool {
	return d != nil && len(d.notifiers) > 0
}

func (d *Dispatcher) Channels() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Name())
	}
	return names
}

// Dispatch waits for every channel and returns one Result per channel in
// configuration order.
func (d *Dispatcher) Dispatch(ctx context.Context, n LeadNotification) []Result {
	if !d.Enabled() {
		return nil
	}

	logger := log.GetLoggerInstanceFromContext(ctx, d.logger)
	results := make([]Result, len(d.notifiers))

	var g errgroup.Group
	for i, notifier := range d.notifiers {
		g.Go(func() error {
			err := notifier.Notify(ctx, n)
			results[i] = Result{Channel: notifier.Name(), Err: err}

			if err != nil {
				logger.Error("Lead notification failed", "channel", notifier.Name(), "lead_id", n.LeadID, "error", err)
				d.metrics.Notification(notifier.Name(), metrics.OutcomeFailure)
				return nil
			}

			logger.Info("Lead notification sent", "channel", notifier.Name(), "lead_id", n.LeadID)
			d.metrics.Notification(notifier.Name(), metrics.OutcomeSuccess)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
