package config

import (
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/metrics"
	"github.com/hudsondigital/hds-platform/internal/notify"
	"github.com/hudsondigital/hds-platform/internal/posthog"
	"github.com/hudsondigital/hds-platform/pkg/constants"
	"github.com/hudsondigital/hds-platform/pkg/csrf"
	"github.com/hudsondigital/hds-platform/pkg/utils"
)

const defaultSiteURL = "https://hudsondigitalsolutions.com"

// IntegrationsConfig collects the outbound providers and shared secrets.
// Every provider is optional; an unset key disables it without failing boot.
type IntegrationsConfig struct {
	SiteURL string

	ResendAPIKey string
	ResendAPIURL string
	EmailFrom    string
	AdminEmail   string

	SlackWebhookURL   string
	DiscordWebhookURL string

	PostHogAPIKey string
	PostHogHost   string

	CronSecret    string
	AdminAPIToken string

	CSRFSecret   string
	CSRFEnabled  bool
	CSRFTokenTTL time.Duration

	LeadNotificationThreshold int
	GDPRTokenTTL              time.Duration
	EmailBatchSize            int

	SchedulerEnabled           bool
	AnalyticsAggregateSchedule string
	ProcessEmailsSchedule      string
}

func NewIntegrationsConfig() *IntegrationsConfig {
	cfg := &IntegrationsConfig{
		SiteURL:      strings.TrimRight(sanitizeEnv(utils.GetEnvTrimmedOrDefault("SITE_URL", defaultSiteURL)), "/"),
		ResendAPIKey: sanitizeEnv(utils.GetEnvTrimmed("RESEND_API_KEY")),
		ResendAPIURL: sanitizeEnv(utils.GetEnvTrimmedOrDefault("RESEND_API_URL", email.DefaultResendAPIURL)),
		EmailFrom:    sanitizeEnv(utils.GetEnvTrimmedOrDefault("EMAIL_FROM", "Hudson Digital Solutions <hello@hudsondigitalsolutions.com>")),
		AdminEmail:   sanitizeEnv(utils.GetEnvTrimmed("ADMIN_EMAIL")),

		SlackWebhookURL:   sanitizeEnv(utils.GetEnvTrimmed("SLACK_WEBHOOK_URL")),
		DiscordWebhookURL: sanitizeEnv(utils.GetEnvTrimmed("DISCORD_WEBHOOK_URL")),

		PostHogAPIKey: sanitizeEnv(utils.GetEnvTrimmed("POSTHOG_API_KEY")),
		PostHogHost:   sanitizeEnv(utils.GetEnvTrimmedOrDefault("POSTHOG_HOST", posthog.DefaultHost)),

		CronSecret:    sanitizeEnv(utils.GetEnvTrimmed("CRON_SECRET")),
		AdminAPIToken: sanitizeEnv(utils.GetEnvTrimmed("ADMIN_API_TOKEN")),

		CSRFSecret:   sanitizeEnv(utils.GetEnvTrimmed("CSRF_SECRET")),
		CSRFEnabled:  utils.GetEnvBool("CSRF_ENABLED", true),
		CSRFTokenTTL: utils.GetEnvDuration("CSRF_TOKEN_TTL", constants.DefaultCSRFTokenTTL),

		LeadNotificationThreshold: utils.GetEnvPositiveInt("LEAD_NOTIFICATION_THRESHOLD", constants.DefaultLeadNotificationThreshold),
		GDPRTokenTTL:              utils.GetEnvDuration("GDPR_TOKEN_TTL", constants.DefaultGDPRTokenTTL),
		EmailBatchSize:            utils.GetEnvPositiveInt("EMAIL_BATCH_SIZE", constants.DefaultEmailBatchSize),

		SchedulerEnabled:           utils.GetEnvBool("SCHEDULER_ENABLED", false),
		AnalyticsAggregateSchedule: utils.GetEnvTrimmedOrDefault("ANALYTICS_AGGREGATE_SCHEDULE", "15 0 * * *"),
		ProcessEmailsSchedule:      utils.GetEnvTrimmedOrDefault("PROCESS_EMAILS_SCHEDULE", "*/15 * * * *"),
	}

	if cfg.LeadNotificationThreshold > constants.MaxLeadScore {
		cfg.LeadNotificationThreshold = constants.MaxLeadScore
	}

	return cfg
}

// AbsoluteURL joins a site-relative path onto SITE_URL.
func (ic *IntegrationsConfig) AbsoluteURL(path string, query url.Values) string {
	u := ic.SiteURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (ic *IntegrationsConfig) EmailConfigured() bool {
	return ic.ResendAPIKey != ""
}

func (ic *IntegrationsConfig) WebhooksConfigured() bool {
	return ic.SlackWebhookURL != "" || ic.DiscordWebhookURL != ""
}

// applyDefaults fills zero values left by hand-built configs in tests.
func (ic *IntegrationsConfig) applyDefaults() {
	if ic.SiteURL == "" {
		ic.SiteURL = defaultSiteURL
	}
	ic.SiteURL = strings.TrimRight(ic.SiteURL, "/")
	if ic.CSRFTokenTTL <= 0 {
		ic.CSRFTokenTTL = constants.DefaultCSRFTokenTTL
	}
	if ic.LeadNotificationThreshold <= 0 {
		ic.LeadNotificationThreshold = constants.DefaultLeadNotificationThreshold
	}
	if ic.GDPRTokenTTL <= 0 {
		ic.GDPRTokenTTL = constants.DefaultGDPRTokenTTL
	}
	if ic.EmailBatchSize <= 0 {
		ic.EmailBatchSize = constants.DefaultEmailBatchSize
	}
}

func newEmailSender(logger *log.Logger, ic *IntegrationsConfig, recorder *metrics.Recorder) email.Sender {
	if !ic.EmailConfigured() {
		logger.Warn("RESEND_API_KEY not set; transactional email disabled")
		return email.NewNoopSender(logger, recorder)
	}

	logger.Info("Email provider configured", "provider", "resend", "from", ic.EmailFrom)
	return email.NewResendClient(email.ResendConfig{
		APIKey:  ic.ResendAPIKey,
		BaseURL: ic.ResendAPIURL,
		From:    ic.EmailFrom,
	}, logger, recorder)
}

func newNotifier(logger *log.Logger, ic *IntegrationsConfig, recorder *metrics.Recorder) *notify.Dispatcher {
	dispatcher := notify.NewWebhookDispatcher(logger, recorder, ic.SlackWebhookURL, ic.DiscordWebhookURL, nil)
	if !dispatcher.Enabled() {
		logger.Warn("No Slack or Discord webhook configured; high-value lead notifications disabled")
	} else {
		logger.Info("Lead notifications configured", "channels", dispatcher.Channels())
	}
	return dispatcher
}

func newCSRFManager(logger *log.Logger, ic *IntegrationsConfig) *csrf.Manager {
	if !ic.CSRFEnabled {
		logger.Warn("CSRF protection disabled (CSRF_ENABLED=false)")
		return nil
	}

	secret := ic.CSRFSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic("csrf: unable to generate secret: " + err.Error())
		}
		secret = hex.EncodeToString(buf)
		logger.Warn("CSRF_SECRET not set; using an ephemeral per-process secret")
	}

	return csrf.NewManager(secret, ic.CSRFTokenTTL)
}
