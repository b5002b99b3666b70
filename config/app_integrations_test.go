package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntegrationsConfig_Defaults(t *testing.T) {
	for _, key := range []string{"SITE_URL", "RESEND_API_KEY", "CSRF_ENABLED", "LEAD_NOTIFICATION_THRESHOLD", "GDPR_TOKEN_TTL", "ANALYTICS_AGGREGATE_SCHEDULE"} {
		t.Setenv(key, "")
	}

	cfg := NewIntegrationsConfig()

	assert.Equal(t, defaultSiteURL, cfg.SiteURL)
	assert.Equal(t, email.DefaultResendAPIURL, cfg.ResendAPIURL)
	assert.True(t, cfg.CSRFEnabled)
	assert.Equal(t, 70, cfg.LeadNotificationThreshold)
	assert.Equal(t, 48*time.Hour, cfg.GDPRTokenTTL)
	assert.Equal(t, "15 0 * * *", cfg.AnalyticsAggregateSchedule)
	assert.Equal(t, "*/15 * * * *", cfg.ProcessEmailsSchedule)
	assert.Equal(t, 50, cfg.EmailBatchSize)
	assert.False(t, cfg.EmailConfigured())
	assert.False(t, cfg.WebhooksConfigured())
}

func TestNewIntegrationsConfig_FromEnv(t *testing.T) {
	t.Setenv("SITE_URL", `"https://staging.example.com/"`)
	t.Setenv("LEAD_NOTIFICATION_THRESHOLD", "150")
	t.Setenv("CSRF_ENABLED", "false")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/X")

	cfg := NewIntegrationsConfig()

	assert.Equal(t, "https://staging.example.com", cfg.SiteURL)
	assert.Equal(t, 100, cfg.LeadNotificationThreshold)
	assert.False(t, cfg.CSRFEnabled)
	assert.True(t, cfg.WebhooksConfigured())
}

func TestIntegrationsConfig_AbsoluteURL(t *testing.T) {
	cfg := &IntegrationsConfig{SiteURL: "https://hudsondigitalsolutions.com"}

	assert.Equal(t, "https://hudsondigitalsolutions.com/downloads/guide.pdf", cfg.AbsoluteURL("/downloads/guide.pdf", nil))
	assert.Equal(t,
		"https://hudsondigitalsolutions.com/privacy/verify?token=abc",
		cfg.AbsoluteURL("privacy/verify", url.Values{"token": {"abc"}}),
	)
}

func TestWireIntegrations_DisabledProviders(t *testing.T) {
	ac := &ApplicationConfig{
		Logger:       log.NewDiscardLogger(),
		Integrations: &IntegrationsConfig{CSRFEnabled: false},
	}
	ac.WireIntegrations()

	require.NotNil(t, ac.Email)
	assert.False(t, ac.Email.Enabled())
	assert.False(t, ac.Notifier.Enabled())
	assert.False(t, ac.Analytics.Enabled())
	assert.Nil(t, ac.CSRF)
	assert.NotNil(t, ac.Templates)
	assert.NotNil(t, ac.Metrics)
	assert.Equal(t, defaultSiteURL, ac.Integrations.SiteURL)
	assert.Equal(t, 70, ac.Integrations.LeadNotificationThreshold)
}

func TestWireIntegrations_ConfiguredProviders(t *testing.T) {
	ac := &ApplicationConfig{
		Logger: log.NewDiscardLogger(),
		Integrations: &IntegrationsConfig{
			ResendAPIKey:      "re_123",
			DiscordWebhookURL: "https://discord.com/api/webhooks/1/abc",
			PostHogAPIKey:     "phc_123",
			CSRFEnabled:       true,
			CSRFSecret:        "secret",
		},
	}
	ac.WireIntegrations()

	assert.True(t, ac.Email.Enabled())
	assert.Equal(t, []string{"discord"}, ac.Notifier.Channels())
	assert.True(t, ac.Analytics.Enabled())
	require.NotNil(t, ac.CSRF)

	token, err := ac.CSRF.Issue()
	require.NoError(t, err)
	assert.NoError(t, ac.CSRF.Verify(token.Value))
}

func TestWireIntegrations_KeepsInjectedCollaborators(t *testing.T) {
	sender := email.NewNoopSender(log.NewDiscardLogger(), nil)
	ac := &ApplicationConfig{
		Logger:       log.NewDiscardLogger(),
		Integrations: &IntegrationsConfig{ResendAPIKey: "re_123"},
		Email:        sender,
	}
	ac.WireIntegrations()
	ac.WireIntegrations()

	assert.Same(t, sender, ac.Email)
}
