package domain

import (
	"context"
	"time"

	"github.com/hudsondigital/hds-platform/config"
	"github.com/hudsondigital/hds-platform/domain/analytics"
	"github.com/hudsondigital/hds-platform/domain/consent"
	"github.com/hudsondigital/hds-platform/domain/contact"
	"github.com/hudsondigital/hds-platform/domain/csrftoken"
	"github.com/hudsondigital/hds-platform/domain/gdpr"
	"github.com/hudsondigital/hds-platform/domain/leadmagnet"
	"github.com/hudsondigital/hds-platform/domain/leads"
	"github.com/hudsondigital/hds-platform/domain/monitoring"
	"github.com/hudsondigital/hds-platform/domain/newsletter"
	"github.com/hudsondigital/hds-platform/domain/sequences"
	"github.com/hudsondigital/hds-platform/domain/tools"
	"github.com/hudsondigital/hds-platform/internal/scheduler"
)

// Services holds the domain services so the CLI and the scheduler can call
// them without going through HTTP.
type Services struct {
	Leads      leads.LeadService
	Sequences  sequences.SequenceService
	Newsletter newsletter.NewsletterService
	Contact    contact.ContactService
	LeadMagnet leadmagnet.LeadMagnetService
	GDPR       gdpr.GDPRService
	Consent    consent.ConsentService
	Analytics  analytics.AnalyticsService
	Tools      tools.CalculatorService
}

func BuildServices(appConfig *config.ApplicationConfig) *Services {
	appConfig.WireIntegrations()

	db := appConfig.DB
	logger := appConfig.Logger
	ic := appConfig.Integrations

	leadService := leads.NewLeadService(logger, leads.NewLeadRepository(db), appConfig.Notifier, appConfig.Cache, appConfig.Metrics, leads.Options{
		NotificationThreshold: ic.LeadNotificationThreshold,
		SiteURL:               ic.SiteURL,
	})
	sequenceService := sequences.NewSequenceService(logger, sequences.NewEnrollmentRepository(db), appConfig.Email, appConfig.Templates, ic.SiteURL)
	newsletterService := newsletter.NewNewsletterService(logger, newsletter.NewSubscriberRepository(db), sequenceService, leadService, appConfig.Email, appConfig.Templates, ic.SiteURL)

	return &Services{
		Leads:      leadService,
		Sequences:  sequenceService,
		Newsletter: newsletterService,
		Contact: contact.NewContactService(logger, contact.NewContactRepository(db), leadService, sequenceService, newsletterService, appConfig.Email, appConfig.Templates, contact.Options{
			SiteURL:    ic.SiteURL,
			AdminEmail: ic.AdminEmail,
		}),
		LeadMagnet: leadmagnet.NewLeadMagnetService(logger, leadService, sequenceService, newsletterService, appConfig.Email, appConfig.Templates, ic.SiteURL),
		GDPR: gdpr.NewGDPRService(logger, gdpr.NewGDPRRepository(db), appConfig.Email, appConfig.Templates, gdpr.Options{
			SiteURL:  ic.SiteURL,
			TokenTTL: ic.GDPRTokenTTL,
		}),
		Consent: consent.NewConsentService(logger, consent.NewConsentRepository(db)),
		Analytics: analytics.NewAnalyticsService(logger, analytics.NewAnalyticsRepository(db), appConfig.Analytics, analytics.Options{
			HighValueThreshold: ic.LeadNotificationThreshold,
		}),
		Tools: tools.NewCalculatorService(logger),
	}
}

// SetupCoreDomain builds the services and mounts every controller.
func SetupCoreDomain(appConfig *config.ApplicationConfig) *Services {
	services := BuildServices(appConfig)
	ic := appConfig.Integrations
	rs := appConfig.RouterService

	rs.MountController(monitoring.NewMonitoringController(monitoring.Dependencies{
		DB:       appConfig.DB,
		Cache:    appConfig.Cache,
		Email:    appConfig.Email,
		Webhooks: appConfig.Notifier,
	}))

	// Public form endpoints
	rs.MountController(csrftoken.NewCSRFController(appConfig.CSRF, config.GetAppEnv() == "production"))
	rs.MountController(contact.NewContactController(services.Contact, appConfig.CSRF))
	rs.MountController(leadmagnet.NewLeadMagnetController(services.LeadMagnet, appConfig.CSRF))
	rs.MountController(newsletter.NewNewsletterController(services.Newsletter, appConfig.CSRF))
	rs.MountController(gdpr.NewGDPRController(services.GDPR, appConfig.CSRF))
	rs.MountController(consent.NewConsentController(services.Consent, appConfig.CSRF))
	rs.MountController(analytics.NewAnalyticsController(services.Analytics))
	rs.MountController(tools.NewToolsController(services.Tools))

	// Cron
	rs.MountController(sequences.NewProcessEmailsController(services.Sequences, ic.CronSecret, ic.EmailBatchSize))
	rs.MountController(analytics.NewAnalyticsCronController(services.Analytics, ic.CronSecret))

	// Admin
	rs.MountController(leads.NewLeadAdminController(services.Leads, ic.AdminAPIToken))
	rs.MountController(newsletter.NewNewsletterAdminController(services.Newsletter, ic.AdminAPIToken))
	rs.MountController(gdpr.NewGDPRAdminController(services.GDPR, ic.AdminAPIToken))
	rs.MountController(analytics.NewAnalyticsAdminController(services.Analytics, ic.AdminAPIToken))

	return services
}

// ScheduledJobs returns the in-process cron jobs.
func ScheduledJobs(services *Services, ic *config.IntegrationsConfig) []scheduler.Job {
	return []scheduler.Job{
		{
			Name:     "analytics-aggregate",
			Schedule: ic.AnalyticsAggregateSchedule,
			Timeout:  5 * time.Minute,
			Run: func(ctx context.Context) error {
				_, err := services.Analytics.Aggregate(ctx, time.Now().UTC().AddDate(0, 0, -1))
				return err
			},
		},
		{
			Name:     "process-emails",
			Schedule: ic.ProcessEmailsSchedule,
			Timeout:  10 * time.Minute,
			Run: func(ctx context.Context) error {
				_, err := services.Sequences.ProcessDue(ctx, time.Now().UTC(), ic.EmailBatchSize)
				return err
			},
		},
	}
}
