package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/metrics"
	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/internal/notify"
	"github.com/hudsondigital/hds-platform/internal/posthog"
	"github.com/hudsondigital/hds-platform/pkg/constants"
	"github.com/hudsondigital/hds-platform/pkg/csrf"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	Integrations    *IntegrationsConfig
	TracingShutdown func(context.Context) error

	// Outbound collaborators. WireIntegrations fills whichever are nil.
	Email     email.Sender
	Templates *email.Templates
	Notifier  *notify.Dispatcher
	Analytics *posthog.Client
	CSRF      *csrf.Manager
	Metrics   *metrics.Recorder

	wired bool
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

func NewAppConfig() *AppConfig {
	config := &AppConfig{
		RateLimitRequests: constants.DefaultRateLimitRequests,
		RateLimitWindow:   constants.DefaultRateLimitWindow(),
		RequestTimeout:    30 * time.Second,
	}

	if reqStr := os.Getenv("RATE_LIMIT_REQUESTS"); reqStr != "" {
		if parsed, err := strconv.Atoi(reqStr); err == nil && parsed > 0 {
			config.RateLimitRequests = parsed
		}
	}

	if winStr := os.Getenv("RATE_LIMIT_WINDOW"); winStr != "" {
		if parsed, err := time.ParseDuration(winStr); err == nil && parsed > 0 {
			config.RateLimitWindow = parsed
		}
	}

	if timeoutStr := os.Getenv("REQUEST_TIMEOUT"); timeoutStr != "" {
		if parsed, err := time.ParseDuration(timeoutStr); err == nil && parsed > 0 {
			config.RequestTimeout = parsed
		}
	}

	return config
}

// WireIntegrations builds the email sender, webhook notifier, PostHog client,
// CSRF manager and metrics recorder from Integrations. Collaborators already
// set (e.g. by tests) are kept. Safe to call more than once.
func (ac *ApplicationConfig) WireIntegrations() {
	if ac.wired {
		return
	}
	ac.wired = true

	if ac.Integrations == nil {
		ac.Integrations = NewIntegrationsConfig()
	}
	ac.Integrations.applyDefaults()
	ic := ac.Integrations

	if ac.Metrics == nil {
		ac.Metrics = metrics.NewRecorder(ac.metricsRegisterer())
	}
	if ac.Templates == nil {
		ac.Templates = email.MustLoadTemplates()
	}
	if ac.Email == nil {
		ac.Email = newEmailSender(ac.Logger, ic, ac.Metrics)
	}
	if ac.Notifier == nil {
		ac.Notifier = newNotifier(ac.Logger, ic, ac.Metrics)
	}
	if ac.Analytics == nil {
		ac.Analytics = posthog.NewClient(ic.PostHogAPIKey, ic.PostHogHost, nil)
		if !ac.Analytics.Enabled() {
			ac.Logger.Info("POSTHOG_API_KEY not set; analytics events are stored locally only")
		}
	}
	if ac.CSRF == nil {
		ac.CSRF = newCSRFManager(ac.Logger, ic)
	}
}

func (ac *ApplicationConfig) metricsRegisterer() prometheus.Registerer {
	if ac.RouterService == nil {
		return nil
	}
	return ac.RouterService.MetricsRegisterer()
}

func (ac *ApplicationConfig) Cleanup() {
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

// LoadDatabaseOnly connects to the database without the HTTP stack; used by CLI jobs.
func LoadDatabaseOnly(logger *log.Logger) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	db, err := NewDatabase(logger, nil)
	if err != nil {
		return nil, err
	}

	appConfig := &ApplicationConfig{
		DB:           db,
		Logger:       logger,
		Cache:        NewCacheConfig().NewCacheOrNil(logger),
		Config:       NewAppConfig(),
		Integrations: NewIntegrationsConfig(),
	}
	appConfig.WireIntegrations()

	return appConfig, nil
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	db, err := NewDatabase(logger, nil)
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
			return nil, err
		}
	}

	appConfig := NewAppConfig()
	cache := NewCacheConfig().NewCacheOrNil(logger)

	routerService := router.CreateRouterService(logger, cache, &router.RouterConfig{
		RateLimitRequests: appConfig.RateLimitRequests,
		RateLimitWindow:   appConfig.RateLimitWindow,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	applicationConfig := &ApplicationConfig{
		DB:              db,
		RouterService:   routerService,
		Logger:          logger,
		Cache:           cache,
		Config:          appConfig,
		Integrations:    NewIntegrationsConfig(),
		TracingShutdown: tracingShutdown,
	}
	applicationConfig.WireIntegrations()

	logger.Info("Application configuration loaded successfully")

	return applicationConfig, nil
}
