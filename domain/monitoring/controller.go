package monitoring

import (
	"context"
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/internal/log"
	"gorm.io/gorm"
)

type Cache interface {
	Ping(ctx context.Context) error
}

// Integration is any outbound provider that can report whether it is configured.
type Integration interface {
	Enabled() bool
}

type Dependencies struct {
	DB       *gorm.DB
	Cache    Cache
	Email    Integration
	Webhooks Integration
}

type HealthStatus struct {
	Database int `json:"database"` // 1 = healthy, 0 = unhealthy
	Cache    int `json:"cache"`    // 1 = healthy, 0 = unhealthy/not configured
	Email    int `json:"email"`    // 1 = provider configured
	Webhooks int `json:"webhooks"` // 1 = at least one lead webhook configured
	Uptime   int `json:"uptime"`   // uptime in seconds
}

type MonitoringController struct {
	deps      Dependencies
	startTime time.Time
}

func NewMonitoringController(deps Dependencies) *router.RESTController {
	ctrl := &MonitoringController{
		deps:      deps,
		startTime: time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {
			// More restrictive than the global default.
			monitoringRateLimiter := routerService.CreateRateLimiter("monitoring", 10, time.Minute)

			routerService.AddGetHandler(controller, monitoringRateLimiter, "", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.monitor(c)
			})

			routerService.AddGetHandler(controller, monitoringRateLimiter, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(c)
			})
		},
	)
}

func (ctrl *MonitoringController) healthCheck(c *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(c)
	logger.Info("Health check endpoint called")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	return router.OKResult(ctrl.performHealthChecks(ctx, logger), "hds-platform health check completed")
}

func (ctrl *MonitoringController) monitor(_ *router.RequestContext) *router.ServiceResult {
	return router.OKResult("Hudson Digital Solutions API is operational.", "Monitoring successful")
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		Uptime:   int(time.Since(ctrl.startTime).Seconds()),
		Email:    configured(ctrl.deps.Email),
		Webhooks: configured(ctrl.deps.Webhooks),
	}

	if ctrl.checkDatabase(ctx) {
		status.Database = 1
	} else {
		logger.Error("Database health check failed")
	}

	if ctrl.deps.Cache == nil {
		logger.Debug("Cache not configured, cache health check skipped")
	} else if ctrl.deps.Cache.Ping(ctx) == nil {
		status.Cache = 1
	} else {
		logger.Error("Cache health check failed")
	}

	return status
}

func (ctrl *MonitoringController) checkDatabase(ctx context.Context) bool {
	if ctrl.deps.DB == nil {
		return false
	}
	sqlDB, err := ctrl.deps.DB.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

func configured(i Integration) int {
	if i != nil && i.Enabled() {
		return 1
	}
	return 0
}
