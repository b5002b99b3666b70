package analytics

import (
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/pkg/constants"
)

func NewAnalyticsController(service AnalyticsService) *router.RESTController {
	return router.NewRESTController(
		"AnalyticsController",
		"/api/analytics",
		func(rs *router.RouterService, c *router.RESTController) {
			limiter := rs.CreateRateLimiter("analytics-events", 120, time.Minute)

			rs.AddPostHandler(c, limiter, "/events", trackEventHandler(service))
		},
	)
}

// NewAnalyticsCronController serves the rollup endpoint hit by the hosting
// platform's cron. GET is accepted because some schedulers cannot POST.
func NewAnalyticsCronController(service AnalyticsService, cronSecret string) *router.RESTController {
	return router.NewRESTController(
		"AnalyticsCronController",
		"/api/cron/analytics",
		func(rs *router.RouterService, c *router.RESTController) {
			auth := router.BearerAuth("cron", cronSecret)

			rs.AddPostHandler(c, nil, "/aggregate", aggregateHandler(service), auth)
			rs.AddGetHandler(c, nil, "/aggregate", aggregateHandler(service), auth)
		},
	)
}

func NewAnalyticsAdminController(service AnalyticsService, adminToken string) *router.RESTController {
	return router.NewVersionedRESTController(
		"AnalyticsAdminController",
		"v1",
		"/admin/analytics",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, nil, "/daily", dailyHandler(service), router.BearerAuth("admin", adminToken))
		},
	)
}

func trackEventHandler(service AnalyticsService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var req EventRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.Track(ctx.Request.Context(), &req)
		if err != nil {
			return router.FromError(err)
		}

		return router.CreatedResult(response, "Event")
	}
}

func aggregateHandler(service AnalyticsService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var query AggregateQuery
		if errResult := router.BindQuery(ctx, &query); errResult != nil {
			return errResult
		}

		day := time.Now().UTC().AddDate(0, 0, -1)
		if query.Date != "" {
			parsed, err := time.Parse(constants.DateFormat, query.Date)
			if err != nil {
				return router.BadRequestResult("date must be YYYY-MM-DD", nil)
			}
			day = parsed
		}

		result, err := service.Aggregate(ctx.Request.Context(), day)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(result, "Analytics aggregated")
	}
}

func dailyHandler(service AnalyticsService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var query DailyQuery
		if errResult := router.BindQuery(ctx, &query); errResult != nil {
			return errResult
		}

		response, err := service.Daily(ctx.Request.Context(), &query)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Daily metrics retrieved successfully")
	}
}
