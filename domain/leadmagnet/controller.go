package leadmagnet

import (
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/pkg/csrf"
)

func NewLeadMagnetController(service LeadMagnetService, csrfManager *csrf.Manager) *router.RESTController {
	return router.NewRESTController(
		"LeadMagnetController",
		"/api/lead-magnet",
		func(rs *router.RouterService, c *router.RESTController) {
			limiter := rs.CreateRateLimiter("lead-magnet", 10, 10*time.Minute)

			rs.AddGetHandler(c, nil, "", catalogHandler(service))
			rs.AddPostHandler(c, limiter, "", requestHandler(service), router.CSRFProtect(csrfManager))
		},
	)
}

func catalogHandler(service LeadMagnetService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		return router.OKResult(service.Catalog(), "Resources retrieved successfully")
	}
}

func requestHandler(service LeadMagnetService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var req LeadMagnetRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.Request(ctx.Request.Context(), &req)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Download ready")
	}
}
