package consent

import (
	"time"

	"github.com/google/uuid"
	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/pkg/csrf"
)

func NewConsentController(service ConsentService, csrfManager *csrf.Manager) *router.RESTController {
	return router.NewRESTController(
		"ConsentController",
		"/api/consent",
		func(rs *router.RouterService, c *router.RESTController) {
			limiter := rs.CreateRateLimiter("consent", 30, 10*time.Minute)

			rs.AddPostHandler(c, limiter, "", recordConsentHandler(service), router.CSRFProtect(csrfManager))
			rs.AddGetHandler(c, nil, "/:visitor_id", latestConsentHandler(service))
		},
	)
}

func recordConsentHandler(service ConsentService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var req ConsentRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.Record(ctx.Request.Context(), &req, RequestMeta{
			IPAddress: ctx.ClientIP(),
			UserAgent: ctx.Request.UserAgent(),
		})
		if err != nil {
			return router.FromError(err)
		}

		return router.CreatedResult(response, "Consent record")
	}
}

func latestConsentHandler(service ConsentService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		visitorID := ctx.Param("visitor_id")
		if _, err := uuid.Parse(visitorID); err != nil {
			return router.BadRequestResult("visitor_id must be a UUID", nil)
		}

		response, err := service.Latest(ctx.Request.Context(), visitorID)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Consent retrieved successfully")
	}
}
