package gdpr

import (
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/pkg/csrf"
)

const acceptedMessage = "If we hold data for this address, a verification email is on its way"

func NewGDPRController(service GDPRService, csrfManager *csrf.Manager) *router.RESTController {
	return router.NewRESTController(
		"GDPRController",
		"/api/gdpr",
		func(rs *router.RouterService, c *router.RESTController) {
			requestLimiter := rs.CreateRateLimiter("gdpr-request", 3, time.Hour)
			verifyLimiter := rs.CreateRateLimiter("gdpr-verify", 10, time.Hour)

			rs.AddPostHandler(c, requestLimiter, "/requests", createRequestHandler(service), router.CSRFProtect(csrfManager))
			rs.AddPostHandler(c, verifyLimiter, "/requests/verify", verifyHandler(service))
		},
	)
}

func NewGDPRAdminController(service GDPRService, adminToken string) *router.RESTController {
	return router.NewVersionedRESTController(
		"GDPRAdminController",
		"v1",
		"/admin/gdpr",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, nil, "/requests", listRequestsHandler(service), router.BearerAuth("admin", adminToken))
		},
	)
}

func createRequestHandler(service GDPRService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var req CreateRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		err := service.CreateRequest(ctx.Request.Context(), CreateInput{
			Email:       req.Email,
			RequestType: req.RequestType,
			IPAddress:   ctx.ClientIP(),
		})
		if err != nil {
			return router.FromError(err)
		}

		return router.AcceptedResult(nil, acceptedMessage)
	}
}

func verifyHandler(service GDPRService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var req VerifyRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.Verify(ctx.Request.Context(), req.Token)
		if err != nil {
			return router.FromError(err)
		}

		if response.Export != nil {
			ctx.Header("Content-Disposition", `attachment; filename="hds-data-export.json"`)
		}
		return router.OKResult(response, "Privacy request completed")
	}
}

func listRequestsHandler(service GDPRService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var query ListRequestsQuery
		if errResult := router.BindQuery(ctx, &query); errResult != nil {
			return errResult
		}

		response, err := service.ListRequests(ctx.Request.Context(), &query)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Privacy requests retrieved successfully")
	}
}
