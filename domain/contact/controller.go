package contact

import (
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/pkg/csrf"
)

const (
	contactRequestsPerWindow = 5
	contactWindow            = 10 * time.Minute
)

func NewContactController(service ContactService, csrfManager *csrf.Manager) *router.RESTController {
	return router.NewRESTController(
		"ContactController",
		"/api/contact",
		func(rs *router.RouterService, c *router.RESTController) {
			limiter := rs.CreateRateLimiter("contact", contactRequestsPerWindow, contactWindow)

			rs.AddPostHandler(c, limiter, "", submitContactHandler(service), router.CSRFProtect(csrfManager))
		},
	)
}

func submitContactHandler(service ContactService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req ContactRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		if req.Website != "" {
			logger.Warn("Contact honeypot triggered; submission dropped", "client_ip", ctx.ClientIP())
			return router.OKResult(HoneypotResponse{Accepted: true}, "Message received")
		}

		response, err := service.Submit(ctx.Request.Context(), &req, RequestMeta{
			IPAddress: ctx.ClientIP(),
			UserAgent: ctx.Request.UserAgent(),
		})
		if err != nil {
			return router.FromError(err)
		}

		return router.CreatedResult(response, "Contact submission")
	}
}
