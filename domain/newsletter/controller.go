package newsletter

import (
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/pkg/csrf"
)

func NewNewsletterController(service NewsletterService, csrfManager *csrf.Manager) *router.RESTController {
	return router.NewRESTController(
		"NewsletterController",
		"/api/newsletter",
		func(rs *router.RouterService, c *router.RESTController) {
			subscribeLimiter := rs.CreateRateLimiter("newsletter-subscribe", 5, 10*time.Minute)
			unsubscribeLimiter := rs.CreateRateLimiter("newsletter-unsubscribe", 20, 10*time.Minute)

			rs.AddPostHandler(c, subscribeLimiter, "/subscribe", subscribeHandler(service), router.CSRFProtect(csrfManager))
			rs.AddPostHandler(c, unsubscribeLimiter, "/unsubscribe", unsubscribeHandler(service))
		},
	)
}

func NewNewsletterAdminController(service NewsletterService, adminToken string) *router.RESTController {
	return router.NewVersionedRESTController(
		"NewsletterAdminController",
		"v1",
		"/admin/newsletter",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, nil, "/subscribers", listSubscribersHandler(service), router.BearerAuth("admin", adminToken))
		},
	)
}

func subscribeHandler(service NewsletterService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var req SubscribeRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.Subscribe(ctx.Request.Context(), SubscribeInput{
			Email:       req.Email,
			FirstName:   req.FirstName,
			Source:      req.Source,
			CaptureLead: true,
		})
		if err != nil {
			return router.FromError(err)
		}

		if response.Outcome == OutcomeSubscribed {
			return router.CreatedResult(response, "Subscription")
		}
		return router.OKResult(response, "Subscription is active")
	}
}

func unsubscribeHandler(service NewsletterService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var req UnsubscribeRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.Unsubscribe(ctx.Request.Context(), req.Token)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "You have been unsubscribed")
	}
}

func listSubscribersHandler(service NewsletterService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var query ListSubscribersQuery
		if errResult := router.BindQuery(ctx, &query); errResult != nil {
			return errResult
		}

		response, err := service.ListSubscribers(ctx.Request.Context(), &query)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Subscribers retrieved successfully")
	}
}
