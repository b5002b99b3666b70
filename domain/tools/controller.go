package tools

import (
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
)

func NewToolsController(service CalculatorService) *router.RESTController {
	return router.NewRESTController(
		"ToolsController",
		"/api/tools",
		func(rs *router.RouterService, c *router.RESTController) {
			limiter := rs.CreateRateLimiter("tools", 60, time.Minute)

			rs.AddPostHandler(c, limiter, "/tip", tipHandler(service))
			rs.AddPostHandler(c, limiter, "/paystub", paystubHandler(service))
		},
	)
}

func tipHandler(service CalculatorService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var req TipRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.Tip(ctx.Request.Context(), &req)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Tip calculated")
	}
}

func paystubHandler(service CalculatorService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var req PaystubRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.Paystub(ctx.Request.Context(), &req)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Paystub calculated")
	}
}
