package leads

import (
	"github.com/hudsondigital/hds-platform/config/router"
)

// NewLeadAdminController mounts the pipeline endpoints under /v1/admin/leads.
// Every route requires the admin bearer token.
func NewLeadAdminController(service LeadService, adminToken string) *router.RESTController {
	return router.NewVersionedRESTController(
		"LeadAdminController",
		"v1",
		"/admin/leads",
		func(rs *router.RouterService, c *router.RESTController) {
			auth := router.BearerAuth("admin", adminToken)

			rs.AddGetHandler(c, nil, "", listLeadsHandler(service), auth)
			rs.AddGetHandler(c, nil, "/stats", leadStatsHandler(service), auth)
			rs.AddGetHandler(c, nil, "/:id", getLeadHandler(service), auth)
			rs.AddPatchHandler(c, nil, "/:id", updateLeadHandler(service), auth)
			rs.AddPostHandler(c, nil, "/:id/notes", addNoteHandler(service), auth)
			rs.AddDeleteHandler(c, nil, "/:id", deleteLeadHandler(service), auth)
		},
	)
}

func listLeadsHandler(service LeadService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var query ListLeadsQuery
		if errResult := router.BindQuery(ctx, &query); errResult != nil {
			return errResult
		}

		response, err := service.ListLeads(ctx.Request.Context(), &query)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Leads retrieved successfully")
	}
}

func leadStatsHandler(service LeadService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		stats, err := service.GetStats(ctx.Request.Context())
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(stats, "Lead stats retrieved successfully")
	}
}

func getLeadHandler(service LeadService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		response, err := service.GetLead(ctx.Request.Context(), id)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Lead retrieved successfully")
	}
}

func updateLeadHandler(service LeadService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		var req UpdateLeadRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.UpdateLead(ctx.Request.Context(), id, &req)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(response, "Lead updated successfully")
	}
}

func addNoteHandler(service LeadService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		var req AddNoteRequest
		if errResult := router.BindJSON(ctx, &req); errResult != nil {
			return errResult
		}

		response, err := service.AddNote(ctx.Request.Context(), id, &req)
		if err != nil {
			return router.FromError(err)
		}

		return router.CreatedResult(response, "Lead note")
	}
}

func deleteLeadHandler(service LeadService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		if err := service.DeleteLead(ctx.Request.Context(), id); err != nil {
			return router.FromError(err)
		}

		return router.OKResult(nil, "Lead deleted successfully")
	}
}
