package sequences

import (
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
)

type processQuery struct {
	Batch int `form:"batch" binding:"omitempty,min=1,max=500"`
}

// NewProcessEmailsController exposes the drip processor to the external cron
// at POST /api/process-emails.
func NewProcessEmailsController(service SequenceService, cronSecret string, batchSize int) *router.RESTController {
	return router.NewRESTController(
		"ProcessEmailsController",
		"/api/process-emails",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, nil, "", processEmailsHandler(service, batchSize), router.BearerAuth("cron", cronSecret))
		},
	)
}

func processEmailsHandler(service SequenceService, batchSize int) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		var query processQuery
		if errResult := router.BindQuery(ctx, &query); errResult != nil {
			return errResult
		}

		batch := batchSize
		if query.Batch > 0 {
			batch = query.Batch
		}

		result, err := service.ProcessDue(ctx.Request.Context(), time.Now().UTC(), batch)
		if err != nil {
			return router.FromError(err)
		}

		return router.OKResult(result, "Email sequences processed")
	}
}
