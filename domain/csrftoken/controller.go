package csrftoken

import (
	"net/http"
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/pkg/constants"
	"github.com/hudsondigital/hds-platform/pkg/csrf"
)

type TokenResponse struct {
	Enabled   bool   `json:"enabled"`
	Token     string `json:"token,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// NewCSRFController issues double-submit tokens at GET /api/csrf. The token is
// returned in the body for the X-CSRF-Token header and set as the hds_csrf cookie.
// A nil manager means protection is off and no token is issued.
func NewCSRFController(manager *csrf.Manager, secureCookie bool) *router.RESTController {
	return router.NewRESTController(
		"CSRFController",
		"/api/csrf",
		func(rs *router.RouterService, c *router.RESTController) {
			limiter := rs.CreateRateLimiter("csrf", 60, time.Minute)

			rs.AddGetHandler(c, limiter, "", issueTokenHandler(manager, secureCookie))
		},
	)
}

func issueTokenHandler(manager *csrf.Manager, secureCookie bool) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		ctx.Header("Cache-Control", "no-store")

		if manager == nil {
			return router.OKResult(TokenResponse{Enabled: false}, "CSRF protection is disabled")
		}

		token, err := manager.Issue()
		if err != nil {
			router.GetLogger(ctx).Error("Failed to issue CSRF token", "error", err)
			return router.InternalServerErrorResult("Unable to issue CSRF token")
		}

		ctx.SetSameSite(http.SameSiteStrictMode)
		ctx.SetCookie(csrf.CookieName, token.Value, int(manager.TTL().Seconds()), "/", "", secureCookie, true)

		return router.OKResult(TokenResponse{
			Enabled:   true,
			Token:     token.Value,
			ExpiresAt: token.ExpiresAt.Format(constants.RFC3339DateTimeFormat),
		}, "CSRF token issued")
	}
}
