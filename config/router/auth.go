package router

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/hudsondigital/hds-platform/pkg/csrf"
)

// BearerAuth guards a route with a shared secret sent as "Authorization: Bearer <token>".
// An empty token means the route is not configured and answers 503.
func BearerAuth(name, token string) MiddlewareFunc {
	expected := []byte(strings.TrimSpace(token))

	return func(c *RequestContext) {
		logger := GetLogger(c)

		if len(expected) == 0 {
			logger.Error("Bearer secret not configured; rejecting request", "guard", name)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ServiceUnavailableResult("This endpoint is not configured").ToJSON())
			return
		}

		provided, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			logger.Warn("Rejected request with invalid bearer token", "guard", name, "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, UnauthorizedResult("Unauthorized").ToJSON())
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CSRFProtect enforces the double-submit pattern: the X-CSRF-Token header must
// match the hds_csrf cookie and carry a valid signature. A nil manager disables the check.
func CSRFProtect(manager *csrf.Manager) MiddlewareFunc {
	return func(c *RequestContext) {
		if manager == nil {
			c.Next()
			return
		}

		cookie, err := c.Cookie(csrf.CookieName)
		if err != nil {
			cookie = ""
		}

		if err := manager.VerifyDoubleSubmit(c.GetHeader(csrf.HeaderName), cookie); err != nil {
			message := "Invalid CSRF token"
			if errors.Is(err, csrf.ErrExpiredToken) {
				message = "CSRF token expired"
			}
			GetLogger(c).Warn("CSRF validation failed", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, ForbiddenResult(message).ToJSON())
			return
		}

		c.Next()
	}
}
