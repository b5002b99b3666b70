package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hudsondigital/hds-platform/pkg/csrf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountGuardedController(rs *RouterService, manager *csrf.Manager, token string) {
	rs.MountController(NewRESTController("GuardedController", "/guarded", func(rs *RouterService, c *RESTController) {
		ok := func(ctx *RequestContext) *ServiceResult { return OKResult(nil, "ok") }
		rs.AddPostHandler(c, nil, "cron", ok, BearerAuth("cron", token))
		rs.AddPostHandler(c, nil, "form", ok, CSRFProtect(manager))
		rs.AddPostHandler(c, rs.CreateRateLimiter("tight", 2, time.Minute), "limited", ok)
	}))
}

func serve(rs *RouterService, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func TestBearerAuth(t *testing.T) {
	rs := newTestRouterService(t)
	mountGuardedController(rs, nil, "s3cret")

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer s3cret", http.StatusOK},
		{"case-insensitive scheme", "bearer s3cret", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/guarded/cron", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			assert.Equal(t, tc.want, serve(rs, req).Code)
		})
	}
}

func TestBearerAuth_UnconfiguredSecret(t *testing.T) {
	rs := newTestRouterService(t)
	mountGuardedController(rs, nil, "")

	req := httptest.NewRequest(http.MethodPost, "/guarded/cron", nil)
	req.Header.Set("Authorization", "Bearer anything")
	assert.Equal(t, http.StatusServiceUnavailable, serve(rs, req).Code)
}

func TestCSRFProtect(t *testing.T) {
	manager := csrf.NewManager("test-secret", time.Hour)
	token, err := manager.Issue()
	require.NoError(t, err)

	rs := newTestRouterService(t)
	mountGuardedController(rs, manager, "x")

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/guarded/form", nil)
		w := serve(rs, req)
		assert.Equal(t, http.StatusForbidden, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Invalid CSRF token", body["message"])
	})

	t.Run("header without cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/guarded/form", nil)
		req.Header.Set(csrf.HeaderName, token.Value)
		assert.Equal(t, http.StatusForbidden, serve(rs, req).Code)
	})

	t.Run("matching header and cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/guarded/form", nil)
		req.Header.Set(csrf.HeaderName, token.Value)
		req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token.Value})
		assert.Equal(t, http.StatusOK, serve(rs, req).Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		forged, err := csrf.NewManager("other", time.Hour).Issue()
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/guarded/form", nil)
		req.Header.Set(csrf.HeaderName, forged.Value)
		req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: forged.Value})
		assert.Equal(t, http.StatusForbidden, serve(rs, req).Code)
	})
}

func TestCSRFProtect_DisabledWithNilManager(t *testing.T) {
	rs := newTestRouterService(t)
	mountGuardedController(rs, nil, "x")

	req := httptest.NewRequest(http.MethodPost, "/guarded/form", nil)
	assert.Equal(t, http.StatusOK, serve(rs, req).Code)
}

func TestHandlerRateLimitOverride(t *testing.T) {
	rs := newTestRouterService(t)
	mountGuardedController(rs, nil, "x")

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/guarded/limited", nil)
		req.RemoteAddr = "10.1.1.1:5555"
		codes = append(codes, serve(rs, req).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// other clients keep their own budget
	req := httptest.NewRequest(http.MethodPost, "/guarded/limited", nil)
	req.RemoteAddr = "10.1.1.2:5555"
	assert.Equal(t, http.StatusOK, serve(rs, req).Code)
}

func TestSecurityHeaders(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/ip", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Permissions-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestUnknownRouteEnvelope(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	w := serve(rs, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "code")
	assert.Contains(t, body, "message")
	assert.Contains(t, body, "data")
}

func TestMetricsRegistererAvailable(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "true")
	rs := newTestRouterService(t)
	assert.NotNil(t, rs.MetricsRegisterer())

	t.Setenv("METRICS_ENABLED", "false")
	rs = newTestRouterService(t)
	assert.Nil(t, rs.MetricsRegisterer())
}
