package csrftoken

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/pkg/csrf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int           `json:"code"`
	Data    TokenResponse `json:"data"`
	Message string        `json:"message"`
}

func newRouter(manager *csrf.Manager) *router.RouterService {
	rs := router.CreateRouterService(log.NewDiscardLogger(), nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	rs.MountController(NewCSRFController(manager, true))
	return rs
}

func TestIssueToken(t *testing.T) {
	manager := csrf.NewManager("test-secret", time.Hour)
	rs := newRouter(manager)

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/csrf", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.Enabled)
	assert.NoError(t, manager.Verify(body.Data.Token))
	assert.NotEmpty(t, body.Data.ExpiresAt)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, csrf.CookieName, cookie.Name)
	assert.Equal(t, body.Data.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)
}

func TestIssueToken_Disabled(t *testing.T) {
	rs := newRouter(nil)

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/csrf", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Data.Enabled)
	assert.Empty(t, body.Data.Token)
	assert.Empty(t, w.Result().Cookies())
}
