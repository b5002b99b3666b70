package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/pkg/csrf"
)

const testAdminToken = "admin-secret"

func mountTestController(rs *RouterService) {
	ctrl := NewRESTController("TestController", "/", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, nil, "ip", func(ctx *RequestContext) *ServiceResult {
			return OKResult(ctx.ClientIP(), "ok")
		})

		rs.AddPostHandler(c, nil, "echo", func(ctx *RequestContext) *ServiceResult {
			var payload map[string]any
			if err := ctx.ShouldBindJSON(&payload); err != nil {
				return BadRequestResult("bad", nil)
			}
			return OKResult(payload, "ok")
		})
	})

	rs.MountController(ctrl)

	admin := NewVersionedRESTController("TestAdminController", "v1", "/admin/items", func(rs *RouterService, c *RESTController) {
		rs.AddPatchHandler(c, nil, ":id", func(ctx *RequestContext) *ServiceResult {
			id, errResult := ParseIDParam(ctx, "id")
			if errResult != nil {
				return errResult
			}
			var payload struct {
				Status string `json:"status" binding:"required"`
			}
			if result := BindJSON(ctx, &payload); result != nil {
				return result
			}
			return OKResult(map[string]any{"id": id, "status": payload.Status}, "updated")
		}, BearerAuth("admin", testAdminToken))
	})

	rs.MountController(admin)
}

func mountFormController(rs *RouterService, manager *csrf.Manager) {
	rs.MountController(NewRESTController("TestFormController", "/forms", func(rs *RouterService, c *RESTController) {
		rs.AddPostHandler(c, nil, "contact", func(ctx *RequestContext) *ServiceResult {
			return CreatedResult(nil, "Contact")
		}, CSRFProtect(manager))
	}))
}

func newTestRouterService(t *testing.T) *RouterService {
	t.Helper()

	logger := log.NewDiscardLogger()
	return CreateRouterService(logger, nil, &RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
}

func TestTrustedProxies_DisabledByDefault(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code    int    `json:"code"`
		Data    string `json:"data"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Data != "10.0.0.2" {
		t.Fatalf("expected ClientIP to use RemoteAddr when trusted proxies disabled; got %q", resp.Data)
	}
}

func TestTrustedProxies_StarTrustsForwardedFor(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "*")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code    int    `json:"code"`
		Data    string `json:"data"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Data != "1.1.1.1" {
		t.Fatalf("expected ClientIP to use X-Forwarded-For when trusted proxies enabled; got %q", resp.Data)
	}
}

func TestMaxBodySize_Returns413(t *testing.T) {
	t.Setenv("MAX_REQUEST_BODY_BYTES", "10")

	rs := newTestRouterService(t)
	mountTestController(rs)

	body := bytes.Repeat([]byte{'a'}, 50)
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", w.Code, w.Body.String())
	}
}

func TestVersionedPatchRoute_RequiresBearer(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	cases := []struct {
		name   string
		path   string
		auth   string
		body   string
		status int
	}{
		{name: "no token", path: "/v1/admin/items/7", body: `{"status":"won"}`, status: http.StatusUnauthorized},
		{name: "wrong token", path: "/v1/admin/items/7", auth: "Bearer nope", body: `{"status":"won"}`, status: http.StatusUnauthorized},
		{name: "bad id", path: "/v1/admin/items/abc", auth: "Bearer " + testAdminToken, body: `{"status":"won"}`, status: http.StatusBadRequest},
		{name: "missing field", path: "/v1/admin/items/7", auth: "Bearer " + testAdminToken, body: `{}`, status: http.StatusBadRequest},
		{name: "authorized", path: "/v1/admin/items/7", auth: "Bearer " + testAdminToken, body: `{"status":"won"}`, status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, tc.path, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}

			w := httptest.NewRecorder()
			rs.GetEngine().ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPatch, "/v1/admin/items/7", bytes.NewBufferString(`{"status":"won"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	var resp struct {
		Data struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ID != 7 || resp.Data.Status != "won" {
		t.Fatalf("unexpected payload: %+v", resp.Data)
	}
}

func TestCSRFProtectedPost_CreatedWithMatchingCookie(t *testing.T) {
	manager := csrf.NewManager("router-test", time.Hour)
	token, err := manager.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rs := newTestRouterService(t)
	mountFormController(rs, manager)

	req := httptest.NewRequest(http.MethodPost, "/forms/contact", nil)
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/forms/contact", nil)
	req.Header.Set(csrf.HeaderName, token.Value)
	req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token.Value})
	w = httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Contact created successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}
