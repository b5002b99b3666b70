package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type pingCache struct{ err error }

func (c pingCache) Ping(context.Context) error { return c.err }

type toggle bool

func (t toggle) Enabled() bool { return bool(t) }

func healthOf(t *testing.T, deps Dependencies) HealthStatus {
	t.Helper()

	rs := router.CreateRouterService(log.NewDiscardLogger(), nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	rs.MountController(NewMonitoringController(deps))

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data HealthStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestHealth_AllConfigured(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	status := healthOf(t, Dependencies{
		DB:       db,
		Cache:    pingCache{},
		Email:    toggle(true),
		Webhooks: toggle(true),
	})

	assert.Equal(t, 1, status.Database)
	assert.Equal(t, 1, status.Cache)
	assert.Equal(t, 1, status.Email)
	assert.Equal(t, 1, status.Webhooks)
}

func TestHealth_Degraded(t *testing.T) {
	status := healthOf(t, Dependencies{
		Cache: pingCache{err: errors.New("connection refused")},
		Email: toggle(false),
	})

	assert.Equal(t, 0, status.Database)
	assert.Equal(t, 0, status.Cache)
	assert.Equal(t, 0, status.Email)
	assert.Equal(t, 0, status.Webhooks)
}
