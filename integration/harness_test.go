package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/hudsondigital/hds-platform/config"
	"github.com/hudsondigital/hds-platform/config/router"
	"github.com/hudsondigital/hds-platform/domain"
	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/hudsondigital/hds-platform/internal/log"
	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/pkg/csrf"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testAdminToken = "admin-test-token"
	testCronSecret = "cron-test-secret"
	testSiteURL    = "https://hds.test"
)

// recordingSender captures outbound email instead of calling Resend.
type recordingSender struct {
	mu       sync.Mutex
	messages []email.Message
}

func (r *recordingSender) Send(_ context.Context, msg email.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return fmt.Sprintf("msg-%d", len(r.messages)), nil
}

func (r *recordingSender) Enabled() bool { return true }

func (r *recordingSender) byTemplate(template string) []email.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []email.Message
	for _, m := range r.messages {
		if m.Template == template {
			out = append(out, m)
		}
	}
	return out
}

func (r *recordingSender) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// platformSuite boots the full router on an in-memory SQLite database.
type platformSuite struct {
	suite.Suite
	dbName    string
	db        *gorm.DB
	server    *httptest.Server
	baseURL   string
	sender    *recordingSender
	appConfig *config.ApplicationConfig
	services  *domain.Services
}

func (s *platformSuite) SetupSuite() {
	var err error
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=10000", s.dbName)
	s.db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	s.Require().NoError(err)

	// SQLite serializes writes; one connection avoids "database is locked".
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(s.db.AutoMigrate(models.ModelRegistry...))

	logger := log.NewLoggerWithJSONOutput()
	s.sender = &recordingSender{}

	s.appConfig = &config.ApplicationConfig{
		DB:     s.db,
		Logger: logger,
		Email:  s.sender,
		CSRF:   csrf.NewManager("integration-csrf-secret", time.Hour),
		Integrations: &config.IntegrationsConfig{
			SiteURL:                    testSiteURL,
			AdminEmail:                 "owner@hds.test",
			CronSecret:                 testCronSecret,
			AdminAPIToken:              testAdminToken,
			CSRFEnabled:                true,
			LeadNotificationThreshold:  70,
			GDPRTokenTTL:               24 * time.Hour,
			EmailBatchSize:             50,
			AnalyticsAggregateSchedule: "15 0 * * *",
			ProcessEmailsSchedule:      "*/15 * * * *",
		},
	}

	s.appConfig.RouterService = router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	s.services = domain.SetupCoreDomain(s.appConfig)

	s.server = httptest.NewServer(s.appConfig.RouterService.GetEngine())
	s.baseURL = s.server.URL
}

func (s *platformSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.db != nil {
		sqlDB, _ := s.db.DB()
		sqlDB.Close()
	}
}

func (s *platformSuite) SetupTest() {
	for _, table := range []string{
		"lead_notes", "lead_activities", "contacts", "leads", "newsletter_subscribers",
		"sequence_enrollments", "gdpr_requests", "consent_records", "analytics_events", "daily_metrics",
	} {
		s.db.Exec("DELETE FROM " + table)
	}
	s.sender.reset()
}

// Helper methods

func (s *platformSuite) csrfToken() string {
	resp, err := http.Get(s.baseURL + "/api/csrf")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var env envelope
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))

	var token struct {
		Enabled bool   `json:"enabled"`
		Token   string `json:"token"`
	}
	s.Require().NoError(env.decode(&token))
	s.Require().True(token.Enabled)
	s.Require().NotEmpty(token.Token)
	return token.Token
}

type requestOption func(*http.Request)

func withCSRF(token string) requestOption {
	return func(r *http.Request) {
		r.Header.Set(csrf.HeaderName, token)
		r.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token})
	}
}

func withBearer(token string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func (s *platformSuite) do(method, path string, body any, opts ...requestOption) (*http.Response, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(resp.Body).Decode(&env)
	}
	return resp, env
}

func (s *platformSuite) submitContact(token string, body map[string]any) (*http.Response, envelope) {
	return s.do(http.MethodPost, "/api/contact", body, withCSRF(token))
}

func (s *platformSuite) countRows(table, where string, args ...any) int64 {
	var n int64
	q := s.db.Table(table)
	if where != "" {
		q = q.Where(where, args...)
	}
	s.Require().NoError(q.Count(&n).Error)
	return n
}
