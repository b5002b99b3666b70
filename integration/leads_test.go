package integration

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hudsondigital/hds-platform/internal/email"
	"github.com/stretchr/testify/suite"
)

type LeadPipelineTestSuite struct {
	platformSuite
}

func highValueContact(emailAddr string) map[string]any {
	return map[string]any{
		"name":              "Dana Whitfield",
		"email":             emailAddr,
		"company":           "Whitfield Logistics",
		"phone":             "+1 555 0100",
		"service":           "custom-software",
		"budget":            "50k-plus",
		"timeline":          "asap",
		"message":           strings.Repeat("We need a dispatch portal for our drivers and warehouse team. ", 3),
		"source_page":       "/services/custom-software",
		"newsletter_opt_in": false,
	}
}

func (s *LeadPipelineTestSuite) TestContactRequiresCSRFToken() {
	resp, env := s.do(http.MethodPost, "/api/contact", highValueContact("dana@whitfield.test"))

	s.Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("Invalid CSRF token", env.Message)
	s.Equal(int64(0), s.countRows("contacts", ""))
}

func (s *LeadPipelineTestSuite) TestContactSubmissionCreatesScoredLead() {
	token := s.csrfToken()

	resp, env := s.submitContact(token, highValueContact("Dana@Whitfield.test"))
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var created struct {
		ContactID uint `json:"contact_id"`
		LeadID    uint `json:"lead_id"`
		LeadScore int  `json:"lead_score"`
		HighValue bool `json:"high_value"`
	}
	s.Require().NoError(env.decode(&created))
	s.NotZero(created.ContactID)
	s.NotZero(created.LeadID)
	s.Equal(100, created.LeadScore)
	s.True(created.HighValue)

	s.Equal(int64(1), s.countRows("leads", "email = ?", "dana@whitfield.test"))
	s.Equal(int64(1), s.countRows("sequence_enrollments", "email = ? AND sequence = ?", "dana@whitfield.test", "contact-follow-up"))

	confirmations := s.sender.byTemplate(email.TemplateContactConfirmation)
	s.Require().Len(confirmations, 1)
	s.Equal([]string{"dana@whitfield.test"}, confirmations[0].To)
	s.Len(s.sender.byTemplate(email.TemplateContactAdminAlert), 1)

	// Admin pipeline
	resp, _ = s.do(http.MethodGet, "/v1/admin/leads", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, env = s.do(http.MethodGet, "/v1/admin/leads?min_score=70", nil, withBearer(testAdminToken))
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var list struct {
		Items []struct {
			ID     uint   `json:"id"`
			Email  string `json:"email"`
			Score  int    `json:"score"`
			Status string `json:"status"`
			Source string `json:"source"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	s.Require().NoError(env.decode(&list))
	s.Equal(int64(1), list.Total)
	s.Require().Len(list.Items, 1)
	s.Equal(created.LeadID, list.Items[0].ID)
	s.Equal("new", list.Items[0].Status)
	s.Equal("contact_form", list.Items[0].Source)

	leadPath := fmt.Sprintf("/v1/admin/leads/%d", created.LeadID)

	resp, env = s.do(http.MethodPatch, leadPath, map[string]any{"status": "qualified"}, withBearer(testAdminToken))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var updated struct {
		Status string `json:"status"`
	}
	s.Require().NoError(env.decode(&updated))
	s.Equal("qualified", updated.Status)

	resp, _ = s.do(http.MethodPatch, leadPath, map[string]any{"status": "archived"}, withBearer(testAdminToken))
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, leadPath+"/notes", map[string]any{
		"author": "ops",
		"body":   "Call booked for Thursday.",
	}, withBearer(testAdminToken))
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp, env = s.do(http.MethodGet, leadPath, nil, withBearer(testAdminToken))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var detail struct {
		Status string `json:"status"`
		Notes  []struct {
			Body string `json:"body"`
		} `json:"notes"`
		Activities []struct {
			Kind string `json:"kind"`
		} `json:"activities"`
	}
	s.Require().NoError(env.decode(&detail))
	s.Equal("qualified", detail.Status)
	s.Require().Len(detail.Notes, 1)
	s.Equal("Call booked for Thursday.", detail.Notes[0].Body)
	s.NotEmpty(detail.Activities)

	resp, env = s.do(http.MethodGet, "/v1/admin/leads/stats", nil, withBearer(testAdminToken))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var stats struct {
		Total     int64 `json:"total"`
		HighValue int64 `json:"high_value"`
	}
	s.Require().NoError(env.decode(&stats))
	s.Equal(int64(1), stats.Total)
	s.Equal(int64(1), stats.HighValue)

	resp, _ = s.do(http.MethodDelete, leadPath, nil, withBearer(testAdminToken))
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, leadPath, nil, withBearer(testAdminToken))
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *LeadPipelineTestSuite) TestHoneypotSubmissionIsDropped() {
	token := s.csrfToken()

	body := highValueContact("bot@spam.test")
	body["website"] = "http://spam.test"

	resp, env := s.submitContact(token, body)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Message received", env.Message)
	s.Equal(int64(0), s.countRows("contacts", ""))
	s.Equal(int64(0), s.countRows("leads", ""))
	s.Empty(s.sender.byTemplate(email.TemplateContactConfirmation))
}

func (s *LeadPipelineTestSuite) TestProcessEmailsSendsDueSteps() {
	token := s.csrfToken()

	resp, _ := s.submitContact(token, highValueContact("ops@northwind.test"))
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp, _ = s.do(http.MethodPost, "/api/process-emails", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	// Nothing is due yet.
	resp, env := s.do(http.MethodPost, "/api/process-emails", nil, withBearer(testCronSecret))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var result struct {
		Processed int `json:"processed"`
		Sent      int `json:"sent"`
	}
	s.Require().NoError(env.decode(&result))
	s.Equal(0, result.Processed)

	s.Require().NoError(s.db.Exec(
		"UPDATE sequence_enrollments SET next_send_at = ? WHERE email = ?",
		time.Now().UTC().Add(-time.Hour), "ops@northwind.test",
	).Error)

	resp, env = s.do(http.MethodPost, "/api/process-emails", nil, withBearer(testCronSecret))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(env.decode(&result))
	s.Equal(1, result.Processed)
	s.Equal(1, result.Sent)

	steps := s.sender.byTemplate(email.TemplateSequenceStep)
	s.Require().Len(steps, 1)
	s.Equal([]string{"ops@northwind.test"}, steps[0].To)
	s.Equal("contact-follow-up", steps[0].Tags["sequence"])
	s.Equal(int64(1), s.countRows("sequence_enrollments", "email = ? AND current_step = ?", "ops@northwind.test", 1))
}

func TestLeadPipelineSuite(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration tests. Set RUN_INTEGRATION_TESTS=true to run them")
	}

	suite.Run(t, &LeadPipelineTestSuite{platformSuite{dbName: "leads"}})
}
