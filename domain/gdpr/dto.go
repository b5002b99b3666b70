package gdpr

import (
	"encoding/json"
	"time"

	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/pkg/constants"
	"github.com/tidwall/gjson"
)

// ExportFormatVersion is bumped whenever the export document changes shape.
const ExportFormatVersion = "1.0"

// Tables touched by an erasure, used as keys in ErasureResult.Deleted.
const (
	TableLeadNotes             = "lead_notes"
	TableLeadActivities        = "lead_activities"
	TableContacts              = "contacts"
	TableLeads                 = "leads"
	TableNewsletterSubscribers = "newsletter_subscribers"
	TableSequenceEnrollments   = "sequence_enrollments"
	TableConsentRecords        = "consent_records"
	TableAnalyticsEvents       = "analytics_events"
)

type CreateRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	RequestType string `json:"request_type" binding:"required,oneof=access erasure portability"`
}

type VerifyRequest struct {
	Token string `json:"token" binding:"required,max=64"`
}

type ListRequestsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending completed expired"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

type CreateInput struct {
	Email       string
	RequestType string
	IPAddress   string
}

type RequestResponse struct {
	ID            uint    `json:"id"`
	Email         string  `json:"email"`
	RequestType   string  `json:"request_type"`
	Status        string  `json:"status"`
	ExpiresAt     string  `json:"expires_at"`
	CompletedAt   *string `json:"completed_at"`
	ResultSummary string  `json:"result_summary,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type RequestListResponse struct {
	Items  []RequestResponse `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type VerifyResponse struct {
	RequestID   uint            `json:"request_id"`
	RequestType string          `json:"request_type"`
	Status      string          `json:"status"`
	Export      *ExportDocument `json:"export,omitempty"`
	Erasure     *ErasureResult  `json:"erasure,omitempty"`
}

type ErasureResult struct {
	Deleted map[string]int64 `json:"deleted"`
	Total   int64            `json:"total"`
}

// ExportDocument is everything held about one email address.
type ExportDocument struct {
	Email               string               `json:"email"`
	ExportedAt          string               `json:"exported_at"`
	FormatVersion       string               `json:"format_version"`
	Contacts            []ExportedContact    `json:"contacts"`
	Leads               []ExportedLead       `json:"leads"`
	Newsletter          *ExportedSubscriber  `json:"newsletter"`
	ConsentRecords      []ExportedConsent    `json:"consent_records"`
	AnalyticsEvents     []ExportedEvent      `json:"analytics_events"`
	SequenceEnrollments []ExportedEnrollment `json:"sequence_enrollments"`
}

type ExportedContact struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Company    string `json:"company,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Service    string `json:"service,omitempty"`
	Budget     string `json:"budget,omitempty"`
	Timeline   string `json:"timeline,omitempty"`
	Message    string `json:"message"`
	SourcePage string `json:"source_page,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type ExportedLead struct {
	Email      string             `json:"email"`
	Name       string             `json:"name,omitempty"`
	Company    string             `json:"company,omitempty"`
	Phone      string             `json:"phone,omitempty"`
	Source     string             `json:"source"`
	Service    string             `json:"service,omitempty"`
	Budget     string             `json:"budget,omitempty"`
	Timeline   string             `json:"timeline,omitempty"`
	Score      int                `json:"score"`
	Status     string             `json:"status"`
	CreatedAt  string             `json:"created_at"`
	Notes      []ExportedNote     `json:"notes"`
	Activities []ExportedActivity `json:"activities"`
}

type ExportedNote struct {
	Author    string `json:"author"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

type ExportedActivity struct {
	Kind      string `json:"kind"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ExportedSubscriber struct {
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name,omitempty"`
	Status         string  `json:"status"`
	Source         string  `json:"source,omitempty"`
	SubscribedAt   string  `json:"subscribed_at"`
	UnsubscribedAt *string `json:"unsubscribed_at"`
}

type ExportedConsent struct {
	VisitorID     string `json:"visitor_id"`
	Necessary     bool   `json:"necessary"`
	Analytics     bool   `json:"analytics"`
	Marketing     bool   `json:"marketing"`
	PolicyVersion string `json:"policy_version"`
	CreatedAt     string `json:"created_at"`
}

type ExportedEvent struct {
	Name       string `json:"name"`
	DistinctID string `json:"distinct_id"`
	Path       string `json:"path,omitempty"`
	// Properties is the stored JSON object, or the raw string when it does not parse.
	Properties any    `json:"properties,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type ExportedEnrollment struct {
	Sequence    string  `json:"sequence"`
	CurrentStep int     `json:"current_step"`
	Status      string  `json:"status"`
	NextSendAt  string  `json:"next_send_at"`
	LastSentAt  *string `json:"last_sent_at"`
	CreatedAt   string  `json:"created_at"`
}

// ========================================
// Mappers
// ========================================

func timestamp(t time.Time) string {
	return t.UTC().Format(constants.RFC3339DateTimeFormat)
}

func optionalTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := timestamp(*t)
	return &v
}

func ToRequestResponse(r *models.GDPRRequest) RequestResponse {
	return RequestResponse{
		ID:            r.ID,
		Email:         r.Email,
		RequestType:   r.RequestType,
		Status:        r.Status,
		ExpiresAt:     timestamp(r.ExpiresAt),
		CompletedAt:   optionalTimestamp(r.CompletedAt),
		ResultSummary: r.ResultSummary,
		CreatedAt:     timestamp(r.CreatedAt),
	}
}

func toExportedContact(c *models.Contact) ExportedContact {
	return ExportedContact{
		Name:       c.Name,
		Email:      c.Email,
		Company:    c.Company,
		Phone:      c.Phone,
		Service:    c.Service,
		Budget:     c.Budget,
		Timeline:   c.Timeline,
		Message:    c.Message,
		SourcePage: c.SourcePage,
		IPAddress:  c.IPAddress,
		UserAgent:  c.UserAgent,
		CreatedAt:  timestamp(c.CreatedAt),
	}
}

func toExportedLead(l *models.Lead) ExportedLead {
	exported := ExportedLead{
		Email:      l.Email,
		Name:       l.Name,
		Company:    l.Company,
		Phone:      l.Phone,
		Source:     l.Source,
		Service:    l.Service,
		Budget:     l.Budget,
		Timeline:   l.Timeline,
		Score:      l.Score,
		Status:     l.Status,
		CreatedAt:  timestamp(l.CreatedAt),
		Notes:      make([]ExportedNote, 0, len(l.Notes)),
		Activities: make([]ExportedActivity, 0, len(l.Activities)),
	}
	for _, n := range l.Notes {
		exported.Notes = append(exported.Notes, ExportedNote{Author: n.Author, Body: n.Body, CreatedAt: timestamp(n.CreatedAt)})
	}
	for _, a := range l.Activities {
		exported.Activities = append(exported.Activities, ExportedActivity{Kind: a.Kind, Detail: a.Detail, CreatedAt: timestamp(a.CreatedAt)})
	}
	return exported
}

func toExportedSubscriber(s *models.NewsletterSubscriber) *ExportedSubscriber {
	if s == nil {
		return nil
	}
	return &ExportedSubscriber{
		Email:          s.Email,
		FirstName:      s.FirstName,
		Status:         s.Status,
		Source:         s.Source,
		SubscribedAt:   timestamp(s.SubscribedAt),
		UnsubscribedAt: optionalTimestamp(s.UnsubscribedAt),
	}
}

func toExportedConsent(c *models.ConsentRecord) ExportedConsent {
	return ExportedConsent{
		VisitorID:     c.VisitorID,
		Necessary:     c.Necessary,
		Analytics:     c.Analytics,
		Marketing:     c.Marketing,
		PolicyVersion: c.PolicyVersion,
		CreatedAt:     timestamp(c.CreatedAt),
	}
}

func toExportedEvent(e *models.AnalyticsEvent) ExportedEvent {
	exported := ExportedEvent{
		Name:       e.Name,
		DistinctID: e.DistinctID,
		Path:       e.Path,
		OccurredAt: timestamp(e.OccurredAt),
	}
	switch {
	case e.Properties == "":
	case gjson.Valid(e.Properties):
		exported.Properties = json.RawMessage(e.Properties)
	default:
		exported.Properties = e.Properties
	}
	return exported
}

func toExportedEnrollment(e *models.SequenceEnrollment) ExportedEnrollment {
	return ExportedEnrollment{
		Sequence:    e.Sequence,
		CurrentStep: e.CurrentStep,
		Status:      e.Status,
		NextSendAt:  timestamp(e.NextSendAt),
		LastSentAt:  optionalTimestamp(e.LastSentAt),
		CreatedAt:   timestamp(e.CreatedAt),
	}
}
