package leads

import (
	"time"

	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/pkg/constants"
)

// CaptureInput is what the public forms hand over to Capture.
// Email is normalized by the service.
type CaptureInput struct {
	Email    string
	Name     string
	Company  string
	Phone    string
	Source   string
	Service  string
	Budget   string
	Timeline string
	Message  string
}

type CaptureResult struct {
	Lead      *models.Lead
	Created   bool
	HighValue bool
	Notified  bool
}

type ListLeadsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=new contacted qualified proposal won lost"`
	Source   string `form:"source" binding:"omitempty,oneof=contact_form lead_magnet newsletter"`
	MinScore int    `form:"min_score" binding:"omitempty,min=0,max=100"`
	Query    string `form:"q" binding:"omitempty,max=100"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

type UpdateLeadRequest struct {
	Status *string `json:"status" binding:"omitempty,oneof=new contacted qualified proposal won lost"`
	Score  *int    `json:"score" binding:"omitempty,min=0,max=100"`
}

type AddNoteRequest struct {
	Author string `json:"author" binding:"required,min=1,max=100"`
	Body   string `json:"body" binding:"required,min=1,max=5000"`
}

type LeadResponse struct {
	ID             uint    `json:"id"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	Company        string  `json:"company"`
	Phone          string  `json:"phone"`
	Source         string  `json:"source"`
	Service        string  `json:"service"`
	Budget         string  `json:"budget"`
	Timeline       string  `json:"timeline"`
	Score          int     `json:"score"`
	Status         string  `json:"status"`
	LastActivityAt *string `json:"last_activity_at"`
	NotifiedAt     *string `json:"notified_at"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type LeadNoteResponse struct {
	ID        uint   `json:"id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

type LeadActivityResponse struct {
	ID        uint   `json:"id"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail"`
	CreatedAt string `json:"created_at"`
}

type LeadDetailResponse struct {
	LeadResponse
	Notes      []LeadNoteResponse     `json:"notes"`
	Activities []LeadActivityResponse `json:"activities"`
}

type LeadListResponse struct {
	Items  []LeadResponse `json:"items"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type LeadStats struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
	BySource     map[string]int64 `json:"by_source"`
	AverageScore float64          `json:"average_score"`
	HighValue    int64            `json:"high_value"`
	Threshold    int              `json:"threshold"`
}

// ========================================
// Mappers
// ========================================

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(constants.RFC3339DateTimeFormat)
	return &s
}

func ToLeadResponse(lead *models.Lead) LeadResponse {
	if lead == nil {
		return LeadResponse{}
	}
	return LeadResponse{
		ID:             lead.ID,
		Email:          lead.Email,
		Name:           lead.Name,
		Company:        lead.Company,
		Phone:          lead.Phone,
		Source:         lead.Source,
		Service:        lead.Service,
		Budget:         lead.Budget,
		Timeline:       lead.Timeline,
		Score:          lead.Score,
		Status:         lead.Status,
		LastActivityAt: formatOptionalTime(lead.LastActivityAt),
		NotifiedAt:     formatOptionalTime(lead.NotifiedAt),
		CreatedAt:      lead.CreatedAt.UTC().Format(constants.RFC3339DateTimeFormat),
		UpdatedAt:      lead.UpdatedAt.UTC().Format(constants.RFC3339DateTimeFormat),
	}
}

func ToLeadNoteResponse(note *models.LeadNote) LeadNoteResponse {
	return LeadNoteResponse{
		ID:        note.ID,
		Author:    note.Author,
		Body:      note.Body,
		CreatedAt: note.CreatedAt.UTC().Format(constants.RFC3339DateTimeFormat),
	}
}

func ToLeadDetailResponse(lead *models.Lead) LeadDetailResponse {
	detail := LeadDetailResponse{
		LeadResponse: ToLeadResponse(lead),
		Notes:        make([]LeadNoteResponse, 0, len(lead.Notes)),
		Activities:   make([]LeadActivityResponse, 0, len(lead.Activities)),
	}
	for i := range lead.Notes {
		detail.Notes = append(detail.Notes, ToLeadNoteResponse(&lead.Notes[i]))
	}
	for _, a := range lead.Activities {
		detail.Activities = append(detail.Activities, LeadActivityResponse{
			ID:        a.ID,
			Kind:      a.Kind,
			Detail:    a.Detail,
			CreatedAt: a.CreatedAt.UTC().Format(constants.RFC3339DateTimeFormat),
		})
	}
	return detail
}
