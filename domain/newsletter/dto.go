package newsletter

import (
	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/pkg/constants"
)

// Subscribe outcomes
const (
	OutcomeSubscribed        = "subscribed"
	OutcomeResubscribed      = "resubscribed"
	OutcomeAlreadySubscribed = "already_subscribed"
)

// SourceSequenceOptOut marks rows created by an unsubscribe from a drip email.
const SourceSequenceOptOut = "sequence-opt-out"

type SubscribeRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	FirstName string `json:"first_name" binding:"omitempty,max=50"`
	Source    string `json:"source" binding:"omitempty,max=64"`
}

type UnsubscribeRequest struct {
	Token string `json:"token" binding:"required,max=64"`
}

type ListSubscribersQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=subscribed unsubscribed"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// SubscribeInput is the service-level request. Forms that already captured
// the lead themselves leave CaptureLead false.
type SubscribeInput struct {
	Email       string
	FirstName   string
	Source      string
	CaptureLead bool
}

type SubscribeResponse struct {
	Email   string `json:"email"`
	Outcome string `json:"outcome"`
}

type UnsubscribeResponse struct {
	Email               string `json:"email"`
	AlreadyUnsubscribed bool   `json:"already_unsubscribed"`
	CancelledSequences  int64  `json:"cancelled_sequences"`
}

type SubscriberResponse struct {
	ID             uint    `json:"id"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	Status         string  `json:"status"`
	Source         string  `json:"source"`
	SubscribedAt   string  `json:"subscribed_at"`
	UnsubscribedAt *string `json:"unsubscribed_at"`
}

type SubscriberListResponse struct {
	Items  []SubscriberResponse `json:"items"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// ========================================
// Mappers
// ========================================

func ToSubscriberResponse(s *models.NewsletterSubscriber) SubscriberResponse {
	response := SubscriberResponse{
		ID:           s.ID,
		Email:        s.Email,
		FirstName:    s.FirstName,
		Status:       s.Status,
		Source:       s.Source,
		SubscribedAt: s.SubscribedAt.UTC().Format(constants.RFC3339DateTimeFormat),
	}
	if s.UnsubscribedAt != nil {
		v := s.UnsubscribedAt.UTC().Format(constants.RFC3339DateTimeFormat)
		response.UnsubscribedAt = &v
	}
	return response
}
