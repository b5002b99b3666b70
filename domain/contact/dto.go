package contact

import (
	"strings"

	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/pkg/utils"
)

type ContactRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=100"`
	Email           string `json:"email" binding:"required,email,max=255"`
	Company         string `json:"company" binding:"omitempty,max=100"`
	Phone           string `json:"phone" binding:"omitempty,max=30"`
	Service         string `json:"service" binding:"omitempty,oneof=custom-software saas-development web-development mobile-app consulting seo other"`
	Budget          string `json:"budget" binding:"omitempty,oneof=under-5k 5k-15k 15k-50k 50k-plus not-sure"`
	Timeline        string `json:"timeline" binding:"omitempty,oneof=asap 1-3-months 3-6-months 6-plus-months just-exploring"`
	Message         string `json:"message" binding:"required,min=10,max=5000"`
	SourcePage      string `json:"source_page" binding:"omitempty,max=255"`
	NewsletterOptIn bool   `json:"newsletter_opt_in"`
	// Website is a honeypot; people never see the field.
	Website string `json:"website"`
}

// RequestMeta is what the controller knows about the caller.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type ContactResponse struct {
	ContactID uint `json:"contact_id"`
	LeadID    uint `json:"lead_id"`
	LeadScore int  `json:"lead_score"`
	HighValue bool `json:"high_value"`
}

type HoneypotResponse struct {
	Accepted bool `json:"accepted"`
}

// ========================================
// Mappers
// ========================================

func ToContactModel(req *ContactRequest, meta RequestMeta) *models.Contact {
	if req == nil {
		return nil
	}
	return &models.Contact{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Company:    strings.TrimSpace(req.Company),
		Phone:      strings.TrimSpace(req.Phone),
		Service:    req.Service,
		Budget:     req.Budget,
		Timeline:   req.Timeline,
		Message:    strings.TrimSpace(req.Message),
		SourcePage: strings.TrimSpace(req.SourcePage),
		IPAddress:  meta.IPAddress,
		UserAgent:  utils.TruncateBytes(meta.UserAgent, maxUserAgentBytes),
	}
}

const maxUserAgentBytes = 512
