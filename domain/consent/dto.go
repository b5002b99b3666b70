package consent

import (
	"github.com/hudsondigital/hds-platform/internal/models"
	"github.com/hudsondigital/hds-platform/pkg/constants"
)

type ConsentRequest struct {
	VisitorID     string `json:"visitor_id" binding:"required,uuid"`
	Necessary     *bool  `json:"necessary" binding:"required"`
	Analytics     bool   `json:"analytics"`
	Marketing     bool   `json:"marketing"`
	PolicyVersion string `json:"policy_version" binding:"required,max=32"`
	Email         string `json:"email" binding:"omitempty,email,max=255"`
}

type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type ConsentResponse struct {
	ID            uint   `json:"id"`
	VisitorID     string `json:"visitor_id"`
	Necessary     bool   `json:"necessary"`
	Analytics     bool   `json:"analytics"`
	Marketing     bool   `json:"marketing"`
	PolicyVersion string `json:"policy_version"`
	CreatedAt     string `json:"created_at"`
}

func ToConsentResponse(r *models.ConsentRecord) ConsentResponse {
	return ConsentResponse{
		ID:            r.ID,
		VisitorID:     r.VisitorID,
		Necessary:     r.Necessary,
		Analytics:     r.Analytics,
		Marketing:     r.Marketing,
		PolicyVersion: r.PolicyVersion,
		CreatedAt:     r.CreatedAt.UTC().Format(constants.RFC3339DateTimeFormat),
	}
}
