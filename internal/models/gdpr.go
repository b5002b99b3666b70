package models

import "time"

const (
	GDPRRequestAccess      = "access"
	GDPRRequestErasure     = "erasure"
	GDPRRequestPortability = "portability"
)

const (
	GDPRStatusPending   = "pending"
	GDPRStatusCompleted = "completed"
	GDPRStatusExpired   = "expired"
)

type GDPRRequest struct {
	ID                uint      `gorm:"primaryKey"`
	Email             string    `gorm:"not null;index;size:255"`
	RequestType       string    `gorm:"not null;size:16"`
	Status            string    `gorm:"not null;default:pending;index;size:16"`
	VerificationToken string    `gorm:"not null;uniqueIndex;size:64"`
	ExpiresAt         time.Time `gorm:"not null"`
	CompletedAt       *time.Time
	ResultSummary     string `gorm:"type:text"`
	IPAddress         string `gorm:"size:64"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (GDPRRequest) TableName() string {
	return "gdpr_requests"
}
