package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentCancelled = "cancelled"
)

type SequenceEnrollment struct {
	ID          string    `gorm:"type:text;primaryKey"`
	Email       string    `gorm:"not null;index;size:255"`
	FirstName   string    `gorm:"size:50"`
	Sequence    string    `gorm:"not null;index;size:64"`
	CurrentStep int       `gorm:"not null;default:0"`
	Status      string    `gorm:"not null;default:active;index;size:16"`
	NextSendAt  time.Time `gorm:"not null;index"`
	LastSentAt  *time.Time
	LastError   string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e *SequenceEnrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
