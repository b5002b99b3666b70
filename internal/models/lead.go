package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead sources
const (
	LeadSourceContactForm = "contact_form"
	LeadSourceLeadMagnet  = "lead_magnet"
	LeadSourceNewsletter  = "newsletter"
)

// Lead pipeline statuses
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusProposal  = "proposal"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

var LeadStatuses = []string{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusProposal,
	LeadStatusWon,
	LeadStatusLost,
}

// Activity kinds
const (
	ActivityCreated       = "created"
	ActivityResubmitted   = "resubmitted"
	ActivityStatusChanged = "status_changed"
	ActivityScoreChanged  = "score_changed"
	ActivityNoteAdded     = "note_added"
	ActivityNotified      = "notified"
	ActivityEmailSent     = "email_sent"
)

type Lead struct {
	gorm.Model
	Email          string `gorm:"not null;uniqueIndex;size:255"`
	Name           string `gorm:"size:100"`
	Company        string `gorm:"size:100"`
	Phone          string `gorm:"size:30"`
	Source         string `gorm:"not null;index;size:32"`
	Service        string `gorm:"size:64"`
	Budget         string `gorm:"size:32"`
	Timeline       string `gorm:"size:32"`
	Score          int    `gorm:"not null;default:0;index"`
	Status         string `gorm:"not null;default:new;index;size:32"`
	LastActivityAt *time.Time
	NotifiedAt     *time.Time

	Notes      []LeadNote     `gorm:"foreignKey:LeadID"`
	Activities []LeadActivity `gorm:"foreignKey:LeadID"`
}

type LeadNote struct {
	ID        uint      `gorm:"primaryKey"`
	LeadID    uint      `gorm:"not null;index"`
	Author    string    `gorm:"not null;size:100"`
	Body      string    `gorm:"not null;type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

type LeadActivity struct {
	ID        uint      `gorm:"primaryKey"`
	LeadID    uint      `gorm:"not null;index"`
	Kind      string    `gorm:"not null;size:32"`
	Detail    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

func IsValidLeadStatus(status string) bool {
	for _, s := range LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}
