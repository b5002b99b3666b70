package models

import "time"

// ConsentRecord is append-only: every banner choice is stored as a new row.
type ConsentRecord struct {
	ID            uint   `gorm:"primaryKey"`
	VisitorID     string `gorm:"not null;index;size:64"`
	Email         string `gorm:"index;size:255"`
	Necessary     bool   `gorm:"not null;default:true"`
	Analytics     bool   `gorm:"not null;default:false"`
	Marketing     bool   `gorm:"not null;default:false"`
	PolicyVersion string `gorm:"not null;size:32"`
	IPAddress     string `gorm:"size:64"`
	UserAgent     string `gorm:"size:512"`
	CreatedAt     time.Time
}
