package models

import "gorm.io/gorm"

// Contact is a raw contact-form submission. Scoring and pipeline state live on Lead.
type Contact struct {
	gorm.Model
	Name       string `gorm:"not null;size:100"`
	Email      string `gorm:"not null;index;size:255"`
	Company    string `gorm:"size:100"`
	Phone      string `gorm:"size:30"`
	Service    string `gorm:"size:64"`
	Budget     string `gorm:"size:32"`
	Timeline   string `gorm:"size:32"`
	Message    string `gorm:"not null;type:text"`
	SourcePage string `gorm:"size:255"`
	IPAddress  string `gorm:"size:64"`
	UserAgent  string `gorm:"size:512"`
	LeadID     *uint  `gorm:"index"`
}
