package models

import "time"

// Event names accepted by the analytics ingest endpoint.
const (
	EventPageView       = "page_view"
	EventWebVital       = "web_vital"
	EventCTAClick       = "cta_click"
	EventFormSubmit     = "form_submit"
	EventCalculatorUsed = "calculator_used"
)

type AnalyticsEvent struct {
	ID         uint      `gorm:"primaryKey"`
	Name       string    `gorm:"not null;index;size:64"`
	DistinctID string    `gorm:"not null;index;size:64"`
	Email      string    `gorm:"index;size:255"`
	Path       string    `gorm:"size:512"`
	Properties string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"not null;index"`
	CreatedAt  time.Time
}

type DailyMetric struct {
	ID        uint    `gorm:"primaryKey"`
	Date      string  `gorm:"not null;size:10;uniqueIndex:idx_daily_metric"`
	Metric    string  `gorm:"not null;size:64;uniqueIndex:idx_daily_metric"`
	Value     float64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
