package analytics

import "time"

// EventNames lists the accepted event names in binding-tag form.
const EventNames = "page_view web_vital cta_click form_submit calculator_used"

// WebVitalMetrics are the metric names a web_vital event may carry.
var WebVitalMetrics = []string{"LCP", "FID", "CLS", "INP", "TTFB", "FCP"}

// Daily metric names
const (
	MetricPageViews         = "page_views"
	MetricUniqueVisitors    = "unique_visitors"
	MetricLeadsCreated      = "leads_created"
	MetricContactsReceived  = "contacts_received"
	MetricNewsletterSignups = "newsletter_signups"
	MetricHighValueLeads    = "high_value_leads"
	webVitalMetricPrefix    = "web_vital_"
)

// MaxDailyRange bounds the admin rollup query.
const MaxDailyRange = 92

type EventRequest struct {
	Name       string         `json:"name" binding:"required,oneof=page_view web_vital cta_click form_submit calculator_used"`
	DistinctID string         `json:"distinct_id" binding:"required,max=64"`
	Path       string         `json:"path" binding:"omitempty,max=512"`
	Email      string         `json:"email" binding:"omitempty,email,max=255"`
	Properties map[string]any `json:"properties"`
}

type EventResponse struct {
	ID        uint `json:"id"`
	Forwarded bool `json:"forwarded"`
}

type AggregateQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

type AggregateResult struct {
	Date    string             `json:"date"`
	Metrics map[string]float64 `json:"metrics"`
}

type DailyQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

type DailyMetrics struct {
	Date    string             `json:"date"`
	Metrics map[string]float64 `json:"metrics"`
}

type DailyResponse struct {
	From string         `json:"from"`
	To   string         `json:"to"`
	Days []DailyMetrics `json:"days"`
}

// dayBounds returns [start, end) of the UTC calendar day containing t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
