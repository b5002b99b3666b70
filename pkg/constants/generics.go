package constants

import "time"

// RFC 3339 date-time format string used for every timestamp leaving the API.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// DateFormat is the calendar-day format used by analytics rollups.
const DateFormat = "2006-01-02"

// Default rate limiting configuration
const (
	DefaultRateLimitRequests      = 100
	DefaultRateLimitWindowMinutes = 1
)

func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}

// Lead capture defaults
const (
	DefaultLeadNotificationThreshold = 70
	MaxLeadScore                     = 100
)

// Pagination bounds shared by admin list endpoints.
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

const (
	DefaultGDPRTokenTTL   = 48 * time.Hour
	DefaultCSRFTokenTTL   = 2 * time.Hour
	DefaultEmailBatchSize = 50
)
