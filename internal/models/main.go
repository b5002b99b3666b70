package models

// ModelRegistry lists every model managed by --auto-migrate.
var ModelRegistry = []interface{}{
	&Contact{},
	&Lead{},
	&LeadNote{},
	&LeadActivity{},
	&NewsletterSubscriber{},
	&GDPRRequest{},
	&ConsentRecord{},
	&AnalyticsEvent{},
	&DailyMetric{},
	&SequenceEnrollment{},
}
