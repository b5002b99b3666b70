package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Recorder holds the business counters exposed next to the HTTP metrics.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	leadsCaptured *prometheus.CounterVec
	notifications *prometheus.CounterVec
	emailsSent    *prometheus.CounterVec
}

// NewRecorder registers the counters on reg. A nil reg keeps the counters
// unregistered, which is what tests and METRICS_ENABLED=false want.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		leadsCaptured: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hds_leads_captured_total",
				Help: "Leads created or refreshed, by source.",
			},
			[]string{"source"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hds_notifications_total",
				Help: "High-value lead notifications, by channel and outcome.",
			},
			[]string{"channel", "outcome"},
		),
		emailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hds_emails_sent_total",
				Help: "Transactional emails, by template and outcome.",
			},
			[]string{"template", "outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(r.leadsCaptured, r.notifications, r.emailsSent)
	}

	return r
}

func (r *Recorder) LeadCaptured(source string) {
	if r == nil {
		return
	}
	r.leadsCaptured.WithLabelValues(source).Inc()
}

func (r *Recorder) Notification(channel, outcome string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(channel, outcome).Inc()
}

func (r *Recorder) Email(template, outcome string) {
	if r == nil {
		return
	}
	r.emailsSent.WithLabelValues(template, outcome).Inc()
}
