package sequences

import (
	"sort"
	"time"

	"github.com/hudsondigital/hds-platform/internal/email"
)

const (
	ContactFollowUp   = "contact-follow-up"
	LeadMagnetNurture = "lead-magnet-nurture"
)

const day = 24 * time.Hour

// Step is one email of a sequence. Delay is measured from enrollment.
type Step struct {
	Key         string
	Delay       time.Duration
	Subject     string
	Template    string
	Paragraphs  []string
	ActionLabel string
	ActionPath  string
}

type Sequence struct {
	Key   string
	Steps []Step
}

var catalog = map[string]Sequence{
	ContactFollowUp: {
		Key: ContactFollowUp,
		Steps: []Step{
			{
				Key:      "case-studies",
				Delay:    2 * day,
				Subject:  "A few projects like yours",
				Template: email.TemplateSequenceStep,
				Paragraphs: []string{
					"While we review your request, here are some recent projects with similar goals.",
					"Each one started with the same short discovery call we will suggest to you.",
				},
				ActionLabel: "See our work",
				ActionPath:  "/portfolio",
			},
			{
				Key:      "process",
				Delay:    5 * day,
				Subject:  "How we run a project",
				Template: email.TemplateSequenceStep,
				Paragraphs: []string{
					"Discovery, design, build, launch. Every phase ends with something you can review.",
					"You always know what is being worked on and what it costs.",
				},
				ActionLabel: "Read about our process",
				ActionPath:  "/services",
			},
			{
				Key:      "book-call",
				Delay:    10 * day,
				Subject:  "Still thinking it over?",
				Template: email.TemplateSequenceStep,
				Paragraphs: []string{
					"If your project is still on the table, a 30 minute call is the fastest way to a firm estimate.",
				},
				ActionLabel: "Book a call",
				ActionPath:  "/contact",
			},
		},
	},
	LeadMagnetNurture: {
		Key: LeadMagnetNurture,
		Steps: []Step{
			{
				Key:      "quick-wins",
				Delay:    day,
				Subject:  "Three quick wins from your download",
				Template: email.TemplateSequenceStep,
				Paragraphs: []string{
					"Most teams get the biggest return from the first three items in the guide.",
					"Start there and measure before moving on.",
				},
				ActionLabel: "Browse more resources",
				ActionPath:  "/resources",
			},
			{
				Key:      "tools",
				Delay:    3 * day,
				Subject:  "Free calculators for planning",
				Template: email.TemplateSequenceStep,
				Paragraphs: []string{
					"Our free tools help you size budgets and timelines before talking to anyone.",
				},
				ActionLabel: "Try the tools",
				ActionPath:  "/tools",
			},
			{
				Key:      "consultation",
				Delay:    7 * day,
				Subject:  "Want a second pair of eyes?",
				Template: email.TemplateSequenceStep,
				Paragraphs: []string{
					"If you would like us to review your site or product, we offer a free consultation.",
				},
				ActionLabel: "Get in touch",
				ActionPath:  "/contact",
			},
		},
	},
}

func Lookup(key string) (Sequence, bool) {
	seq, ok := catalog[key]
	return seq, ok
}

func Names() []string {
	names := make([]string, 0, len(catalog))
	for k := range catalog {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NextSendAt schedules step index of seq for an enrollment created at enrolledAt.
// Steps that are already overdue keep their spacing from the previous step.
func (seq Sequence) NextSendAt(enrolledAt, now time.Time, index int) time.Time {
	next := enrolledAt.Add(seq.Steps[index].Delay)
	if next.After(now) || index == 0 {
		return next
	}
	return now.Add(seq.Steps[index].Delay - seq.Steps[index-1].Delay)
}
