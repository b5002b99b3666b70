package leads

import (
	"unicode/utf8"

	"github.com/hudsondigital/hds-platform/pkg/constants"
)

// Point tables for lead scoring. Keys are the form option values.
var (
	budgetPoints = map[string]int{
		"under-5k": 5,
		"5k-15k":   15,
		"15k-50k":  25,
		"50k-plus": 35,
		"not-sure": 5,
	}

	timelinePoints = map[string]int{
		"asap":           25,
		"1-3-months":     20,
		"3-6-months":     10,
		"6-plus-months":  5,
		"just-exploring": 0,
	}

	servicePoints = map[string]int{
		"custom-software":  20,
		"saas-development": 20,
		"web-development":  15,
		"mobile-app":       15,
		"consulting":       10,
		"seo":              10,
		"other":            5,
	}
)

const (
	companyBonus        = 10
	phoneBonus          = 5
	detailedMessageBonus = 5
	detailedMessageRunes = 100
)

// Accepted option values, used in binding tags and admin filters.
const (
	BudgetOptions   = "under-5k 5k-15k 15k-50k 50k-plus not-sure"
	TimelineOptions = "asap 1-3-months 3-6-months 6-plus-months just-exploring"
	ServiceOptions  = "custom-software saas-development web-development mobile-app consulting seo other"
)

type ScoreInput struct {
	Budget   string
	Timeline string
	Service  string
	Company  string
	Phone    string
	Message  string
}

// Score sums the point tables and bonuses, capped at MaxLeadScore.
// Unknown option values contribute nothing.
func Score(in ScoreInput) int {
	score := budgetPoints[in.Budget] + timelinePoints[in.Timeline] + servicePoints[in.Service]

	if in.Company != "" {
		score += companyBonus
	}
	if in.Phone != "" {
		score += phoneBonus
	}
	if utf8.RuneCountInString(in.Message) >= detailedMessageRunes {
		score += detailedMessageBonus
	}

	if score > constants.MaxLeadScore {
		return constants.MaxLeadScore
	}
	return score
}

// IsHighValue reports whether score meets the notification threshold.
func IsHighValue(score, threshold int) bool {
	return score >= threshold
}
