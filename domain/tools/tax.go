package tools

import "math"

// TaxYear is the year the bracket tables below are published for.
const TaxYear = 2024

const (
	socialSecurityRate      = 0.062
	socialSecurityWageBase  = 168600
	medicareRate            = 0.0145
	additionalMedicareRate  = 0.009
	additionalMedicareFloor = 200000
)

var periodsPerYear = map[string]int{
	"weekly":      52,
	"biweekly":    26,
	"semimonthly": 24,
	"monthly":     12,
	"annual":      1,
}

var standardDeduction = map[string]float64{
	"single":            14600,
	"married_joint":     29200,
	"head_of_household": 21900,
}

type bracket struct {
	upTo float64
	rate float64
}

var federalBrackets = map[string][]bracket{
	"single": {
		{11600, 0.10}, {47150, 0.12}, {100525, 0.22}, {191950, 0.24},
		{243725, 0.32}, {609350, 0.35}, {math.Inf(1), 0.37},
	},
	"married_joint": {
		{23200, 0.10}, {94300, 0.12}, {201050, 0.22}, {383900, 0.24},
		{487450, 0.32}, {731200, 0.35}, {math.Inf(1), 0.37},
	},
	"head_of_household": {
		{16550, 0.10}, {63100, 0.12}, {100500, 0.22}, {191950, 0.24},
		{243700, 0.32}, {609350, 0.35}, {math.Inf(1), 0.37},
	},
}

// federalIncomeTax applies the progressive brackets to annual taxable income.
func federalIncomeTax(filingStatus string, taxable float64) float64 {
	if taxable <= 0 {
		return 0
	}

	var tax, lower float64
	for _, b := range federalBrackets[filingStatus] {
		if taxable <= lower {
			break
		}
		tax += (math.Min(taxable, b.upTo) - lower) * b.rate
		lower = b.upTo
	}
	return tax
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
