package tools

type TipRequest struct {
	BillAmount float64 `json:"bill_amount" binding:"required,gt=0,lte=1000000"`
	TipPercent float64 `json:"tip_percent" binding:"gte=0,lte=100"`
	Split      int     `json:"split" binding:"omitempty,min=1,max=100"`
}

type TipResponse struct {
	BillAmount   float64 `json:"bill_amount"`
	TipPercent   float64 `json:"tip_percent"`
	Split        int     `json:"split"`
	TipAmount    float64 `json:"tip_amount"`
	Total        float64 `json:"total"`
	PerPerson    float64 `json:"per_person"`
	TipPerPerson float64 `json:"tip_per_person"`
}

type PaystubRequest struct {
	GrossPay         float64 `json:"gross_pay" binding:"required,gt=0,lte=10000000"`
	PayFrequency     string  `json:"pay_frequency" binding:"required,oneof=weekly biweekly semimonthly monthly annual"`
	FilingStatus     string  `json:"filing_status" binding:"required,oneof=single married_joint head_of_household"`
	StateTaxRate     float64 `json:"state_tax_rate" binding:"gte=0,lte=15"`
	PreTaxDeductions float64 `json:"pre_tax_deductions" binding:"gte=0"`
	YTDGross         float64 `json:"ytd_gross" binding:"gte=0"`
}

// PaystubBreakdown is one set of figures, either per pay period or annualized.
type PaystubBreakdown struct {
	GrossPay         float64 `json:"gross_pay"`
	PreTaxDeductions float64 `json:"pre_tax_deductions"`
	FederalIncomeTax float64 `json:"federal_income_tax"`
	SocialSecurity   float64 `json:"social_security"`
	Medicare         float64 `json:"medicare"`
	StateTax         float64 `json:"state_tax"`
	TotalDeductions  float64 `json:"total_deductions"`
	NetPay           float64 `json:"net_pay"`
}

type PaystubResponse struct {
	PayFrequency     string           `json:"pay_frequency"`
	FilingStatus     string           `json:"filing_status"`
	PeriodsPerYear   int              `json:"periods_per_year"`
	TaxYear          int              `json:"tax_year"`
	EffectiveTaxRate float64          `json:"effective_tax_rate"`
	PerPeriod        PaystubBreakdown `json:"per_period"`
	Annual           PaystubBreakdown `json:"annual"`
}
