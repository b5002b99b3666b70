package tools

import (
	"context"
	"math"

	"github.com/hudsondigital/hds-platform/internal/log"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
)

type CalculatorService interface {
	Tip(ctx context.Context, req *TipRequest) (*TipResponse, error)
	// Paystub estimates one pay period's withholding from annualized figures.
	// Social Security and the additional Medicare tax account for ytd_gross.
	Paystub(ctx context.Context, req *PaystubRequest) (*PaystubResponse, error)
}

type calculatorService struct {
	logger *log.Logger
}

func NewCalculatorService(logger *log.Logger) CalculatorService {
	return &calculatorService{logger: logger}
}

func (s *calculatorService) Tip(ctx context.Context, req *TipRequest) (*TipResponse, error) {
	if req == nil || req.BillAmount <= 0 {
		return nil, apperrors.NewInvalidRequestError("bill_amount must be greater than zero", nil)
	}
	if req.TipPercent < 0 || req.TipPercent > 100 {
		return nil, apperrors.NewInvalidRequestError("tip_percent must be between 0 and 100", nil)
	}
	split := req.Split
	if split < 1 {
		split = 1
	}

	tip := roundCents(req.BillAmount * req.TipPercent / 100)
	total := roundCents(req.BillAmount + tip)

	return &TipResponse{
		BillAmount:   roundCents(req.BillAmount),
		TipPercent:   req.TipPercent,
		Split:        split,
		TipAmount:    tip,
		Total:        total,
		PerPerson:    roundCents(total / float64(split)),
		TipPerPerson: roundCents(tip / float64(split)),
	}, nil
}

func (s *calculatorService) Paystub(ctx context.Context, req *PaystubRequest) (*PaystubResponse, error) {
	if req == nil || req.GrossPay <= 0 {
		return nil, apperrors.NewInvalidRequestError("gross_pay must be greater than zero", nil)
	}
	periods, ok := periodsPerYear[req.PayFrequency]
	if !ok {
		return nil, apperrors.NewInvalidRequestError("unknown pay_frequency", nil)
	}
	deduction, ok := standardDeduction[req.FilingStatus]
	if !ok {
		return nil, apperrors.NewInvalidRequestError("unknown filing_status", nil)
	}
	if req.PreTaxDeductions > req.GrossPay {
		return nil, apperrors.NewInvalidRequestError("pre_tax_deductions cannot exceed gross_pay", nil)
	}

	gross := req.GrossPay
	taxable := gross - req.PreTaxDeductions
	n := float64(periods)

	federal := federalIncomeTax(req.FilingStatus, taxable*n-deduction) / n

	socialSecurity := socialSecurityTax(req.YTDGross, gross)
	medicare := medicareTax(req.YTDGross, gross)

	state := taxable * req.StateTaxRate / 100

	perPeriod := breakdown(gross, req.PreTaxDeductions, federal, socialSecurity, medicare, state)
	// A full year of this paycheck, with the wage base and the additional
	// Medicare threshold applied to the annual total.
	annualGross := gross * n
	annual := breakdown(
		annualGross,
		req.PreTaxDeductions*n,
		federalIncomeTax(req.FilingStatus, taxable*n-deduction),
		socialSecurityTax(0, annualGross),
		medicareTax(0, annualGross),
		state*n,
	)

	effective := 0.0
	if perPeriod.GrossPay > 0 {
		taxes := perPeriod.FederalIncomeTax + perPeriod.SocialSecurity + perPeriod.Medicare + perPeriod.StateTax
		effective = roundCents(taxes / perPeriod.GrossPay * 100)
	}

	log.GetLoggerInstanceFromContext(ctx, s.logger).Debug("Paystub calculated", "frequency", req.PayFrequency, "filing_status", req.FilingStatus)

	return &PaystubResponse{
		PayFrequency:     req.PayFrequency,
		FilingStatus:     req.FilingStatus,
		PeriodsPerYear:   periods,
		TaxYear:          TaxYear,
		EffectiveTaxRate: effective,
		PerPeriod:        perPeriod,
		Annual:           annual,
	}, nil
}

// socialSecurityTax is the Social Security due on wages when prior wages were
// already paid this year.
func socialSecurityTax(prior, wages float64) float64 {
	taxable := math.Min(wages, socialSecurityWageBase-prior)
	if taxable < 0 {
		taxable = 0
	}
	return taxable * socialSecurityRate
}

func medicareTax(prior, wages float64) float64 {
	tax := wages * medicareRate
	if over := prior + wages - additionalMedicareFloor; over > 0 {
		tax += math.Min(over, wages) * additionalMedicareRate
	}
	return tax
}

func breakdown(gross, preTax, federal, socialSecurity, medicare, state float64) PaystubBreakdown {
	b := PaystubBreakdown{
		GrossPay:         roundCents(gross),
		PreTaxDeductions: roundCents(preTax),
		FederalIncomeTax: roundCents(federal),
		SocialSecurity:   roundCents(socialSecurity),
		Medicare:         roundCents(medicare),
		StateTax:         roundCents(state),
	}
	b.TotalDeductions = roundCents(b.PreTaxDeductions + b.FederalIncomeTax + b.SocialSecurity + b.Medicare + b.StateTax)
	b.NetPay = roundCents(b.GrossPay - b.TotalDeductions)
	return b
}
