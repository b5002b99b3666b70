package tools

import (
	"context"
	"testing"

	"github.com/hudsondigital/hds-platform/internal/log"
	apperrors "github.com/hudsondigital/hds-platform/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() CalculatorService {
	return NewCalculatorService(log.NewDiscardLogger())
}

func TestTip(t *testing.T) {
	response, err := newService().Tip(context.Background(), &TipRequest{BillAmount: 84.50, TipPercent: 18, Split: 3})
	require.NoError(t, err)

	assert.Equal(t, 15.21, response.TipAmount)
	assert.Equal(t, 99.71, response.Total)
	assert.Equal(t, 33.24, response.PerPerson)
	assert.Equal(t, 5.07, response.TipPerPerson)
}

func TestTip_DefaultsSplitToOne(t *testing.T) {
	response, err := newService().Tip(context.Background(), &TipRequest{BillAmount: 40, TipPercent: 0})
	require.NoError(t, err)

	assert.Equal(t, 1, response.Split)
	assert.Equal(t, 0.0, response.TipAmount)
	assert.Equal(t, 40.0, response.PerPerson)
}

func TestTip_Rejects(t *testing.T) {
	_, err := newService().Tip(context.Background(), &TipRequest{BillAmount: 0, TipPercent: 10})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))

	_, err = newService().Tip(context.Background(), &TipRequest{BillAmount: 10, TipPercent: 120})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
}

func TestFederalIncomeTax(t *testing.T) {
	cases := []struct {
		status  string
		taxable float64
		want    float64
	}{
		{"single", 0, 0},
		{"single", -500, 0},
		{"single", 11600, 1160},
		{"single", 45400, 5216},
		{"married_joint", 100000, 2320 + 8532 + 1254},
		{"head_of_household", 16550, 1655},
	}

	for _, tc := range cases {
		assert.InDelta(t, tc.want, federalIncomeTax(tc.status, tc.taxable), 0.001, "%s %.0f", tc.status, tc.taxable)
	}
}

func TestPaystub_Monthly(t *testing.T) {
	response, err := newService().Paystub(context.Background(), &PaystubRequest{
		GrossPay:     5000,
		PayFrequency: "monthly",
		FilingStatus: "single",
		StateTaxRate: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, 12, response.PeriodsPerYear)
	assert.Equal(t, TaxYear, response.TaxYear)
	assert.Equal(t, PaystubBreakdown{
		GrossPay:         5000,
		FederalIncomeTax: 434.67,
		SocialSecurity:   310,
		Medicare:         72.5,
		StateTax:         250,
		TotalDeductions:  1067.17,
		NetPay:           3932.83,
	}, response.PerPeriod)

	assert.Equal(t, 60000.0, response.Annual.GrossPay)
	assert.Equal(t, 5216.0, response.Annual.FederalIncomeTax)
	assert.Equal(t, 47194.0, response.Annual.NetPay)
	assert.Equal(t, 21.34, response.EffectiveTaxRate)
}

func TestPaystub_YearToDateCaps(t *testing.T) {
	t.Run("social security wage base partially used", func(t *testing.T) {
		response, err := newService().Paystub(context.Background(), &PaystubRequest{
			GrossPay: 5000, PayFrequency: "biweekly", FilingStatus: "single", YTDGross: 168000,
		})
		require.NoError(t, err)
		assert.Equal(t, 37.2, response.PerPeriod.SocialSecurity)
	})

	t.Run("past wage base and into additional medicare", func(t *testing.T) {
		response, err := newService().Paystub(context.Background(), &PaystubRequest{
			GrossPay: 5000, PayFrequency: "biweekly", FilingStatus: "single", YTDGross: 198000,
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, response.PerPeriod.SocialSecurity)
		assert.Equal(t, 99.5, response.PerPeriod.Medicare)
	})
}

func TestPaystub_AnnualFiguresApplyCaps(t *testing.T) {
	response, err := newService().Paystub(context.Background(), &PaystubRequest{
		GrossPay: 25000, PayFrequency: "monthly", FilingStatus: "single",
	})
	require.NoError(t, err)

	assert.Equal(t, 1550.0, response.PerPeriod.SocialSecurity)
	assert.Equal(t, 362.5, response.PerPeriod.Medicare)

	assert.Equal(t, 300000.0, response.Annual.GrossPay)
	assert.Equal(t, 10453.2, response.Annual.SocialSecurity)
	assert.Equal(t, 5250.0, response.Annual.Medicare)
}

func TestPaystub_PreTaxDeductionsReduceIncomeTaxOnly(t *testing.T) {
	response, err := newService().Paystub(context.Background(), &PaystubRequest{
		GrossPay: 5000, PayFrequency: "monthly", FilingStatus: "single", StateTaxRate: 5, PreTaxDeductions: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, 500.0, response.PerPeriod.PreTaxDeductions)
	assert.Equal(t, 310.0, response.PerPeriod.SocialSecurity)
	assert.Equal(t, 225.0, response.PerPeriod.StateTax)
	assert.Less(t, response.PerPeriod.FederalIncomeTax, 434.67)
}

func TestPaystub_Rejects(t *testing.T) {
	_, err := newService().Paystub(context.Background(), &PaystubRequest{GrossPay: 100, PayFrequency: "daily", FilingStatus: "single"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))

	_, err = newService().Paystub(context.Background(), &PaystubRequest{GrossPay: 100, PayFrequency: "weekly", FilingStatus: "single", PreTaxDeductions: 200})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest))
}
