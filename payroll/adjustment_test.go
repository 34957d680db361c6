package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// NSSF
// =============================================================================

func TestComputeNssf(t *testing.T) {
	ceiling := dec("1200000")
	rate := dec("0.02")

	cases := []struct {
		name     string
		base     string
		wantBase string
		wantEach string
	}{
		{name: "below ceiling", base: "1000000", wantBase: "1000000", wantEach: "20000"},
		{name: "at ceiling", base: "1200000", wantBase: "1200000", wantEach: "24000"},
		{name: "above ceiling", base: "20800000", wantBase: "1200000", wantEach: "24000"},
		{name: "negative base", base: "-5", wantBase: "0", wantEach: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := payroll.ComputeNssf(dec(tc.base), ceiling, rate, rate)
			assertDecimal(t, tc.wantBase, got.Base)
			assertDecimal(t, tc.wantEach, got.EmployeeDeduction)
			assertDecimal(t, tc.wantEach, got.EmployerContribution)
		})
	}
}

func TestNssfCalculator_RoundsToCurrencyUnit(t *testing.T) {
	nc := payroll.NssfCalculator{
		Settings: payroll.NssfSettings{Ceiling: dec("1200000"), EmployeeRate: dec("0.02"), EmployerRate: dec("0.025")},
		Currency: generic.KHR,
	}

	got := nc.Compute(dec("1000025"))

	// 20000.5 and 25000.625 round half away from zero
	assertDecimal(t, "20001", got.EmployeeDeduction)
	assertDecimal(t, "25001", got.EmployerContribution)
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

func TestAggregate_PartitionsByKindAndFlags(t *testing.T) {
	adjustments := []payroll.PayrollAdjustment{
		{ID: "a1", Kind: payroll.KindEarning, Amount: decimal.NewFromInt(500), IsTaxable: true, IsNssfAssessable: true},
		{ID: "a2", Kind: payroll.KindEarning, Amount: decimal.NewFromInt(200)},
		{ID: "a3", Kind: payroll.KindEarning, Amount: decimal.NewFromInt(50), IsNssfAssessable: true},
		{ID: "a4", Kind: payroll.KindDeduction, Amount: decimal.NewFromInt(30), IsTaxable: true},
		{ID: "a5", Kind: payroll.KindDeduction, Amount: decimal.NewFromInt(70), IsNssfAssessable: true},
	}

	got := payroll.Aggregate(adjustments)

	assertDecimal(t, "500", got.TaxableEarnings)
	assertDecimal(t, "250", got.NonTaxableEarnings)
	assertDecimal(t, "30", got.TaxableDeductions)
	assertDecimal(t, "70", got.NonTaxableDeductions)
	assertDecimal(t, "550", got.NssfAssessableEarnings, "the NSSF flag is ignored on deductions")
	assertDecimal(t, "750", got.Earnings())
	assertDecimal(t, "100", got.Deductions())
}

func TestAggregate_OrderDoesNotMatter(t *testing.T) {
	adjustments := []payroll.PayrollAdjustment{
		{ID: "a1", Kind: payroll.KindEarning, Amount: dec("0.1"), IsTaxable: true},
		{ID: "a2", Kind: payroll.KindEarning, Amount: dec("0.2"), IsTaxable: true},
		{ID: "a3", Kind: payroll.KindDeduction, Amount: dec("7")},
	}
	reversed := []payroll.PayrollAdjustment{adjustments[2], adjustments[1], adjustments[0]}

	a, b := payroll.Aggregate(adjustments), payroll.Aggregate(reversed)
	assert.True(t, a.TaxableEarnings.Equal(b.TaxableEarnings))
	assert.True(t, a.Deductions().Equal(b.Deductions()))
}

func TestAggregate_Empty(t *testing.T) {
	got := payroll.Aggregate(nil)
	assert.True(t, got.Earnings().IsZero())
	assert.True(t, got.Deductions().IsZero())
}

func TestValidateAdjustment(t *testing.T) {
	ok := payroll.PayrollAdjustment{ID: "a1", Kind: payroll.KindDeduction, Amount: decimal.Zero}
	assert.NoError(t, payroll.ValidateAdjustment(ok))

	badKind := payroll.PayrollAdjustment{ID: "a2", Kind: "bonus", Amount: decimal.NewFromInt(1)}
	assert.ErrorIs(t, payroll.ValidateAdjustment(badKind), generic.ErrInvalidAdjustment)

	negative := payroll.PayrollAdjustment{ID: "a3", Kind: payroll.KindEarning, Amount: decimal.NewFromInt(-1)}
	err := payroll.ValidateAdjustment(negative)
	var adjErr *generic.AdjustmentError
	if assert.ErrorAs(t, err, &adjErr) {
		assert.Equal(t, generic.AdjustmentID("a3"), adjErr.ID)
	}
}
