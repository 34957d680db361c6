package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// AdjustmentTotals partitions a period's adjustments by kind and flags.
type AdjustmentTotals struct {
	TaxableEarnings        decimal.Decimal
	NonTaxableEarnings     decimal.Decimal
	TaxableDeductions      decimal.Decimal
	NonTaxableDeductions   decimal.Decimal
	NssfAssessableEarnings decimal.Decimal
}

// Earnings is every adjustment-sourced earning.
func (t AdjustmentTotals) Earnings() decimal.Decimal {
	return t.TaxableEarnings.Add(t.NonTaxableEarnings)
}

// Deductions is every adjustment-sourced deduction.
func (t AdjustmentTotals) Deductions() decimal.Decimal {
	return t.TaxableDeductions.Add(t.NonTaxableDeductions)
}

// Aggregate sums adjustments into their partitions. Order does not matter.
// The NSSF flag only has meaning on earnings.
func Aggregate(adjustments []PayrollAdjustment) AdjustmentTotals {
	t := AdjustmentTotals{
		TaxableEarnings:        decimal.Zero,
		NonTaxableEarnings:     decimal.Zero,
		TaxableDeductions:      decimal.Zero,
		NonTaxableDeductions:   decimal.Zero,
		NssfAssessableEarnings: decimal.Zero,
	}
	for _, a := range adjustments {
		switch a.Kind {
		case KindEarning:
			if a.IsTaxable {
				t.TaxableEarnings = t.TaxableEarnings.Add(a.Amount)
			} else {
				t.NonTaxableEarnings = t.NonTaxableEarnings.Add(a.Amount)
			}
			if a.IsNssfAssessable {
				t.NssfAssessableEarnings = t.NssfAssessableEarnings.Add(a.Amount)
			}
		case KindDeduction:
			if a.IsTaxable {
				t.TaxableDeductions = t.TaxableDeductions.Add(a.Amount)
			} else {
				t.NonTaxableDeductions = t.NonTaxableDeductions.Add(a.Amount)
			}
		}
	}
	return t
}

// ValidateAdjustment rejects adjustments the aggregator cannot interpret.
func ValidateAdjustment(a PayrollAdjustment) error {
	if a.Kind != KindEarning && a.Kind != KindDeduction {
		return &generic.AdjustmentError{ID: a.ID, Reason: "kind must be earning or deduction"}
	}
	if a.Amount.IsNegative() {
		return &generic.AdjustmentError{ID: a.ID, Reason: "amount must not be negative"}
	}
	return nil
}
