package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// NssfResult is the statutory social-security contribution for a period.
// EmployerContribution is a company cost and is never withheld from pay.
type NssfResult struct {
	Base                 decimal.Decimal
	EmployeeDeduction    decimal.Decimal
	EmployerContribution decimal.Decimal
}

// ComputeNssf caps the assessable base at the ceiling and applies both rates.
// A negative base contributes nothing.
func ComputeNssf(assessableBase, ceiling, employeeRate, employerRate decimal.Decimal) NssfResult {
	base := decimal.Max(decimal.Zero, decimal.Min(assessableBase, ceiling))
	return NssfResult{
		Base:                 base,
		EmployeeDeduction:    base.Mul(employeeRate),
		EmployerContribution: base.Mul(employerRate),
	}
}

// NssfCalculator applies NssfSettings and rounds contributions to the
// currency's smallest unit.
type NssfCalculator struct {
	Settings NssfSettings
	Currency generic.Currency
}

func (nc NssfCalculator) Compute(assessableBase decimal.Decimal) NssfResult {
	r := ComputeNssf(assessableBase, nc.Settings.Ceiling, nc.Settings.EmployeeRate, nc.Settings.EmployerRate)
	r.EmployeeDeduction = generic.RoundTo(r.EmployeeDeduction, nc.Currency)
	r.EmployerContribution = generic.RoundTo(r.EmployerContribution, nc.Currency)
	return r
}
