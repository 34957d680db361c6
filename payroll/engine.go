/*
engine.go - Payroll calculation orchestration

PURPOSE:
  Combines the overtime, adjustment, NSSF and tax calculators into one
  SalaryCalculation per employee per period. The engine is pure: no I/O, no
  clock, no shared mutable state. The same inputs always produce the same
  result, and an Engine may be used from many goroutines at once.

CONFIGURATION:
  NewEngine resolves the settings snapshot and checks the tax table and rate
  table once. Configuration problems surface there as ConfigurationError,
  before any employee is calculated.

COMPUTATION ORDER:
  1. overtime        over the period, from the hourly rate of the base salary
  2. adjustments     aggregated into taxable / non-taxable / NSSF partitions
  3. gross           base + overtime + all adjustment earnings
  4. NSSF            on base + NSSF-assessable earnings, capped at the ceiling
  5. taxable income  base + overtime + taxable earnings - employee NSSF
  6. tax             progressive, on taxable income
  7. other deductions  all adjustment deductions
  8. net             gross - employee NSSF - tax - other deductions

  A negative net means the configuration (or the adjustments HR entered)
  cannot produce a payable salary; it is reported as a ConfigurationError.

CURRENCY:
  Salaries contracted in another currency are converted to the base currency
  with the configured exchange rate before step 1. Adjustments are already
  in the base currency.

SEE ALSO:
  - overtime.go, tax.go, nssf.go, adjustment.go: the calculators
  - runner.go: runs the engine over every employee of a period
*/
package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// Config is the configuration snapshot an Engine is built from.
type Config struct {
	Settings SettingsSnapshot
	Taxes    TaxTable
	Rates    RateTable
	Holidays generic.HolidaySet
}

// Input is one employee's data for one period.
type Input struct {
	Employee    Employee
	Period      PayPeriod
	Attendance  []AttendanceDay
	Adjustments []PayrollAdjustment
}

// Engine calculates salaries against a fixed, validated configuration.
type Engine struct {
	settings Settings
	taxes    TaxTable
	rates    RateTable
	holidays generic.HolidaySet
}

// NewEngine validates cfg and returns an engine bound to it.
func NewEngine(cfg Config) (*Engine, error) {
	settings, err := cfg.Settings.Resolve()
	if err != nil {
		return nil, err
	}
	if len(cfg.Taxes.brackets) == 0 {
		return nil, generic.NewConfigurationError("tax_brackets", "no tax table loaded")
	}
	return &Engine{
		settings: settings,
		taxes:    cfg.Taxes,
		rates:    cfg.Rates,
		holidays: cfg.Holidays,
	}, nil
}

// Settings returns the resolved settings the engine runs with.
func (e *Engine) Settings() Settings { return e.settings }

// Calculate runs the full computation for one employee and period.
func (e *Engine) Calculate(in Input) (SalaryCalculation, error) {
	if err := in.Period.Period.Validate(); err != nil {
		return SalaryCalculation{}, fmt.Errorf("period %s: %w", in.Period.ID, err)
	}
	if err := e.checkAdjustments(in); err != nil {
		return SalaryCalculation{}, err
	}

	currency := e.settings.BaseCurrency
	rate, err := e.settings.ExchangeRate(in.Employee.BaseSalary.Currency)
	if err != nil {
		return SalaryCalculation{}, err
	}
	if in.Employee.BaseSalary.IsNegative() {
		return SalaryCalculation{}, generic.NewConfigurationError("employee."+string(in.Employee.ID), "base salary must not be negative")
	}
	base := in.Employee.BaseSalary.Convert(rate, currency).Round().Value

	// 1. overtime
	overtime := OvertimeCalculator{
		Shift:    e.settings.Shift,
		Rates:    e.rates,
		Holidays: e.holidays,
		Currency: currency,
	}.Compute(in.Employee.ID, in.Period.Period, e.settings.HourlyRate(base), NewAttendanceLog(in.Employee.ID, in.Attendance))

	// 2. adjustments
	adj := Aggregate(in.Adjustments)

	// 3. gross
	gross := base.Add(overtime.Pay).Add(adj.Earnings())

	// 4. NSSF
	nssf := NssfCalculator{Settings: e.settings.Nssf, Currency: currency}.
		Compute(base.Add(adj.NssfAssessableEarnings))

	// 5-6. tax
	taxable := decimal.Max(decimal.Zero,
		base.Add(overtime.Pay).Add(adj.TaxableEarnings).Sub(nssf.EmployeeDeduction))
	taxResult := e.taxes.Compute(taxable)
	tax := generic.RoundTo(taxResult.Tax, currency)

	// 7-8. net
	other := adj.Deductions()
	net := gross.Sub(nssf.EmployeeDeduction).Sub(tax).Sub(other)
	if net.IsNegative() {
		return SalaryCalculation{}, generic.NewConfigurationError("net_salary",
			"net salary %s %s is negative for employee %s in period %s", net, currency, in.Employee.ID, in.Period.ID)
	}

	return SalaryCalculation{
		EmployeeID:               in.Employee.ID,
		PeriodID:                 in.Period.ID,
		Period:                   in.Period.Period,
		Currency:                 currency,
		ExchangeRate:             rate,
		BaseSalary:               base,
		OvertimePay:              overtime.Pay,
		Allowances:               adj.Earnings(),
		GrossIncome:              gross,
		NssfBase:                 nssf.Base,
		NssfEmployeeDeduction:    nssf.EmployeeDeduction,
		NssfEmployerContribution: nssf.EmployerContribution,
		TaxableIncome:            taxable,
		TaxDeduction:             tax,
		OtherDeductions:          other,
		NetSalary:                net,
		Overtime:                 overtime,
		Tax:                      taxResult,
		Adjustments:              adj,
	}, nil
}

func (e *Engine) checkAdjustments(in Input) error {
	for _, a := range in.Adjustments {
		if err := ValidateAdjustment(a); err != nil {
			return err
		}
		if a.EmployeeID != "" && a.EmployeeID != in.Employee.ID {
			return &generic.AdjustmentError{ID: a.ID, Reason: fmt.Sprintf("belongs to employee %s", a.EmployeeID)}
		}
		if a.PeriodID != "" && a.PeriodID != in.Period.ID {
			return &generic.AdjustmentError{ID: a.ID, Reason: fmt.Sprintf("belongs to period %s", a.PeriodID)}
		}
	}
	return nil
}

// Calculate builds an engine from cfg and runs it once.
func Calculate(cfg Config, in Input) (SalaryCalculation, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return SalaryCalculation{}, err
	}
	return engine.Calculate(in)
}
