// Package payroll implements the payroll calculation engine.
// It composes the generic value types into overtime, tax, NSSF and adjustment
// calculators and orchestrates them into one SalaryCalculation per employee
// per period.
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// DAY TYPE
// =============================================================================

// DayType classifies a calendar date for overtime purposes.
type DayType string

const (
	DayNormal  DayType = "normal"
	DayWeekend DayType = "weekend"
	DayHoliday DayType = "holiday"
)

// DayTypes lists every DayType in precedence order (lowest first).
var DayTypes = []DayType{DayNormal, DayWeekend, DayHoliday}

func (d DayType) Valid() bool {
	switch d {
	case DayNormal, DayWeekend, DayHoliday:
		return true
	}
	return false
}

// =============================================================================
// EMPLOYEE & PERIOD
// =============================================================================

// Employee is the slice of the employee record the engine needs.
type Employee struct {
	ID         generic.EmployeeID
	Name       string
	BaseSalary generic.Money // monthly, in the employee's contract currency
}

// PayPeriod is a payroll period as the caller identifies it.
type PayPeriod struct {
	ID     generic.PeriodID
	Period generic.Period
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AttendanceDay is one day's clock record. Either clock may be missing.
type AttendanceDay struct {
	EmployeeID generic.EmployeeID
	Date       generic.Date
	ClockIn    *time.Time
	ClockOut   *time.Time
}

// Worked returns the worked interval and whether it is usable.
// A record with a missing clock, or with clock-out not after clock-in, is not.
func (a AttendanceDay) Worked() (in, out time.Time, ok bool) {
	if a.ClockIn == nil || a.ClockOut == nil {
		return time.Time{}, time.Time{}, false
	}
	if !a.ClockOut.After(*a.ClockIn) {
		return time.Time{}, time.Time{}, false
	}
	return *a.ClockIn, *a.ClockOut, true
}

// AttendanceLog indexes one employee's attendance records by date.
// When two records share a date the later one in the input wins.
type AttendanceLog map[generic.Date]AttendanceDay

// NewAttendanceLog keeps the records of employeeID and those with no
// employee set. Records of any other employee are dropped before indexing.
func NewAttendanceLog(employeeID generic.EmployeeID, days []AttendanceDay) AttendanceLog {
	log := make(AttendanceLog, len(days))
	for _, d := range days {
		if d.EmployeeID != "" && d.EmployeeID != employeeID {
			continue
		}
		log[d.Date] = d
	}
	return log
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

type AdjustmentKind string

const (
	KindEarning   AdjustmentKind = "earning"
	KindDeduction AdjustmentKind = "deduction"
)

// PayrollAdjustment is an ad-hoc earning or deduction entered by HR before a
// run. Amount is expressed in the engine's base currency and is never negative;
// Kind carries the sign.
type PayrollAdjustment struct {
	ID               generic.AdjustmentID
	EmployeeID       generic.EmployeeID
	PeriodID         generic.PeriodID
	Name             string
	Kind             AdjustmentKind
	Amount           decimal.Decimal
	IsTaxable        bool
	IsNssfAssessable bool
}

// =============================================================================
// SALARY CALCULATION - Engine output
// =============================================================================

// SalaryCalculation is the immutable result of one engine run for one
// employee and period. Every amount is in Currency.
type SalaryCalculation struct {
	EmployeeID generic.EmployeeID
	PeriodID   generic.PeriodID
	Period     generic.Period
	Currency   generic.Currency

	// Rate used to convert the contract salary into Currency (1 when equal).
	ExchangeRate decimal.Decimal

	BaseSalary               decimal.Decimal
	OvertimePay              decimal.Decimal
	Allowances               decimal.Decimal
	GrossIncome              decimal.Decimal
	NssfBase                 decimal.Decimal
	NssfEmployeeDeduction    decimal.Decimal
	NssfEmployerContribution decimal.Decimal
	TaxableIncome            decimal.Decimal
	TaxDeduction             decimal.Decimal
	OtherDeductions          decimal.Decimal
	NetSalary                decimal.Decimal

	// Audit detail
	Overtime    OvertimeResult
	Tax         TaxResult
	Adjustments AdjustmentTotals
}

// TotalDeductions is everything withheld from the employee.
func (c SalaryCalculation) TotalDeductions() decimal.Decimal {
	return c.NssfEmployeeDeduction.Add(c.TaxDeduction).Add(c.OtherDeductions)
}

// EmployerCost is gross pay plus the employer's statutory contribution.
func (c SalaryCalculation) EmployerCost() decimal.Decimal {
	return c.GrossIncome.Add(c.NssfEmployerContribution)
}
