/*
store.go - Persistence interface for payroll snapshots and results

PURPOSE:
  Defines what the run orchestrator and the HTTP layer need from storage.
  The engine itself never sees a Store: callers load snapshots through it,
  hand them to the engine, and persist the returned SalaryCalculation.

SNAPSHOTS:
  Settings, holidays, tax brackets and rate buckets are read as a whole and
  turned into a Config once per run by LoadConfig. Replace* methods swap a
  whole table atomically so a run never observes half an update.

CALCULATIONS:
  One calculation per employee and period. SaveCalculation rejects a second
  one with ErrDuplicateCalculation unless replace is set.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - payroll/store/memory.go: In-memory for tests and demos
*/
package payroll

import (
	"context"
	"time"

	"github.com/warp/payroll-engine/generic"
)

// Store persists payroll inputs, configuration and results.
type Store interface {
	// Configuration snapshots
	LoadSettings(ctx context.Context) (SettingsSnapshot, error)
	ReplaceSettings(ctx context.Context, values map[string]string) error
	ListHolidays(ctx context.Context) ([]generic.Holiday, error)
	ReplaceHolidays(ctx context.Context, holidays []generic.Holiday) error
	ListTaxBrackets(ctx context.Context) ([]TaxBracket, error)
	ReplaceTaxBrackets(ctx context.Context, brackets []TaxBracket) error
	ListRateBuckets(ctx context.Context) ([]RateBucket, error)
	ReplaceRateBuckets(ctx context.Context, buckets []RateBucket) error

	// Employees and periods
	SaveEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id generic.EmployeeID) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	SavePeriod(ctx context.Context, p PayPeriod) error
	GetPeriod(ctx context.Context, id generic.PeriodID) (PayPeriod, error)
	ListPeriods(ctx context.Context) ([]PayPeriod, error)

	// Attendance and adjustments
	SaveAttendance(ctx context.Context, days []AttendanceDay) error
	ListAttendance(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]AttendanceDay, error)
	SaveAdjustment(ctx context.Context, a PayrollAdjustment) error
	ListAdjustments(ctx context.Context, periodID generic.PeriodID, employeeID *generic.EmployeeID) ([]PayrollAdjustment, error)

	// Results
	SaveCalculation(ctx context.Context, rec CalculationRecord, replace bool) error
	ListCalculations(ctx context.Context, periodID generic.PeriodID) ([]CalculationRecord, error)
}

// CalculationRecord is a persisted SalaryCalculation.
type CalculationRecord struct {
	ID          generic.CalculationID
	RunID       string
	CreatedAt   time.Time
	Calculation SalaryCalculation
}

// LoadConfig reads every configuration snapshot and validates it.
// Validation failures are ConfigurationErrors.
func LoadConfig(ctx context.Context, s Store) (Config, error) {
	settings, err := s.LoadSettings(ctx)
	if err != nil {
		return Config{}, err
	}
	holidays, err := s.ListHolidays(ctx)
	if err != nil {
		return Config{}, err
	}
	brackets, err := s.ListTaxBrackets(ctx)
	if err != nil {
		return Config{}, err
	}
	buckets, err := s.ListRateBuckets(ctx)
	if err != nil {
		return Config{}, err
	}

	taxes, err := NewTaxTable(brackets)
	if err != nil {
		return Config{}, err
	}
	rates, err := NewRateTable(buckets)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Settings: settings,
		Taxes:    taxes,
		Rates:    rates,
		Holidays: generic.NewHolidaySet(holidays...),
	}, nil
}

// SeedConfig writes cfg into s, replacing whatever was there.
func SeedConfig(ctx context.Context, s Store, cfg Config) error {
	if err := s.ReplaceSettings(ctx, cfg.Settings.Map()); err != nil {
		return err
	}
	if err := s.ReplaceHolidays(ctx, cfg.Holidays.List()); err != nil {
		return err
	}
	if err := s.ReplaceTaxBrackets(ctx, cfg.Taxes.Brackets()); err != nil {
		return err
	}
	return s.ReplaceRateBuckets(ctx, cfg.Rates.Buckets())
}
