/*
Package sqlite provides a SQLite-backed implementation of payroll.Store.

PURPOSE:
  Persists configuration snapshots, employees, periods, attendance,
  adjustments and calculation results. In production, the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  settings:            Flat key/value payroll settings
  holidays:            Public holidays by date
  tax_brackets:        Progressive tax bands (ordered by sort_order)
  rate_buckets:        Overtime windows per day type
  employees:           Employee master data needed by the engine
  pay_periods:         Payroll periods
  attendance:          One clock record per employee per day (upserted)
  adjustments:         HR-entered earnings and deductions
  salary_calculations: One result per employee per period

DECIMALS:
  Every monetary value and rate is stored as TEXT and parsed with
  shopspring/decimal, so nothing passes through float64.

SNAPSHOT REPLACEMENT:
  Replace* methods delete and re-insert a whole configuration table inside
  one transaction, so a run never reads half an update.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The pool is limited to one connection
  so ":memory:" databases are shared by every query.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  runner := payroll.NewRunner(store, logger)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - payroll/store.go: Interface definition
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ payroll.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		date TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS tax_brackets (
		sort_order INTEGER PRIMARY KEY,
		min_amount TEXT NOT NULL,
		max_amount TEXT,
		rate TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rate_buckets (
		day_type TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		multiplier TEXT NOT NULL,
		PRIMARY KEY (day_type, start_time)
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		currency TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pay_periods (
		id TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attendance (
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL,
		clock_in TEXT,
		clock_out TEXT,
		PRIMARY KEY (employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS adjustments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		period_id TEXT NOT NULL REFERENCES pay_periods(id),
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		is_taxable BOOLEAN NOT NULL DEFAULT FALSE,
		is_nssf_assessable BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_adjustments_period_employee
		ON adjustments(period_id, employee_id);

	CREATE TABLE IF NOT EXISTS salary_calculations (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		period_id TEXT NOT NULL REFERENCES pay_periods(id),
		currency TEXT NOT NULL,
		gross_income TEXT NOT NULL,
		tax_deduction TEXT NOT NULL,
		nssf_employee_deduction TEXT NOT NULL,
		net_salary TEXT NOT NULL,
		detail_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(employee_id, period_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// replaceTable runs fn inside a transaction after clearing table.
func (s *Store) replaceTable(ctx context.Context, table string, fn func(tx execer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// =============================================================================
// CONFIGURATION SNAPSHOTS
// =============================================================================

func (s *Store) LoadSettings(ctx context.Context) (payroll.SettingsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return payroll.SettingsSnapshot{}, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return payroll.SettingsSnapshot{}, err
		}
		values[k] = v
	}
	return payroll.NewSettingsSnapshot(values), rows.Err()
}

func (s *Store) ReplaceSettings(ctx context.Context, values map[string]string) error {
	return s.replaceTable(ctx, "settings", func(tx execer) error {
		for k, v := range values {
			if _, err := tx.ExecContext(ctx, "INSERT INTO settings (key, value) VALUES (?, ?)", k, v); err != nil {
				return fmt.Errorf("failed to save setting %s: %w", k, err)
			}
		}
		return nil
	})
}

func (s *Store) ListHolidays(ctx context.Context) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT date, name FROM holidays ORDER BY date")
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var out []generic.Holiday
	for rows.Next() {
		var date, name string
		if err := rows.Scan(&date, &name); err != nil {
			return nil, err
		}
		d, err := generic.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", date, err)
		}
		out = append(out, generic.Holiday{Date: d, Name: name})
	}
	return out, rows.Err()
}

func (s *Store) ReplaceHolidays(ctx context.Context, holidays []generic.Holiday) error {
	return s.replaceTable(ctx, "holidays", func(tx execer) error {
		for _, h := range holidays {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO holidays (date, name) VALUES (?, ?) ON CONFLICT(date) DO UPDATE SET name = excluded.name",
				h.Date.String(), h.Name)
			if err != nil {
				return fmt.Errorf("failed to save holiday %s: %w", h.Date, err)
			}
		}
		return nil
	})
}

func (s *Store) ListTaxBrackets(ctx context.Context) ([]payroll.TaxBracket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT sort_order, min_amount, max_amount, rate FROM tax_brackets ORDER BY sort_order")
	if err != nil {
		return nil, fmt.Errorf("failed to query tax brackets: %w", err)
	}
	defer rows.Close()

	var out []payroll.TaxBracket
	for rows.Next() {
		var b payroll.TaxBracket
		var minAmount, rate string
		var maxAmount sql.NullString
		if err := rows.Scan(&b.SortOrder, &minAmount, &maxAmount, &rate); err != nil {
			return nil, err
		}
		if b.Min, err = parseDecimal("tax_brackets.min_amount", minAmount); err != nil {
			return nil, err
		}
		if b.Rate, err = parseDecimal("tax_brackets.rate", rate); err != nil {
			return nil, err
		}
		if maxAmount.Valid {
			m, err := parseDecimal("tax_brackets.max_amount", maxAmount.String)
			if err != nil {
				return nil, err
			}
			b.Max = &m
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) ReplaceTaxBrackets(ctx context.Context, brackets []payroll.TaxBracket) error {
	return s.replaceTable(ctx, "tax_brackets", func(tx execer) error {
		for _, b := range brackets {
			var maxAmount sql.NullString
			if b.Max != nil {
				maxAmount = nullString(b.Max.String())
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO tax_brackets (sort_order, min_amount, max_amount, rate) VALUES (?, ?, ?, ?)",
				b.SortOrder, b.Min.String(), maxAmount, b.Rate.String())
			if err != nil {
				if isUniqueConstraintError(err) {
					return generic.NewConfigurationError("tax_brackets", "duplicate sort order %d", b.SortOrder)
				}
				return fmt.Errorf("failed to save tax bracket %d: %w", b.SortOrder, err)
			}
		}
		return nil
	})
}

func (s *Store) ListRateBuckets(ctx context.Context) ([]payroll.RateBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT day_type, start_time, end_time, multiplier FROM rate_buckets ORDER BY day_type, start_time")
	if err != nil {
		return nil, fmt.Errorf("failed to query rate buckets: %w", err)
	}
	defer rows.Close()

	var out []payroll.RateBucket
	for rows.Next() {
		var dayType, start, end, multiplier string
		if err := rows.Scan(&dayType, &start, &end, &multiplier); err != nil {
			return nil, err
		}
		b := payroll.RateBucket{DayType: payroll.DayType(dayType)}
		if b.Start, err = generic.ParseTimeOfDay(start); err != nil {
			return nil, generic.NewConfigurationError("rate_buckets."+dayType, "%v", err)
		}
		if b.End, err = generic.ParseTimeOfDay(end); err != nil {
			return nil, generic.NewConfigurationError("rate_buckets."+dayType, "%v", err)
		}
		if b.Multiplier, err = parseDecimal("rate_buckets."+dayType, multiplier); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) ReplaceRateBuckets(ctx context.Context, buckets []payroll.RateBucket) error {
	return s.replaceTable(ctx, "rate_buckets", func(tx execer) error {
		for _, b := range buckets {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO rate_buckets (day_type, start_time, end_time, multiplier) VALUES (?, ?, ?, ?)",
				string(b.DayType), b.Start.String(), b.End.String(), b.Multiplier.String())
			if err != nil {
				if isUniqueConstraintError(err) {
					return generic.NewConfigurationError("rate_buckets."+string(b.DayType), "bucket %s overlaps another", b)
				}
				return fmt.Errorf("failed to save rate bucket %s: %w", b, err)
			}
		}
		return nil
	})
}

// =============================================================================
// EMPLOYEES & PERIODS
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, base_salary, currency, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			base_salary = excluded.base_salary,
			currency = excluded.currency
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Name,
		e.BaseSalary.Value.String(),
		string(e.BaseSalary.Currency),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id generic.EmployeeID) (payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, base_salary, currency FROM employees WHERE id = ?", id)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.Employee{}, generic.ErrNotFound
	}
	return e, err
}

// ListEmployees returns all employees ordered by ID.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, base_salary, currency FROM employees ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []payroll.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (payroll.Employee, error) {
	var e payroll.Employee
	var id, salary, currency string
	if err := row.Scan(&id, &e.Name, &salary, &currency); err != nil {
		return payroll.Employee{}, err
	}
	money, err := generic.ParseMoney(salary, generic.Currency(currency))
	if err != nil {
		return payroll.Employee{}, fmt.Errorf("employee %s salary: %w", id, err)
	}
	e.ID = generic.EmployeeID(id)
	e.BaseSalary = money
	return e, nil
}

func (s *Store) SavePeriod(ctx context.Context, p payroll.PayPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pay_periods (id, start_date, end_date) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET start_date = excluded.start_date, end_date = excluded.end_date
	`, p.ID, p.Period.Start.String(), p.Period.End.String())
	return err
}

func (s *Store) GetPeriod(ctx context.Context, id generic.PeriodID) (payroll.PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT id, start_date, end_date FROM pay_periods WHERE id = ?", id)
	p, err := scanPeriod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return payroll.PayPeriod{}, generic.ErrNotFound
	}
	return p, err
}

func (s *Store) ListPeriods(ctx context.Context) ([]payroll.PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, start_date, end_date FROM pay_periods ORDER BY start_date, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	var out []payroll.PayPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPeriod(row scanner) (payroll.PayPeriod, error) {
	var id, start, end string
	if err := row.Scan(&id, &start, &end); err != nil {
		return payroll.PayPeriod{}, err
	}
	startDate, err := generic.ParseDate(start)
	if err != nil {
		return payroll.PayPeriod{}, fmt.Errorf("period %s start: %w", id, err)
	}
	endDate, err := generic.ParseDate(end)
	if err != nil {
		return payroll.PayPeriod{}, fmt.Errorf("period %s end: %w", id, err)
	}
	return payroll.PayPeriod{
		ID:     generic.PeriodID(id),
		Period: generic.Period{Start: startDate, End: endDate},
	}, nil
}

// =============================================================================
// ATTENDANCE & ADJUSTMENTS
// =============================================================================

// SaveAttendance upserts records by employee and date in one transaction.
func (s *Store) SaveAttendance(ctx context.Context, days []payroll.AttendanceDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `
		INSERT INTO attendance (employee_id, date, clock_in, clock_out)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			clock_in = excluded.clock_in,
			clock_out = excluded.clock_out
	`
	for _, d := range days {
		_, err := sqlTx.ExecContext(ctx, query,
			d.EmployeeID, d.Date.String(), formatClock(d.ClockIn), formatClock(d.ClockOut))
		if err != nil {
			if isForeignKeyError(err) {
				return fmt.Errorf("employee %s: %w", d.EmployeeID, generic.ErrNotFound)
			}
			return fmt.Errorf("failed to save attendance %s/%s: %w", d.EmployeeID, d.Date, err)
		}
	}
	return sqlTx.Commit()
}

func (s *Store) ListAttendance(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]payroll.AttendanceDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, date, clock_in, clock_out FROM attendance
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`, employeeID, period.Start.String(), period.End.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var out []payroll.AttendanceDay
	for rows.Next() {
		var empID, date string
		var clockIn, clockOut sql.NullString
		if err := rows.Scan(&empID, &date, &clockIn, &clockOut); err != nil {
			return nil, err
		}
		d := payroll.AttendanceDay{EmployeeID: generic.EmployeeID(empID)}
		if d.Date, err = generic.ParseDate(date); err != nil {
			return nil, err
		}
		if d.ClockIn, err = parseClock(clockIn); err != nil {
			return nil, err
		}
		if d.ClockOut, err = parseClock(clockOut); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) SaveAdjustment(ctx context.Context, a payroll.PayrollAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adjustments (id, employee_id, period_id, name, kind, amount, is_taxable, is_nssf_assessable)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			amount = excluded.amount,
			is_taxable = excluded.is_taxable,
			is_nssf_assessable = excluded.is_nssf_assessable
	`, a.ID, a.EmployeeID, a.PeriodID, a.Name, string(a.Kind), a.Amount.String(), a.IsTaxable, a.IsNssfAssessable)
	if isForeignKeyError(err) {
		return fmt.Errorf("adjustment %s: %w", a.ID, generic.ErrNotFound)
	}
	return err
}

func (s *Store) ListAdjustments(ctx context.Context, periodID generic.PeriodID, employeeID *generic.EmployeeID) ([]payroll.PayrollAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, period_id, name, kind, amount, is_taxable, is_nssf_assessable
		FROM adjustments WHERE period_id = ?`
	args := []any{periodID}
	if employeeID != nil {
		query += " AND employee_id = ?"
		args = append(args, *employeeID)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query adjustments: %w", err)
	}
	defer rows.Close()

	var out []payroll.PayrollAdjustment
	for rows.Next() {
		var a payroll.PayrollAdjustment
		var id, empID, perID, kind, amount string
		if err := rows.Scan(&id, &empID, &perID, &a.Name, &kind, &amount, &a.IsTaxable, &a.IsNssfAssessable); err != nil {
			return nil, err
		}
		a.ID = generic.AdjustmentID(id)
		a.EmployeeID = generic.EmployeeID(empID)
		a.PeriodID = generic.PeriodID(perID)
		a.Kind = payroll.AdjustmentKind(kind)
		if a.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("adjustment %s amount: %w", id, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// CALCULATIONS
// =============================================================================

// SaveCalculation stores the summary columns plus the full breakdown as JSON.
func (s *Store) SaveCalculation(ctx context.Context, rec payroll.CalculationRecord, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	detail, err := json.Marshal(rec.Calculation)
	if err != nil {
		return fmt.Errorf("failed to encode calculation: %w", err)
	}

	query := `
		INSERT INTO salary_calculations
		(id, run_id, employee_id, period_id, currency, gross_income, tax_deduction,
		 nssf_employee_deduction, net_salary, detail_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if replace {
		query += `
		ON CONFLICT(employee_id, period_id) DO UPDATE SET
			id = excluded.id,
			run_id = excluded.run_id,
			currency = excluded.currency,
			gross_income = excluded.gross_income,
			tax_deduction = excluded.tax_deduction,
			nssf_employee_deduction = excluded.nssf_employee_deduction,
			net_salary = excluded.net_salary,
			detail_json = excluded.detail_json,
			created_at = excluded.created_at
		`
	}

	c := rec.Calculation
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.RunID, c.EmployeeID, c.PeriodID, string(c.Currency),
		c.GrossIncome.String(), c.TaxDeduction.String(),
		c.NssfEmployeeDeduction.String(), c.NetSalary.String(),
		string(detail),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return generic.ErrDuplicateCalculation
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("calculation %s: %w", rec.ID, generic.ErrNotFound)
		}
		return fmt.Errorf("failed to save calculation: %w", err)
	}
	return nil
}

func (s *Store) ListCalculations(ctx context.Context, periodID generic.PeriodID) ([]payroll.CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, detail_json, created_at FROM salary_calculations
		WHERE period_id = ? ORDER BY employee_id
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculations: %w", err)
	}
	defer rows.Close()

	var out []payroll.CalculationRecord
	for rows.Next() {
		var rec payroll.CalculationRecord
		var id, detail, createdAt string
		if err := rows.Scan(&id, &rec.RunID, &detail, &createdAt); err != nil {
			return nil, err
		}
		rec.ID = generic.CalculationID(id)
		if err := json.Unmarshal([]byte(detail), &rec.Calculation); err != nil {
			return nil, fmt.Errorf("calculation %s: %w", id, err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("calculation %s: created_at: %w", id, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Reset clears all tables. For tests and demos.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"salary_calculations", "adjustments", "attendance", "pay_periods",
		"employees", "rate_buckets", "tax_brackets", "holidays", "settings",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(component, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, generic.NewConfigurationError(component, "not a number: %q", value)
	}
	return d, nil
}

func formatClock(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return nullString(t.Format(time.RFC3339Nano))
}

func parseClock(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, fmt.Errorf("clock %q: %w", v.String, err)
	}
	return &t, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
