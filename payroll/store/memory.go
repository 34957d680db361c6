// Package store provides payroll.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	settings     map[string]string
	holidays     []generic.Holiday
	brackets     []payroll.TaxBracket
	buckets      []payroll.RateBucket
	employees    map[generic.EmployeeID]payroll.Employee
	periods      map[generic.PeriodID]payroll.PayPeriod
	attendance   map[attendanceKey]payroll.AttendanceDay
	adjustments  map[generic.AdjustmentID]payroll.PayrollAdjustment
	calculations map[calcKey]payroll.CalculationRecord
}

type attendanceKey struct {
	EmployeeID generic.EmployeeID
	Date       generic.Date
}

type calcKey struct {
	EmployeeID generic.EmployeeID
	PeriodID   generic.PeriodID
}

var _ payroll.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		settings:     make(map[string]string),
		employees:    make(map[generic.EmployeeID]payroll.Employee),
		periods:      make(map[generic.PeriodID]payroll.PayPeriod),
		attendance:   make(map[attendanceKey]payroll.AttendanceDay),
		adjustments:  make(map[generic.AdjustmentID]payroll.PayrollAdjustment),
		calculations: make(map[calcKey]payroll.CalculationRecord),
	}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

func (m *Memory) LoadSettings(_ context.Context) (payroll.SettingsSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return payroll.NewSettingsSnapshot(m.settings), nil
}

func (m *Memory) ReplaceSettings(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = make(map[string]string, len(values))
	for k, v := range values {
		m.settings[k] = v
	}
	return nil
}

func (m *Memory) ListHolidays(_ context.Context) ([]generic.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]generic.Holiday(nil), m.holidays...), nil
}

func (m *Memory) ReplaceHolidays(_ context.Context, holidays []generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays = append([]generic.Holiday(nil), holidays...)
	return nil
}

func (m *Memory) ListTaxBrackets(_ context.Context) ([]payroll.TaxBracket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]payroll.TaxBracket(nil), m.brackets...), nil
}

func (m *Memory) ReplaceTaxBrackets(_ context.Context, brackets []payroll.TaxBracket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.brackets = append([]payroll.TaxBracket(nil), brackets...)
	return nil
}

func (m *Memory) ListRateBuckets(_ context.Context) ([]payroll.RateBucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]payroll.RateBucket(nil), m.buckets...), nil
}

func (m *Memory) ReplaceRateBuckets(_ context.Context, buckets []payroll.RateBucket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets = append([]payroll.RateBucket(nil), buckets...)
	return nil
}

// =============================================================================
// EMPLOYEES & PERIODS
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, e payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id generic.EmployeeID) (payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return payroll.Employee{}, generic.ErrNotFound
	}
	return e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SavePeriod(_ context.Context, p payroll.PayPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[p.ID] = p
	return nil
}

func (m *Memory) GetPeriod(_ context.Context, id generic.PeriodID) (payroll.PayPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.periods[id]
	if !ok {
		return payroll.PayPeriod{}, generic.ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListPeriods(_ context.Context) ([]payroll.PayPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.PayPeriod, 0, len(m.periods))
	for _, p := range m.periods {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Start.Before(out[j].Period.Start) })
	return out, nil
}

// =============================================================================
// ATTENDANCE & ADJUSTMENTS
// =============================================================================

// SaveAttendance upserts by employee and date.
func (m *Memory) SaveAttendance(_ context.Context, days []payroll.AttendanceDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range days {
		m.attendance[attendanceKey{EmployeeID: d.EmployeeID, Date: d.Date}] = d
	}
	return nil
}

func (m *Memory) ListAttendance(_ context.Context, employeeID generic.EmployeeID, period generic.Period) ([]payroll.AttendanceDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.AttendanceDay
	for k, d := range m.attendance {
		if k.EmployeeID == employeeID && period.Contains(k.Date) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) SaveAdjustment(_ context.Context, a payroll.PayrollAdjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments[a.ID] = a
	return nil
}

func (m *Memory) ListAdjustments(_ context.Context, periodID generic.PeriodID, employeeID *generic.EmployeeID) ([]payroll.PayrollAdjustment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.PayrollAdjustment
	for _, a := range m.adjustments {
		if a.PeriodID != periodID {
			continue
		}
		if employeeID != nil && a.EmployeeID != *employeeID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// CALCULATIONS
// =============================================================================

func (m *Memory) SaveCalculation(_ context.Context, rec payroll.CalculationRecord, replace bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := calcKey{EmployeeID: rec.Calculation.EmployeeID, PeriodID: rec.Calculation.PeriodID}
	if _, exists := m.calculations[k]; exists && !replace {
		return generic.ErrDuplicateCalculation
	}
	m.calculations[k] = rec
	return nil
}

func (m *Memory) ListCalculations(_ context.Context, periodID generic.PeriodID) ([]payroll.CalculationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.CalculationRecord
	for k, rec := range m.calculations {
		if k.PeriodID == periodID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Calculation.EmployeeID < out[j].Calculation.EmployeeID })
	return out, nil
}

// Reset clears everything. For tests and demos.
func (m *Memory) Reset(_ context.Context) error {
	fresh := NewMemory()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = fresh.settings
	m.holidays = nil
	m.brackets = nil
	m.buckets = nil
	m.employees = fresh.employees
	m.periods = fresh.periods
	m.attendance = fresh.attendance
	m.adjustments = fresh.adjustments
	m.calculations = fresh.calculations
	return nil
}
