package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func jan(day int) generic.Date { return generic.NewDate(2025, time.January, day) }

func clockAt(day, hour, minute int) *time.Time {
	t := time.Date(2025, time.January, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func januaryPeriod() payroll.PayPeriod {
	return payroll.PayPeriod{ID: "2025-01", Period: generic.MonthPeriod(2025, time.January)}
}

// seedEmployeeAndPeriod satisfies the foreign keys of attendance, adjustments
// and calculations.
func seedEmployeeAndPeriod(t *testing.T, store *sqlite.Store) {
	ctx := context.Background()
	require.NoError(t, store.SaveEmployee(ctx, payroll.Employee{
		ID:         "emp-1",
		Name:       "Sokha Chan",
		BaseSalary: generic.MustParseMoney("1500.50", generic.USD),
	}))
	require.NoError(t, store.SavePeriod(ctx, januaryPeriod()))
}

// =============================================================================
// CONFIGURATION
// =============================================================================

func TestStore_ConfigurationRoundTrip(t *testing.T) {
	// GIVEN: The default configuration with one holiday
	store := newTestStore(t)
	ctx := context.Background()
	cfg := payroll.DefaultConfig()
	cfg.Holidays = generic.NewHolidaySet(generic.Holiday{Date: jan(6), Name: "Victory over Genocide Day"})

	// WHEN: Seeding and loading it back
	require.NoError(t, payroll.SeedConfig(ctx, store, cfg))
	loaded, err := payroll.LoadConfig(ctx, store)
	require.NoError(t, err)

	// THEN: Every snapshot survives, decimals exactly
	assert.Equal(t, cfg.Settings.Map(), loaded.Settings.Map())
	assert.Equal(t, cfg.Holidays.List(), loaded.Holidays.List())

	want, got := cfg.Taxes.Brackets(), loaded.Taxes.Brackets()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].SortOrder, got[i].SortOrder)
		assert.True(t, want[i].Min.Equal(got[i].Min))
		assert.True(t, want[i].Rate.Equal(got[i].Rate))
		if want[i].Max == nil {
			assert.Nil(t, got[i].Max)
		} else {
			require.NotNil(t, got[i].Max)
			assert.True(t, want[i].Max.Equal(*got[i].Max))
		}
	}

	buckets := loaded.Rates.Buckets()
	require.Len(t, buckets, 3)
	assert.Equal(t, payroll.DayNormal, buckets[0].DayType)
	assert.Equal(t, generic.NewTimeOfDay(22, 0), buckets[0].End)
	assert.True(t, buckets[0].Multiplier.Equal(decimal.RequireFromString("1.5")))
}

func TestStore_ReplaceSettingsDropsOldKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceSettings(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, store.ReplaceSettings(ctx, map[string]string{"b": "3"}))

	snapshot, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b": "3"}, snapshot.Map())
}

// =============================================================================
// EMPLOYEES & PERIODS
// =============================================================================

func TestStore_EmployeesAndPeriods(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployeeAndPeriod(t, store)

	emp, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Sokha Chan", emp.Name)
	assert.Equal(t, generic.USD, emp.BaseSalary.Currency)
	assert.True(t, emp.BaseSalary.Value.Equal(decimal.RequireFromString("1500.50")))

	period, err := store.GetPeriod(ctx, "2025-01")
	require.NoError(t, err)
	assert.Equal(t, januaryPeriod().Period, period.Period)

	_, err = store.GetEmployee(ctx, "ghost")
	assert.ErrorIs(t, err, generic.ErrNotFound)
	_, err = store.GetPeriod(ctx, "ghost")
	assert.ErrorIs(t, err, generic.ErrNotFound)

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 1)
	periods, err := store.ListPeriods(ctx)
	require.NoError(t, err)
	assert.Len(t, periods, 1)
}

// =============================================================================
// ATTENDANCE & ADJUSTMENTS
// =============================================================================

func TestStore_AttendanceUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployeeAndPeriod(t, store)

	// GIVEN: A complete record and one missing its clock-out
	require.NoError(t, store.SaveAttendance(ctx, []payroll.AttendanceDay{
		{EmployeeID: "emp-1", Date: jan(2), ClockIn: clockAt(2, 8, 30), ClockOut: clockAt(2, 17, 30)},
		{EmployeeID: "emp-1", Date: jan(3), ClockIn: clockAt(3, 8, 30)},
	}))

	// WHEN: The first day is corrected
	require.NoError(t, store.SaveAttendance(ctx, []payroll.AttendanceDay{
		{EmployeeID: "emp-1", Date: jan(2), ClockIn: clockAt(2, 8, 30), ClockOut: clockAt(2, 19, 30)},
	}))

	// THEN: The correction replaced the record and the missing clock stays missing
	days, err := store.ListAttendance(ctx, "emp-1", januaryPeriod().Period)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.True(t, clockAt(2, 19, 30).Equal(*days[0].ClockOut))
	assert.NotNil(t, days[1].ClockIn)
	assert.Nil(t, days[1].ClockOut)
}

func TestStore_AttendanceForUnknownEmployee(t *testing.T) {
	store := newTestStore(t)
	err := store.SaveAttendance(context.Background(), []payroll.AttendanceDay{
		{EmployeeID: "ghost", Date: jan(2), ClockIn: clockAt(2, 8, 30)},
	})
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestStore_Adjustments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployeeAndPeriod(t, store)

	adj := payroll.PayrollAdjustment{
		ID:               "adj-1",
		EmployeeID:       "emp-1",
		PeriodID:         "2025-01",
		Name:             "Transport",
		Kind:             payroll.KindEarning,
		Amount:           decimal.RequireFromString("200000.25"),
		IsNssfAssessable: true,
	}
	require.NoError(t, store.SaveAdjustment(ctx, adj))

	emp := generic.EmployeeID("emp-1")
	got, err := store.ListAdjustments(ctx, "2025-01", &emp)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, adj.Name, got[0].Name)
	assert.Equal(t, adj.Kind, got[0].Kind)
	assert.True(t, adj.Amount.Equal(got[0].Amount))
	assert.False(t, got[0].IsTaxable)
	assert.True(t, got[0].IsNssfAssessable)

	other := generic.EmployeeID("emp-2")
	none, err := store.ListAdjustments(ctx, "2025-01", &other)
	require.NoError(t, err)
	assert.Empty(t, none)

	adj.ID = "adj-2"
	adj.PeriodID = "2099-01"
	assert.ErrorIs(t, store.SaveAdjustment(ctx, adj), generic.ErrNotFound)
}

// =============================================================================
// CALCULATIONS
// =============================================================================

func sampleRecord(id string) payroll.CalculationRecord {
	return payroll.CalculationRecord{
		ID:        generic.CalculationID(id),
		RunID:     "run-" + id,
		CreatedAt: time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC),
		Calculation: payroll.SalaryCalculation{
			EmployeeID:  "emp-1",
			PeriodID:    "2025-01",
			Period:      januaryPeriod().Period,
			Currency:    generic.KHR,
			GrossIncome: decimal.NewFromInt(21_100_000),
			NetSalary:   decimal.NewFromInt(18_979_600),
			Overtime: payroll.OvertimeResult{
				Pay:         decimal.NewFromInt(300_000),
				Hours:       decimal.NewFromInt(2),
				SkippedDays: []generic.Date{jan(13)},
			},
		},
	}
}

func TestStore_CalculationsAreUniquePerEmployeeAndPeriod(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployeeAndPeriod(t, store)

	require.NoError(t, store.SaveCalculation(ctx, sampleRecord("c1"), false))

	// WHEN: Saving a second result without replace
	err := store.SaveCalculation(ctx, sampleRecord("c2"), false)

	// THEN: It is rejected as a duplicate
	assert.ErrorIs(t, err, generic.ErrDuplicateCalculation)

	// WHEN: Saving with replace
	require.NoError(t, store.SaveCalculation(ctx, sampleRecord("c3"), true))

	// THEN: The stored result is the replacement, breakdown included
	got, err := store.ListCalculations(ctx, "2025-01")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, generic.CalculationID("c3"), got[0].ID)
	assert.Equal(t, "run-c3", got[0].RunID)
	assert.True(t, got[0].CreatedAt.Equal(sampleRecord("c3").CreatedAt))
	assert.True(t, got[0].Calculation.NetSalary.Equal(decimal.NewFromInt(18_979_600)))
	assert.True(t, got[0].Calculation.Overtime.Pay.Equal(decimal.NewFromInt(300_000)))
	assert.Equal(t, []generic.Date{jan(13)}, got[0].Calculation.Overtime.SkippedDays)
	assert.Equal(t, januaryPeriod().Period, got[0].Calculation.Period)
}

func TestStore_CorruptCreatedAtIsReported(t *testing.T) {
	// GIVEN: A stored calculation whose timestamp was damaged outside the store
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payroll.db")
	store, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	seedEmployeeAndPeriod(t, store)
	require.NoError(t, store.SaveCalculation(ctx, sampleRecord("c1"), false))

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx, `UPDATE salary_calculations SET created_at = 'yesterday'`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	// WHEN: Listing the period's calculations
	_, err = store.ListCalculations(ctx, "2025-01")

	// THEN: The damaged row is an error, not a zero timestamp
	assert.ErrorContains(t, err, "created_at")
}

func TestStore_RunnerEndToEnd(t *testing.T) {
	// GIVEN: A seeded database with overtime on a Sunday
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, payroll.SeedConfig(ctx, store, payroll.DefaultConfig()))
	require.NoError(t, store.SaveEmployee(ctx, payroll.Employee{ID: "emp-c", BaseSalary: generic.NewMoneyFromInt(20_800_000, generic.KHR)}))
	require.NoError(t, store.SavePeriod(ctx, januaryPeriod()))
	require.NoError(t, store.SaveAttendance(ctx, []payroll.AttendanceDay{
		{EmployeeID: "emp-c", Date: jan(5), ClockIn: clockAt(5, 8, 0), ClockOut: clockAt(5, 12, 0)},
	}))

	// WHEN: Running the period
	report, err := payroll.NewRunner(store, nil).Run(ctx, "2025-01")
	require.NoError(t, err)

	// THEN: The persisted result carries the weekend overtime
	require.Len(t, report.Results, 1)
	saved, err := store.ListCalculations(ctx, "2025-01")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].Calculation.OvertimePay.Equal(decimal.NewFromInt(1_000_000)))
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedEmployeeAndPeriod(t, store)
	require.NoError(t, payroll.SeedConfig(ctx, store, payroll.DefaultConfig()))

	require.NoError(t, store.Reset(ctx))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
	brackets, err := store.ListTaxBrackets(ctx)
	require.NoError(t, err)
	assert.Empty(t, brackets)
}
