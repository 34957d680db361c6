package payroll_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSeededStore holds the reference configuration, the January period and
// two employees with overtime.
func newSeededStore(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()

	require.NoError(t, payroll.SeedConfig(ctx, s, referenceConfig()))
	require.NoError(t, s.SavePeriod(ctx, januaryPeriod()))
	require.NoError(t, s.SaveEmployee(ctx, payroll.Employee{ID: "emp-b", BaseSalary: khr(20_800_000)}))
	require.NoError(t, s.SaveEmployee(ctx, payroll.Employee{ID: "emp-c", BaseSalary: khr(20_800_000)}))
	require.NoError(t, s.SaveAttendance(ctx, []payroll.AttendanceDay{
		worked("emp-b", 2, 8, 30, 19, 30),
		worked("emp-c", 5, 8, 0, 12, 0),
	}))
	return s
}

func newTestRunner(s payroll.Store) *payroll.Runner {
	r := payroll.NewRunner(s, discardLogger())
	r.Workers = 2
	r.Now = func() time.Time { return time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC) }
	return r
}

// =============================================================================
// RUNS
// =============================================================================

func TestRunner_CalculatesAndSavesEveryEmployee(t *testing.T) {
	// GIVEN: Two employees with attendance in January
	ctx := context.Background()
	s := newSeededStore(t)

	// WHEN: Running the period
	report, err := newTestRunner(s).Run(ctx, "2025-01")
	require.NoError(t, err)

	// THEN: Both results are saved under one run ID
	require.Len(t, report.Results, 2)
	assert.Empty(t, report.Failures)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, generic.EmployeeID("emp-b"), report.Results[0].Calculation.EmployeeID)
	assertDecimal(t, "300000", report.Results[0].Calculation.OvertimePay)
	assertDecimal(t, "1000000", report.Results[1].Calculation.OvertimePay)
	for _, rec := range report.Results {
		assert.Equal(t, report.RunID, rec.RunID)
		assert.Equal(t, time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC), rec.CreatedAt)
	}

	saved, err := s.ListCalculations(ctx, "2025-01")
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestRunner_DuplicateRunNeedsReplace(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)
	runner := newTestRunner(s)

	_, err := runner.Run(ctx, "2025-01")
	require.NoError(t, err)

	// WHEN: Running again without Replace
	report, err := runner.Run(ctx, "2025-01")
	require.NoError(t, err)

	// THEN: Each employee fails with a duplicate
	assert.Empty(t, report.Results)
	require.Len(t, report.Failures, 2)
	for _, f := range report.Failures {
		assert.ErrorIs(t, f.Err, generic.ErrDuplicateCalculation)
	}

	// WHEN: Running again with Replace
	runner.Replace = true
	report, err = runner.Run(ctx, "2025-01")
	require.NoError(t, err)

	// THEN: The results are overwritten
	assert.Len(t, report.Results, 2)
	saved, err := s.ListCalculations(ctx, "2025-01")
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, report.RunID, saved[0].RunID)
}

func TestRunner_ConfigurationErrorSavesNothing(t *testing.T) {
	// GIVEN: One employee whose deductions exceed their pay
	ctx := context.Background()
	s := newSeededStore(t)
	require.NoError(t, s.SaveEmployee(ctx, payroll.Employee{ID: "emp-z", BaseSalary: khr(100_000)}))
	require.NoError(t, s.SaveAdjustment(ctx, payroll.PayrollAdjustment{
		ID: "advance", EmployeeID: "emp-z", PeriodID: "2025-01",
		Kind: payroll.KindDeduction, Amount: decimal.NewFromInt(500_000),
	}))

	// WHEN: Running the period
	report, err := newTestRunner(s).Run(ctx, "2025-01")

	// THEN: The run fails as a whole
	require.Error(t, err)
	assert.True(t, generic.IsConfigurationError(err))
	require.NotNil(t, report)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, generic.EmployeeID("emp-z"), report.Failures[0].EmployeeID)

	saved, err := s.ListCalculations(ctx, "2025-01")
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestRunner_InvalidAdjustmentOnlyFailsThatEmployee(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)
	require.NoError(t, s.SaveAdjustment(ctx, payroll.PayrollAdjustment{
		ID: "weird", EmployeeID: "emp-c", PeriodID: "2025-01",
		Kind: "bonus", Amount: decimal.NewFromInt(1),
	}))

	report, err := newTestRunner(s).Run(ctx, "2025-01")
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, generic.EmployeeID("emp-b"), report.Results[0].Calculation.EmployeeID)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, generic.EmployeeID("emp-c"), report.Failures[0].EmployeeID)
	assert.ErrorIs(t, report.Failures[0].Err, generic.ErrInvalidAdjustment)
}

func TestRunner_ReportsSkippedAttendance(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)
	require.NoError(t, s.SaveAttendance(ctx, []payroll.AttendanceDay{
		{EmployeeID: "emp-b", Date: jan(13), ClockIn: clockAt(13, 9, 0)},
	}))

	report, err := newTestRunner(s).Run(ctx, "2025-01")
	require.NoError(t, err)

	assert.Equal(t, []generic.Date{jan(13)}, report.SkippedAttendance["emp-b"])
	assert.NotContains(t, report.SkippedAttendance, generic.EmployeeID("emp-c"))
}

func TestRunner_SetupErrors(t *testing.T) {
	ctx := context.Background()

	// Unknown period
	_, err := newTestRunner(newSeededStore(t)).Run(ctx, "1999-12")
	assert.ErrorIs(t, err, generic.ErrNotFound)

	// No configuration at all
	empty := store.NewMemory()
	require.NoError(t, empty.SavePeriod(ctx, januaryPeriod()))
	_, err = newTestRunner(empty).Run(ctx, "2025-01")
	assert.True(t, generic.IsConfigurationError(err))
}

// =============================================================================
// CONFIGURATION ROUND TRIP
// =============================================================================

func TestSeedConfig_LoadConfigRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, payroll.SeedConfig(ctx, s, referenceConfig()))

	cfg, err := payroll.LoadConfig(ctx, s)
	require.NoError(t, err)

	assert.Equal(t, payroll.DefaultSettings().Map(), cfg.Settings.Map())
	assert.Len(t, cfg.Taxes.Brackets(), 6)
	assert.Len(t, cfg.Rates.Buckets(), 3)
	assert.True(t, cfg.Holidays.Contains(jan(6)))
}
