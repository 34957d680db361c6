/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	payroll data for testing and demos. Each scenario seeds the payroll
	configuration, employees, one pay period, attendance and adjustments so
	that POST /api/periods/{id}/run has something to calculate.

AVAILABLE SCENARIOS:

	reference-overtime: The four reference overtime cases (normal day inside
	                    the shift, normal-day evening, Sunday, Monday holiday)
	mixed-payroll:      USD contract, allowances and deductions, a night shift
	                    and a malformed clock record

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Seed payroll.DefaultConfig (plus scenario holidays)
 3. Create employees and the period
 4. Add attendance and adjustments

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "reference-overtime"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, store)
 3. Add case to loadScenario

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - payroll/presets.go: Seeded configuration
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

const scenarioPeriodID = "2025-01"

var scenarios = []ScenarioDTO{
	{
		ID:          "reference-overtime",
		Name:        "Reference Overtime",
		Description: "Shift-only day, weekday evening, Sunday and Monday holiday overtime",
		PeriodID:    scenarioPeriodID,
	},
	{
		ID:          "mixed-payroll",
		Name:        "Mixed Payroll",
		Description: "USD contract, allowances and deductions, night shift, malformed clock record",
		PeriodID:    scenarioPeriodID,
	},
}

// resetter is implemented by stores that can be wiped for demos.
type resetter interface {
	Reset(ctx context.Context) error
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the store and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	found := false
	for _, s := range scenarios {
		if s.ID == req.ScenarioID {
			found = true
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	if err := loadScenario(r.Context(), h.Store, req.ScenarioID); err != nil {
		h.fail(w, r, "Failed to load scenario", err)
		return
	}
	h.logger().Info("scenario loaded", "scenario_id", req.ScenarioID)

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "loaded",
		"scenario":  req.ScenarioID,
		"period_id": scenarioPeriodID,
	})
}

func loadScenario(ctx context.Context, store payroll.Store, id string) error {
	rs, ok := store.(resetter)
	if !ok {
		return errors.New("store does not support reset")
	}
	if err := rs.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	switch id {
	case "reference-overtime":
		return loadReferenceOvertimeScenario(ctx, store)
	case "mixed-payroll":
		return loadMixedPayrollScenario(ctx, store)
	default:
		return fmt.Errorf("scenario %q: %w", id, generic.ErrNotFound)
	}
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// seedScenarioBase writes the default configuration, a Monday holiday and
// the January 2025 period.
func seedScenarioBase(ctx context.Context, store payroll.Store) error {
	cfg := payroll.DefaultConfig()
	cfg.Holidays = generic.NewHolidaySet(
		generic.Holiday{Date: generic.NewDate(2025, time.January, 1), Name: "International New Year Day"},
		generic.Holiday{Date: generic.NewDate(2025, time.January, 6), Name: "Victory over Genocide Day"},
	)
	if err := payroll.SeedConfig(ctx, store, cfg); err != nil {
		return err
	}
	return store.SavePeriod(ctx, payroll.PayPeriod{
		ID:     scenarioPeriodID,
		Period: generic.MonthPeriod(2025, time.January),
	})
}

func clock(day, hour, minute int) *time.Time {
	t := time.Date(2025, time.January, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func workDay(emp generic.EmployeeID, day, inH, inM, outH, outM int) payroll.AttendanceDay {
	return payroll.AttendanceDay{
		EmployeeID: emp,
		Date:       generic.NewDate(2025, time.January, day),
		ClockIn:    clock(day, inH, inM),
		ClockOut:   clock(day, outH, outM),
	}
}

func loadReferenceOvertimeScenario(ctx context.Context, store payroll.Store) error {
	if err := seedScenarioBase(ctx, store); err != nil {
		return err
	}

	employees := []payroll.Employee{
		{ID: "emp-a", Name: "Sokha Chan", BaseSalary: generic.NewMoneyFromInt(8_000_000, generic.KHR)},
		{ID: "emp-b", Name: "Dara Kim", BaseSalary: generic.NewMoneyFromInt(20_800_000, generic.KHR)},
		{ID: "emp-c", Name: "Vanna Sok", BaseSalary: generic.NewMoneyFromInt(20_800_000, generic.KHR)},
		{ID: "emp-d", Name: "Bopha Lim", BaseSalary: generic.NewMoneyFromInt(20_800_000, generic.KHR)},
	}
	for _, e := range employees {
		if err := store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}

	return store.SaveAttendance(ctx, []payroll.AttendanceDay{
		workDay("emp-a", 2, 8, 30, 17, 30), // Thursday inside the shift: no overtime
		workDay("emp-b", 2, 8, 30, 19, 30), // Thursday evening: 2h x 1.5
		workDay("emp-c", 5, 8, 0, 12, 0),   // Sunday: 4h x 2.5
		workDay("emp-d", 6, 8, 0, 10, 0),   // Monday holiday: 2h x 2.5
	})
}

func loadMixedPayrollScenario(ctx context.Context, store payroll.Store) error {
	if err := seedScenarioBase(ctx, store); err != nil {
		return err
	}

	employees := []payroll.Employee{
		{ID: "emp-usd", Name: "Alex Morgan", BaseSalary: generic.MustParseMoney("1500", generic.USD)},
		{ID: "emp-night", Name: "Rith Heng", BaseSalary: generic.NewMoneyFromInt(5_200_000, generic.KHR)},
	}
	for _, e := range employees {
		if err := store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}

	night := workDay("emp-night", 9, 20, 0, 0, 0)
	night.ClockOut = clock(10, 2, 0) // runs past midnight
	broken := payroll.AttendanceDay{EmployeeID: "emp-night", Date: generic.NewDate(2025, time.January, 13), ClockIn: clock(13, 9, 0)}
	if err := store.SaveAttendance(ctx, []payroll.AttendanceDay{
		workDay("emp-usd", 3, 8, 30, 18, 30),
		workDay("emp-usd", 11, 7, 0, 11, 0),
		night,
		broken,
	}); err != nil {
		return err
	}

	adjustments := []payroll.PayrollAdjustment{
		{ID: "adj-transport", EmployeeID: "emp-usd", Name: "Transport allowance", Kind: payroll.KindEarning, Amount: decimal.NewFromInt(200_000), IsTaxable: false},
		{ID: "adj-bonus", EmployeeID: "emp-usd", Name: "Performance bonus", Kind: payroll.KindEarning, Amount: decimal.NewFromInt(400_000), IsTaxable: true, IsNssfAssessable: true},
		{ID: "adj-advance", EmployeeID: "emp-night", Name: "Salary advance", Kind: payroll.KindDeduction, Amount: decimal.NewFromInt(300_000)},
	}
	for _, a := range adjustments {
		a.PeriodID = scenarioPeriodID
		if err := store.SaveAdjustment(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
