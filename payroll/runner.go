/*
runner.go - Payroll run over every employee of a period

PURPOSE:
  Loads the configuration snapshot once, builds one Engine, and calculates
  every employee of the period with a bounded worker pool.

FAILURE POLICY:
  - Configuration cannot be loaded or validated: the run aborts before any
    employee is calculated.
  - An employee's calculation returns a ConfigurationError (e.g. negative
    net): nothing from the run is saved and Run returns ErrConfiguration.
    Results are not trusted until the operator fixes it.
  - Any other per-employee failure (bad adjustment, store read error) is
    recorded in the report and the rest of the batch continues.
  - Malformed attendance is not a failure; skipped days are logged and
    reported per employee.

CONCURRENCY:
  Calculations run in parallel (Workers goroutines). Results are saved
  sequentially once every calculation succeeded or failed. Cancelling ctx
  stops workers from picking up further employees.

SEE ALSO:
  - engine.go: Engine.Calculate
  - api/handlers.go: RunPeriod endpoint
*/
package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/payroll-engine/generic"
)

const defaultWorkers = 4

// Runner calculates and persists a whole period.
type Runner struct {
	Store   Store
	Logger  *slog.Logger
	Workers int

	// Replace overwrites calculations that already exist for the period.
	Replace bool

	// Now is the clock used for CreatedAt; time.Now when nil.
	Now func() time.Time
}

// NewRunner creates a runner with default settings.
func NewRunner(store Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Store: store, Logger: logger, Workers: defaultWorkers}
}

// EmployeeFailure is one employee that could not be calculated or saved.
type EmployeeFailure struct {
	EmployeeID generic.EmployeeID
	Err        error
}

// RunReport summarizes a run.
type RunReport struct {
	RunID             string
	PeriodID          generic.PeriodID
	Results           []CalculationRecord
	Failures          []EmployeeFailure
	SkippedAttendance map[generic.EmployeeID][]generic.Date
}

type outcome struct {
	employee Employee
	calc     SalaryCalculation
	err      error
}

// Run calculates every employee for periodID and saves the results.
func (r *Runner) Run(ctx context.Context, periodID generic.PeriodID) (*RunReport, error) {
	report := &RunReport{
		RunID:             uuid.NewString(),
		PeriodID:          periodID,
		SkippedAttendance: make(map[generic.EmployeeID][]generic.Date),
	}
	log := r.logger().With(slog.String("run_id", report.RunID), slog.String("period_id", string(periodID)))

	period, err := r.Store.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("load period: %w", err)
	}
	cfg, err := LoadConfig(ctx, r.Store)
	if err != nil {
		log.Error("payroll configuration rejected", slog.Any("error", err))
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		log.Error("payroll configuration rejected", slog.Any("error", err))
		return nil, err
	}
	employees, err := r.Store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	log.Info("payroll run started", slog.Int("employees", len(employees)), slog.String("period", period.Period.String()))
	outcomes := r.calculateAll(ctx, engine, period, employees)

	var configErrs []error
	for _, o := range outcomes {
		switch {
		case o.err == nil:
			if len(o.calc.Overtime.SkippedDays) > 0 {
				report.SkippedAttendance[o.employee.ID] = o.calc.Overtime.SkippedDays
				log.Warn("malformed attendance skipped",
					slog.String("employee_id", string(o.employee.ID)),
					slog.Int("days", len(o.calc.Overtime.SkippedDays)))
			}
		case generic.IsConfigurationError(o.err):
			configErrs = append(configErrs, o.err)
			report.Failures = append(report.Failures, EmployeeFailure{EmployeeID: o.employee.ID, Err: o.err})
		default:
			report.Failures = append(report.Failures, EmployeeFailure{EmployeeID: o.employee.ID, Err: o.err})
			log.Error("employee calculation failed", slog.String("employee_id", string(o.employee.ID)), slog.Any("error", o.err))
		}
	}
	if len(configErrs) > 0 {
		err := errors.Join(configErrs...)
		log.Error("payroll run aborted, nothing saved", slog.Any("error", err))
		return report, err
	}

	now := r.now()
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		rec := CalculationRecord{
			ID:          generic.CalculationID(uuid.NewString()),
			RunID:       report.RunID,
			CreatedAt:   now,
			Calculation: o.calc,
		}
		if err := r.Store.SaveCalculation(ctx, rec, r.Replace); err != nil {
			report.Failures = append(report.Failures, EmployeeFailure{EmployeeID: o.employee.ID, Err: err})
			log.Error("saving calculation failed", slog.String("employee_id", string(o.employee.ID)), slog.Any("error", err))
			continue
		}
		report.Results = append(report.Results, rec)
	}

	log.Info("payroll run finished", slog.Int("calculated", len(report.Results)), slog.Int("failed", len(report.Failures)))
	return report, nil
}

func (r *Runner) calculateAll(ctx context.Context, engine *Engine, period PayPeriod, employees []Employee) []outcome {
	workers := r.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	jobs := make(chan int)
	outcomes := make([]outcome, len(employees))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = r.calculateOne(ctx, engine, period, employees[i])
			}
		}()
	}

feed:
	for i := range employees {
		select {
		case <-ctx.Done():
			for j := i; j < len(employees); j++ {
				outcomes[j] = outcome{employee: employees[j], err: ctx.Err()}
			}
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	sort.SliceStable(outcomes, func(i, j int) bool { return outcomes[i].employee.ID < outcomes[j].employee.ID })
	return outcomes
}

func (r *Runner) calculateOne(ctx context.Context, engine *Engine, period PayPeriod, employee Employee) outcome {
	attendance, err := r.Store.ListAttendance(ctx, employee.ID, period.Period)
	if err != nil {
		return outcome{employee: employee, err: fmt.Errorf("load attendance: %w", err)}
	}
	empID := employee.ID
	adjustments, err := r.Store.ListAdjustments(ctx, period.ID, &empID)
	if err != nil {
		return outcome{employee: employee, err: fmt.Errorf("load adjustments: %w", err)}
	}
	calc, err := engine.Calculate(Input{
		Employee:    employee,
		Period:      period,
		Attendance:  attendance,
		Adjustments: adjustments,
	})
	return outcome{employee: employee, calc: calc, err: err}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now()
}
