/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

AMOUNTS:
  Every amount is a decimal string ("1500000", "12.50"). Request amounts
  also accept bare JSON numbers (factory.Scalar); they are parsed as
  decimals, never as floats. Rounded amounts are formatted to the currency's
  smallest unit; overtime line amounts are left unrounded.

TYPES:
  Employees:    EmployeeDTO, CreateEmployeeRequest
  Attendance:   AttendanceDTO, SaveAttendanceRequest
  Periods:      PeriodDTO, CreatePeriodRequest
  Adjustments:  AdjustmentDTO, CreateAdjustmentRequest
  Calculations: CalculationDTO, OvertimeLineDTO, TaxSliceDTO, CalculateRequest
  Runs:         RunResponse, FailureDTO
  Scenarios:    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: ConfigDocument for /api/config
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	BaseSalary string `json:"base_salary"`
	Currency   string `json:"currency"`
}

// CreateEmployeeRequest creates or updates an employee. ID is generated when empty.
type CreateEmployeeRequest struct {
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name"`
	BaseSalary factory.Scalar `json:"base_salary"`
	Currency   string         `json:"currency,omitempty"`
}

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         string(e.ID),
		Name:       e.Name,
		BaseSalary: e.BaseSalary.Value.String(),
		Currency:   string(e.BaseSalary.Currency),
	}
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// AttendanceDTO is one day's clock record. Clocks are RFC 3339 instants.
type AttendanceDTO struct {
	Date     string     `json:"date"`
	ClockIn  *time.Time `json:"clock_in"`
	ClockOut *time.Time `json:"clock_out"`
}

// SaveAttendanceRequest upserts records for the employee in the URL.
type SaveAttendanceRequest struct {
	Records []AttendanceDTO `json:"records"`
}

func toAttendanceDTO(d payroll.AttendanceDay) AttendanceDTO {
	return AttendanceDTO{Date: d.Date.String(), ClockIn: d.ClockIn, ClockOut: d.ClockOut}
}

// =============================================================================
// PERIODS
// =============================================================================

// PeriodDTO represents a pay period. Start and End are inclusive dates.
type PeriodDTO struct {
	ID    string `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// CreatePeriodRequest creates a pay period. ID is generated when empty.
type CreatePeriodRequest struct {
	ID    string `json:"id,omitempty"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func toPeriodDTO(p payroll.PayPeriod) PeriodDTO {
	return PeriodDTO{ID: string(p.ID), Start: p.Period.Start.String(), End: p.Period.End.String()}
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

// AdjustmentDTO represents an HR adjustment.
type AdjustmentDTO struct {
	ID               string `json:"id"`
	EmployeeID       string `json:"employee_id"`
	PeriodID         string `json:"period_id"`
	Name             string `json:"name"`
	Kind             string `json:"kind"`
	Amount           string `json:"amount"`
	IsTaxable        bool   `json:"is_taxable"`
	IsNssfAssessable bool   `json:"is_nssf_assessable"`
}

// CreateAdjustmentRequest adds an adjustment to the period in the URL.
type CreateAdjustmentRequest struct {
	EmployeeID       string         `json:"employee_id"`
	Name             string         `json:"name"`
	Kind             string         `json:"kind"` // earning, deduction
	Amount           factory.Scalar `json:"amount"`
	IsTaxable        bool           `json:"is_taxable"`
	IsNssfAssessable bool           `json:"is_nssf_assessable"`
}

func toAdjustmentDTO(a payroll.PayrollAdjustment) AdjustmentDTO {
	return AdjustmentDTO{
		ID:               string(a.ID),
		EmployeeID:       string(a.EmployeeID),
		PeriodID:         string(a.PeriodID),
		Name:             a.Name,
		Kind:             string(a.Kind),
		Amount:           a.Amount.String(),
		IsTaxable:        a.IsTaxable,
		IsNssfAssessable: a.IsNssfAssessable,
	}
}

// =============================================================================
// CALCULATIONS
// =============================================================================

// CalculationDTO is a SalaryCalculation with its breakdown.
type CalculationDTO struct {
	ID                       string            `json:"id,omitempty"`
	RunID                    string            `json:"run_id,omitempty"`
	CreatedAt                *time.Time        `json:"created_at,omitempty"`
	EmployeeID               string            `json:"employee_id"`
	PeriodID                 string            `json:"period_id"`
	Currency                 string            `json:"currency"`
	ExchangeRate             string            `json:"exchange_rate"`
	BaseSalary               string            `json:"base_salary"`
	OvertimePay              string            `json:"overtime_pay"`
	Allowances               string            `json:"allowances"`
	GrossIncome              string            `json:"gross_income"`
	NssfBase                 string            `json:"nssf_base"`
	NssfEmployeeDeduction    string            `json:"nssf_employee_deduction"`
	NssfEmployerContribution string            `json:"nssf_employer_contribution"`
	TaxableIncome            string            `json:"taxable_income"`
	TaxDeduction             string            `json:"tax_deduction"`
	OtherDeductions          string            `json:"other_deductions"`
	NetSalary                string            `json:"net_salary"`
	OvertimeHours            string            `json:"overtime_hours"`
	OvertimeLines            []OvertimeLineDTO `json:"overtime_lines"`
	SkippedDays              []string          `json:"skipped_days"`
	TaxSlices                []TaxSliceDTO     `json:"tax_slices"`
}

// OvertimeLineDTO is the time one day spent in one rate bucket.
type OvertimeLineDTO struct {
	Date       string `json:"date"`
	DayType    string `json:"day_type"`
	Window     string `json:"window"` // HH:MM-HH:MM
	Hours      string `json:"hours"`
	Multiplier string `json:"multiplier"`
	Amount     string `json:"amount"`
}

// TaxSliceDTO is the income taxed inside one bracket.
type TaxSliceDTO struct {
	SortOrder int    `json:"sort_order"`
	Rate      string `json:"rate"`
	Taxed     string `json:"taxed"`
	Tax       string `json:"tax"`
}

func toCalculationDTO(c payroll.SalaryCalculation) CalculationDTO {
	amount := func(d decimal.Decimal) string { return d.StringFixed(c.Currency.Places()) }

	dto := CalculationDTO{
		EmployeeID:               string(c.EmployeeID),
		PeriodID:                 string(c.PeriodID),
		Currency:                 string(c.Currency),
		ExchangeRate:             c.ExchangeRate.String(),
		BaseSalary:               amount(c.BaseSalary),
		OvertimePay:              amount(c.OvertimePay),
		Allowances:               amount(c.Allowances),
		GrossIncome:              amount(c.GrossIncome),
		NssfBase:                 amount(c.NssfBase),
		NssfEmployeeDeduction:    amount(c.NssfEmployeeDeduction),
		NssfEmployerContribution: amount(c.NssfEmployerContribution),
		TaxableIncome:            amount(c.TaxableIncome),
		TaxDeduction:             amount(c.TaxDeduction),
		OtherDeductions:          amount(c.OtherDeductions),
		NetSalary:                amount(c.NetSalary),
		OvertimeHours:            c.Overtime.Hours.String(),
		OvertimeLines:            []OvertimeLineDTO{},
		SkippedDays:              datesToStrings(c.Overtime.SkippedDays),
		TaxSlices:                []TaxSliceDTO{},
	}
	for _, l := range c.Overtime.Lines {
		dto.OvertimeLines = append(dto.OvertimeLines, OvertimeLineDTO{
			Date:       l.Date.String(),
			DayType:    string(l.DayType),
			Window:     l.Bucket.Start.String() + "-" + l.Bucket.End.String(),
			Hours:      l.Hours.String(),
			Multiplier: l.Bucket.Multiplier.String(),
			Amount:     l.Amount.String(),
		})
	}
	for _, s := range c.Tax.Slices {
		dto.TaxSlices = append(dto.TaxSlices, TaxSliceDTO{
			SortOrder: s.Bracket.SortOrder,
			Rate:      s.Bracket.Rate.String(),
			Taxed:     s.Taxed.String(),
			Tax:       s.Tax.String(),
		})
	}
	return dto
}

func toRecordDTO(rec payroll.CalculationRecord) CalculationDTO {
	dto := toCalculationDTO(rec.Calculation)
	dto.ID = string(rec.ID)
	dto.RunID = rec.RunID
	if !rec.CreatedAt.IsZero() {
		created := rec.CreatedAt
		dto.CreatedAt = &created
	}
	return dto
}

// CalculateRequest is a self-contained calculation. When Config is omitted
// the stored configuration is used.
type CalculateRequest struct {
	Employee    CreateEmployeeRequest     `json:"employee"`
	Period      CreatePeriodRequest       `json:"period"`
	Attendance  []AttendanceDTO           `json:"attendance"`
	Adjustments []CreateAdjustmentRequest `json:"adjustments"`
	Config      *factory.ConfigDocument   `json:"config,omitempty"`
}

// =============================================================================
// RUNS
// =============================================================================

// FailureDTO is one employee the run could not calculate or save.
type FailureDTO struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// RunResponse summarizes a payroll run.
type RunResponse struct {
	RunID             string              `json:"run_id"`
	PeriodID          string              `json:"period_id"`
	Calculations      []CalculationDTO    `json:"calculations"`
	Failures          []FailureDTO        `json:"failures"`
	SkippedAttendance map[string][]string `json:"skipped_attendance"`
}

func toRunResponse(report *payroll.RunReport) RunResponse {
	resp := RunResponse{
		RunID:             report.RunID,
		PeriodID:          string(report.PeriodID),
		Calculations:      make([]CalculationDTO, 0, len(report.Results)),
		Failures:          make([]FailureDTO, 0, len(report.Failures)),
		SkippedAttendance: make(map[string][]string, len(report.SkippedAttendance)),
	}
	for _, rec := range report.Results {
		resp.Calculations = append(resp.Calculations, toRecordDTO(rec))
	}
	for _, f := range report.Failures {
		resp.Failures = append(resp.Failures, FailureDTO{EmployeeID: string(f.EmployeeID), Error: f.Err.Error()})
	}
	for emp, days := range report.SkippedAttendance {
		resp.SkippedAttendance[string(emp)] = datesToStrings(days)
	}
	return resp
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PeriodID    string `json:"period_id"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func datesToStrings(dates []generic.Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}
