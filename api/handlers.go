/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the payroll package.

ENDPOINTS:
  Calculation:
    POST   /api/calculate                      Stateless calculation

  Employees:
    GET    /api/employees                      List all employees
    POST   /api/employees                      Create or update employee
    GET    /api/employees/{id}                 Get employee
    GET    /api/employees/{id}/attendance      Attendance (?from=&to=)
    POST   /api/employees/{id}/attendance      Upsert attendance records

  Periods:
    GET    /api/periods                        List periods
    POST   /api/periods                        Create period
    GET    /api/periods/{id}/adjustments       List adjustments
    POST   /api/periods/{id}/adjustments       Add adjustment
    POST   /api/periods/{id}/run               Run payroll (?replace=true)
    GET    /api/periods/{id}/calculations      Stored results

  Configuration:
    GET    /api/config                         Current configuration document
    PUT    /api/config                         Replace configuration

  Scenarios:
    GET    /api/scenarios                      List demo scenarios
    POST   /api/scenarios/load                 Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: payroll.Store (sqlite in production, memory in tests)
  - ConfigFactory: document to payroll.Config conversion
  - Logger: slog logger shared with the runner

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, invalid adjustment or period
  - 404: Resource not found
  - 409: Calculation already exists for employee and period
  - 422: Configuration error (the payroll cannot be trusted until fixed)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         payroll.Store
	ConfigFactory *factory.ConfigFactory
	Logger        *slog.Logger

	// Workers bounds parallel calculations per run.
	Workers int
}

// NewHandler creates a new handler with the given store.
func NewHandler(store payroll.Store, logger *slog.Logger) *Handler {
	return &Handler{
		Store:         store,
		ConfigFactory: factory.NewConfigFactory(),
		Logger:        logger,
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calculate runs the engine on a self-contained request without saving.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var cfg payroll.Config
	var err error
	if req.Config != nil {
		cfg, err = req.Config.Build()
	} else {
		cfg, err = payroll.LoadConfig(r.Context(), h.Store)
	}
	if err != nil {
		h.fail(w, r, "Invalid payroll configuration", err)
		return
	}

	employee, err := employeeFromRequest(req.Employee)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	period, err := periodFromRequest(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	attendance, err := attendanceFromDTOs(employee.ID, req.Attendance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attendance", err)
		return
	}
	adjustments := make([]payroll.PayrollAdjustment, 0, len(req.Adjustments))
	for i, a := range req.Adjustments {
		if a.EmployeeID == "" {
			a.EmployeeID = string(employee.ID)
		}
		adj, err := adjustmentFromRequest(fmt.Sprintf("adj-%d", i+1), period.ID, a)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid adjustment", err)
			return
		}
		adjustments = append(adjustments, adj)
	}

	calc, err := payroll.Calculate(cfg, payroll.Input{
		Employee:    employee,
		Period:      period,
		Attendance:  attendance,
		Adjustments: adjustments,
	})
	if err != nil {
		h.fail(w, r, "Calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalculationDTO(calc))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or updates an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	employee, err := employeeFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	if err := h.Store.SaveEmployee(r.Context(), employee); err != nil {
		h.fail(w, r, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(employee))
}

// GetEmployee returns one employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	employee, err := h.Store.GetEmployee(r.Context(), generic.EmployeeID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, "Employee not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(employee))
}

// GetAttendance returns attendance in [from, to]; both default to the
// widest range when omitted.
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		h.fail(w, r, "Employee not found", err)
		return
	}

	period := generic.Period{
		Start: generic.NewDate(1, 1, 1),
		End:   generic.NewDate(9999, 12, 31),
	}
	for param, target := range map[string]*generic.Date{"from": &period.Start, "to": &period.End} {
		if v := r.URL.Query().Get(param); v != "" {
			d, err := generic.ParseDate(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid "+param+" date", err)
				return
			}
			*target = d
		}
	}

	days, err := h.Store.ListAttendance(r.Context(), id, period)
	if err != nil {
		h.fail(w, r, "Failed to list attendance", err)
		return
	}
	dtos := make([]AttendanceDTO, len(days))
	for i, d := range days {
		dtos[i] = toAttendanceDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveAttendance upserts clock records for the employee.
func (h *Handler) SaveAttendance(w http.ResponseWriter, r *http.Request) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		h.fail(w, r, "Employee not found", err)
		return
	}

	var req SaveAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	days, err := attendanceFromDTOs(id, req.Records)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attendance", err)
		return
	}
	if err := h.Store.SaveAttendance(r.Context(), days); err != nil {
		h.fail(w, r, "Failed to save attendance", err)
		return
	}

	dtos := make([]AttendanceDTO, len(days))
	for i, d := range days {
		dtos[i] = toAttendanceDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ListPeriods returns all pay periods.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.ListPeriods(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list periods", err)
		return
	}
	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePeriod creates a pay period.
func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	period, err := periodFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	if err := h.Store.SavePeriod(r.Context(), period); err != nil {
		h.fail(w, r, "Failed to save period", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPeriodDTO(period))
}

// ListAdjustments returns the period's adjustments (?employee_id= filters).
func (h *Handler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	periodID := generic.PeriodID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetPeriod(r.Context(), periodID); err != nil {
		h.fail(w, r, "Period not found", err)
		return
	}

	var employeeID *generic.EmployeeID
	if v := r.URL.Query().Get("employee_id"); v != "" {
		id := generic.EmployeeID(v)
		employeeID = &id
	}
	adjustments, err := h.Store.ListAdjustments(r.Context(), periodID, employeeID)
	if err != nil {
		h.fail(w, r, "Failed to list adjustments", err)
		return
	}
	dtos := make([]AdjustmentDTO, len(adjustments))
	for i, a := range adjustments {
		dtos[i] = toAdjustmentDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAdjustment adds an earning or deduction to the period.
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	periodID := generic.PeriodID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetPeriod(r.Context(), periodID); err != nil {
		h.fail(w, r, "Period not found", err)
		return
	}

	var req CreateAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := h.Store.GetEmployee(r.Context(), generic.EmployeeID(req.EmployeeID)); err != nil {
		h.fail(w, r, "Employee not found", err)
		return
	}
	adj, err := adjustmentFromRequest(uuid.NewString(), periodID, req)
	if err != nil {
		h.fail(w, r, "Invalid adjustment", err)
		return
	}
	if err := h.Store.SaveAdjustment(r.Context(), adj); err != nil {
		h.fail(w, r, "Failed to save adjustment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAdjustmentDTO(adj))
}

// RunPeriod calculates and stores every employee of the period.
func (h *Handler) RunPeriod(w http.ResponseWriter, r *http.Request) {
	periodID := generic.PeriodID(chi.URLParam(r, "id"))

	runner := payroll.NewRunner(h.Store, h.logger())
	if h.Workers > 0 {
		runner.Workers = h.Workers
	}
	runner.Replace = r.URL.Query().Get("replace") == "true"

	report, err := runner.Run(r.Context(), periodID)
	if err != nil {
		h.fail(w, r, "Payroll run failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunResponse(report))
}

// ListCalculations returns the stored results of the period.
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	periodID := generic.PeriodID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetPeriod(r.Context(), periodID); err != nil {
		h.fail(w, r, "Period not found", err)
		return
	}
	records, err := h.Store.ListCalculations(r.Context(), periodID)
	if err != nil {
		h.fail(w, r, "Failed to list calculations", err)
		return
	}
	dtos := make([]CalculationDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CONFIGURATION HANDLERS
// =============================================================================

// GetConfig returns the stored configuration as a document.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := payroll.LoadConfig(r.Context(), h.Store)
	if err != nil {
		h.fail(w, r, "Stored configuration is invalid", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ToDocument(cfg))
}

// PutConfig validates a document and replaces the stored configuration.
// YAML is accepted with Content-Type application/yaml.
func (h *Handler) PutConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var cfg payroll.Config
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		cfg, err = h.ConfigFactory.ParseYAML(body)
	} else {
		cfg, err = h.ConfigFactory.ParseJSON(body)
	}
	if err != nil {
		h.fail(w, r, "Invalid payroll configuration", err)
		return
	}
	if _, err := payroll.NewEngine(cfg); err != nil {
		h.fail(w, r, "Invalid payroll configuration", err)
		return
	}
	if err := payroll.SeedConfig(r.Context(), h.Store, cfg); err != nil {
		h.fail(w, r, "Failed to save configuration", err)
		return
	}
	h.logger().Info("payroll configuration replaced",
		slog.Int("tax_brackets", len(cfg.Taxes.Brackets())),
		slog.Int("rate_buckets", len(cfg.Rates.Buckets())),
		slog.Int("holidays", cfg.Holidays.Len()))
	writeJSON(w, http.StatusOK, factory.ToDocument(cfg))
}

// =============================================================================
// REQUEST CONVERSION
// =============================================================================

func employeeFromRequest(req CreateEmployeeRequest) (payroll.Employee, error) {
	if strings.TrimSpace(req.ID) == "" {
		return payroll.Employee{}, errors.New("id is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = req.ID
	}
	currency := generic.Currency(strings.ToUpper(strings.TrimSpace(req.Currency)))
	if currency == "" {
		currency = generic.KHR
	}
	salary, err := decimal.NewFromString(strings.TrimSpace(string(req.BaseSalary)))
	if err != nil {
		return payroll.Employee{}, fmt.Errorf("base_salary: not a number: %q", string(req.BaseSalary))
	}
	if salary.IsNegative() {
		return payroll.Employee{}, errors.New("base_salary must not be negative")
	}
	return payroll.Employee{
		ID:         generic.EmployeeID(req.ID),
		Name:       req.Name,
		BaseSalary: generic.NewMoney(salary, currency),
	}, nil
}

func periodFromRequest(req CreatePeriodRequest) (payroll.PayPeriod, error) {
	start, err := generic.ParseDate(req.Start)
	if err != nil {
		return payroll.PayPeriod{}, fmt.Errorf("start: %w", generic.ErrInvalidPeriod)
	}
	end, err := generic.ParseDate(req.End)
	if err != nil {
		return payroll.PayPeriod{}, fmt.Errorf("end: %w", generic.ErrInvalidPeriod)
	}
	id := req.ID
	if id == "" {
		id = start.String() + "_" + end.String()
	}
	period := generic.Period{Start: start, End: end}
	if err := period.Validate(); err != nil {
		return payroll.PayPeriod{}, err
	}
	return payroll.PayPeriod{ID: generic.PeriodID(id), Period: period}, nil
}

func attendanceFromDTOs(employeeID generic.EmployeeID, dtos []AttendanceDTO) ([]payroll.AttendanceDay, error) {
	days := make([]payroll.AttendanceDay, 0, len(dtos))
	for _, dto := range dtos {
		date, err := generic.ParseDate(dto.Date)
		if err != nil {
			return nil, fmt.Errorf("date %q: %w", dto.Date, err)
		}
		days = append(days, payroll.AttendanceDay{
			EmployeeID: employeeID,
			Date:       date,
			ClockIn:    dto.ClockIn,
			ClockOut:   dto.ClockOut,
		})
	}
	return days, nil
}

func adjustmentFromRequest(id string, periodID generic.PeriodID, req CreateAdjustmentRequest) (payroll.PayrollAdjustment, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(string(req.Amount)))
	if err != nil {
		return payroll.PayrollAdjustment{}, &generic.AdjustmentError{
			ID:     generic.AdjustmentID(id),
			Reason: fmt.Sprintf("amount is not a number: %q", string(req.Amount)),
		}
	}
	adj := payroll.PayrollAdjustment{
		ID:               generic.AdjustmentID(id),
		EmployeeID:       generic.EmployeeID(req.EmployeeID),
		PeriodID:         periodID,
		Name:             req.Name,
		Kind:             payroll.AdjustmentKind(strings.ToLower(req.Kind)),
		Amount:           amount,
		IsTaxable:        req.IsTaxable,
		IsNssfAssessable: req.IsNssfAssessable,
	}
	if err := payroll.ValidateAdjustment(adj); err != nil {
		return payroll.PayrollAdjustment{}, err
	}
	return adj, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps engine and store errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, generic.ErrDuplicateCalculation):
		return http.StatusConflict
	case generic.IsConfigurationError(err):
		return http.StatusUnprocessableEntity
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status and logs server-side failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError || status == http.StatusUnprocessableEntity {
		h.logger().ErrorContext(r.Context(), message, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	writeError(w, status, message, err)
}
