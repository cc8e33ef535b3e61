/*
handlers.go - HTTP API handlers for the leave tracking system

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the ledger and projections.

ENDPOINTS:
  Employees:
    GET    /api/employees                   List all employees
    POST   /api/employees                   Create employee
    GET    /api/employees/{id}              Get employee details
    PUT    /api/employees/{id}              Update profile fields
    DELETE /api/employees/{id}              Delete (rejected if leaves exist)
    POST   /api/employees/{id}/balance      Override remaining balance
    GET    /api/employees/{id}/leaves       Leave history, newest first
    GET    /api/employees/{id}/summary      Balance summary projection
    GET    /api/employees/{id}/summary.pdf  Printable summary sheet

  Leaves:
    GET    /api/leaves                      All records with employee names
    POST   /api/leaves                      Record a leave (debits balance)
    PUT    /api/leaves/{id}                 Edit type/reason
    DELETE /api/leaves/{id}                 Remove (credits balance back)

  Calendar:
    GET    /api/calendar?year=&month=       Records overlapping a month

  Renewals:
    POST   /api/renewals/run                Trigger a renewal pass now
    GET    /api/renewals/runs               Audit of past passes

REQUEST FLOW:
  1. Parse HTTP request
  2. Call ledger / projection
  3. Serialize response
  4. Map errors to status codes

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (employee still has leave records)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - leave/ledger.go: The transactional write paths behind these handlers
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-ledger/leave"
	"github.com/warp/leave-ledger/report"
)

const dateFormat = "2006-01-02"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     leave.Store
	Ledger    *leave.Ledger
	Processor *leave.Processor

	// Now is the clock; overridable in tests.
	Now func() time.Time

	// Track currently loaded demo scenario
	currentScenario string
}

// NewHandler creates a new handler over the given store.
func NewHandler(store leave.Store) *Handler {
	ledger := leave.NewLedger(store)
	return &Handler{
		Store:     store,
		Ledger:    ledger,
		Processor: leave.NewProcessor(store, ledger),
		Now:       time.Now,
	}
}

func (h *Handler) today() time.Time {
	return leave.DateOf(h.Now())
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	today := h.today()
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e, today)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp, h.today()))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hireDate, err := time.Parse(dateFormat, req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}

	emp := leave.Employee{
		Name:       req.Name,
		Department: req.Department,
		HireDate:   hireDate,
	}
	if req.YearlyAllowance != nil {
		emp.YearlyAllowance = *req.YearlyAllowance
	}

	created, err := h.Ledger.CreateEmployee(r.Context(), emp)
	if err != nil {
		writeDomainError(w, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(created, h.today()))
}

// UpdateEmployee updates profile fields; balance and renewal state are
// untouched.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hireDate, err := time.Parse(dateFormat, req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}

	allowance := decimal.Zero
	if req.YearlyAllowance != nil {
		allowance = *req.YearlyAllowance
	}

	updated, err := h.Ledger.UpdateEmployee(r.Context(), id, req.Name, req.Department, allowance, hireDate)
	if err != nil {
		writeDomainError(w, "Failed to update employee", err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(updated, h.today()))
}

// DeleteEmployee deletes an employee. Employees with leave records on file
// cannot be deleted; the records must be removed first.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.DeleteEmployee(r.Context(), id); err != nil {
		if errors.Is(err, leave.ErrEmployeeHasLeaves) {
			writeError(w, http.StatusConflict, "Employee has leave records; delete those first", err)
			return
		}
		writeDomainError(w, "Failed to delete employee", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// OverrideBalance sets an employee's balance directly. For probationary
// employees the input is read as days already used, not days remaining.
func (h *Handler) OverrideBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req OverrideBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp, err := h.Ledger.OverrideBalance(r.Context(), id, req.Days, h.today())
	if err != nil {
		writeDomainError(w, "Failed to override balance", err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(emp, h.today()))
}

// ListEmployeeLeaves returns one employee's leave history, newest first.
func (h *Handler) ListEmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	records, err := h.Store.ListLeavesForEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave records", err)
		return
	}

	dtos := make([]LeaveDTO, len(records))
	for i, rec := range records {
		dtos[i] = toLeaveDTO(rec, emp.Name)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetSummary returns the balance summary projection for one employee.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.buildSummary(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// GetSummaryPDF renders the balance summary as a printable PDF sheet.
func (h *Handler) GetSummaryPDF(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.buildSummary(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=leave-summary-%d.pdf", summary.EmployeeID))

	if err := report.WriteSummaryPDF(w, summary, h.today()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render PDF", err)
	}
}

func (h *Handler) buildSummary(w http.ResponseWriter, r *http.Request) (leave.Summary, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return leave.Summary{}, false
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return leave.Summary{}, false
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return leave.Summary{}, false
	}

	records, err := h.Store.ListLeavesForEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave records", err)
		return leave.Summary{}, false
	}

	return leave.BuildSummary(*emp, records, h.today()), true
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ListLeaves returns all leave records joined with employee names,
// newest-created first.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListLeaves(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave records", err)
		return
	}

	dtos := make([]LeaveDTO, len(records))
	for i, rec := range records {
		dtos[i] = toLeaveDTO(rec.Record, rec.EmployeeName)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// CreateLeave records a leave and debits the employee's balance.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := time.Parse(dateFormat, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse(dateFormat, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}

	rec, err := h.Ledger.CreateLeave(r.Context(), leave.Record{
		EmployeeID: req.EmployeeID,
		Type:       leave.Type(req.LeaveType),
		StartDate:  start,
		EndDate:    end,
		Reason:     req.Reason,
	})
	if err != nil {
		writeDomainError(w, "Failed to record leave", err)
		return
	}

	writeJSON(w, http.StatusCreated, toLeaveDTO(rec, ""))
}

// UpdateLeave edits a record's type and reason. Dates and the balance debit
// are immutable; delete and re-create to change them.
func (h *Handler) UpdateLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Ledger.EditLeave(r.Context(), id, leave.Type(req.LeaveType), req.Reason)
	if err != nil {
		writeDomainError(w, "Failed to update leave record", err)
		return
	}

	writeJSON(w, http.StatusOK, toLeaveDTO(rec, ""))
}

// DeleteLeave removes a record and credits its days back onto the balance.
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Ledger.DeleteLeave(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete leave record", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// CALENDAR HANDLER
// =============================================================================

// GetCalendar returns records overlapping the given month
// (?year=2026&month=3). Defaults to the current month.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	year, month := today.Year(), int(today.Month())

	if q := r.URL.Query().Get("year"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = v
	}
	if q := r.URL.Query().Get("month"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 || v > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
		month = v
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	records, err := h.Store.ListLeavesOverlapping(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query calendar", err)
		return
	}

	dtos := make([]LeaveDTO, len(records))
	for i, rec := range records {
		dtos[i] = toLeaveDTO(rec.Record, rec.EmployeeName)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RENEWAL HANDLERS
// =============================================================================

// RunRenewals triggers a renewal pass immediately and reports the result.
func (h *Handler) RunRenewals(w http.ResponseWriter, r *http.Request) {
	run, err := h.Processor.Run(r.Context(), h.today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Renewal run failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toRenewalRunDTO(run))
}

// ListRenewalRuns returns past renewal passes, newest first.
func (h *Handler) ListRenewalRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRenewalRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list renewal runs", err)
		return
	}

	dtos := make([]RenewalRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRenewalRunDTO(run)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func toEmployeeDTO(e leave.Employee, today time.Time) EmployeeDTO {
	dto := EmployeeDTO{
		ID:                e.ID,
		Name:              e.Name,
		Department:        e.Department,
		YearlyAllowance:   e.YearlyAllowance,
		HireDate:          e.HireDate.Format(dateFormat),
		RemainingDays:     e.Balance.Days,
		BalanceOverridden: e.Balance.Overridden,
		OverOneYear:       leave.IsOverOneYear(e.HireDate, today),
		CreatedAt:         e.CreatedAt.Format(time.RFC3339),
	}
	if e.LastRenewal != nil {
		s := e.LastRenewal.Format(dateFormat)
		dto.LastRenewalDate = &s
	}
	return dto
}

func toLeaveDTO(rec leave.Record, employeeName string) LeaveDTO {
	return LeaveDTO{
		ID:           rec.ID,
		EmployeeID:   rec.EmployeeID,
		EmployeeName: employeeName,
		LeaveType:    string(rec.Type),
		StartDate:    rec.StartDate.Format(dateFormat),
		EndDate:      rec.EndDate.Format(dateFormat),
		Days:         rec.Days(),
		Reason:       rec.Reason,
		CreatedAt:    rec.CreatedAt.Format(time.RFC3339),
	}
}

func toSummaryDTO(s leave.Summary) SummaryDTO {
	return SummaryDTO{
		EmployeeID:       s.EmployeeID,
		Name:             s.Name,
		Department:       s.Department,
		Probationary:     s.Probationary,
		CurrentAllowance: s.CurrentAllowance,
		UsedDays:         s.UsedDays,
		RemainingDays:    s.RemainingDays,
		NextRenewalDate:  s.NextRenewalDate.Format(dateFormat),
	}
}

func toRenewalRunDTO(run leave.RenewalRun) RenewalRunDTO {
	return RenewalRunDTO{
		ID:          run.ID,
		ProcessedAt: run.ProcessedAt.Format(dateFormat),
		Scanned:     run.Scanned,
		Renewed:     run.Renewed,
		CreatedAt:   run.CreatedAt.Format(time.RFC3339),
	}
}

// pathID parses the {id} route parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

// writeDomainError maps ledger errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

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
