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

TYPES:
  Employee:
    EmployeeDTO, CreateEmployeeRequest, UpdateEmployeeRequest,
    OverrideBalanceRequest

  Leave:
    LeaveDTO, CreateLeaveRequest, UpdateLeaveRequest

  Summary:
    SummaryDTO

  Renewal:
    RenewalRunDTO

NUMBER FORMAT:
  Day counts are serialized as JSON numbers via shopspring/decimal, which
  marshals without float drift (7.5 stays "7.5", never "7.499999...").

VALIDATION:
  Validation is done in the ledger, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - leave/types.go: Domain model
*/
package api

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Department        string          `json:"department"`
	YearlyAllowance   decimal.Decimal `json:"yearly_allowance"`
	HireDate          string          `json:"hire_date"`
	LastRenewalDate   *string         `json:"last_renewal_date"`
	RemainingDays     decimal.Decimal `json:"remaining_days"`
	BalanceOverridden bool            `json:"balance_overridden"`
	OverOneYear       bool            `json:"over_one_year"`
	CreatedAt         string          `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	Name            string           `json:"name"`
	Department      string           `json:"department"`
	YearlyAllowance *decimal.Decimal `json:"yearly_allowance"`
	HireDate        string           `json:"hire_date"`
}

// UpdateEmployeeRequest is the request to update an employee's profile.
type UpdateEmployeeRequest struct {
	Name            string           `json:"name"`
	Department      string           `json:"department"`
	YearlyAllowance *decimal.Decimal `json:"yearly_allowance"`
	HireDate        string           `json:"hire_date"`
}

// OverrideBalanceRequest sets an employee's balance directly.
// For probationary employees the value is interpreted as days already used.
type OverrideBalanceRequest struct {
	Days decimal.Decimal `json:"days"`
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

// LeaveDTO represents a leave record in API responses.
type LeaveDTO struct {
	ID           int64           `json:"id"`
	EmployeeID   int64           `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	LeaveType    string          `json:"leave_type"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Days         decimal.Decimal `json:"days"`
	Reason       string          `json:"reason,omitempty"`
	CreatedAt    string          `json:"created_at,omitempty"`
}

// CreateLeaveRequest is the request to record a leave.
type CreateLeaveRequest struct {
	EmployeeID int64  `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
}

// UpdateLeaveRequest edits a leave record's type and reason.
// Dates are immutable once booked; delete and re-create to change them.
type UpdateLeaveRequest struct {
	LeaveType string `json:"leave_type"`
	Reason    string `json:"reason"`
}

// =============================================================================
// SUMMARY AND RENEWAL TYPES
// =============================================================================

// SummaryDTO is the per-employee balance summary.
type SummaryDTO struct {
	EmployeeID       int64           `json:"employee_id"`
	Name             string          `json:"name"`
	Department       string          `json:"department"`
	Probationary     bool            `json:"probationary"`
	CurrentAllowance decimal.Decimal `json:"current_allowance"`
	UsedDays         decimal.Decimal `json:"used_days"`
	RemainingDays    decimal.Decimal `json:"remaining_days"`
	NextRenewalDate  string          `json:"next_renewal_date"`
}

// RenewalRunDTO reports one pass of the renewal processor.
type RenewalRunDTO struct {
	ID          string `json:"id"`
	ProcessedAt string `json:"processed_at"`
	Scanned     int    `json:"scanned"`
	Renewed     int    `json:"renewed"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
