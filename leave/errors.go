/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  The error taxonomy of the API boundary in one place:
  1. Validation errors - rejected before any ledger mutation
  2. Referential errors - missing employee or leave record, no partial state
  3. Storage errors - propagated as generic failures

USAGE:
  Handlers classify with the helpers:

    if leave.IsNotFound(err) { ... 404 ... }
    if leave.IsClientError(err) { ... 400 ... }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrLeaveNotFound is returned when a referenced leave record doesn't exist.
	ErrLeaveNotFound = errors.New("leave record not found")

	// ErrEmployeeHasLeaves is returned when deleting an employee that still
	// has leave records. The deletion policy is reject, not cascade.
	ErrEmployeeHasLeaves = errors.New("employee has leave records")
)

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// ValidationError reports a missing or malformed input field. It is raised
// before any ledger mutation and surfaced as a declined request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func missing(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "required"}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrLeaveNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrEmployeeHasLeaves)
}
