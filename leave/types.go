/*
Package leave implements the leave-accrual and balance-ledger engine.

PURPOSE:
  Tracks employee paid-leave entitlement and consumption. For any employee
  at any point in time it answers: how many days are they entitled to, how
  many have they consumed, and how many remain - accounting for
  anniversary-based annual renewal, a probationary "under one year" regime,
  half-day leave units, and administrative overrides.

KEY CONCEPTS IN THIS FILE (types.go):
  - Type: the fixed leave-type enumeration (full-day, half-day, sick, ...)
  - Employee: identity plus the authoritative signed balance
  - Balance: tagged value - computed vs administratively overridden
  - Record: a single leave entry with an inclusive date range

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every day count (half days are exact)
  2. Tagged balance: the override/computed distinction is explicit, never
     encoded in a bare nullable number
  3. Pure derivation: anniversary and stats logic is side-effect free;
     all mutation goes through the Ledger

SEE ALSO:
  - duration.go: day-count calculation
  - anniversary.go: probation and renewal dates
  - ledger.go: balance mutations
  - stats.go: read-side summary
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAVE TYPES
// =============================================================================

// Type classifies a leave record. The set is fixed.
type Type string

const (
	TypeFullDay     Type = "full_day"
	TypeHalfDay     Type = "half_day"
	TypeSick        Type = "sick"
	TypeBereavement Type = "bereavement"
	TypeSpecial     Type = "special"
)

// Valid reports whether t is one of the known leave types.
func (t Type) Valid() bool {
	switch t {
	case TypeFullDay, TypeHalfDay, TypeSick, TypeBereavement, TypeSpecial:
		return true
	}
	return false
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// DefaultYearlyAllowance is the allowance granted per renewal cycle when an
// employee is created without an explicit figure.
var DefaultYearlyAllowance = decimal.NewFromInt(15)

// Employee is the ledger's unit of account. Balance and LastRenewal are
// mutated only through the Ledger and the renewal Processor.
type Employee struct {
	ID              int64
	Name            string
	Department      string
	YearlyAllowance decimal.Decimal // days granted per renewal cycle
	HireDate        time.Time       // date granularity, UTC midnight
	LastRenewal     *time.Time      // last date a renewal credit was applied
	Balance         Balance
	CreatedAt       time.Time
}

// Balance is the signed remaining-days figure together with its provenance.
//
// While Overridden is false the stored Days track debits and credits but the
// displayed remaining figure is derived from records (see stats.go). Once an
// administrator overrides the balance, Days wins unconditionally.
type Balance struct {
	Days       decimal.Decimal
	Overridden bool
}

// Debit subtracts used days from the stored balance.
func (b Balance) Debit(used decimal.Decimal) Balance {
	b.Days = b.Days.Sub(used)
	return b
}

// Credit adds days back onto the stored balance.
func (b Balance) Credit(days decimal.Decimal) Balance {
	b.Days = b.Days.Add(days)
	return b
}

// =============================================================================
// LEAVE RECORD
// =============================================================================

// Record is a single leave entry. The date range is inclusive. Records are
// immutable once created except through Ledger.EditLeave, which may change
// Type and Reason but never the dates.
type Record struct {
	ID         int64
	EmployeeID int64
	Type       Type
	StartDate  time.Time // date granularity, UTC midnight
	EndDate    time.Time
	Reason     string
	CreatedAt  time.Time
}

// Days returns the record's day-count contribution to the ledger.
func (r Record) Days() decimal.Decimal {
	return Days(r.StartDate, r.EndDate, r.Type)
}

// RecordWithEmployee is a Record enriched with the employee's display name,
// as produced by the listing join.
type RecordWithEmployee struct {
	Record
	EmployeeName string
}

// =============================================================================
// RENEWAL RUN
// =============================================================================

// RenewalRun is the per-run report of the renewal Processor, persisted for
// operational verification.
type RenewalRun struct {
	ID          string    // uuid
	ProcessedAt time.Time // the "today" the run was evaluated against
	Scanned     int       // employees examined
	Renewed     int       // employees actually credited
	CreatedAt   time.Time
}

// =============================================================================
// DATE HELPERS
// =============================================================================

// DateOf truncates t to date granularity at UTC midnight. All ledger dates
// are normalized through this before comparison or storage.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current date at UTC midnight.
func Today() time.Time {
	return DateOf(time.Now().UTC())
}
