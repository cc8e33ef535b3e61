/*
stats.go - Read-side per-employee summary

PURPOSE:
  Combines the anniversary engine, the duration calculator, and the stored
  balance into the figures the dashboard displays. Pure: no mutation, no
  storage access.

PRECEDENCE:
  While the balance is un-overridden the remaining figure is derived:
  currentYearAllowance - usedDaysFromRecords. Once an override exists it
  wins unconditionally. For probationary employees allowance and remaining
  are always zero, and a negative override is reinterpreted as usage.
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the per-employee projection consumed by the dashboard cards
// and exports.
type Summary struct {
	EmployeeID       int64
	Name             string
	Department       string
	Probationary     bool
	CurrentAllowance decimal.Decimal
	UsedDays         decimal.Decimal
	RemainingDays    decimal.Decimal
	NextRenewalDate  time.Time
}

// BuildSummary projects an employee and their leave records as of today.
func BuildSummary(emp Employee, records []Record, today time.Time) Summary {
	today = DateOf(today)

	used := decimal.Zero
	for _, r := range records {
		used = used.Add(r.Days())
	}

	s := Summary{
		EmployeeID:      emp.ID,
		Name:            emp.Name,
		Department:      emp.Department,
		Probationary:    !IsOverOneYear(emp.HireDate, today),
		NextRenewalDate: NextRenewalDate(emp.HireDate, today),
	}

	if s.Probationary {
		if emp.Balance.Overridden {
			used = UsedFromOverride(emp.Balance.Days)
		}
		s.UsedDays = used
		s.CurrentAllowance = decimal.Zero
		s.RemainingDays = decimal.Zero
		return s
	}

	s.UsedDays = used
	s.CurrentAllowance = CurrentYearAllowance(emp.YearlyAllowance, emp.HireDate, today)
	if emp.Balance.Overridden {
		s.RemainingDays = emp.Balance.Days
	} else {
		s.RemainingDays = s.CurrentAllowance.Sub(used)
	}
	return s
}
