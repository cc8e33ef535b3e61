/*
anniversary.go - Probation threshold and renewal-date arithmetic

PURPOSE:
  Everything derived from (hireDate, referenceDate). No stored state.

THE RENEWAL CYCLE:
  The first renewal falls on the hire-date's calendar day in the month
  AFTER the hire month. A December hire wraps to January of the next year.
  Subsequent renewals are yearly anniversaries of that first date.

THE PROBATION THRESHOLD:
  An employee is "over one year" once 13 months have passed: the threshold
  is built as (hire year + 1, hire month + 1, hire day). This is 13 months
  after hire, not 12 - it is the month-after-hire rule applied on top of
  the one-year mark, and it is load-bearing for every allowance figure.

NORMALIZATION:
  time.Date normalizes out-of-range months (month 13 becomes January of
  the next year), which is exactly the wrap the cycle needs. Day overflow
  (hired on the 31st, renewal month has 30 days) normalizes the same way.

SEE ALSO:
  - renewal.go: applies renewal credits using these dates
  - stats.go: exposes allowance and next-renewal to the read side
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROBATION
// =============================================================================

// probationEnd is the first date on which the employee counts as over one
// year: hire year + 1, hire month + 1, hire day.
func probationEnd(hire time.Time) time.Time {
	return time.Date(hire.Year()+1, hire.Month()+1, hire.Day(), 0, 0, 0, 0, time.UTC)
}

// IsOverOneYear reports whether today is on or after the 13-month threshold.
func IsOverOneYear(hire, today time.Time) bool {
	return !DateOf(today).Before(probationEnd(hire))
}

// =============================================================================
// RENEWAL DATES
// =============================================================================

// FirstRenewalDate is the hire-date's day in the month following the hire
// month. December hires wrap to January of the following year.
func FirstRenewalDate(hire time.Time) time.Time {
	return time.Date(hire.Year(), hire.Month()+1, hire.Day(), 0, 0, 0, 0, time.UTC)
}

// RenewalCount counts how many yearly anniversaries of the first renewal
// date have occurred on or before today, inclusive.
func RenewalCount(hire, today time.Time) int {
	ref := DateOf(today)
	count := 0
	for d := FirstRenewalDate(hire); !d.After(ref); d = d.AddDate(1, 0, 0) {
		count++
	}
	return count
}

// RenewalDateInYear places the renewal-cycle date into the given calendar
// year. Used by the scheduler to ask "has this year's renewal passed?".
func RenewalDateInYear(hire time.Time, year int) time.Time {
	first := FirstRenewalDate(hire)
	return time.Date(year, first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
}

// NextRenewalDate is the next cycle date strictly after today. If the
// current year's date has already passed, it rolls forward exactly one year.
func NextRenewalDate(hire, today time.Time) time.Time {
	ref := DateOf(today)
	candidate := RenewalDateInYear(hire, ref.Year())
	if candidate.After(ref) {
		return candidate
	}
	return candidate.AddDate(1, 0, 0)
}

// =============================================================================
// ALLOWANCE
// =============================================================================

// CurrentYearAllowance is zero during probation, otherwise the yearly
// allowance multiplied by the renewal count.
func CurrentYearAllowance(yearlyAllowance decimal.Decimal, hire, today time.Time) decimal.Decimal {
	if !IsOverOneYear(hire, today) {
		return decimal.Zero
	}
	return yearlyAllowance.Mul(decimal.NewFromInt(int64(RenewalCount(hire, today))))
}
