package leave_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/leave-ledger/leave"
)

// =============================================================================
// OVERRIDE SIGN CONVENTION TESTS
// =============================================================================

func TestOverrideValue_ProbationaryInputIsDaysUsed(t *testing.T) {
	// GIVEN: A probationary employee reported as having used 3 days
	// WHEN: Storing the override
	// THEN: The balance is stored as -3 (days in the red)

	stored := leave.OverrideValue(decimal.NewFromInt(3), true)
	assert.True(t, stored.Equal(decimal.NewFromInt(-3)), "expected -3, got %s", stored)
	assert.True(t, leave.UsedFromOverride(stored).Equal(decimal.NewFromInt(3)))
}

func TestOverrideValue_RegularInputIsDaysRemaining(t *testing.T) {
	stored := leave.OverrideValue(decimal.NewFromInt(7), false)
	assert.True(t, stored.Equal(decimal.NewFromInt(7)))
}

// =============================================================================
// SUMMARY PROJECTION TESTS
// =============================================================================

func summaryEmployee(hire time.Time) leave.Employee {
	return leave.Employee{
		ID:              1,
		Name:            "Mina Park",
		Department:      "Engineering",
		YearlyAllowance: decimal.NewFromInt(15),
		HireDate:        hire,
	}
}

func TestBuildSummary_ProbationaryZeroAllowance(t *testing.T) {
	// GIVEN: A probationary employee with one 2-day leave on file
	// WHEN: Building the summary
	// THEN: Allowance and remaining are zero; used reflects the records

	emp := summaryEmployee(date(2026, time.January, 15))
	records := []leave.Record{{
		EmployeeID: 1,
		Type:       leave.TypeFullDay,
		StartDate:  date(2026, time.March, 2),
		EndDate:    date(2026, time.March, 3),
	}}

	s := leave.BuildSummary(emp, records, date(2026, time.June, 1))

	assert.True(t, s.Probationary)
	assert.True(t, s.CurrentAllowance.IsZero())
	assert.True(t, s.RemainingDays.IsZero())
	assert.True(t, s.UsedDays.Equal(decimal.NewFromInt(2)), "expected used 2, got %s", s.UsedDays)
}

func TestBuildSummary_ProbationaryOverrideShowsUsed(t *testing.T) {
	// GIVEN: A probationary employee whose balance was overridden to "used 3"
	// WHEN: Building the summary
	// THEN: Used shows 3 from the override; remaining stays zero

	emp := summaryEmployee(date(2026, time.January, 15))
	emp.Balance = leave.Balance{Days: decimal.NewFromInt(-3), Overridden: true}

	s := leave.BuildSummary(emp, nil, date(2026, time.June, 1))

	assert.True(t, s.Probationary)
	assert.True(t, s.UsedDays.Equal(decimal.NewFromInt(3)), "expected used 3, got %s", s.UsedDays)
	assert.True(t, s.RemainingDays.IsZero())
}

func TestBuildSummary_RegularComputedRemaining(t *testing.T) {
	// GIVEN: Hired 2023-01-15, two renewals by 2024-03-01 (allowance 30), 4.5 days used
	// WHEN: Building the summary
	// THEN: Remaining is 25.5

	emp := summaryEmployee(date(2023, time.January, 15))
	records := []leave.Record{
		{Type: leave.TypeFullDay, StartDate: date(2024, time.February, 19), EndDate: date(2024, time.February, 22)},
		{Type: leave.TypeHalfDay, StartDate: date(2024, time.February, 26), EndDate: date(2024, time.February, 26)},
	}

	s := leave.BuildSummary(emp, records, date(2024, time.March, 1))

	assert.False(t, s.Probationary)
	assert.True(t, s.CurrentAllowance.Equal(decimal.NewFromInt(30)), "expected allowance 30, got %s", s.CurrentAllowance)
	assert.True(t, s.UsedDays.Equal(decimal.RequireFromString("4.5")), "expected used 4.5, got %s", s.UsedDays)
	assert.True(t, s.RemainingDays.Equal(decimal.RequireFromString("25.5")), "expected remaining 25.5, got %s", s.RemainingDays)
}

func TestBuildSummary_OverrideTakesPrecedence(t *testing.T) {
	// GIVEN: A regular employee with an overridden balance of 7
	// WHEN: Building the summary
	// THEN: Remaining is the override, not allowance minus used

	emp := summaryEmployee(date(2023, time.January, 15))
	emp.Balance = leave.Balance{Days: decimal.NewFromInt(7), Overridden: true}
	records := []leave.Record{
		{Type: leave.TypeFullDay, StartDate: date(2024, time.February, 19), EndDate: date(2024, time.February, 19)},
	}

	s := leave.BuildSummary(emp, records, date(2024, time.March, 1))

	assert.True(t, s.RemainingDays.Equal(decimal.NewFromInt(7)), "expected remaining 7, got %s", s.RemainingDays)
	assert.True(t, s.UsedDays.Equal(decimal.NewFromInt(1)))
}

func TestBuildSummary_NextRenewalDate(t *testing.T) {
	emp := summaryEmployee(date(2023, time.January, 15))
	s := leave.BuildSummary(emp, nil, date(2026, time.March, 1))
	assert.Equal(t, date(2027, time.February, 15), s.NextRenewalDate)
}
