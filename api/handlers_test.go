/*
handlers_test.go - End-to-end tests for the HTTP API

Exercises the full stack: router, handlers, ledger, SQLite store. Each test
stands up an in-memory database and drives it through httptest.
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T, today time.Time) *httptest.Server {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(store)
	handler.Now = func() time.Time { return today }

	srv := httptest.NewServer(NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createTestEmployee(t *testing.T, srv *httptest.Server, name, hireDate string) EmployeeDTO {
	var dto EmployeeDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/employees", map[string]any{
		"name":       name,
		"department": "Engineering",
		"hire_date":  hireDate,
	}, &dto)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return dto
}

// =============================================================================
// EMPLOYEE ENDPOINT TESTS
// =============================================================================

func TestAPI_CreateAndGetEmployee(t *testing.T) {
	srv := newTestServer(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))

	created := createTestEmployee(t, srv, "Mina Park", "2023-01-15")
	assert.NotZero(t, created.ID)
	assert.True(t, created.YearlyAllowance.Equal(decimal.NewFromInt(15)), "allowance should default to 15")
	assert.True(t, created.OverOneYear)

	var fetched EmployeeDTO
	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/employees/%d", srv.URL, created.ID), nil, &fetched)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mina Park", fetched.Name)
	assert.Equal(t, "2023-01-15", fetched.HireDate)
}

func TestAPI_CreateEmployee_BadHireDate(t *testing.T) {
	srv := newTestServer(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/employees", map[string]any{
		"name":       "Mina Park",
		"department": "Engineering",
		"hire_date":  "15/01/2023",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetEmployee_NotFound(t *testing.T) {
	srv := newTestServer(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/employees/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_DeleteEmployee_ConflictWithLeaves(t *testing.T) {
	// GIVEN: An employee with a booked leave
	// WHEN: Deleting the employee
	// THEN: 409; after removing the leave the delete succeeds

	srv := newTestServer(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	emp := createTestEmployee(t, srv, "Mina Park", "2023-01-15")

	var rec LeaveDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/leaves", map[string]any{
		"employee_id": emp.ID,
		"leave_type":  "full_day",
		"start_date":  "2026-03-10",
		"end_date":    "2026-03-10",
	}, &rec)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/employees/%d", srv.URL, emp.ID), nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/leaves/%d", srv.URL, rec.ID), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/employees/%d", srv.URL, emp.ID), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// =============================================================================
// LEAVE ENDPOINT TESTS
// =============================================================================

func TestAPI_CreateLeave_DebitsBalance(t *testing.T) {
	srv := newTestServer(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	emp := createTestEmployee(t, srv, "Mina Park", "2023-01-15")

	var rec LeaveDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/leaves", map[string]any{
		"employee_id": emp.ID,
		"leave_type":  "half_day",
		"start_date":  "2026-03-10",
		"end_date":    "2026-03-10",
		"reason":      "dentist",
	}, &rec)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, rec.Days.Equal(decimal.RequireFromString("0.5")), "expected 0.5 days, got %s", rec.Days)

	var after EmployeeDTO
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/employees/%d", srv.URL, emp.ID), nil, &after)
	assert.True(t, after.RemainingDays.Equal(decimal.RequireFromString("-0.5")),
		"expected balance -0.5, got %s", after.RemainingDays)
}

func TestAPI_CreateLeave_UnknownType(t *testing.T) {
	srv := newTestServer(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	emp := createTestEmployee(t, srv, "Mina Park", "2023-01-15")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/leaves", map[string]any{
		"employee_id": emp.ID,
		"leave_type":  "sabbatical",
		"start_date":  "2026-03-10",
		"end_date":    "2026-03-10",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ListLeaves_IncludesEmployeeName(t *testing.T) {
	srv := newTestServer(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	emp := createTestEmployee(t, srv, "Mina Park", "2023-01-15")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/leaves", map[string]any{
		"employee_id": emp.ID,
		"leave_type":  "full_day",
		"start_date":  "2026-03-10",
		"end_date":    "2026-03-11",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var list []LeaveDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/leaves", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "Mina Park", list[0].EmployeeName)
	assert.True(t, list[0].Days.Equal(decimal.NewFromInt(2)))
}

func TestAPI_UpdateLeave_TypeAndReasonOnly(t *testing.T) {
	srv := newTestServer(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	emp := createTestEmployee(t, srv, "Mina Park", "2023-01-15")

	var rec LeaveDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/leaves", map[string]any{
		"employee_id": emp.ID,
		"leave_type":  "full_day",
		"start_date":  "2026-03-10",
		"end_date":    "2026-03-10",
	}, &rec)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var updated LeaveDTO
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/leaves/%d", srv.URL, rec.ID), map[string]any{
		"leave_type": "sick",
		"reason":     "flu",
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sick", updated.LeaveType)
	assert.Equal(t, "flu", updated.Reason)
	assert.Equal(t, rec.StartDate, updated.StartDate, "dates must not change on edit")

	// The balance debit is unchanged by an edit.
	var after EmployeeDTO
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/employees/%d", srv.URL, emp.ID), nil, &after)
	assert.True(t, after.RemainingDays.Equal(decimal.NewFromInt(-1)))
}

// =============================================================================
// BALANCE OVERRIDE TESTS
// =============================================================================

func TestAPI_OverrideBalance_Probationary(t *testing.T) {
	// GIVEN: A probationary employee reported as having used 3 days
	// WHEN: Overriding via POST /balance
	// THEN: Stored balance is -3; summary shows used 3, remaining 0

	srv := newTestServer(t, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	emp := createTestEmployee(t, srv, "Jun Lee", "2026-01-15")
	require.False(t, emp.OverOneYear)

	var after EmployeeDTO
	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/employees/%d/balance", srv.URL, emp.ID), map[string]any{
		"days": 3,
	}, &after)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, after.RemainingDays.Equal(decimal.NewFromInt(-3)))
	assert.True(t, after.BalanceOverridden)

	var summary SummaryDTO
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/employees/%d/summary", srv.URL, emp.ID), nil, &summary)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, summary.Probationary)
	assert.True(t, summary.UsedDays.Equal(decimal.NewFromInt(3)))
	assert.True(t, summary.RemainingDays.IsZero())
}

func TestAPI_Summary_RegularEmployee(t *testing.T) {
	// GIVEN: Hired 2023-01-15, today 2024-03-01 (two renewals, allowance 30)
	// WHEN: Fetching the summary after a 4-day leave
	// THEN: used 4, remaining 26

	srv := newTestServer(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	emp := createTestEmployee(t, srv, "Mina Park", "2023-01-15")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/leaves", map[string]any{
		"employee_id": emp.ID,
		"leave_type":  "full_day",
		"start_date":  "2024-02-19",
		"end_date":    "2024-02-22",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var summary SummaryDTO
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/employees/%d/summary", srv.URL, emp.ID), nil, &summary)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, summary.Probationary)
	assert.True(t, summary.CurrentAllowance.Equal(decimal.NewFromInt(30)), "expected 30, got %s", summary.CurrentAllowance)
	assert.True(t, summary.UsedDays.Equal(decimal.NewFromInt(4)))
	assert.True(t, summary.RemainingDays.Equal(decimal.NewFromInt(26)))
	assert.Equal(t, "2025-02-15", summary.NextRenewalDate)
}

// =============================================================================
// CALENDAR TESTS
// =============================================================================

func TestAPI_Calendar_MonthWindow(t *testing.T) {
	srv := newTestServer(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	emp := createTestEmployee(t, srv, "Mina Park", "2023-01-15")

	for _, dates := range [][2]string{
		{"2026-03-10", "2026-03-12"},
		{"2026-04-01", "2026-04-01"},
	} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/leaves", map[string]any{
			"employee_id": emp.ID,
			"leave_type":  "full_day",
			"start_date":  dates[0],
			"end_date":    dates[1],
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var march []LeaveDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/calendar?year=2026&month=3", nil, &march)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, march, 1)
	assert.Equal(t, "2026-03-10", march[0].StartDate)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/calendar?year=2026&month=13", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// RENEWAL ENDPOINT TESTS
// =============================================================================

func TestAPI_RunRenewals_AndAudit(t *testing.T) {
	srv := newTestServer(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	emp := createTestEmployee(t, srv, "Mina Park", "2023-01-15")

	var run RenewalRunDTO
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/renewals/run", nil, &run)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, run.Scanned)
	assert.Equal(t, 1, run.Renewed)
	assert.Equal(t, "2026-03-01", run.ProcessedAt)

	var after EmployeeDTO
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/employees/%d", srv.URL, emp.ID), nil, &after)
	assert.True(t, after.RemainingDays.Equal(decimal.NewFromInt(15)))
	require.NotNil(t, after.LastRenewalDate)
	assert.Equal(t, "2026-03-01", *after.LastRenewalDate)

	// Second trigger on the same day is a no-op but still audited.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/renewals/run", nil, &run)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, run.Renewed)

	var runs []RenewalRunDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/renewals/runs", nil, &runs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, runs, 2)
}

// =============================================================================
// PDF EXPORT TESTS
// =============================================================================

func TestAPI_SummaryPDF(t *testing.T) {
	srv := newTestServer(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	emp := createTestEmployee(t, srv, "Mina Park", "2023-01-15")

	resp, err := http.Get(fmt.Sprintf("%s/api/employees/%d/summary.pdf", srv.URL, emp.ID))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Greater(t, len(body), 5)
	assert.Equal(t, "%PDF-", string(body[:5]), "body should start with the PDF magic")
}
