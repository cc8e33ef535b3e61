/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates employees and leave
	records that demonstrate specific behaviors.

AVAILABLE SCENARIOS:

	small-team:      Mixed-tenure team with leaves booked
	december-hires:  Hires whose renewal dates wrap into January
	probation:       First-year employees, one with an overridden balance

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create employees via the ledger
 3. Book leave records (balances debit as a side effect)
 4. Optionally override balances

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "small-team"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler context
  - server.go: /api/scenarios routes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-ledger/leave"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-team",
		Name:        "Small Team",
		Description: "Four employees with mixed tenure and booked leaves",
	},
	{
		ID:          "december-hires",
		Name:        "December Hires",
		Description: "Hire dates whose renewal anniversaries wrap into January",
	},
	{
		ID:          "probation",
		Name:        "Probation",
		Description: "First-year employees, one with a manually set balance",
	},
}

// resettable is implemented by stores that can wipe all data.
type resettable interface {
	Reset(ctx context.Context) error
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario wipes the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	store, ok := h.Store.(resettable)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Store does not support reset", nil)
		return
	}

	ctx := r.Context()
	if err := store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "small-team":
		err = h.loadSmallTeamScenario(ctx)
	case "december-hires":
		err = h.loadDecemberHiresScenario(ctx)
	case "probation":
		err = h.loadProbationScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario_id": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) seedEmployee(ctx context.Context, name, department string, hire time.Time) (leave.Employee, error) {
	return h.Ledger.CreateEmployee(ctx, leave.Employee{
		Name:       name,
		Department: department,
		HireDate:   hire,
	})
}

func (h *Handler) loadSmallTeamScenario(ctx context.Context) error {
	today := h.today()

	mina, err := h.seedEmployee(ctx, "Mina Park", "Engineering", today.AddDate(-3, -2, 0))
	if err != nil {
		return err
	}
	jun, err := h.seedEmployee(ctx, "Jun Lee", "Design", today.AddDate(-1, -8, 0))
	if err != nil {
		return err
	}
	if _, err := h.seedEmployee(ctx, "Sora Kim", "Engineering", today.AddDate(0, -4, 0)); err != nil {
		return err
	}
	if _, err := h.seedEmployee(ctx, "Dan Choi", "Operations", today.AddDate(-5, 0, -10)); err != nil {
		return err
	}

	// Give the tenured employees their balances, then book a few leaves.
	if _, err := h.Processor.Run(ctx, today); err != nil {
		return err
	}

	leaves := []leave.Record{
		{EmployeeID: mina.ID, Type: leave.TypeFullDay, StartDate: today.AddDate(0, -1, 0), EndDate: today.AddDate(0, -1, 2), Reason: "family trip"},
		{EmployeeID: mina.ID, Type: leave.TypeHalfDay, StartDate: today.AddDate(0, 0, -7), EndDate: today.AddDate(0, 0, -7), Reason: "dentist"},
		{EmployeeID: jun.ID, Type: leave.TypeSick, StartDate: today.AddDate(0, 0, -3), EndDate: today.AddDate(0, 0, -2)},
	}
	for _, rec := range leaves {
		if _, err := h.Ledger.CreateLeave(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadDecemberHiresScenario(ctx context.Context) error {
	today := h.today()

	dec10 := time.Date(today.Year()-3, time.December, 10, 0, 0, 0, 0, time.UTC)
	dec28 := time.Date(today.Year()-2, time.December, 28, 0, 0, 0, 0, time.UTC)

	if _, err := h.seedEmployee(ctx, "Hana Seo", "Engineering", dec10); err != nil {
		return err
	}
	if _, err := h.seedEmployee(ctx, "Min Kang", "Sales", dec28); err != nil {
		return err
	}

	_, err := h.Processor.Run(ctx, today)
	return err
}

func (h *Handler) loadProbationScenario(ctx context.Context) error {
	today := h.today()

	if _, err := h.seedEmployee(ctx, "Yuna Jang", "Engineering", today.AddDate(0, -2, 0)); err != nil {
		return err
	}

	carried, err := h.seedEmployee(ctx, "Tae Oh", "Design", today.AddDate(0, -6, 0))
	if err != nil {
		return err
	}

	// Joined with 3 days already taken at the previous employer's handover.
	_, err = h.Ledger.OverrideBalance(ctx, carried.ID, decimal.NewFromInt(3), today)
	return err
}
