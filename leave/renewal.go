/*
renewal.go - Annual renewal processing

PURPOSE:
  Scans all employees and applies due renewal credits exactly once per
  anniversary. Invoked by the background scheduler (daily) and by the
  manual trigger endpoint; both share this Processor.

IDEMPOTENCY:
  The LastRenewal gate makes repeated runs on the same day harmless: once
  an employee is credited, LastRenewal is stamped with today and the
  selection predicate excludes them for a year. The gate is re-checked
  inside the ledger transaction (ApplyRenewal), so even overlapping runs
  cannot double-credit.

BATCH SEMANTICS:
  Best effort. A failure on one employee is logged and the run continues
  with the rest; the run report still records what happened.
*/
package leave

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// RenewalDue is the selection predicate: the employee has passed at least
// one renewal-eligible boundary (hire + 1 month), no credit was applied in
// the last year, and the current-cycle renewal date has arrived.
func RenewalDue(e Employee, today time.Time) bool {
	today = DateOf(today)

	if e.HireDate.AddDate(0, 1, 0).After(today) {
		return false
	}
	if e.LastRenewal != nil && e.LastRenewal.AddDate(1, 0, 0).After(today) {
		// Credited within the last year; lastRenewal + 1y == today counts as due.
		return false
	}
	return !RenewalDateInYear(e.HireDate, today.Year()).After(today)
}

// Processor applies due renewals across all employees.
type Processor struct {
	store  Store
	ledger *Ledger
}

// NewProcessor creates a renewal processor sharing the ledger's per-employee
// serialization.
func NewProcessor(store Store, ledger *Ledger) *Processor {
	return &Processor{store: store, ledger: ledger}
}

// Run scans every employee, credits those due, and persists a RenewalRun
// report. The returned report is valid even when some employees failed.
func (p *Processor) Run(ctx context.Context, today time.Time) (RenewalRun, error) {
	today = DateOf(today)

	run := RenewalRun{
		ID:          uuid.NewString(),
		ProcessedAt: today,
	}

	employees, err := p.store.ListEmployees(ctx)
	if err != nil {
		return run, err
	}

	for _, emp := range employees {
		run.Scanned++

		if !RenewalDue(emp, today) {
			continue
		}

		applied, err := p.ledger.ApplyRenewal(ctx, emp.ID, today)
		if err != nil {
			// Best-effort batch: keep processing the remaining employees.
			log.Printf("[Renewal] employee %d: %v", emp.ID, err)
			continue
		}
		if applied {
			run.Renewed++
		}
	}

	if err := p.store.SaveRenewalRun(ctx, run); err != nil {
		log.Printf("[Renewal] failed to save run %s: %v", run.ID, err)
	}
	return run, nil
}
