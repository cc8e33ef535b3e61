/*
scheduler.go - Automated renewal scheduler

PURPOSE:
  Periodically runs the renewal processor so that employees whose yearly
  renewal date has passed get their allowance credited without manual
  intervention.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each pass scans every employee; eligibility is re-checked inside the
    ledger transaction, so a concurrent manual run cannot double-credit
  - Records every pass in the renewal_runs table for audit and UI display

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewRenewalScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunRenewals endpoint (manual trigger)
  - leave/renewal.go: Processor and eligibility rules
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"
)

// RenewalScheduler handles automated yearly renewals.
type RenewalScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRenewalScheduler creates a new scheduler.
func NewRenewalScheduler(handler *Handler) *RenewalScheduler {
	return &RenewalScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *RenewalScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Scheduler] Started with check interval: %v", rs.CheckInterval)
}

// Stop stops the scheduler.
func (rs *RenewalScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (rs *RenewalScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.checkAndProcess()

	for {
		select {
		case <-rs.ticker.C:
			rs.checkAndProcess()
		case <-rs.stop:
			return
		}
	}
}

func (rs *RenewalScheduler) checkAndProcess() {
	ctx := context.Background()
	today := rs.Handler.today()

	log.Printf("[Scheduler] Checking for renewals at %v", today.Format("2006-01-02"))

	run, err := rs.Handler.Processor.Run(ctx, today)
	if err != nil {
		log.Printf("[Scheduler] Renewal pass failed: %v", err)
		return
	}

	if run.Renewed > 0 {
		log.Printf("[Scheduler] Completed run %s: %d scanned, %d renewed",
			run.ID, run.Scanned, run.Renewed)
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (rs *RenewalScheduler) RunNow() {
	rs.checkAndProcess()
}

// GetNextRunTime returns when the next scheduled check will occur.
func (rs *RenewalScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(rs.CheckInterval)
}
