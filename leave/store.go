package leave

import (
	"context"
	"time"
)

// =============================================================================
// STORE - Persistence boundary consumed by the Ledger
// =============================================================================

// Store is the CRUD boundary over the two record collections. Implementations
// must make WithTx atomic: a debit/credit can never be observed without its
// owning record write.
type Store interface {
	// Employees
	GetEmployee(ctx context.Context, id int64) (*Employee, error) // nil, nil when missing
	ListEmployees(ctx context.Context) ([]Employee, error)
	InsertEmployee(ctx context.Context, e Employee) (int64, error)
	UpdateEmployee(ctx context.Context, e Employee) error
	DeleteEmployee(ctx context.Context, id int64) error

	// Leave records
	GetLeave(ctx context.Context, id int64) (*Record, error) // nil, nil when missing
	ListLeaves(ctx context.Context) ([]RecordWithEmployee, error)
	ListLeavesForEmployee(ctx context.Context, employeeID int64) ([]Record, error)
	ListLeavesOverlapping(ctx context.Context, from, to time.Time) ([]RecordWithEmployee, error)
	CountLeavesForEmployee(ctx context.Context, employeeID int64) (int, error)
	InsertLeave(ctx context.Context, r Record) (int64, error)
	UpdateLeave(ctx context.Context, r Record) error
	DeleteLeave(ctx context.Context, id int64) error

	// Renewal audit
	SaveRenewalRun(ctx context.Context, run RenewalRun) error
	ListRenewalRuns(ctx context.Context) ([]RenewalRun, error)

	// WithTx executes fn atomically. Calls on the Store passed to fn share
	// one storage transaction; a returned error rolls everything back.
	WithTx(ctx context.Context, fn func(Store) error) error
}
