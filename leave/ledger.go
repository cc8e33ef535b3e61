/*
ledger.go - The authoritative balance and its mutations

PURPOSE:
  The Ledger owns every write path that touches an employee's signed
  remaining-days figure: leave create/delete/edit, employee CRUD, and the
  administrative override. Renewal credits go through ApplyRenewal, called
  by the Processor in renewal.go.

CRITICAL INVARIANTS:
  1. Every record's day-count is applied exactly once on creation and
     reversed exactly once on deletion - never twice.
  2. Deletion credits the deleted record's OWN type and dates, not the
     employee's current state.
  3. Record write and balance write commit atomically (Store.WithTx).
  4. Balance mutations for one employee are serialized (per-employee lock);
     concurrent creates on the same employee cannot lose an update.

EDIT SEMANTICS:
  EditLeave changes classification and reason only, never dates, so no
  balance adjustment accompanies an edit. Changing a record's type between
  half-day and full-day therefore shifts what a later deletion credits;
  that drift is inherited from the source system and documented rather
  than fixed here.

SEE ALSO:
  - balance.go: the override sign convention
  - renewal.go: annual renewal credits
  - store/sqlite: the transactional Store implementation
*/
package leave

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger applies balance mutations against a Store.
type Ledger struct {
	store Store

	mu    sync.Mutex
	locks map[int64]*sync.Mutex // per-employee write serialization
}

// NewLedger creates a ledger over the given store.
func NewLedger(store Store) *Ledger {
	return &Ledger{
		store: store,
		locks: make(map[int64]*sync.Mutex),
	}
}

// lockEmployee acquires the employee's mutation lock and returns the unlock.
func (l *Ledger) lockEmployee(id int64) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// =============================================================================
// LEAVE OPERATIONS
// =============================================================================

// CreateLeave validates the request, debits the employee's balance by the
// record's day-count, and persists the record - all in one transaction.
// Probationary employees are allowed to go negative: the debit is applied
// regardless of probation status.
func (l *Ledger) CreateLeave(ctx context.Context, rec Record) (Record, error) {
	if rec.EmployeeID == 0 {
		return Record{}, missing("employee_id")
	}
	if rec.StartDate.IsZero() {
		return Record{}, missing("start_date")
	}
	if rec.EndDate.IsZero() {
		return Record{}, missing("end_date")
	}
	if !rec.Type.Valid() {
		return Record{}, &ValidationError{Field: "type", Message: "unknown leave type"}
	}

	rec.StartDate = DateOf(rec.StartDate)
	rec.EndDate = DateOf(rec.EndDate)

	unlock := l.lockEmployee(rec.EmployeeID)
	defer unlock()

	err := l.store.WithTx(ctx, func(s Store) error {
		emp, err := s.GetEmployee(ctx, rec.EmployeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return ErrEmployeeNotFound
		}

		id, err := s.InsertLeave(ctx, rec)
		if err != nil {
			return err
		}
		rec.ID = id

		emp.Balance = emp.Balance.Debit(rec.Days())
		return s.UpdateEmployee(ctx, *emp)
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// DeleteLeave removes the record and credits its day-count back onto the
// employee's balance, using the record's own type and dates.
func (l *Ledger) DeleteLeave(ctx context.Context, id int64) error {
	rec, err := l.store.GetLeave(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrLeaveNotFound
	}

	unlock := l.lockEmployee(rec.EmployeeID)
	defer unlock()

	return l.store.WithTx(ctx, func(s Store) error {
		// Re-read under the lock; the record may have been deleted or
		// edited since the first fetch.
		rec, err := s.GetLeave(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrLeaveNotFound
		}

		emp, err := s.GetEmployee(ctx, rec.EmployeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return ErrEmployeeNotFound
		}

		if err := s.DeleteLeave(ctx, id); err != nil {
			return err
		}

		emp.Balance = emp.Balance.Credit(rec.Days())
		return s.UpdateEmployee(ctx, *emp)
	})
}

// EditLeave changes a record's classification and reason. Dates are not
// editable and the balance is not adjusted.
func (l *Ledger) EditLeave(ctx context.Context, id int64, typ Type, reason string) (Record, error) {
	if !typ.Valid() {
		return Record{}, &ValidationError{Field: "type", Message: "unknown leave type"}
	}

	rec, err := l.store.GetLeave(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if rec == nil {
		return Record{}, ErrLeaveNotFound
	}

	rec.Type = typ
	rec.Reason = reason
	if err := l.store.UpdateLeave(ctx, *rec); err != nil {
		return Record{}, err
	}
	return *rec, nil
}

// =============================================================================
// EMPLOYEE OPERATIONS
// =============================================================================

// CreateEmployee validates and persists a new employee. A zero allowance
// defaults to DefaultYearlyAllowance.
func (l *Ledger) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	if e.Name == "" {
		return Employee{}, missing("name")
	}
	if e.Department == "" {
		return Employee{}, missing("department")
	}
	if e.HireDate.IsZero() {
		return Employee{}, missing("hire_date")
	}
	if e.YearlyAllowance.IsZero() {
		e.YearlyAllowance = DefaultYearlyAllowance
	}
	e.HireDate = DateOf(e.HireDate)

	id, err := l.store.InsertEmployee(ctx, e)
	if err != nil {
		return Employee{}, err
	}
	e.ID = id
	return e, nil
}

// UpdateEmployee changes identity fields and allowance. Balance and renewal
// state are preserved; they move only through ledger operations.
func (l *Ledger) UpdateEmployee(ctx context.Context, id int64, name, department string, allowance decimal.Decimal, hireDate time.Time) (Employee, error) {
	if name == "" {
		return Employee{}, missing("name")
	}
	if department == "" {
		return Employee{}, missing("department")
	}
	if hireDate.IsZero() {
		return Employee{}, missing("hire_date")
	}

	unlock := l.lockEmployee(id)
	defer unlock()

	var updated Employee
	err := l.store.WithTx(ctx, func(s Store) error {
		emp, err := s.GetEmployee(ctx, id)
		if err != nil {
			return err
		}
		if emp == nil {
			return ErrEmployeeNotFound
		}

		emp.Name = name
		emp.Department = department
		if !allowance.IsZero() {
			emp.YearlyAllowance = allowance
		}
		emp.HireDate = DateOf(hireDate)

		if err := s.UpdateEmployee(ctx, *emp); err != nil {
			return err
		}
		updated = *emp
		return nil
	})
	if err != nil {
		return Employee{}, err
	}
	return updated, nil
}

// DeleteEmployee removes an employee. Deletion is rejected while leave
// records exist; there is no cascade.
func (l *Ledger) DeleteEmployee(ctx context.Context, id int64) error {
	unlock := l.lockEmployee(id)
	defer unlock()

	return l.store.WithTx(ctx, func(s Store) error {
		emp, err := s.GetEmployee(ctx, id)
		if err != nil {
			return err
		}
		if emp == nil {
			return ErrEmployeeNotFound
		}

		n, err := s.CountLeavesForEmployee(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrEmployeeHasLeaves
		}

		return s.DeleteEmployee(ctx, id)
	})
}

// =============================================================================
// ADMINISTRATIVE OVERRIDE
// =============================================================================

// OverrideBalance sets the employee's stored balance directly. The input is
// interpreted per the probation sign convention (see OverrideValue) and the
// balance is marked overridden from then on.
func (l *Ledger) OverrideBalance(ctx context.Context, employeeID int64, input decimal.Decimal, today time.Time) (Employee, error) {
	unlock := l.lockEmployee(employeeID)
	defer unlock()

	var updated Employee
	err := l.store.WithTx(ctx, func(s Store) error {
		emp, err := s.GetEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return ErrEmployeeNotFound
		}

		probationary := !IsOverOneYear(emp.HireDate, today)
		emp.Balance = Balance{
			Days:       OverrideValue(input, probationary),
			Overridden: true,
		}

		if err := s.UpdateEmployee(ctx, *emp); err != nil {
			return err
		}
		updated = *emp
		return nil
	})
	if err != nil {
		return Employee{}, err
	}
	return updated, nil
}

// =============================================================================
// RENEWAL CREDIT (called by the Processor)
// =============================================================================

// ApplyRenewal credits one yearly allowance onto the employee's balance and
// stamps LastRenewal with today. The eligibility gate is re-checked inside
// the transaction so that overlapping runs cannot double-credit.
func (l *Ledger) ApplyRenewal(ctx context.Context, employeeID int64, today time.Time) (bool, error) {
	today = DateOf(today)

	unlock := l.lockEmployee(employeeID)
	defer unlock()

	applied := false
	err := l.store.WithTx(ctx, func(s Store) error {
		emp, err := s.GetEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return ErrEmployeeNotFound
		}

		if !RenewalDue(*emp, today) {
			return nil
		}

		emp.Balance = emp.Balance.Credit(emp.YearlyAllowance)
		emp.LastRenewal = &today

		if err := s.UpdateEmployee(ctx, *emp); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}
