/*
Package sqlite provides the SQLite-backed implementation of leave.Store.

PURPOSE:
  Persists the two record collections (employees, leave_records) plus the
  renewal-run audit table. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:     identity, allowance, hire date, signed balance + override flag
  leave_records: leave entries, foreign-keyed to employees
  renewal_runs:  per-run report of the renewal processor

ATOMICITY:
  WithTx wraps a function in a database transaction. The ledger uses it so
  that a record write and its balance debit/credit commit together or not
  at all.

AMOUNT STORAGE:
  Day counts and balances are stored as decimal strings, never floats.
  Half-day arithmetic must survive a round trip exactly.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

CONCURRENCY:
  Uses sync.RWMutex for thread-safety at the store level; the ledger adds
  per-employee serialization above it.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := leave.NewLedger(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/store.go: interface definition
  - leave/ledger.go: the transactional write paths
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-ledger/leave"
)

const dateFormat = "2006-01-02"

// Store implements leave.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite allows a single writer, and :memory:
	// databases are per-connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		department TEXT NOT NULL,
		yearly_allowance TEXT NOT NULL DEFAULT '15',
		hire_date TEXT NOT NULL,
		last_renewal_date TEXT,
		remaining_days TEXT,
		balance_overridden INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL REFERENCES employees(id),
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_records_employee
		ON leave_records(employee_id);

	-- Dashboard listing is newest-created first (hot path)
	CREATE INDEX IF NOT EXISTS idx_leave_records_created
		ON leave_records(created_at DESC);

	-- Calendar month queries scan by range overlap
	CREATE INDEX IF NOT EXISTS idx_leave_records_range
		ON leave_records(start_date, end_date);

	CREATE TABLE IF NOT EXISTS renewal_runs (
		id TEXT PRIMARY KEY,
		processed_at TEXT NOT NULL,
		scanned INTEGER NOT NULL,
		renewed INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_renewal_runs_processed
		ON renewal_runs(processed_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Reset wipes all data. Used by the demo scenario loaders; never call in
// production.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"leave_records", "employees", "renewal_runs"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// dbtx is the common surface of *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore routes every call through one open transaction.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) GetEmployee(ctx context.Context, id int64) (*leave.Employee, error) {
	return getEmployee(ctx, ts.tx, id)
}

func (ts *txStore) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	return listEmployees(ctx, ts.tx)
}

func (ts *txStore) InsertEmployee(ctx context.Context, e leave.Employee) (int64, error) {
	return insertEmployee(ctx, ts.tx, e)
}

func (ts *txStore) UpdateEmployee(ctx context.Context, e leave.Employee) error {
	return updateEmployee(ctx, ts.tx, e)
}

func (ts *txStore) DeleteEmployee(ctx context.Context, id int64) error {
	return deleteEmployee(ctx, ts.tx, id)
}

func (ts *txStore) GetLeave(ctx context.Context, id int64) (*leave.Record, error) {
	return getLeave(ctx, ts.tx, id)
}

func (ts *txStore) ListLeaves(ctx context.Context) ([]leave.RecordWithEmployee, error) {
	return listLeaves(ctx, ts.tx)
}

func (ts *txStore) ListLeavesForEmployee(ctx context.Context, employeeID int64) ([]leave.Record, error) {
	return listLeavesForEmployee(ctx, ts.tx, employeeID)
}

func (ts *txStore) ListLeavesOverlapping(ctx context.Context, from, to time.Time) ([]leave.RecordWithEmployee, error) {
	return listLeavesOverlapping(ctx, ts.tx, from, to)
}

func (ts *txStore) CountLeavesForEmployee(ctx context.Context, employeeID int64) (int, error) {
	return countLeavesForEmployee(ctx, ts.tx, employeeID)
}

func (ts *txStore) InsertLeave(ctx context.Context, r leave.Record) (int64, error) {
	return insertLeave(ctx, ts.tx, r)
}

func (ts *txStore) UpdateLeave(ctx context.Context, r leave.Record) error {
	return updateLeave(ctx, ts.tx, r)
}

func (ts *txStore) DeleteLeave(ctx context.Context, id int64) error {
	return deleteLeave(ctx, ts.tx, id)
}

func (ts *txStore) SaveRenewalRun(ctx context.Context, run leave.RenewalRun) error {
	return saveRenewalRun(ctx, ts.tx, run)
}

func (ts *txStore) ListRenewalRuns(ctx context.Context) ([]leave.RenewalRun, error) {
	return listRenewalRuns(ctx, ts.tx)
}

// WithTx on an already-open transaction reuses it.
func (ts *txStore) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	return fn(ts)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) GetEmployee(ctx context.Context, id int64) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEmployee(ctx, s.db, id)
}

func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEmployees(ctx, s.db)
}

func (s *Store) InsertEmployee(ctx context.Context, e leave.Employee) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertEmployee(ctx, s.db, e)
}

func (s *Store) UpdateEmployee(ctx context.Context, e leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateEmployee(ctx, s.db, e)
}

func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteEmployee(ctx, s.db, id)
}

const employeeColumns = `id, name, department, yearly_allowance, hire_date,
	last_renewal_date, remaining_days, balance_overridden, created_at`

func getEmployee(ctx context.Context, db dbtx, id int64) (*leave.Employee, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)

	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func listEmployees(ctx context.Context, db dbtx) ([]leave.Employee, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []leave.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

func insertEmployee(ctx context.Context, db dbtx, e leave.Employee) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO employees
		(name, department, yearly_allowance, hire_date, last_renewal_date,
		 remaining_days, balance_overridden, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name,
		e.Department,
		e.YearlyAllowance.String(),
		e.HireDate.Format(dateFormat),
		nullDate(e.LastRenewal),
		e.Balance.Days.String(),
		boolToInt(e.Balance.Overridden),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert employee: %w", err)
	}
	return res.LastInsertId()
}

func updateEmployee(ctx context.Context, db dbtx, e leave.Employee) error {
	res, err := db.ExecContext(ctx, `
		UPDATE employees SET
			name = ?, department = ?, yearly_allowance = ?, hire_date = ?,
			last_renewal_date = ?, remaining_days = ?, balance_overridden = ?
		WHERE id = ?`,
		e.Name,
		e.Department,
		e.YearlyAllowance.String(),
		e.HireDate.Format(dateFormat),
		nullDate(e.LastRenewal),
		e.Balance.Days.String(),
		boolToInt(e.Balance.Overridden),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrEmployeeNotFound
	}
	return nil
}

func deleteEmployee(ctx context.Context, db dbtx, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrEmployeeNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*leave.Employee, error) {
	var (
		emp         leave.Employee
		allowance   string
		hireDate    string
		lastRenewal sql.NullString
		remaining   sql.NullString
		overridden  int
		createdAt   string
	)

	err := row.Scan(&emp.ID, &emp.Name, &emp.Department, &allowance, &hireDate,
		&lastRenewal, &remaining, &overridden, &createdAt)
	if err != nil {
		return nil, err
	}

	emp.YearlyAllowance = parseDecimal(allowance)
	emp.HireDate, _ = time.Parse(dateFormat, hireDate)
	if lastRenewal.Valid {
		t, _ := time.Parse(dateFormat, lastRenewal.String)
		emp.LastRenewal = &t
	}
	// A NULL balance is a never-touched ledger: zero, not overridden.
	if remaining.Valid {
		emp.Balance.Days = parseDecimal(remaining.String)
	}
	emp.Balance.Overridden = overridden != 0
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &emp, nil
}

// =============================================================================
// LEAVE RECORDS
// =============================================================================

func (s *Store) GetLeave(ctx context.Context, id int64) (*leave.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLeave(ctx, s.db, id)
}

func (s *Store) ListLeaves(ctx context.Context) ([]leave.RecordWithEmployee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLeaves(ctx, s.db)
}

func (s *Store) ListLeavesForEmployee(ctx context.Context, employeeID int64) ([]leave.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLeavesForEmployee(ctx, s.db, employeeID)
}

func (s *Store) ListLeavesOverlapping(ctx context.Context, from, to time.Time) ([]leave.RecordWithEmployee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLeavesOverlapping(ctx, s.db, from, to)
}

func (s *Store) CountLeavesForEmployee(ctx context.Context, employeeID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countLeavesForEmployee(ctx, s.db, employeeID)
}

func (s *Store) InsertLeave(ctx context.Context, r leave.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertLeave(ctx, s.db, r)
}

func (s *Store) UpdateLeave(ctx context.Context, r leave.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateLeave(ctx, s.db, r)
}

func (s *Store) DeleteLeave(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteLeave(ctx, s.db, id)
}

const leaveColumns = `id, employee_id, leave_type, start_date, end_date, reason, created_at`

func getLeave(ctx context.Context, db dbtx, id int64) (*leave.Record, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+leaveColumns+` FROM leave_records WHERE id = ?`, id)

	rec, err := scanLeave(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func listLeaves(ctx context.Context, db dbtx) ([]leave.RecordWithEmployee, error) {
	return queryJoinedLeaves(ctx, db, `
		SELECT l.id, l.employee_id, l.leave_type, l.start_date, l.end_date,
		       l.reason, l.created_at, e.name
		FROM leave_records l
		JOIN employees e ON l.employee_id = e.id
		ORDER BY l.created_at DESC, l.id DESC`)
}

func listLeavesForEmployee(ctx context.Context, db dbtx, employeeID int64) ([]leave.Record, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+leaveColumns+` FROM leave_records
		 WHERE employee_id = ?
		 ORDER BY start_date DESC, id DESC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave records: %w", err)
	}
	defer rows.Close()

	var records []leave.Record
	for rows.Next() {
		rec, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func listLeavesOverlapping(ctx context.Context, db dbtx, from, to time.Time) ([]leave.RecordWithEmployee, error) {
	return queryJoinedLeaves(ctx, db, `
		SELECT l.id, l.employee_id, l.leave_type, l.start_date, l.end_date,
		       l.reason, l.created_at, e.name
		FROM leave_records l
		JOIN employees e ON l.employee_id = e.id
		WHERE l.start_date <= ? AND l.end_date >= ?
		ORDER BY l.start_date ASC, l.id ASC`,
		to.Format(dateFormat), from.Format(dateFormat))
}

func queryJoinedLeaves(ctx context.Context, db dbtx, query string, args ...any) ([]leave.RecordWithEmployee, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave records: %w", err)
	}
	defer rows.Close()

	var records []leave.RecordWithEmployee
	for rows.Next() {
		var (
			rec       leave.RecordWithEmployee
			start     string
			end       string
			reason    sql.NullString
			createdAt string
		)
		err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Type, &start, &end,
			&reason, &createdAt, &rec.EmployeeName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave record: %w", err)
		}
		rec.StartDate, _ = time.Parse(dateFormat, start)
		rec.EndDate, _ = time.Parse(dateFormat, end)
		rec.Reason = reason.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func countLeavesForEmployee(ctx context.Context, db dbtx, employeeID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leave_records WHERE employee_id = ?`,
		employeeID,
	).Scan(&count)
	return count, err
}

func insertLeave(ctx context.Context, db dbtx, r leave.Record) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO leave_records
		(employee_id, leave_type, start_date, end_date, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.EmployeeID,
		r.Type,
		r.StartDate.Format(dateFormat),
		r.EndDate.Format(dateFormat),
		nullString(r.Reason),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert leave record: %w", err)
	}
	return res.LastInsertId()
}

func updateLeave(ctx context.Context, db dbtx, r leave.Record) error {
	res, err := db.ExecContext(ctx, `
		UPDATE leave_records SET leave_type = ?, reason = ?
		WHERE id = ?`,
		r.Type, nullString(r.Reason), r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

func deleteLeave(ctx context.Context, db dbtx, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM leave_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

func scanLeave(row rowScanner) (*leave.Record, error) {
	var (
		rec       leave.Record
		start     string
		end       string
		reason    sql.NullString
		createdAt string
	)

	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.Type, &start, &end, &reason, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.StartDate, _ = time.Parse(dateFormat, start)
	rec.EndDate, _ = time.Parse(dateFormat, end)
	rec.Reason = reason.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &rec, nil
}

// =============================================================================
// RENEWAL RUNS
// =============================================================================

func (s *Store) SaveRenewalRun(ctx context.Context, run leave.RenewalRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRenewalRun(ctx, s.db, run)
}

func (s *Store) ListRenewalRuns(ctx context.Context) ([]leave.RenewalRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRenewalRuns(ctx, s.db)
}

func saveRenewalRun(ctx context.Context, db dbtx, run leave.RenewalRun) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO renewal_runs (id, processed_at, scanned, renewed, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.ProcessedAt.Format(dateFormat),
		run.Scanned,
		run.Renewed,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save renewal run: %w", err)
	}
	return nil
}

func listRenewalRuns(ctx context.Context, db dbtx) ([]leave.RenewalRun, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, processed_at, scanned, renewed, created_at
		FROM renewal_runs
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query renewal runs: %w", err)
	}
	defer rows.Close()

	var runs []leave.RenewalRun
	for rows.Next() {
		var (
			run       leave.RenewalRun
			processed string
			createdAt string
		)
		if err := rows.Scan(&run.ID, &processed, &run.Scanned, &run.Renewed, &createdAt); err != nil {
			return nil, err
		}
		run.ProcessedAt, _ = time.Parse(dateFormat, processed)
		run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateFormat)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
