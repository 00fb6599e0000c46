/*
Package sqlite provides the SQLite-backed store of the incident service.

PURPOSE:
  Persists the plant and employee catalog, daily incidents and settings,
  and serves the vacation engine as its Directory, Ledger and Snapshotter.

KEY TABLES:
  plants:     Unique upper-cased plant names
  employees:  Catalog keyed by unique name (upsert target)
  incidences: One row per employee, day and incident type
  settings:   Key/value pairs (configured incident types)

MIGRATION:
  Schema is auto-migrated on New(). Databases created before companies
  were tracked get the employees.company column added in place.

CONCURRENCY:
  Writers are serialized with sync.RWMutex. The pool is capped at one
  connection: ":memory:" databases are per connection, and ReadSnapshot
  holds that connection for the duration of its read transaction, so code
  running inside a snapshot must only use the view it is handed.

USAGE:
  store, err := sqlite.New("incidencias.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := vacation.NewService(store, vacation.DefaultPolicy())

SEE ALSO:
  - catalog.go:   Plants and employees
  - incidents.go: Incident capture, weekly matrix, listings
  - settings.go:  Incident type list
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/catalog"
	"github.com/warp/incidencias/incident"
	"github.com/warp/incidencias/vacation"
)

// ErrEmployeeNotFound is returned when a name is not in the catalog.
var ErrEmployeeNotFound = errors.New("employee not found")

// Store implements the service's persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates it.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
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
	CREATE TABLE IF NOT EXISTS plants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		plant TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		days_per_year INTEGER NOT NULL DEFAULT 12,
		rest_day TEXT
	);

	CREATE TABLE IF NOT EXISTS incidences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dt TEXT NOT NULL,
		employee TEXT NOT NULL,
		plant TEXT NOT NULL,
		inc_type TEXT NOT NULL,
		hours REAL,
		notes TEXT
	);

	-- Vacation counts and the weekly matrix (hot path)
	CREATE INDEX IF NOT EXISTS idx_incidences_employee_type_dt
		ON incidences(employee, inc_type, dt);
	CREATE INDEX IF NOT EXISTS idx_incidences_dt
		ON incidences(dt);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.ensureCompanyColumn()
}

// ensureCompanyColumn adds employees.company to databases that predate it.
func (s *Store) ensureCompanyColumn() error {
	rows, err := s.db.Query("PRAGMA table_info(employees)")
	if err != nil {
		return fmt.Errorf("failed to inspect employees table: %w", err)
	}

	found := false
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		if strings.EqualFold(name, "company") {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if found {
		return nil
	}
	_, err = s.db.Exec("ALTER TABLE employees ADD COLUMN company TEXT")
	return err
}

// =============================================================================
// SNAPSHOTS (vacation.Snapshotter)
// =============================================================================

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ReadSnapshot runs fn against one read transaction so the directory and
// every vacation count come from the same database state.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(vacation.Directory, vacation.Ledger) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	view := &snapshotView{q: tx}
	if err := fn(view, view); err != nil {
		return err
	}
	return tx.Commit()
}

type snapshotView struct {
	q queryer
}

func (v *snapshotView) Employees(ctx context.Context) ([]vacation.EmployeeRecord, error) {
	return vacationRecords(ctx, v.q)
}

func (v *snapshotView) CountVacationDays(ctx context.Context, employee string, period calendar.Period) (int, error) {
	return countVacationDays(ctx, v.q, employee, period)
}

// Employees implements vacation.Directory outside a snapshot.
func (s *Store) Employees(ctx context.Context) ([]vacation.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return vacationRecords(ctx, s.db)
}

// CountVacationDays implements vacation.Ledger outside a snapshot.
func (s *Store) CountVacationDays(ctx context.Context, employee string, period calendar.Period) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countVacationDays(ctx, s.db, employee, period)
}

func vacationRecords(ctx context.Context, q queryer) ([]vacation.EmployeeRecord, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT name, plant, hire_date, days_per_year FROM employees ORDER BY plant, name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []vacation.EmployeeRecord
	for rows.Next() {
		var emp catalog.Employee
		if err := rows.Scan(&emp.Name, &emp.Plant, &emp.HireDate, &emp.AnnualDays); err != nil {
			return nil, err
		}
		out = append(out, emp.Record())
	}
	return out, rows.Err()
}

func countVacationDays(ctx context.Context, q queryer, employee string, period calendar.Period) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM incidences
		WHERE employee = ? AND inc_type = ?
		  AND DATE(dt) >= DATE(?) AND DATE(dt) <= DATE(?)
	`, employee, incident.TypeVacation, period.Start.String(), period.End.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count vacation days: %w", err)
	}
	return n, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// withTx executes fn within a write transaction.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// filterValue maps "" and TODAS to no filter.
func filterValue(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == incident.All {
		return ""
	}
	return v
}

var (
	_ vacation.Directory   = (*Store)(nil)
	_ vacation.Ledger      = (*Store)(nil)
	_ vacation.Snapshotter = (*Store)(nil)
)
