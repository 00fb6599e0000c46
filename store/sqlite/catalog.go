package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/incidencias/catalog"
)

// =============================================================================
// PLANTS
// =============================================================================

// SeedPlants inserts names only when the plants table is empty. Returns the
// number of plants inserted.
func (s *Store) SeedPlants(ctx context.Context, names []string) (int, error) {
	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM plants").Scan(&count); err != nil {
			return fmt.Errorf("failed to count plants: %w", err)
		}
		if count > 0 {
			return nil
		}
		for _, n := range names {
			n = catalog.NormalizeName(n)
			if n == "" {
				continue
			}
			res, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO plants(name) VALUES(?)", n)
			if err != nil {
				return fmt.Errorf("failed to seed plant %q: %w", n, err)
			}
			if affected, _ := res.RowsAffected(); affected > 0 {
				inserted++
			}
		}
		return nil
	})
	return inserted, err
}

// AddPlant inserts a plant; an existing name is left as is.
func (s *Store) AddPlant(ctx context.Context, name string) error {
	name = catalog.NormalizeName(name)
	if name == "" {
		return catalog.ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO plants(name) VALUES(?)", name); err != nil {
		return fmt.Errorf("failed to add plant: %w", err)
	}
	return nil
}

// ListPlants returns plant names in alphabetical order.
func (s *Store) ListPlants(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryStrings(ctx, s.db, "SELECT name FROM plants ORDER BY name")
}

// ListZones returns the distinct plants employees are assigned to.
func (s *Store) ListZones(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryStrings(ctx, s.db,
		"SELECT DISTINCT plant FROM employees WHERE plant IS NOT NULL AND plant <> '' ORDER BY 1")
}

// ListCompanies returns the distinct non-empty companies of employees.
func (s *Store) ListCompanies(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryStrings(ctx, s.db,
		"SELECT DISTINCT company FROM employees WHERE company IS NOT NULL AND company <> '' ORDER BY 1")
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeFilter narrows ListEmployees. Empty or TODAS means all.
type EmployeeFilter struct {
	Plant   string
	Company string
}

// UpsertEmployees inserts or updates employees by name in one transaction.
// Every employee is normalized first; an invalid one aborts the batch.
func (s *Store) UpsertEmployees(ctx context.Context, employees []catalog.Employee) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, emp := range employees {
			emp = emp.Normalize()
			if err := emp.Validate(); err != nil {
				return fmt.Errorf("employee %q: %w", emp.Name, err)
			}
			if err := upsertEmployee(ctx, tx, emp); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertEmployee inserts or updates one employee by name.
func (s *Store) UpsertEmployee(ctx context.Context, emp catalog.Employee) error {
	return s.UpsertEmployees(ctx, []catalog.Employee{emp})
}

func upsertEmployee(ctx context.Context, db execer, emp catalog.Employee) error {
	query := `
		INSERT INTO employees (name, plant, hire_date, days_per_year, rest_day, company)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			plant = excluded.plant,
			hire_date = excluded.hire_date,
			days_per_year = excluded.days_per_year,
			rest_day = excluded.rest_day,
			company = excluded.company
	`
	_, err := db.ExecContext(ctx, query,
		emp.Name, emp.Plant, emp.HireDate, emp.AnnualDays,
		nullString(emp.RestDay), nullString(emp.Company),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert employee %q: %w", emp.Name, err)
	}
	return nil
}

// GetEmployee retrieves an employee by name.
func (s *Store) GetEmployee(ctx context.Context, name string) (catalog.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getEmployee(ctx, s.db, catalog.NormalizeName(name))
}

func getEmployee(ctx context.Context, q queryer, name string) (catalog.Employee, error) {
	row := q.QueryRowContext(ctx, `
		SELECT name, plant, hire_date, days_per_year, COALESCE(rest_day, ''), COALESCE(company, '')
		FROM employees WHERE name = ?
	`, name)

	var emp catalog.Employee
	err := row.Scan(&emp.Name, &emp.Plant, &emp.HireDate, &emp.AnnualDays, &emp.RestDay, &emp.Company)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Employee{}, fmt.Errorf("%w: %s", ErrEmployeeNotFound, name)
	}
	if err != nil {
		return catalog.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// ListEmployees returns employees ordered by company, plant and name.
func (s *Store) ListEmployees(ctx context.Context, f EmployeeFilter) ([]catalog.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT name, plant, hire_date, days_per_year, COALESCE(rest_day, ''), COALESCE(company, '')
		FROM employees WHERE 1=1
	`
	var args []any
	if p := filterValue(f.Plant); p != "" {
		query += " AND plant = ?"
		args = append(args, p)
	}
	if c := filterValue(f.Company); c != "" {
		query += " AND COALESCE(company, '') = ?"
		args = append(args, c)
	}
	query += " ORDER BY COALESCE(company, ''), plant, name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []catalog.Employee
	for rows.Next() {
		var emp catalog.Employee
		if err := rows.Scan(&emp.Name, &emp.Plant, &emp.HireDate, &emp.AnnualDays, &emp.RestDay, &emp.Company); err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

// EmployeeNames returns the names of ListEmployees, in name order.
func (s *Store) EmployeeNames(ctx context.Context, f EmployeeFilter) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT name FROM employees WHERE 1=1"
	var args []any
	if p := filterValue(f.Plant); p != "" {
		query += " AND plant = ?"
		args = append(args, p)
	}
	if c := filterValue(f.Company); c != "" {
		query += " AND COALESCE(company, '') = ?"
		args = append(args, c)
	}
	query += " ORDER BY name"
	return queryStrings(ctx, s.db, query, args...)
}

func queryStrings(ctx context.Context, q queryer, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
