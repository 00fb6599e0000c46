package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/warp/incidencias/calendar"
	"github.com/warp/incidencias/incident"
)

// RecentLimit is how many incidents the capture screen lists.
const RecentLimit = 50

// InsertIncident stores one incident and returns its ID. The incident must
// already be normalized and validated.
func (s *Store) InsertIncident(ctx context.Context, inc incident.Incident) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return insertIncident(ctx, s.db, inc)
}

func insertIncident(ctx context.Context, db execer, inc incident.Incident) (int64, error) {
	var hours sql.NullFloat64
	if inc.Hours != nil {
		hours = sql.NullFloat64{Float64: *inc.Hours, Valid: true}
	}

	res, err := db.ExecContext(ctx,
		"INSERT INTO incidences(dt, employee, plant, inc_type, hours, notes) VALUES(?, ?, ?, ?, ?, ?)",
		inc.Date.String(), inc.Employee, inc.Plant, inc.Type, hours, nullString(inc.Notes),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert incident: %w", err)
	}
	return res.LastInsertId()
}

// ReplaceDay deletes the employee's incidents on the change's day and, unless
// the change clears the cell, records the new type under the employee's
// catalog plant.
func (s *Store) ReplaceDay(ctx context.Context, change incident.CellChange) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return replaceDay(ctx, tx, change)
	})
}

// SaveWeek applies every change of a weekly grid in one transaction and
// returns how many incidents were recorded.
func (s *Store) SaveWeek(ctx context.Context, changes []incident.CellChange) (int, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range changes {
			if err := replaceDay(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incident.Recorded(changes), nil
}

func replaceDay(ctx context.Context, tx *sql.Tx, change incident.CellChange) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM incidences WHERE employee = ? AND DATE(dt) = DATE(?)",
		change.Employee, change.Date.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to clear day: %w", err)
	}
	if change.Clears() {
		return nil
	}

	emp, err := getEmployee(ctx, tx, change.Employee)
	if err != nil {
		return err
	}
	_, err = insertIncident(ctx, tx, incident.Incident{
		Date:     change.Date,
		Employee: emp.Name,
		Plant:    emp.Plant,
		Type:     incident.NormalizeCell(change.Type),
	})
	return err
}

// ListIncidents returns incidents joined with the employee's company, most
// recent day first, then by plant and employee. Limit <= 0 means no limit.
func (s *Store) ListIncidents(ctx context.Context, f incident.Filter) ([]incident.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT i.id, i.dt, i.employee, i.plant, i.inc_type, i.hours,
		       COALESCE(i.notes, ''), COALESCE(e.company, '')
		FROM incidences i
		LEFT JOIN employees e ON e.name = i.employee
		WHERE 1=1
	`
	var args []any
	if !f.From.IsZero() {
		query += " AND DATE(i.dt) >= DATE(?)"
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		query += " AND DATE(i.dt) <= DATE(?)"
		args = append(args, f.To.String())
	}
	if p := f.PlantFilter(); p != "" {
		query += " AND i.plant = ?"
		args = append(args, p)
	}
	if c := f.CompanyFilter(); c != "" {
		query += " AND COALESCE(e.company, '') = ?"
		args = append(args, c)
	}
	if t := f.TypeFilter(); t != "" {
		query += " AND i.inc_type = ?"
		args = append(args, t)
	}
	query += " ORDER BY DATE(i.dt) DESC, i.plant, i.employee, i.id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	var out []incident.Incident
	for rows.Next() {
		var (
			inc   incident.Incident
			dt    string
			hours sql.NullFloat64
		)
		if err := rows.Scan(&inc.ID, &dt, &inc.Employee, &inc.Plant, &inc.Type, &hours, &inc.Notes, &inc.Company); err != nil {
			return nil, err
		}
		if inc.Date, err = calendar.ParseDate(dt); err != nil {
			return nil, fmt.Errorf("incident %d has invalid date %q: %w", inc.ID, dt, err)
		}
		if hours.Valid {
			h := hours.Float64
			inc.Hours = &h
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

// RecentIncidents returns the latest captures for the capture screen.
func (s *Store) RecentIncidents(ctx context.Context) ([]incident.Incident, error) {
	return s.ListIncidents(ctx, incident.Filter{Limit: RecentLimit})
}

// IncidentsInPeriod returns every incident within the period.
func (s *Store) IncidentsInPeriod(ctx context.Context, period calendar.Period) ([]incident.Incident, error) {
	return s.ListIncidents(ctx, incident.Filter{From: period.Start, To: period.End})
}
