package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/warp/incidencias/incident"
)

const keyIncidentTypes = "incident_types"

// IncidentTypes returns the configured type set, or the defaults when none
// has been saved.
func (s *Store) IncidentTypes(ctx context.Context) (incident.TypeSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", keyIncidentTypes).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return incident.DefaultTypeSet(), nil
	}
	if err != nil {
		return incident.TypeSet{}, fmt.Errorf("failed to read incident types: %w", err)
	}

	var types []string
	if err := json.Unmarshal([]byte(raw), &types); err != nil {
		return incident.TypeSet{}, fmt.Errorf("failed to decode incident types: %w", err)
	}
	ts, err := incident.NewTypeSet(types)
	if errors.Is(err, incident.ErrEmptyTypes) {
		return incident.DefaultTypeSet(), nil
	}
	return ts, err
}

// SaveIncidentTypes persists the configured type set.
func (s *Store) SaveIncidentTypes(ctx context.Context, ts incident.TypeSet) error {
	raw, err := json.Marshal(ts.Configured())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, keyIncidentTypes, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save incident types: %w", err)
	}
	return nil
}
