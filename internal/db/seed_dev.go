package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SeedDevOptions struct {
	// Operator stamped on the seeded entries; defaults to a dev guard.
	OperatorID   string
	OperatorName string
}

// SeedDev inserts a couple of sample access entries so a fresh dev
// database renders a non-empty dashboard. Idempotent via fixed ids.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	if opt.OperatorID == "" {
		opt.OperatorID = "guard-dev"
	}
	if opt.OperatorName == "" {
		opt.OperatorName = "Dev Guard"
	}

	now := time.Now().UTC()

	seed := []struct {
		id        string
		personKey string
		name      string
		role      string
		direction string
		at        time.Time
	}{
		{"seed-entry-1", "T001", "John Doe", "teacher", "in", now.Add(-90 * time.Minute)},
		{"seed-entry-2", "S001", "Jane Smith", "student", "in", now.Add(-45 * time.Minute)},
	}

	for _, e := range seed {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO access_entries(
  entry_id, person_key, name, role, direction,
  occurred_at_ms, recorded_by_id, recorded_by_name, notes
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, '');
`, e.id, e.personKey, e.name, e.role, e.direction,
			e.at.UnixMilli(), opt.OperatorID, opt.OperatorName); err != nil {
			return fmt.Errorf("seed entry %s: %w", e.id, err)
		}
	}

	return nil
}
