package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
)

func openRaw(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:db_%s?mode=memory&cache=shared", t.Name())
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestMigrate_Idempotent(t *testing.T) {
	conn := openRaw(t)
	ctx := context.Background()

	if err := Migrate(ctx, conn); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := Migrate(ctx, conn); err != nil {
		t.Fatalf("second Migrate must be a no-op: %v", err)
	}

	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM schema_migrations;").Scan(&n); err != nil {
		t.Fatalf("count applied migrations: %v", err)
	}
	if n == 0 {
		t.Error("expected at least one recorded migration")
	}
}

func TestWorker_CommitsInArrivalOrder(t *testing.T) {
	conn := openRaw(t)
	ctx := context.Background()
	if err := Migrate(ctx, conn); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	w := NewWorker(conn)
	defer w.Close()

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("e%d", i)
		err := w.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
INSERT INTO access_entries(
  entry_id, person_key, name, role, direction,
  occurred_at_ms, recorded_by_id, recorded_by_name, notes
) VALUES (?, 'S1', 'Jane', 'student', 'in', 1000, 'G1', 'Gate Guard', '');
`, id)
			return err
		})
		if err != nil {
			t.Fatalf("Do(%s): %v", id, err)
		}
	}

	rows, err := conn.Query("SELECT entry_id FROM access_entries ORDER BY seq;")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	var got []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, id)
	}
	if len(got) != 3 || got[0] != "e0" || got[2] != "e2" {
		t.Errorf("expected arrival order [e0 e1 e2], got %v", got)
	}
}

func TestWorker_RollsBackOnError(t *testing.T) {
	conn := openRaw(t)
	ctx := context.Background()
	if err := Migrate(ctx, conn); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	w := NewWorker(conn)
	defer w.Close()

	sentinel := fmt.Errorf("boom")
	err := w.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO access_entries(
  entry_id, person_key, name, role, direction,
  occurred_at_ms, recorded_by_id, recorded_by_name, notes
) VALUES ('e1', 'S1', 'Jane', 'student', 'in', 1000, 'G1', 'Gate Guard', '');
`); err != nil {
			return err
		}
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("expected the callback error back, got %v", err)
	}

	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM access_entries;").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected rollback to discard the insert, found %d rows", n)
	}
}

func TestParseVersion(t *testing.T) {
	cases := []struct {
		filename string
		want     int
		wantErr  bool
	}{
		{"0001_init.sql", 1, false},
		{"0012_add_notes.sql", 12, false},
		{"0000_zero.sql", 0, false},
		{"init.sql", 0, true},
	}
	for _, c := range cases {
		got, err := parseVersion(c.filename)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseVersion(%q): expected error", c.filename)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseVersion(%q): %v", c.filename, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseVersion(%q) = %d, want %d", c.filename, got, c.want)
		}
	}
}
