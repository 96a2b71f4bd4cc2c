package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	dbpkg "github.com/soumya813/college/internal/db"
	"github.com/soumya813/college/internal/ledger/store"
	"github.com/soumya813/college/internal/ledger/types"
)

// EventStore persists access entries as an append-only log. Writes go
// through the serialized db worker; reads hit the connection directly.
type EventStore struct {
	db       *sql.DB
	writer   *dbpkg.Worker
	notifier *store.Notifier
	now      func() time.Time
}

func NewEventStore(db *sql.DB, writer *dbpkg.Worker) *EventStore {
	s := &EventStore{db: db, writer: writer, now: time.Now}
	s.notifier = store.NewNotifier(s.QueryWindow)
	return s
}

func (s *EventStore) Append(ctx context.Context, ev store.NewEvent) (types.AccessEvent, error) {
	if err := ev.Validate(); err != nil {
		return types.AccessEvent{}, err
	}

	// The store, not the caller, assigns identity and event time.
	// Truncated to the column's millisecond precision so the returned
	// event equals what every later read will see.
	id := uuid.NewString()
	occurredAt := s.now().UTC().Truncate(time.Millisecond)

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO access_entries(
  entry_id, person_key, name, role, direction,
  occurred_at_ms, recorded_by_id, recorded_by_name, notes
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			id, ev.PersonKey, ev.Name, string(ev.Role), string(ev.Direction),
			occurredAt.UnixMilli(), ev.RecordedBy.ID, ev.RecordedBy.Name, ev.Notes,
		)
		return err
	})
	if err != nil {
		return types.AccessEvent{}, &store.Error{Op: "append", Err: err}
	}

	out := types.AccessEvent{
		ID:         id,
		PersonKey:  ev.PersonKey,
		Name:       ev.Name,
		Role:       ev.Role,
		Direction:  ev.Direction,
		OccurredAt: occurredAt,
		RecordedBy: ev.RecordedBy,
		Notes:      ev.Notes,
	}

	// Notify only after the transaction committed, so subscribers
	// re-querying the window are guaranteed to see the new row.
	s.notifier.EventAppended(occurredAt)

	return out, nil
}

const selectColumns = `
SELECT entry_id, person_key, name, role, direction,
       occurred_at_ms, recorded_by_id, recorded_by_name, notes
FROM access_entries`

func (s *EventStore) QueryWindow(ctx context.Context, start, end time.Time) ([]types.AccessEvent, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
WHERE occurred_at_ms >= ? AND occurred_at_ms < ?
ORDER BY occurred_at_ms DESC, seq DESC;
`, start.UTC().UnixMilli(), end.UTC().UnixMilli())
	if err != nil {
		return nil, &store.Error{Op: "query_window", Err: err}
	}
	return scanEvents(rows, "query_window")
}

func (s *EventStore) QueryByPerson(ctx context.Context, personKey string) ([]types.AccessEvent, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
WHERE person_key = ?
ORDER BY occurred_at_ms DESC, seq DESC;
`, personKey)
	if err != nil {
		return nil, &store.Error{Op: "query_by_person", Err: err}
	}
	return scanEvents(rows, "query_by_person")
}

func (s *EventStore) SubscribeWindow(start, end time.Time, onChange func([]types.AccessEvent)) (cancel func()) {
	return s.notifier.Subscribe(start, end, onChange)
}

func scanEvents(rows *sql.Rows, op string) ([]types.AccessEvent, error) {
	defer rows.Close()

	var out []types.AccessEvent
	for rows.Next() {
		var (
			ev         types.AccessEvent
			role, dir  string
			occurredMs int64
		)
		if err := rows.Scan(
			&ev.ID, &ev.PersonKey, &ev.Name, &role, &dir,
			&occurredMs, &ev.RecordedBy.ID, &ev.RecordedBy.Name, &ev.Notes,
		); err != nil {
			return nil, &store.Error{Op: op, Err: err}
		}
		ev.Role = types.Role(role)
		ev.Direction = types.Direction(dir)
		ev.OccurredAt = time.UnixMilli(occurredMs).UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.Error{Op: op, Err: err}
	}
	return out, nil
}
