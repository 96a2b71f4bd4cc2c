package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soumya813/college/internal/ledger/store"
	"github.com/soumya813/college/internal/ledger/types"
)

// EventStore is an in-memory append-only event log with the same
// ordering and subscription contract as the sqlite store. It is
// intended for tests and dev environments.
type EventStore struct {
	mu      sync.Mutex
	entries []entry
	nextSeq int64

	notifier *store.Notifier

	// Now is the clock used for OccurredAt assignment. Tests may
	// replace it; nil means time.Now.
	Now func() time.Time
}

type entry struct {
	ev  types.AccessEvent
	seq int64
}

func NewEventStore() *EventStore {
	s := &EventStore{}
	s.notifier = store.NewNotifier(s.QueryWindow)
	return s
}

func (s *EventStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *EventStore) Append(ctx context.Context, ev store.NewEvent) (types.AccessEvent, error) {
	if err := ev.Validate(); err != nil {
		return types.AccessEvent{}, err
	}

	out := types.AccessEvent{
		ID:         uuid.NewString(),
		PersonKey:  ev.PersonKey,
		Name:       ev.Name,
		Role:       ev.Role,
		Direction:  ev.Direction,
		OccurredAt: s.now().UTC(),
		RecordedBy: ev.RecordedBy,
		Notes:      ev.Notes,
	}

	s.mu.Lock()
	s.nextSeq++
	s.entries = append(s.entries, entry{ev: out, seq: s.nextSeq})
	s.mu.Unlock()

	s.notifier.EventAppended(out.OccurredAt)

	return out, nil
}

// Seed inserts a fully specified event, bypassing Append validation
// and timestamp assignment. Test helper for historical or guard rows.
func (s *EventStore) Seed(ev types.AccessEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.nextSeq++
	s.entries = append(s.entries, entry{ev: ev, seq: s.nextSeq})
	s.mu.Unlock()

	s.notifier.EventAppended(ev.OccurredAt)
}

func (s *EventStore) QueryWindow(_ context.Context, start, end time.Time) ([]types.AccessEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []entry
	for _, e := range s.entries {
		if !e.ev.OccurredAt.Before(start) && e.ev.OccurredAt.Before(end) {
			matched = append(matched, e)
		}
	}
	return sortDescending(matched), nil
}

func (s *EventStore) QueryByPerson(_ context.Context, personKey string) ([]types.AccessEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []entry
	for _, e := range s.entries {
		if e.ev.PersonKey == personKey {
			matched = append(matched, e)
		}
	}
	return sortDescending(matched), nil
}

func (s *EventStore) SubscribeWindow(start, end time.Time, onChange func([]types.AccessEvent)) (cancel func()) {
	return s.notifier.Subscribe(start, end, onChange)
}

// Events returns a copy of all stored events in insertion order.
// Test-only helper.
func (s *EventStore) Events() []types.AccessEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.AccessEvent, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.ev
	}
	return out
}

// sortDescending orders by OccurredAt descending with insertion order
// breaking ties (later inserts first), matching the sqlite ORDER BY.
func sortDescending(entries []entry) []types.AccessEvent {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ev.OccurredAt.Equal(entries[j].ev.OccurredAt) {
			return entries[i].seq > entries[j].seq
		}
		return entries[i].ev.OccurredAt.After(entries[j].ev.OccurredAt)
	})

	out := make([]types.AccessEvent, len(entries))
	for i, e := range entries {
		out[i] = e.ev
	}
	return out
}
