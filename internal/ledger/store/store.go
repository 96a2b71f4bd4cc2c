package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soumya813/college/internal/ledger/types"
)

var (
	ErrPersonKeyRequired = errors.New("person key is required")
	ErrNameRequired      = errors.New("name is required")
	ErrInvalidRole       = errors.New("role must be student or teacher")
	ErrInvalidDirection  = errors.New("direction must be in or out")
)

// Error wraps a backend failure (connectivity, permission, constraint)
// on a store operation. Callers that need the availability-over-
// correctness read behavior check for it with errors.As.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// NewEvent is the append input. The store assigns ID and OccurredAt.
type NewEvent struct {
	PersonKey  string
	Name       string
	Role       types.Role
	Direction  types.Direction
	RecordedBy types.Operator
	Notes      string
}

// Validate enforces the append preconditions before any write is
// attempted. Guard is not a recordable role through this path.
func (e NewEvent) Validate() error {
	if e.PersonKey == "" {
		return ErrPersonKeyRequired
	}
	if e.Name == "" {
		return ErrNameRequired
	}
	if e.Role != types.RoleStudent && e.Role != types.RoleTeacher {
		return ErrInvalidRole
	}
	if !e.Direction.Valid() {
		return ErrInvalidDirection
	}
	return nil
}

// EventStore is the append-only gateway to the persistent event log.
//
// Ordering contract for reads: OccurredAt descending, ties broken by
// insertion order (later inserts first), stable within one call.
// QueryWindow windows are half-open [start, end).
//
// SubscribeWindow delivers the full current window snapshot once on
// subscribe and again after every in-window append; snapshots are
// full replacements, never deltas. A failed backend read inside the
// subscription delivers an empty snapshot instead of terminating.
// The returned cancel func is idempotent and guarantees no further
// delivery after it returns.
type EventStore interface {
	Append(ctx context.Context, ev NewEvent) (types.AccessEvent, error)
	QueryWindow(ctx context.Context, start, end time.Time) ([]types.AccessEvent, error)
	QueryByPerson(ctx context.Context, personKey string) ([]types.AccessEvent, error)
	SubscribeWindow(start, end time.Time, onChange func([]types.AccessEvent)) (cancel func())
}
