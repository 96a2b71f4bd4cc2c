package store

import (
	"context"
	"sync"
	"time"

	"github.com/soumya813/college/internal/ledger/types"
)

// Notifier fans out full window snapshots to subscribers after every
// append. Stores embed one and call EventAppended once a write is
// durably committed.
//
// Delivery is synchronous on the appender's goroutine. Each subscriber
// re-queries and delivers under its own lock, so query and callback
// form one atomic step per subscriber: a snapshot can never be
// delivered after a fresher one, and the last delivery always reflects
// every committed append whose notification has started. Cancel takes
// the same lock; once it returns, no further callback can run, even if
// a notification was already in flight.
type Notifier struct {
	query func(ctx context.Context, start, end time.Time) ([]types.AccessEvent, error)

	mu   sync.Mutex
	subs map[*windowSub]struct{}
}

type windowSub struct {
	start, end time.Time
	onChange   func([]types.AccessEvent)

	mu        sync.Mutex
	cancelled bool
}

func NewNotifier(query func(ctx context.Context, start, end time.Time) ([]types.AccessEvent, error)) *Notifier {
	return &Notifier{
		query: query,
		subs:  make(map[*windowSub]struct{}),
	}
}

// Subscribe registers a window subscription and delivers the initial
// snapshot before returning. The cancel func is safe to call more
// than once.
func (n *Notifier) Subscribe(start, end time.Time, onChange func([]types.AccessEvent)) (cancel func()) {
	sub := &windowSub{start: start, end: end, onChange: onChange}

	// Register before the initial snapshot: an append racing this
	// call either lands in our query or triggers its own delivery,
	// ordered by the subscriber lock inside refresh.
	n.mu.Lock()
	n.subs[sub] = struct{}{}
	n.mu.Unlock()

	n.refresh(sub)

	return func() {
		sub.mu.Lock()
		sub.cancelled = true
		sub.mu.Unlock()

		n.mu.Lock()
		delete(n.subs, sub)
		n.mu.Unlock()
	}
}

// EventAppended re-queries and re-delivers the window of every
// subscriber whose window contains occurredAt.
func (n *Notifier) EventAppended(occurredAt time.Time) {
	n.mu.Lock()
	matched := make([]*windowSub, 0, len(n.subs))
	for sub := range n.subs {
		if !occurredAt.Before(sub.start) && occurredAt.Before(sub.end) {
			matched = append(matched, sub)
		}
	}
	n.mu.Unlock()

	for _, sub := range matched {
		n.refresh(sub)
	}
}

// refresh queries the subscriber's window and delivers the result as
// one step under the subscriber lock. Querying inside the lock is what
// keeps deliveries monotonic: whichever caller wins the lock last also
// queried last.
func (n *Notifier) refresh(sub *windowSub) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.cancelled {
		return
	}

	events, err := n.query(context.Background(), sub.start, sub.end)
	if err != nil {
		// A live subscription never terminates on transient failure;
		// it degrades to an empty event set.
		events = []types.AccessEvent{}
	}
	if events == nil {
		events = []types.AccessEvent{}
	}

	sub.onChange(events)
}
