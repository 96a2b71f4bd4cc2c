package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/soumya813/college/internal/ledger/store"
	"github.com/soumya813/college/internal/ledger/types"
)

var ErrNotAwaitingConfirmation = errors.New("submission is not awaiting confirmation")

// RecordErrorKind distinguishes what failed inside a RecordEntry call.
type RecordErrorKind int

const (
	RecordErrorValidation RecordErrorKind = iota + 1
	RecordErrorStore
)

// RecordError is the error contract of RecordEntry: it wraps either a
// validation failure (caught before any store call) or a store
// failure. Warnings are not errors.
type RecordError struct {
	Kind RecordErrorKind
	Err  error
}

func (e *RecordError) Error() string {
	if e.Kind == RecordErrorValidation {
		return fmt.Sprintf("invalid entry: %v", e.Err)
	}
	return fmt.Sprintf("record entry: %v", e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// WarningCode identifies an advisory pause that needs explicit
// operator confirmation before the entry is appended.
type WarningCode string

const (
	WarningDuplicateIn  WarningCode = "duplicate_in"
	WarningNotCheckedIn WarningCode = "not_checked_in"
)

type Warning struct {
	Code          WarningCode        `json:"code"`
	PersonKey     string             `json:"person_key"`
	CurrentStatus types.PersonStatus `json:"current_status"`
}

// Options tune a Coordinator. Zero value means local time, wall clock,
// degrade-on-read-error.
type Options struct {
	Location        *time.Location
	Now             func() time.Time
	ReadErrorPolicy ReadErrorPolicy
}

// Coordinator bridges the store's live window subscription to the
// daily aggregator and owns the manual-entry pipeline. It performs no
// locking of its own around appends: the store arbitrates write order,
// and concurrent operators recording the same person are allowed.
type Coordinator struct {
	store    store.EventStore
	resolver *StatusResolver
	loc      *time.Location
	now      func() time.Time
	policy   ReadErrorPolicy
}

func NewCoordinator(st store.EventStore, resolver *StatusResolver, opts Options) *Coordinator {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ReadErrorPolicy == "" {
		opts.ReadErrorPolicy = ReadErrorDegrade
	}
	return &Coordinator{
		store:    st,
		resolver: resolver,
		loc:      opts.Location,
		now:      opts.Now,
		policy:   opts.ReadErrorPolicy,
	}
}

// todayWindow is the half-open [startOfDay, startOfNextDay) window in
// the configured location, evaluated at call time.
func (c *Coordinator) todayWindow() (start, end time.Time) {
	now := c.now().In(c.loc)
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
	return start, start.AddDate(0, 0, 1)
}

// Start subscribes onUpdate to today's event window. onUpdate receives
// the full current window plus freshly computed stats, first with the
// initial snapshot and then after every in-window append. Each
// delivery replaces the previous one wholesale.
//
// The window is snapshotted once here: a subscription that crosses
// midnight keeps showing the previous day until restarted.
func (c *Coordinator) Start(onUpdate func([]types.AccessEvent, types.DailyStats)) (cancel func()) {
	start, end := c.todayWindow()
	return c.store.SubscribeWindow(start, end, func(events []types.AccessEvent) {
		onUpdate(events, ComputeDailyStats(events))
	})
}

// TodayEntries is the one-shot counterpart of Start.
func (c *Coordinator) TodayEntries(ctx context.Context) ([]types.AccessEvent, error) {
	start, end := c.todayWindow()
	events, err := c.store.QueryWindow(ctx, start, end)
	if err != nil {
		if c.policy == ReadErrorPropagate {
			return nil, err
		}
		return []types.AccessEvent{}, nil
	}
	if events == nil {
		events = []types.AccessEvent{}
	}
	return events, nil
}

func (c *Coordinator) TodayStats(ctx context.Context) (types.DailyStats, error) {
	events, err := c.TodayEntries(ctx)
	if err != nil {
		return types.DailyStats{}, err
	}
	return ComputeDailyStats(events), nil
}

func (c *Coordinator) PersonStatus(ctx context.Context, personKey string) (types.PersonStatus, error) {
	return c.resolver.Resolve(ctx, personKey)
}

// RecordEntry validates the form input, checks it against the person's
// current status, and either appends immediately or parks the
// submission awaiting operator confirmation.
//
// Returned states: StateRecorded (appended), StateWarning (caller must
// Confirm or Cancel; nothing appended yet), StateFailed (append
// failed; the error is also returned). Validation failures return a
// nil Submission and a *RecordError before any store call.
//
// A Submission is not safe to Confirm from two goroutines, and two
// RecordEntry calls for the same person both racing past the status
// check is an accepted outcome: the duplicate lands in the log and is
// flagged on the next status check, never lost.
func (c *Coordinator) RecordEntry(ctx context.Context, input types.EntryInput, operator types.Operator) (*Submission, error) {
	ev := store.NewEvent{
		PersonKey:  strings.TrimSpace(input.IDNumber),
		Name:       strings.TrimSpace(input.Name),
		Role:       input.Role,
		Direction:  input.Direction,
		RecordedBy: operator,
		Notes:      strings.TrimSpace(input.Notes),
	}
	if err := ev.Validate(); err != nil {
		return nil, &RecordError{Kind: RecordErrorValidation, Err: err}
	}

	sub := &Submission{coord: c, event: ev, state: StateValidating}

	status, err := c.resolver.Resolve(ctx, ev.PersonKey)
	if err != nil {
		sub.state = StateFailed
		sub.err = &RecordError{Kind: RecordErrorStore, Err: err}
		return sub, sub.err
	}

	switch {
	case ev.Direction == types.DirectionIn && status == types.StatusIn:
		sub.state = StateWarning
		sub.warning = &Warning{Code: WarningDuplicateIn, PersonKey: ev.PersonKey, CurrentStatus: status}
		return sub, nil

	case ev.Direction == types.DirectionOut && status != types.StatusIn:
		sub.state = StateWarning
		sub.warning = &Warning{Code: WarningNotCheckedIn, PersonKey: ev.PersonKey, CurrentStatus: status}
		return sub, nil
	}

	sub.state = StateSubmitting
	if err := sub.submit(ctx); err != nil {
		return sub, err
	}
	return sub, nil
}

// SubmissionState models one manual-entry submission:
//
//	Validating -> {Warning -> (Confirm -> Submitting | Cancel -> Cancelled)
//	               | Submitting} -> {Recorded | Failed}
type SubmissionState int

const (
	StateValidating SubmissionState = iota + 1
	StateWarning
	StateSubmitting
	StateRecorded
	StateFailed
	StateCancelled
)

// Submission is one in-flight manual entry. Confirm and Cancel are
// only legal while the submission is awaiting confirmation.
type Submission struct {
	coord *Coordinator
	event store.NewEvent

	mu       sync.Mutex
	state    SubmissionState
	warning  *Warning
	recorded types.AccessEvent
	err      error
}

func (s *Submission) State() SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Warning is non-nil iff the submission is (or was) parked awaiting
// confirmation.
func (s *Submission) Warning() *Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

// Recorded returns the appended event once the submission reached
// StateRecorded.
func (s *Submission) Recorded() (types.AccessEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorded, s.state == StateRecorded
}

func (s *Submission) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Confirm proceeds past the warning and appends the entry.
func (s *Submission) Confirm(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateWarning {
		s.mu.Unlock()
		return ErrNotAwaitingConfirmation
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	return s.submit(ctx)
}

// Cancel abandons a parked submission without appending anything.
func (s *Submission) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateWarning {
		return ErrNotAwaitingConfirmation
	}
	s.state = StateCancelled
	return nil
}

func (s *Submission) submit(ctx context.Context) error {
	recorded, err := s.coord.store.Append(ctx, s.event)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateFailed
		s.err = &RecordError{Kind: RecordErrorStore, Err: err}
		return s.err
	}
	s.state = StateRecorded
	s.recorded = recorded
	return nil
}
