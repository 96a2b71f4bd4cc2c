package service

import (
	"context"
	"strings"

	"github.com/soumya813/college/internal/ledger/store"
	"github.com/soumya813/college/internal/ledger/types"
)

// ReadErrorPolicy controls what one-shot reads do when the backend
// fails: degrade to an empty/unknown result (the historical behavior,
// presentation never crashes on a transient read failure) or propagate
// the error to the caller.
type ReadErrorPolicy string

const (
	ReadErrorDegrade   ReadErrorPolicy = "degrade"
	ReadErrorPropagate ReadErrorPolicy = "propagate"
)

// StatusResolver answers whether a person is currently in, out, or
// unknown from the most recent event for their key. Lookups span the
// whole history, not just today, and are never cached.
type StatusResolver struct {
	store  store.EventStore
	policy ReadErrorPolicy
}

func NewStatusResolver(st store.EventStore, policy ReadErrorPolicy) *StatusResolver {
	if policy == "" {
		policy = ReadErrorDegrade
	}
	return &StatusResolver{store: st, policy: policy}
}

func (r *StatusResolver) Resolve(ctx context.Context, personKey string) (types.PersonStatus, error) {
	personKey = strings.TrimSpace(personKey)
	if personKey == "" {
		return types.StatusUnknown, nil
	}

	events, err := r.store.QueryByPerson(ctx, personKey)
	if err != nil {
		if r.policy == ReadErrorPropagate {
			return types.StatusUnknown, err
		}
		return types.StatusUnknown, nil
	}
	if len(events) == 0 {
		return types.StatusUnknown, nil
	}

	// Most recent event wins; the store orders ties by insertion.
	if events[0].Direction == types.DirectionIn {
		return types.StatusIn, nil
	}
	return types.StatusOut, nil
}
