package service

import "github.com/soumya813/college/internal/ledger/types"

// ComputeDailyStats derives the day's counts from an event sequence
// already restricted to one day window.
//
// TotalEntries counts every event. The per-role buckets count people,
// not events: each distinct PersonKey is classified by its last event
// of the day. The comparison is strictly greater-than, so two events
// with an identical timestamp keep whichever came first in the input
// sequence. Guard events contribute to TotalEntries only.
//
// Pure and O(n); callers recompute rather than mutate.
func ComputeDailyStats(events []types.AccessEvent) types.DailyStats {
	stats := types.DailyStats{TotalEntries: len(events)}

	lastByPerson := make(map[string]types.AccessEvent, len(events))
	for _, ev := range events {
		if ev.PersonKey == "" {
			continue
		}
		prev, seen := lastByPerson[ev.PersonKey]
		if !seen || ev.OccurredAt.After(prev.OccurredAt) {
			lastByPerson[ev.PersonKey] = ev
		}
	}

	for _, ev := range lastByPerson {
		switch ev.Role {
		case types.RoleStudent:
			if ev.Direction == types.DirectionIn {
				stats.StudentsIn++
			} else {
				stats.StudentsOut++
			}
		case types.RoleTeacher:
			if ev.Direction == types.DirectionIn {
				stats.TeachersIn++
			} else {
				stats.TeachersOut++
			}
		}
	}

	return stats
}
