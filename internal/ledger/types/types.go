package types

import "time"

// Role of the person an access entry is about. Guards never check
// themselves in through the manual-entry form, but guard entries exist
// in the historical log and must survive aggregation.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleGuard   Role = "guard"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleGuard:
		return true
	}
	return false
}

// Direction of a single access event.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// PersonStatus is the derived in/out state of a person. It is never
// persisted; it is recomputed from the event log on demand.
type PersonStatus string

const (
	StatusIn      PersonStatus = "in"
	StatusOut     PersonStatus = "out"
	StatusUnknown PersonStatus = "unknown"
)

// Operator identifies the guard who logged an event.
type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AccessEvent is one timestamped check-in/check-out fact. Events are
// append-only: no update, no delete.
//
// PersonKey is the role-scoped identifier (enrollment number for
// students, employee id otherwise). Aggregation keys on the flat
// PersonKey value without the role, so an enrollment number that
// equals an employee id refers to the same ledger entity.
type AccessEvent struct {
	ID         string
	PersonKey  string
	Name       string
	Role       Role
	Direction  Direction
	OccurredAt time.Time
	RecordedBy Operator
	Notes      string
}

// EntryInput is the manual-entry form payload. IDNumber carries the
// enrollment number or employee id depending on Role.
type EntryInput struct {
	Name      string
	Role      Role
	Direction Direction
	IDNumber  string
	Notes     string
}

// DailyStats are the derived counts for one day window. StudentsIn /
// StudentsOut (and the teacher pair) count distinct people by their
// last event of the day, not raw events; TotalEntries counts raw
// events including guard entries.
type DailyStats struct {
	TotalEntries int `json:"total_entries"`
	StudentsIn   int `json:"students_in"`
	StudentsOut  int `json:"students_out"`
	TeachersIn   int `json:"teachers_in"`
	TeachersOut  int `json:"teachers_out"`
}
