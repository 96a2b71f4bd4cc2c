package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/soumya813/college/internal/ledger/service"
	"github.com/soumya813/college/internal/ledger/types"
)

type operatorPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type entryRequest struct {
	Name      string          `json:"name"`
	Role      string          `json:"role"`
	Direction string          `json:"direction"`
	IDNumber  string          `json:"id_number"`
	Notes     string          `json:"notes,omitempty"`
	Confirm   bool            `json:"confirm,omitempty"`
	Operator  operatorPayload `json:"operator"`
}

// eventView is the wire shape of an access entry. The person's id is a
// tagged variant: enrollment_number for students, employee_id for
// teachers and guards — only one of the two is ever set.
type eventView struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Role             string         `json:"role"`
	Direction        string         `json:"direction"`
	OccurredAt       string         `json:"occurred_at"`
	EnrollmentNumber string         `json:"enrollment_number,omitempty"`
	EmployeeID       string         `json:"employee_id,omitempty"`
	RecordedBy       types.Operator `json:"recorded_by"`
	Notes            string         `json:"notes,omitempty"`
}

type entryResponse struct {
	Entry eventView `json:"entry"`
}

type entriesResponse struct {
	Entries []eventView `json:"entries"`
}

type warningResponse struct {
	Warning *service.Warning `json:"warning"`
}

type statusResponse struct {
	PersonKey string             `json:"person_key"`
	Status    types.PersonStatus `json:"status"`
}

// feedPayload is one websocket frame on the today feed: the full
// current window plus its stats, replacing the previous frame.
type feedPayload struct {
	Entries []eventView      `json:"entries"`
	Stats   types.DailyStats `json:"stats"`
}

func eventToView(ev types.AccessEvent) eventView {
	v := eventView{
		ID:         ev.ID,
		Name:       ev.Name,
		Role:       string(ev.Role),
		Direction:  string(ev.Direction),
		OccurredAt: ev.OccurredAt.UTC().Format(time.RFC3339Nano),
		RecordedBy: ev.RecordedBy,
		Notes:      ev.Notes,
	}
	if ev.Role == types.RoleStudent {
		v.EnrollmentNumber = ev.PersonKey
	} else {
		v.EmployeeID = ev.PersonKey
	}
	return v
}

func eventsToViews(events []types.AccessEvent) []eventView {
	out := make([]eventView, len(events))
	for i, ev := range events {
		out[i] = eventToView(ev)
	}
	return out
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
