package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soumya813/college/internal/ledger/service"
	"github.com/soumya813/college/internal/ledger/types"
)

type Dependencies struct {
	Logger      *log.Logger
	Addr        string
	Coordinator *service.Coordinator
}

type Server struct {
	httpServer  *http.Server
	logger      *log.Logger
	coordinator *service.Coordinator
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger:      d.Logger,
		coordinator: d.Coordinator,
	}

	r := chi.NewRouter()
	r.Use(loggingMiddleware(d.Logger))

	r.Get("/healthz", s.handleHealthz)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/entries", s.handleRecordEntry)
		r.Get("/entries/today", s.handleTodayEntries)
		r.Get("/stats/today", s.handleTodayStats)
		r.Get("/people/{personKey}/status", s.handlePersonStatus)
		r.Get("/ws/today", s.handleTodayFeed)
	})

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecordEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	input := types.EntryInput{
		Name:      req.Name,
		Role:      types.Role(req.Role),
		Direction: types.Direction(req.Direction),
		IDNumber:  req.IDNumber,
		Notes:     req.Notes,
	}
	operator := types.Operator{ID: req.Operator.ID, Name: req.Operator.Name}

	sub, err := s.coordinator.RecordEntry(r.Context(), input, operator)
	if err != nil {
		s.writeRecordError(w, err)
		return
	}

	if sub.State() == service.StateWarning {
		if !req.Confirm {
			// Advisory pause: nothing appended until the operator
			// resubmits with confirm=true.
			writeJSON(w, http.StatusConflict, warningResponse{Warning: sub.Warning()})
			return
		}
		if err := sub.Confirm(r.Context()); err != nil {
			s.writeRecordError(w, err)
			return
		}
	}

	recorded, ok := sub.Recorded()
	if !ok {
		s.logger.Printf("record entry: unexpected submission state %d", sub.State())
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusCreated, entryResponse{Entry: eventToView(recorded)})
}

func (s *Server) handleTodayEntries(w http.ResponseWriter, r *http.Request) {
	events, err := s.coordinator.TodayEntries(r.Context())
	if err != nil {
		s.logger.Printf("today entries: %v", err)
		writeError(w, http.StatusBadGateway, "store_error", "event store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entriesResponse{Entries: eventsToViews(events)})
}

func (s *Server) handleTodayStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.coordinator.TodayStats(r.Context())
	if err != nil {
		s.logger.Printf("today stats: %v", err)
		writeError(w, http.StatusBadGateway, "store_error", "event store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePersonStatus(w http.ResponseWriter, r *http.Request) {
	personKey := chi.URLParam(r, "personKey")

	status, err := s.coordinator.PersonStatus(r.Context(), personKey)
	if err != nil {
		s.logger.Printf("person status: %v", err)
		writeError(w, http.StatusBadGateway, "store_error", "event store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{PersonKey: personKey, Status: status})
}

func (s *Server) writeRecordError(w http.ResponseWriter, err error) {
	var recordErr *service.RecordError
	if errors.As(err, &recordErr) && recordErr.Kind == service.RecordErrorValidation {
		writeError(w, http.StatusBadRequest, "invalid_entry", recordErr.Err.Error())
		return
	}
	s.logger.Printf("record entry error: %v", err)
	writeError(w, http.StatusBadGateway, "store_error", "event store unavailable")
}
