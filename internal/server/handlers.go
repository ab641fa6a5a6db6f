package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
	"github.com/safedrive-ia/safedrive/internal/view"
)

// maxRequestBody caps JSON request bodies on write routes.
const maxRequestBody = 1 << 20

// Handler returns the API routes wrapped in request logging.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/v1/fatigue", s.handleFatigue)
	mux.HandleFunc("GET /api/v1/emotions", s.handleEmotions)
	mux.HandleFunc("GET /api/v1/drivers", s.handleDrivers)
	mux.HandleFunc("GET /api/v1/drivers/{id}", s.handleDriver)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	// Feed routes are backed by the poll loop in Run.
	mux.HandleFunc("GET /api/v1/feed", s.handleFeed)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)

	if s.admin != nil {
		mux.HandleFunc("POST /api/v1/drivers", s.handleCreateDriver)
		mux.HandleFunc("PUT /api/v1/drivers/{id}", s.handleUpdateDriver)
		mux.HandleFunc("DELETE /api/v1/drivers/{id}", s.handleDeleteDriver)
		mux.HandleFunc("POST /api/v1/incidents", s.handleFileIncident)
	}
	return s.logMiddleware(mux)
}

// parseFilter reads from, to, days, page and q from the query string.
func parseFilter(r *http.Request) (view.Filter, error) {
	q := r.URL.Query()
	f := view.Filter{From: q.Get("from"), To: q.Get("to"), Search: q.Get("q")}
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > pipeline.MaxWindowDays {
			return f, fmt.Errorf("%w: days must be an integer in [1, %d], got %q", pipeline.ErrInvalidArgument, pipeline.MaxWindowDays, v)
		}
		f.Days = n
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("%w: page must be an integer, got %q", pipeline.ErrInvalidArgument, v)
		}
		f.Page = n
	}
	return f, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: driver id %q", pipeline.ErrInvalidArgument, raw)
	}
	return id, nil
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, view.ErrDriverNotFound), errors.Is(err, source.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, source.ErrQueryFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Service) fail(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.loader.Dashboard(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Service) handleFatigue(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	v, err := s.loader.Fatigue(r.Context(), f)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Service) handleEmotions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	v, err := s.loader.Emotions(r.Context(), f)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Service) handleDrivers(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.loader.Drivers(r.Context(), f))
}

func (s *Service) handleDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	f.DriverID = id
	v, err := s.loader.Driver(r.Context(), f)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	v, err := s.loader.RecentEvents(r.Context(), f)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Service) handleFeed(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding request body: %v", pipeline.ErrInvalidArgument, err)
	}
	return nil
}

func (s *Service) handleCreateDriver(w http.ResponseWriter, r *http.Request) {
	var d model.Driver
	if err := decodeBody(w, r, &d); err != nil {
		s.fail(w, err)
		return
	}
	created, err := s.admin.CreateDriver(r.Context(), d)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Service) handleUpdateDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	var d model.Driver
	if err := decodeBody(w, r, &d); err != nil {
		s.fail(w, err)
		return
	}
	d.ID = id
	updated, err := s.admin.UpdateDriver(r.Context(), d)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Service) handleDeleteDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.admin.DeleteDriver(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleFileIncident(w http.ResponseWriter, r *http.Request) {
	var rep model.IncidentReport
	if err := decodeBody(w, r, &rep); err != nil {
		s.fail(w, err)
		return
	}
	filed, err := s.admin.FileIncident(r.Context(), rep)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, filed)
}
