package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/wfeditor/internal/config"
	"github.com/gyaneshwarpardhi/wfeditor/internal/dag"
	"github.com/gyaneshwarpardhi/wfeditor/internal/editor"
	"github.com/gyaneshwarpardhi/wfeditor/internal/event"
	"github.com/gyaneshwarpardhi/wfeditor/internal/metrics"
)

// ConfigSource supplies the current configuration. *config.Loader satisfies it.
type ConfigSource interface {
	Config() *config.Config
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	mgr *editor.Manager
	cfg ConfigSource
}

// New creates an HTTP handler and registers all routes.
func New(mgr *editor.Manager, cfg ConfigSource) http.Handler {
	h := &Handler{mgr: mgr, cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/workflows", h.listWorkflows)
		r.Post("/sessions", h.openSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.closeSession)
			r.Post("/events", h.applyEvent)
			r.Post("/save", h.save)
			r.Post("/commit", h.commit)
		})
	})
	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type workflowSummary struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Nodes int    `json:"nodes"`
}

// GET /v1/workflows: list seed workflows.
func (h *Handler) listWorkflows(w http.ResponseWriter, r *http.Request) {
	cfg := h.cfg.Config()
	out := make([]workflowSummary, 0, len(cfg.Workflows))
	for _, wf := range cfg.Workflows {
		out = append(out, workflowSummary{ID: wf.ID, Name: wf.Name, Nodes: len(wf.Nodes)})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":   cfg.Version,
		"workflows": out,
	})
}

type openRequest struct {
	WorkflowID int `json:"workflow_id"`
}

// POST /v1/sessions: start editing a workflow.
func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	wf := h.cfg.Config().Workflow(req.WorkflowID)
	if wf == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("workflow %d: %s", req.WorkflowID, editor.ErrWorkflowNotFound))
		return
	}
	s, err := h.mgr.Open(wf)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.View())
}

// GET /v1/sessions/{id}: current tree, form and alert.
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// DELETE /v1/sessions/{id}: end a session without saving.
func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.mgr.Close(chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/sessions/{id}/events: apply one editor event.
func (h *Handler) applyEvent(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var ev event.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	if err := s.Apply(&ev); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// POST /v1/sessions/{id}/save: serialized payload for persistence.
func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	p, err := s.Save()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type commitRequest struct {
	// Persisted maps session node IDs to the IDs the server stored them under.
	Persisted map[int]int `json:"persisted"`
}

// POST /v1/sessions/{id}/commit: record that the last payload was stored.
func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if err := s.Commit(req.Persisted); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 if the fetch queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.mgr.QueueUtilization()
	metrics.FetchQueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
		"sessions":          h.mgr.Len(),
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	s, err := h.mgr.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return nil, false
	}
	return s, true
}

// statusFor maps editor errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, editor.ErrSessionNotFound), errors.Is(err, editor.ErrWorkflowNotFound):
		return http.StatusNotFound
	case errors.Is(err, event.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrConflict),
		errors.Is(err, editor.ErrPlaceholderPending),
		errors.Is(err, editor.ErrNotSaved),
		errors.Is(err, dag.ErrPendingPlaceholder):
		return http.StatusConflict
	case errors.Is(err, dag.ErrRootImmutable),
		errors.Is(err, dag.ErrEdgeTypeNotAllowed),
		errors.Is(err, dag.ErrInvalidEdge),
		errors.Is(err, dag.ErrNotPlaceholder),
		errors.Is(err, dag.ErrMissingTemplate),
		errors.Is(err, editor.ErrTemplateRequired),
		errors.Is(err, editor.ErrNoActiveEdit):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// loggingMiddleware logs one line per request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
