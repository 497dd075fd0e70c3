package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/debug"
	"github.com/planetprotrader/backend/pkg/logger"
)

// DebugHandler serves the auto debugger
type DebugHandler struct {
	store  *debug.Store
	logger *logger.Logger
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(store *debug.Store, log *logger.Logger) *DebugHandler {
	return &DebugHandler{store: store, logger: log}
}

// HealthCheckRequest starts a debug session
type HealthCheckRequest struct {
	Type contracts.SessionType `json:"type" default:"Health Check"`
}

// ListErrors returns captured errors. Query: severity, fixed=true|false
// GET /api/debug/errors
func (h *DebugHandler) ListErrors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := debug.ListFilter{Severity: contracts.DebugSeverity(q.Get("severity"))}

	if v := q.Get("fixed"); v != "" {
		fixed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid fixed flag")
			return
		}
		filter.Fixed = &fixed
	}

	respondJSON(w, http.StatusOK, h.store.List(filter))
}

// GetError returns one captured error
// GET /api/debug/errors/{id}
func (h *DebugHandler) GetError(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// AutoFix spends one fix attempt on the error
// POST /api/debug/errors/{id}/autofix
func (h *DebugHandler) AutoFix(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.AttemptAutoFix(mux.Vars(r)["id"])
	switch {
	case errors.Is(err, debug.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, debug.ErrCannotAutoFix):
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error": err.Error(),
			"log":   e,
		})
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
	default:
		respondJSON(w, http.StatusOK, e)
	}
}

// HealthCheck runs a debug session
// POST /api/debug/health-check
func (h *DebugHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var req HealthCheckRequest
	if errs := readAndValidate(r, &req); errs != nil {
		respondValidation(w, errs)
		return
	}

	session, err := h.store.RunHealthCheck(r.Context(), req.Type)
	if errors.Is(err, debug.ErrInvalidSessionType) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Warn("Health check interrupted")
		respondError(w, http.StatusRequestTimeout, "Health check cancelled")
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// ListSessions returns past debug sessions
// GET /api/debug/sessions
func (h *DebugHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Sessions())
}
