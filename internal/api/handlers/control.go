package handlers

import (
	"context"
	"net/http"

	"github.com/planetprotrader/backend/internal/controlplane"
	"github.com/planetprotrader/backend/pkg/logger"
)

// ControlHandler serves the remote bot control state.
// A nil monitor means no control service is configured.
type ControlHandler struct {
	monitor *controlplane.Monitor
	logger  *logger.Logger
}

// NewControlHandler creates a new control handler
func NewControlHandler(monitor *controlplane.Monitor, log *logger.Logger) *ControlHandler {
	return &ControlHandler{monitor: monitor, logger: log}
}

// GetState returns the last polled status, account and trades
// GET /api/control/state
func (h *ControlHandler) GetState(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	respondJSON(w, http.StatusOK, h.monitor.State())
}

// Refresh polls the control service now
// POST /api/control/refresh
func (h *ControlHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, (*controlplane.Monitor).RefreshData)
}

// Start asks the control service to start the bot
// POST /api/control/start
func (h *ControlHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, (*controlplane.Monitor).StartBot)
}

// Stop asks the control service to stop the bot
// POST /api/control/stop
func (h *ControlHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, (*controlplane.Monitor).StopBot)
}

// call answers with the state either way; a failure is 502 with the state's message
func (h *ControlHandler) call(w http.ResponseWriter, r *http.Request, fn func(*controlplane.Monitor, context.Context) error) {
	if !h.available(w) {
		return
	}

	if err := fn(h.monitor, r.Context()); err != nil {
		h.logger.WithError(err).Warn("Control service call failed")
		state := h.monitor.State()
		respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error": state.ErrorMessage,
			"state": state,
		})
		return
	}
	respondJSON(w, http.StatusOK, h.monitor.State())
}

func (h *ControlHandler) available(w http.ResponseWriter) bool {
	if h.monitor == nil {
		respondError(w, http.StatusServiceUnavailable, "Control service not configured")
		return false
	}
	return true
}
