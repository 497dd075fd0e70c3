package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/planetprotrader/backend/internal/vps"
	"github.com/planetprotrader/backend/pkg/logger"
)

// VPSHandler serves the VPS fleet
type VPSHandler struct {
	registry *vps.Registry
	logger   *logger.Logger
}

// NewVPSHandler creates a new VPS handler
func NewVPSHandler(registry *vps.Registry, log *logger.Logger) *VPSHandler {
	return &VPSHandler{registry: registry, logger: log}
}

// List returns the fleet
// GET /api/vps
func (h *VPSHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.List())
}

// Get returns one server
// GET /api/vps/{id}
func (h *VPSHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// Connect runs the simulated handshake
// POST /api/vps/{id}/connect
func (h *VPSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	v, err := h.registry.Connect(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, vps.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusRequestTimeout, "Connect cancelled")
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
	default:
		respondJSON(w, http.StatusOK, v)
	}
}

// Disconnect drops the link
// POST /api/vps/{id}/disconnect
func (h *VPSHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	v, err := h.registry.Disconnect(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// Deploy places an account; 409 when the server is full
// POST /api/vps/{id}/deploy
func (h *VPSHandler) Deploy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	deployed, err := h.registry.Deploy(id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	v, _ := h.registry.Get(id)
	if !deployed {
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":    "VPS at capacity",
			"deployed": false,
			"instance": v,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"deployed": true,
		"instance": v,
	})
}

// Undeploy removes an account
// POST /api/vps/{id}/undeploy
func (h *VPSHandler) Undeploy(w http.ResponseWriter, r *http.Request) {
	v, err := h.registry.Undeploy(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, v)
}
