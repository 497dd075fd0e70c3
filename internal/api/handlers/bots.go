package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/planetprotrader/backend/internal/bots"
	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/pkg/logger"
)

// BotsHandler serves the bot registry
type BotsHandler struct {
	registry *bots.Registry
	logger   *logger.Logger
}

// NewBotsHandler creates a new bots handler
func NewBotsHandler(registry *bots.Registry, log *logger.Logger) *BotsHandler {
	return &BotsHandler{registry: registry, logger: log}
}

// AddBotRequest registers a bot
type AddBotRequest struct {
	Name     string              `json:"name" validate:"required,max=64"`
	Strategy contracts.Strategy  `json:"strategy" validate:"required"`
	Risk     contracts.RiskLevel `json:"riskLevel" default:"3" validate:"gte=1,lte=5"`
	Status   contracts.BotStatus `json:"status"`
}

// StatusRequest changes a bot's status
type StatusRequest struct {
	Status contracts.BotStatus `json:"status" validate:"required"`
}

// List returns the bot list with its stats
// GET /api/bots
func (h *BotsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.View().Get())
}

// Stats returns the aggregate numbers only
// GET /api/bots/stats
func (h *BotsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.Stats())
}

// Get returns one bot
// GET /api/bots/{id}
func (h *BotsHandler) Get(w http.ResponseWriter, r *http.Request) {
	bot, err := h.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, bot)
}

// Refresh recomputes the stats after the simulated delay
// POST /api/bots/refresh
func (h *BotsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Refresh(r.Context()); err != nil {
		h.logger.WithError(err).Warn("Bot refresh interrupted")
		respondError(w, http.StatusRequestTimeout, "Refresh cancelled")
		return
	}
	respondJSON(w, http.StatusOK, h.registry.View().Get())
}

// Toggle starts every bot, or pauses every bot when all are active
// POST /api/bots/toggle
func (h *BotsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.ToggleAll())
}

// Add registers a new bot
// POST /api/bots
func (h *BotsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddBotRequest
	if errs := readAndValidate(r, &req); errs != nil {
		respondValidation(w, errs)
		return
	}

	bot, err := h.registry.Add(contracts.TradingBot{
		Name:      req.Name,
		Strategy:  req.Strategy,
		RiskLevel: req.Risk,
		Status:    req.Status,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, bot)
}

// SetStatus changes one bot's status
// PUT /api/bots/{id}/status
func (h *BotsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if errs := readAndValidate(r, &req); errs != nil {
		respondValidation(w, errs)
		return
	}

	bot, err := h.registry.SetStatus(mux.Vars(r)["id"], req.Status)
	switch {
	case errors.Is(err, bots.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case err != nil:
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondJSON(w, http.StatusOK, bot)
	}
}
