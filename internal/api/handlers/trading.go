package handlers

import (
	"net/http"
	"time"

	"github.com/planetprotrader/backend/internal/signals"
	"github.com/planetprotrader/backend/internal/trading"
	"github.com/planetprotrader/backend/pkg/logger"
)

// TradingHandler serves the dashboard numbers and the signal feed
type TradingHandler struct {
	store   *trading.Store
	signals *signals.Store
	now     func() time.Time
	logger  *logger.Logger
}

// NewTradingHandler creates a new trading handler
func NewTradingHandler(store *trading.Store, sig *signals.Store, log *logger.Logger) *TradingHandler {
	return &TradingHandler{
		store:   store,
		signals: sig,
		now:     time.Now,
		logger:  log,
	}
}

// GetSnapshot returns the headline numbers
// GET /api/trading/snapshot
func (h *TradingHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Snapshot())
}

// Refresh moves the price and P&L after the simulated delay
// POST /api/trading/refresh
func (h *TradingHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Refresh(r.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Trading refresh interrupted")
		respondError(w, http.StatusRequestTimeout, "Refresh cancelled")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// ListSignals returns signals newest first, ?limit= caps the count
// GET /api/signals
func (h *TradingHandler) ListSignals(w http.ResponseWriter, r *http.Request) {
	list := h.signals.List()
	if limit := queryInt(r, "limit", len(list)); limit < len(list) {
		list = list[:limit]
	}
	respondJSON(w, http.StatusOK, list)
}

// GenerateSignal publishes a new signal
// POST /api/signals/generate
func (h *TradingHandler) GenerateSignal(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusCreated, h.signals.Generate(h.now()))
}
