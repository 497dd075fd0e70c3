package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/playbook"
	"github.com/planetprotrader/backend/pkg/logger"
)

// PlaybookHandler serves the trade journal
type PlaybookHandler struct {
	journal *playbook.Journal
	logger  *logger.Logger
}

// NewPlaybookHandler creates a new playbook handler
func NewPlaybookHandler(journal *playbook.Journal, log *logger.Logger) *PlaybookHandler {
	return &PlaybookHandler{journal: journal, logger: log}
}

// TradeRequest records a journal trade. Grade is derived from RMultiple.
type TradeRequest struct {
	Symbol           string                   `json:"symbol" default:"XAUUSD"`
	Direction        contracts.TradeDirection `json:"direction" validate:"required,oneof=BUY SELL"`
	EntryPrice       float64                  `json:"entryPrice" validate:"gt=0"`
	ExitPrice        *float64                 `json:"exitPrice"`
	StopLoss         float64                  `json:"stopLoss" validate:"gt=0"`
	TakeProfit       float64                  `json:"takeProfit" validate:"gt=0"`
	LotSize          float64                  `json:"lotSize" default:"0.01" validate:"gt=0"`
	PnL              float64                  `json:"pnl"`
	RMultiple        float64                  `json:"rMultiple"`
	Result           contracts.TradeResult    `json:"result"`
	SetupDescription string                   `json:"setupDescription"`
	EmotionalState   contracts.EmotionalState `json:"emotionalState"`
	EmotionalRating  int                      `json:"emotionalRating" default:"3" validate:"gte=1,lte=5"`
	Timestamp        time.Time                `json:"timestamp"`
}

// EntryRequest records a journal note
type EntryRequest struct {
	Type    contracts.JournalEntryType `json:"type"`
	Title   string                     `json:"title" validate:"required,max=120"`
	Content string                     `json:"content"`
	Tags    []string                   `json:"tags"`
	TradeID string                     `json:"tradeId"`
}

// ListTrades returns trades, ?grade= filters ("ALL" or empty means all)
// GET /api/playbook/trades
func (h *PlaybookHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	grade := contracts.TradeGrade(r.URL.Query().Get("grade"))
	if grade != "" && !grade.IsValid() {
		respondError(w, http.StatusBadRequest, "Unknown grade")
		return
	}
	respondJSON(w, http.StatusOK, h.journal.Trades(grade))
}

// AddTrade records a trade
// POST /api/playbook/trades
func (h *PlaybookHandler) AddTrade(w http.ResponseWriter, r *http.Request) {
	var req TradeRequest
	if errs := readAndValidate(r, &req); errs != nil {
		respondValidation(w, errs)
		return
	}

	trade, err := h.journal.AddTrade(contracts.PlaybookTrade{
		Symbol:           req.Symbol,
		Direction:        req.Direction,
		EntryPrice:       req.EntryPrice,
		ExitPrice:        req.ExitPrice,
		StopLoss:         req.StopLoss,
		TakeProfit:       req.TakeProfit,
		LotSize:          req.LotSize,
		PnL:              req.PnL,
		RMultiple:        req.RMultiple,
		Result:           req.Result,
		SetupDescription: req.SetupDescription,
		EmotionalState:   req.EmotionalState,
		EmotionalRating:  req.EmotionalRating,
		Timestamp:        req.Timestamp,
	})
	if errors.Is(err, playbook.ErrInvalidTrade) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to add playbook trade")
		respondError(w, http.StatusInternalServerError, "Failed to add trade")
		return
	}
	respondJSON(w, http.StatusCreated, trade)
}

// Stats returns win rate, P&L and average R
// GET /api/playbook/stats
func (h *PlaybookHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.journal.Stats())
}

// ListEntries returns journal notes newest first
// GET /api/playbook/journal
func (h *PlaybookHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.journal.Entries())
}

// AddEntry records a journal note
// POST /api/playbook/journal
func (h *PlaybookHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if errs := readAndValidate(r, &req); errs != nil {
		respondValidation(w, errs)
		return
	}

	entry, err := h.journal.AddEntry(contracts.JournalEntry{
		Type:    req.Type,
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		TradeID: req.TradeID,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}
