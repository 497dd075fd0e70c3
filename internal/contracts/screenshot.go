package contracts

import (
	"encoding/json"
	"time"
)

// ScreenshotType tags why a capture was taken
type ScreenshotType string

const (
	ScreenshotAutomatic   ScreenshotType = "automatic"
	ScreenshotTrade       ScreenshotType = "trade"
	ScreenshotPerformance ScreenshotType = "performance"
	ScreenshotError       ScreenshotType = "error"
	ScreenshotManual      ScreenshotType = "manual"
	ScreenshotSignal      ScreenshotType = "signal"
)

// IsValid reports whether t is a known capture type
func (t ScreenshotType) IsValid() bool {
	switch t {
	case ScreenshotAutomatic, ScreenshotTrade, ScreenshotPerformance,
		ScreenshotError, ScreenshotManual, ScreenshotSignal:
		return true
	}
	return false
}

// ScreenshotRecord is the stored reference to an uploaded capture
type ScreenshotRecord struct {
	ID           string          `json:"id"`
	Type         ScreenshotType  `json:"type"`
	Filename     string          `json:"filename"`
	ObjectKey    string          `json:"objectKey"`
	DownloadURL  string          `json:"downloadURL"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
	AccountLogin string          `json:"accountLogin"`
	SizeBytes    int64           `json:"sizeBytes"`
}

// TradeScreenshotMeta accompanies captures of a trade entry
type TradeScreenshotMeta struct {
	TradeID    string  `json:"tradeId"`
	Symbol     string  `json:"symbol"`
	Direction  string  `json:"direction"`
	EntryPrice float64 `json:"entryPrice"`
	StopLoss   float64 `json:"stopLoss"`
	TakeProfit float64 `json:"takeProfit"`
	LotSize    float64 `json:"lotSize"`
	Confidence float64 `json:"confidence"`
}

// PerformanceScreenshotMeta accompanies periodic performance captures
type PerformanceScreenshotMeta struct {
	Balance     float64 `json:"balance"`
	TodaysPnL   float64 `json:"todaysPnL"`
	TotalTrades int     `json:"totalTrades"`
	WinRate     float64 `json:"winRate"`
}

// ErrorScreenshotMeta accompanies captures taken on failure
type ErrorScreenshotMeta struct {
	Message          string `json:"message"`
	AccountConnected bool   `json:"accountConnected"`
}
