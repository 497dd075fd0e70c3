package contracts

import (
	"fmt"
	"time"
)

// SignalStatus tracks a signal from publication to expiry
type SignalStatus string

const (
	SignalPending   SignalStatus = "Pending"
	SignalActive    SignalStatus = "Active"
	SignalFilled    SignalStatus = "Filled"
	SignalCancelled SignalStatus = "Cancelled"
	SignalExpired   SignalStatus = "Expired"
)

// Signal is a suggested trade with entry, stop and target
type Signal struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Symbol     string         `json:"symbol"`
	Direction  TradeDirection `json:"direction"`
	EntryPrice float64        `json:"entryPrice"`
	StopLoss   float64        `json:"stopLoss"`
	TakeProfit float64        `json:"takeProfit"`
	LotSize    float64        `json:"lotSize"`
	Confidence float64        `json:"confidence"` // 0.0 ~ 1.0
	Reasoning  string         `json:"reasoning"`
	Timeframe  string         `json:"timeframe"`
	Status     SignalStatus   `json:"status"`
	IsExecuted bool           `json:"isExecuted"`
	Accuracy   *float64       `json:"accuracy,omitempty"`
}

// RiskRewardRatio uses the same rule as journal trades
func (s Signal) RiskRewardRatio() float64 {
	return RiskRewardRatio(s.EntryPrice, s.StopLoss, s.TakeProfit)
}

// FormattedConfidence renders confidence as a whole percentage
func (s Signal) FormattedConfidence() string {
	return fmt.Sprintf("%.0f%%", s.Confidence*100)
}
