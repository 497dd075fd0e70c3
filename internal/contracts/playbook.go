package contracts

import (
	"math"
	"time"
)

// TradeDirection is the side of a position
type TradeDirection string

const (
	DirectionBuy  TradeDirection = "BUY"
	DirectionSell TradeDirection = "SELL"
)

// IsValid reports whether d is BUY or SELL
func (d TradeDirection) IsValid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// TradeResult is the outcome of a journaled trade
type TradeResult string

const (
	ResultWin       TradeResult = "WIN"
	ResultLoss      TradeResult = "LOSS"
	ResultBreakeven TradeResult = "BREAKEVEN"
	ResultRunning   TradeResult = "RUNNING"
)

// IsClosed is false only for running trades
func (r TradeResult) IsClosed() bool {
	return r != ResultRunning
}

// TradeGrade is the quality grade given to a trade setup
type TradeGrade string

const (
	GradeAll     TradeGrade = "ALL"
	GradeElite   TradeGrade = "A+ ELITE"
	GradeGood    TradeGrade = "A GOOD"
	GradeAverage TradeGrade = "B AVERAGE"
	GradePoor    TradeGrade = "C POOR"
)

var gradeDescriptions = map[TradeGrade]string{
	GradeAll:     "All trades",
	GradeElite:   "Perfect setup, flawless execution",
	GradeGood:    "Solid setup with minor flaws",
	GradeAverage: "Acceptable setup, room to improve",
	GradePoor:    "Rule violations or forced entry",
}

// Description explains the grade
func (g TradeGrade) Description() string {
	return gradeDescriptions[g]
}

// IsValid reports whether g is a known grade
func (g TradeGrade) IsValid() bool {
	_, ok := gradeDescriptions[g]
	return ok
}

// EmotionalState records the trader's mood at entry
type EmotionalState string

const (
	EmotionCalm       EmotionalState = "CALM"
	EmotionConfident  EmotionalState = "CONFIDENT"
	EmotionAnxious    EmotionalState = "ANXIOUS"
	EmotionFrustrated EmotionalState = "FRUSTRATED"
	EmotionEuphoric   EmotionalState = "EUPHORIC"
	EmotionFearful    EmotionalState = "FEARFUL"
)

// JournalEntryType classifies a free-form journal entry
type JournalEntryType string

const (
	EntryTradeAnalysis     JournalEntryType = "TRADE ANALYSIS"
	EntryDailyReview       JournalEntryType = "DAILY REVIEW"
	EntryPsychologyNote    JournalEntryType = "PSYCHOLOGY NOTE"
	EntryMarketObservation JournalEntryType = "MARKET OBSERVATION"
	EntryImprovementPlan   JournalEntryType = "IMPROVEMENT PLAN"
)

// PlaybookTrade is a graded journal record of a single trade
type PlaybookTrade struct {
	ID               string         `json:"id"`
	Symbol           string         `json:"symbol"`
	Direction        TradeDirection `json:"direction"`
	EntryPrice       float64        `json:"entryPrice"`
	ExitPrice        *float64       `json:"exitPrice,omitempty"`
	StopLoss         float64        `json:"stopLoss"`
	TakeProfit       float64        `json:"takeProfit"`
	LotSize          float64        `json:"lotSize"`
	PnL              float64        `json:"pnl"`
	RMultiple        float64        `json:"rMultiple"`
	Result           TradeResult    `json:"result"`
	Grade            TradeGrade     `json:"grade"`
	SetupDescription string         `json:"setupDescription"`
	EmotionalState   EmotionalState `json:"emotionalState"`
	EmotionalRating  int            `json:"emotionalRating"` // 1 ~ 5
	Timestamp        time.Time      `json:"timestamp"`
}

// RiskRewardRatio is |takeProfit-entry| / |entry-stopLoss|, 0 when there is no risk
func (t PlaybookTrade) RiskRewardRatio() float64 {
	return RiskRewardRatio(t.EntryPrice, t.StopLoss, t.TakeProfit)
}

// JournalEntry is a free-form note in the trading journal
type JournalEntry struct {
	ID        string           `json:"id"`
	Type      JournalEntryType `json:"type"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Tags      []string         `json:"tags,omitempty"`
	TradeID   string           `json:"tradeId,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// RiskRewardRatio divides the reward distance by the risk distance.
// A zero risk distance yields 0 rather than Inf.
func RiskRewardRatio(entry, stopLoss, takeProfit float64) float64 {
	risk := math.Abs(entry - stopLoss)
	if risk == 0 {
		return 0
	}
	return math.Abs(takeProfit-entry) / risk
}
