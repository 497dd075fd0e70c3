package contracts

import (
	"fmt"
	"time"
)

// Strategy is the trading style a bot runs
type Strategy string

const (
	StrategyScalping       Strategy = "Scalping"
	StrategySwingTrading   Strategy = "Swing Trading"
	StrategyDayTrading     Strategy = "Day Trading"
	StrategyNewsTrading    Strategy = "News Trading"
	StrategyMomentum       Strategy = "Momentum"
	StrategyReversal       Strategy = "Reversal"
	StrategyTrendFollowing Strategy = "Trend Following"
)

// AllStrategies lists every Strategy in display order
var AllStrategies = []Strategy{
	StrategyScalping, StrategySwingTrading, StrategyDayTrading,
	StrategyNewsTrading, StrategyMomentum, StrategyReversal, StrategyTrendFollowing,
}

// IsValid reports whether s is a known strategy
func (s Strategy) IsValid() bool {
	for _, v := range AllStrategies {
		if v == s {
			return true
		}
	}
	return false
}

// RiskLevel grades a bot from 1 (very low) to 5 (extreme)
type RiskLevel int

const (
	RiskVeryLow RiskLevel = iota + 1
	RiskLow
	RiskMedium
	RiskHigh
	RiskExtreme
)

var riskLevelNames = map[RiskLevel]string{
	RiskVeryLow: "Very Low",
	RiskLow:     "Low",
	RiskMedium:  "Medium",
	RiskHigh:    "High",
	RiskExtreme: "Extreme",
}

func (r RiskLevel) String() string {
	if name, ok := riskLevelNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RiskLevel(%d)", int(r))
}

// IsValid reports whether r is within 1..5
func (r RiskLevel) IsValid() bool {
	return r >= RiskVeryLow && r <= RiskExtreme
}

// BotStatus is the lifecycle state of a trading bot
type BotStatus string

const (
	BotTrading   BotStatus = "Trading"
	BotAnalyzing BotStatus = "Analyzing"
	BotActive    BotStatus = "Active"
	BotLearning  BotStatus = "Learning"
	BotPaused    BotStatus = "Paused"
	BotInactive  BotStatus = "Inactive"
	BotStopped   BotStatus = "Stopped"
	BotError     BotStatus = "Error"
)

// AllBotStatuses lists every BotStatus
var AllBotStatuses = []BotStatus{
	BotTrading, BotAnalyzing, BotActive, BotLearning,
	BotPaused, BotInactive, BotStopped, BotError,
}

// IsValid reports whether s is a known status
func (s BotStatus) IsValid() bool {
	for _, v := range AllBotStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// TradingBot is one automated strategy in the user's fleet
type TradingBot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Strategy    Strategy  `json:"strategy"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	WinRate     float64   `json:"winRate"` // 0.0 ~ 1.0
	TotalTrades int       `json:"totalTrades"`
	ProfitLoss  float64   `json:"profitLoss"`
	Status      BotStatus `json:"status"`
	LastTradeAt time.Time `json:"lastTradeAt"`
	LastUpdate  time.Time `json:"lastUpdate"`
}

// IsRunning is true while the bot is allowed to place trades
func (b TradingBot) IsRunning() bool {
	return b.Status == BotTrading || b.Status == BotActive
}

// FormattedWinRate renders the win rate as a percentage
func (b TradingBot) FormattedWinRate() string {
	return fmt.Sprintf("%.1f%%", b.WinRate*100)
}

// BotStats aggregates a bot list
type BotStats struct {
	TotalProfit        float64 `json:"totalProfit"`
	TotalTrades        int     `json:"totalTrades"`
	OverallWinRate     float64 `json:"overallWinRate"`
	TotalTradingVolume float64 `json:"totalTradingVolume"`
	AllActive          bool    `json:"allActive"`
	ActiveCount        int     `json:"activeCount"`
	BotCount           int     `json:"botCount"`
}
