package sample

import (
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
)

// Bots returns the starter fleet
func Bots(g *Generator) []contracts.TradingBot {
	now := g.Now()
	return []contracts.TradingBot{
		{
			ID:          g.ID(),
			Name:        "Gold Scalper Pro",
			Strategy:    contracts.StrategyScalping,
			RiskLevel:   contracts.RiskHigh,
			WinRate:     0.785,
			TotalTrades: 145,
			ProfitLoss:  1250.75,
			Status:      contracts.BotActive,
			LastTradeAt: now.Add(-5 * time.Minute),
			LastUpdate:  now,
		},
		{
			ID:          g.ID(),
			Name:        "Trend Master",
			Strategy:    contracts.StrategyTrendFollowing,
			RiskLevel:   contracts.RiskMedium,
			WinRate:     0.652,
			TotalTrades: 89,
			ProfitLoss:  890.25,
			Status:      contracts.BotActive,
			LastTradeAt: now.Add(-42 * time.Minute),
			LastUpdate:  now,
		},
		{
			ID:          g.ID(),
			Name:        "Swing Trader Elite",
			Strategy:    contracts.StrategySwingTrading,
			RiskLevel:   contracts.RiskLow,
			WinRate:     0.723,
			TotalTrades: 67,
			ProfitLoss:  456.80,
			Status:      contracts.BotPaused,
			LastTradeAt: now.Add(-6 * time.Hour),
			LastUpdate:  now,
		},
	}
}
