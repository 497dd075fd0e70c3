package sample

import (
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
)

// GoldSymbol is the instrument the dashboard tracks
const GoldSymbol = "XAUUSD"

// TradingSnapshot returns the dashboard numbers shown before the first refresh
func TradingSnapshot(g *Generator) contracts.TradingSnapshot {
	now := g.Now()
	return contracts.TradingSnapshot{
		Symbol:               GoldSymbol,
		TodaysPnL:            250.45,
		TodaysChangePercent:  12.8,
		WinRate:              73.5,
		CurrentPrice:         2045.67,
		PriceChange:          15.23,
		PriceChangePercent:   0.75,
		WeeklyPnL:            1250.75,
		WeeklyChangePercent:  8.4,
		MonthlyPnL:           3450.25,
		MonthlyChangePercent: 15.7,
		ActiveTrades: []contracts.Trade{
			{
				ID:           g.ID(),
				Symbol:       GoldSymbol,
				Side:         contracts.SideBuy,
				Size:         0.5,
				EntryPrice:   2040.25,
				CurrentPrice: 2045.67,
				PnL:          271.00,
				Timestamp:    now.Add(-2 * time.Hour),
			},
			{
				ID:           g.ID(),
				Symbol:       GoldSymbol,
				Side:         contracts.SideSell,
				Size:         0.3,
				EntryPrice:   2050.10,
				CurrentPrice: 2045.67,
				PnL:          132.90,
				Timestamp:    now.Add(-45 * time.Minute),
			},
		},
		PendingOrders: []contracts.Order{
			{
				ID:         g.ID(),
				Symbol:     GoldSymbol,
				Side:       contracts.SideBuy,
				Size:       0.5,
				OrderPrice: 2035.00,
				OrderType:  contracts.OrderLimit,
				Timestamp:  now.Add(-30 * time.Minute),
			},
			{
				ID:         g.ID(),
				Symbol:     GoldSymbol,
				Side:       contracts.SideSell,
				Size:       0.3,
				OrderPrice: 2030.00,
				OrderType:  contracts.OrderStop,
				Timestamp:  now.Add(-10 * time.Minute),
			},
		},
		UpdatedAt: now,
	}
}
