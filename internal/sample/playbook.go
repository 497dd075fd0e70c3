package sample

import (
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
)

// PlaybookTrades returns a graded journal history
func PlaybookTrades(g *Generator) []contracts.PlaybookTrade {
	now := g.Now()
	exitWin := 2061.50
	exitLoss := 2037.50

	return []contracts.PlaybookTrade{
		{
			ID:               g.ID(),
			Symbol:           GoldSymbol,
			Direction:        contracts.DirectionBuy,
			EntryPrice:       2045.50,
			ExitPrice:        &exitWin,
			StopLoss:         2037.50,
			TakeProfit:       2061.50,
			LotSize:          0.5,
			PnL:              800,
			RMultiple:        2.0,
			Result:           contracts.ResultWin,
			Grade:            contracts.GradeElite,
			SetupDescription: "London open breakout with retest of the Asian high",
			EmotionalState:   contracts.EmotionCalm,
			EmotionalRating:  5,
			Timestamp:        now.Add(-26 * time.Hour),
		},
		{
			ID:               g.ID(),
			Symbol:           GoldSymbol,
			Direction:        contracts.DirectionBuy,
			EntryPrice:       2042.00,
			ExitPrice:        &exitLoss,
			StopLoss:         2037.50,
			TakeProfit:       2052.00,
			LotSize:          0.3,
			PnL:              -135,
			RMultiple:        -1.0,
			Result:           contracts.ResultLoss,
			Grade:            contracts.GradePoor,
			SetupDescription: "Chased entry after news spike",
			EmotionalState:   contracts.EmotionFrustrated,
			EmotionalRating:  2,
			Timestamp:        now.Add(-20 * time.Hour),
		},
		{
			ID:               g.ID(),
			Symbol:           GoldSymbol,
			Direction:        contracts.DirectionSell,
			EntryPrice:       2058.00,
			StopLoss:         2064.00,
			TakeProfit:       2040.00,
			LotSize:          0.4,
			PnL:              120,
			RMultiple:        0.5,
			Result:           contracts.ResultRunning,
			Grade:            contracts.GradeGood,
			SetupDescription: "Rejection at daily supply zone",
			EmotionalState:   contracts.EmotionConfident,
			EmotionalRating:  4,
			Timestamp:        now.Add(-90 * time.Minute),
		},
	}
}

// JournalEntries returns starter journal notes
func JournalEntries(g *Generator) []contracts.JournalEntry {
	now := g.Now()
	return []contracts.JournalEntry{
		{
			ID:        g.ID(),
			Type:      contracts.EntryDailyReview,
			Title:     "Patience paid off",
			Content:   "Waited for the retest instead of entering on the first candle.",
			Tags:      []string{"discipline", "london"},
			Timestamp: now.Add(-24 * time.Hour),
		},
		{
			ID:        g.ID(),
			Type:      contracts.EntryPsychologyNote,
			Title:     "FOMO after CPI",
			Content:   "Entered late after the spike. Rule: no entries within 5 minutes of red news.",
			Tags:      []string{"news", "fomo"},
			Timestamp: now.Add(-19 * time.Hour),
		},
	}
}
