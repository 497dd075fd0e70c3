package playbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/sample"
	"github.com/planetprotrader/backend/pkg/logger"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestJournal() *Journal {
	gen := sample.NewGenerator(42).WithClock(func() time.Time { return fixedNow })
	return NewJournal(sample.PlaybookTrades(gen), sample.JournalEntries(gen), gen, nil, logger.NewNop())
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		r    float64
		want contracts.TradeGrade
	}{
		{3, contracts.GradeElite},
		{2, contracts.GradeElite},
		{1.99, contracts.GradeGood},
		{1, contracts.GradeGood},
		{0, contracts.GradeAverage},
		{-0.01, contracts.GradePoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.r), "r=%v", tt.r)
	}
}

func TestStats(t *testing.T) {
	st := newTestJournal().Stats()

	assert.Equal(t, 3, st.TotalTrades)
	assert.Equal(t, 1, st.Wins)
	assert.Equal(t, 1, st.Losses)
	assert.InDelta(t, 0.5, st.WinRate, 1e-9, "running trades are excluded from the win rate")
	assert.InDelta(t, 785.0, st.TotalPnL, 1e-9)
	assert.InDelta(t, 0.5, st.AverageRMultiple, 1e-9)
}

func TestStats_Empty(t *testing.T) {
	j := NewJournal(nil, nil, sample.NewGenerator(1), nil, logger.NewNop())
	assert.Equal(t, Stats{}, j.Stats())
}

func TestTradesByGrade(t *testing.T) {
	j := newTestJournal()

	assert.Len(t, j.Trades(contracts.GradeAll), 3)
	assert.Len(t, j.Trades(""), 3)

	elite := j.Trades(contracts.GradeElite)
	require.Len(t, elite, 1)
	assert.Equal(t, 2.0, elite[0].RMultiple)

	assert.Empty(t, j.Trades(contracts.GradeAverage))
}

func TestTradesNewestFirst(t *testing.T) {
	trades := newTestJournal().Trades(contracts.GradeAll)
	for i := 1; i < len(trades); i++ {
		assert.False(t, trades[i].Timestamp.After(trades[i-1].Timestamp))
	}
}

func TestAddTrade(t *testing.T) {
	j := newTestJournal()

	trade, err := j.AddTrade(contracts.PlaybookTrade{
		Direction:  contracts.DirectionSell,
		EntryPrice: 2050,
		StopLoss:   2055,
		TakeProfit: 2035,
		LotSize:    0.2,
		RMultiple:  1.2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, trade.ID)
	assert.Equal(t, contracts.GradeGood, trade.Grade)
	assert.Equal(t, contracts.ResultRunning, trade.Result)
	assert.Equal(t, sample.GoldSymbol, trade.Symbol)
	assert.Equal(t, fixedNow, trade.Timestamp)

	assert.Equal(t, trade.ID, j.Trades(contracts.GradeAll)[0].ID)
	assert.Equal(t, 4, j.View().Get().Stats.TotalTrades)
}

func TestAddTrade_Invalid(t *testing.T) {
	j := newTestJournal()

	_, err := j.AddTrade(contracts.PlaybookTrade{Direction: "HOLD", EntryPrice: 1, LotSize: 1})
	assert.ErrorIs(t, err, ErrInvalidTrade)

	_, err = j.AddTrade(contracts.PlaybookTrade{Direction: contracts.DirectionBuy})
	assert.ErrorIs(t, err, ErrInvalidTrade)

	_, err = j.AddTrade(contracts.PlaybookTrade{Direction: contracts.DirectionBuy, EntryPrice: 1, LotSize: 1, Grade: "Z"})
	assert.ErrorIs(t, err, ErrInvalidTrade)
}

func TestEntries(t *testing.T) {
	j := newTestJournal()

	_, err := j.AddEntry(contracts.JournalEntry{})
	assert.Error(t, err)

	e, err := j.AddEntry(contracts.JournalEntry{Title: "Trimmed size into NFP"})
	require.NoError(t, err)
	assert.Equal(t, contracts.EntryTradeAnalysis, e.Type)

	entries := j.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, e.ID, entries[0].ID)
}
