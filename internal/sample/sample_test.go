package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetprotrader/backend/internal/contracts"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestGenerator() *Generator {
	return NewGenerator(42).WithClock(func() time.Time { return fixedNow })
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(7)
	b := NewGenerator(7)

	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, a.Uniform(-5, 5), b.Uniform(-5, 5))
	assert.Equal(t, a.Intn(10), b.Intn(10))
}

func TestGenerator_Ranges(t *testing.T) {
	g := newTestGenerator()
	for i := 0; i < 500; i++ {
		v := g.Uniform(50000, 100000)
		assert.GreaterOrEqual(t, v, 50000.0)
		assert.Less(t, v, 100000.0)
	}
	assert.Zero(t, g.Intn(0))
	assert.Contains(t, []string{"a", "b"}, Pick(g, []string{"a", "b"}))
}

func TestBots(t *testing.T) {
	bots := Bots(newTestGenerator())
	require.Len(t, bots, 3)

	assert.Equal(t, "Gold Scalper Pro", bots[0].Name)
	assert.Equal(t, 1250.75, bots[0].ProfitLoss)
	assert.Equal(t, 145, bots[0].TotalTrades)
	assert.Equal(t, contracts.BotPaused, bots[2].Status)

	ids := map[string]bool{}
	for _, b := range bots {
		assert.True(t, b.Strategy.IsValid())
		assert.True(t, b.RiskLevel.IsValid())
		ids[b.ID] = true
	}
	assert.Len(t, ids, 3, "ids must be unique")
}

func TestTradingSnapshotDefaults(t *testing.T) {
	snap := TradingSnapshot(newTestGenerator())

	assert.Equal(t, 250.45, snap.TodaysPnL)
	assert.Equal(t, 2045.67, snap.CurrentPrice)
	assert.Equal(t, 73.5, snap.WinRate)
	assert.Len(t, snap.ActiveTrades, 2)
	assert.Len(t, snap.PendingOrders, 2)
	assert.Equal(t, fixedNow, snap.UpdatedAt)
}

func TestVPSInstances(t *testing.T) {
	fleet := VPSInstances()
	require.Len(t, fleet, VPSFleetSize)

	assert.Equal(t, "185.199.109.101", fleet[0].Host)
	assert.Equal(t, "185.199.109.110", fleet[9].Host)
	for _, v := range fleet {
		assert.Equal(t, 22, v.Port)
		assert.Equal(t, 5, v.MaxAccounts)
		assert.Equal(t, contracts.VPSDisconnected, v.Status)
	}
}

func TestOtherSamples(t *testing.T) {
	g := newTestGenerator()

	assert.Len(t, PlaybookTrades(g), 3)
	assert.Len(t, JournalEntries(g), 2)

	errs := ErrorLogs(g)
	require.Len(t, errs, 3)
	assert.Equal(t, []int{1001, 2001, 3001}, []int{errs[0].ErrorCode, errs[1].ErrorCode, errs[2].ErrorCode})

	listings := MarketplaceBots(g)
	require.Len(t, listings, 3)
	assert.Equal(t, "$499", listings[0].FormattedPrice())
}

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed([]byte(`
bots:
  - name: Asia Range
    strategy: Scalping
    risk_level: 2
    win_rate: 0.61
    total_trades: 12
    profit_loss: 88.5
vps:
  - host: 10.0.0.5
    max_accounts: 3
`))
	require.NoError(t, err)

	bots := seed.TradingBots(newTestGenerator())
	require.Len(t, bots, 1)
	assert.Equal(t, contracts.BotActive, bots[0].Status)
	assert.Equal(t, contracts.RiskLow, bots[0].RiskLevel)

	fleet := seed.VPSInstances()
	require.Len(t, fleet, 1)
	assert.Equal(t, "vps-1", fleet[0].ID)
	assert.Equal(t, 22, fleet[0].Port)
	assert.Equal(t, 3, fleet[0].MaxAccounts)
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad strategy": "bots:\n  - name: x\n    strategy: HODL\n",
		"bad win rate": "bots:\n  - name: x\n    strategy: Scalping\n    win_rate: 1.5\n",
		"missing host": "vps:\n  - name: x\n",
		"bad yaml":     "bots: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestEmptySeedReturnsNil(t *testing.T) {
	seed, err := ParseSeed([]byte("{}"))
	require.NoError(t, err)
	assert.Nil(t, seed.TradingBots(newTestGenerator()))
	assert.Nil(t, seed.VPSInstances())
}
