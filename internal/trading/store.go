// Package trading keeps the dashboard's headline numbers for the tracked symbol.
package trading

import (
	"context"
	"sync"
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/sample"
	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/logger"
	"github.com/planetprotrader/backend/pkg/metrics"
)

// ContractSize is ounces per standard lot of gold
const ContractSize = 100.0

// Store owns the trading snapshot
type Store struct {
	mu    sync.Mutex
	snap  contracts.TradingSnapshot
	gen   *sample.Generator
	delay time.Duration

	view    *state.Value[contracts.TradingSnapshot]
	logger  *logger.Logger
	metrics *metrics.Recorder
}

// NewStore creates the store from an initial snapshot
func NewStore(initial contracts.TradingSnapshot, gen *sample.Generator, delay time.Duration, bus state.Bus, rec *metrics.Recorder, log *logger.Logger) *Store {
	s := &Store{
		snap:    initial,
		gen:     gen,
		delay:   delay,
		logger:  log.WithComponent("trading"),
		metrics: rec,
	}
	s.view = state.NewValue(state.TopicTrading, cloneSnapshot(initial), bus, log)
	rec.RecordLastPrice(initial.Symbol, initial.CurrentPrice)
	return s
}

// View exposes the published snapshot
func (s *Store) View() *state.Value[contracts.TradingSnapshot] {
	return s.view
}

// Snapshot returns a copy of the current numbers
func (s *Store) Snapshot() contracts.TradingSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSnapshot(s.snap)
}

// Refresh waits the simulated latency, then moves the price and P&L by random deltas
func (s *Store) Refresh(ctx context.Context) (contracts.TradingSnapshot, error) {
	start := time.Now()
	defer s.metrics.ObserveSince("trading_refresh", start)

	select {
	case <-ctx.Done():
		s.metrics.RecordRefresh("trading", ctx.Err())
		return s.Snapshot(), ctx.Err()
	case <-time.After(s.delay):
	}

	s.mu.Lock()
	snap := &s.snap
	snap.CurrentPrice += s.gen.Uniform(-5, 5)
	snap.PriceChange = s.gen.Uniform(-20, 20)
	if snap.CurrentPrice != 0 {
		snap.PriceChangePercent = snap.PriceChange / snap.CurrentPrice * 100
	}
	snap.TodaysPnL += s.gen.Uniform(-10, 10)
	snap.TodaysChangePercent = s.gen.Uniform(-2, 2)
	for i := range snap.ActiveTrades {
		markToMarket(&snap.ActiveTrades[i], snap.CurrentPrice)
	}
	snap.UpdatedAt = s.gen.Now()
	out := cloneSnapshot(*snap)
	// publish under the lock so overlapping refreshes land in order
	s.view.Set(out)
	s.metrics.RecordLastPrice(out.Symbol, out.CurrentPrice)
	s.mu.Unlock()

	s.metrics.RecordRefresh("trading", nil)

	s.logger.WithFields(map[string]interface{}{
		"symbol": out.Symbol,
		"price":  out.CurrentPrice,
	}).Debug("Trading snapshot refreshed")
	return out, nil
}

// markToMarket sets the trade's current price and recomputes its P&L
func markToMarket(t *contracts.Trade, price float64) {
	t.CurrentPrice = price
	diff := price - t.EntryPrice
	if t.Side == contracts.SideSell {
		diff = -diff
	}
	t.PnL = diff * t.Size * ContractSize
}

func cloneSnapshot(in contracts.TradingSnapshot) contracts.TradingSnapshot {
	out := in
	out.ActiveTrades = append([]contracts.Trade(nil), in.ActiveTrades...)
	out.PendingOrders = append([]contracts.Order(nil), in.PendingOrders...)
	return out
}
