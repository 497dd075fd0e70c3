package bots

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/sample"
	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/logger"
	"github.com/planetprotrader/backend/pkg/metrics"
)

var (
	// ErrNotFound is returned for an unknown bot id
	ErrNotFound = errors.New("bot not found")
	// ErrInvalidStatus is returned for a status outside the known set
	ErrInvalidStatus = errors.New("invalid bot status")
)

// Volume bounds for the simulated daily trading volume
const (
	minTradingVolume = 50000.0
	maxTradingVolume = 100000.0
)

// Snapshot is what the registry publishes after every change
type Snapshot struct {
	Bots         []contracts.TradingBot `json:"bots"`
	Stats        contracts.BotStats     `json:"stats"`
	IsRefreshing bool                   `json:"isRefreshing"`
}

// Registry owns the user's bot fleet and its aggregate statistics
// ⭐ SSOT: bot state is only mutated here
type Registry struct {
	mu           sync.Mutex
	bots         []contracts.TradingBot
	stats        contracts.BotStats
	gen          *sample.Generator
	refreshDelay time.Duration

	view    *state.Value[Snapshot]
	logger  *logger.Logger
	metrics *metrics.Recorder
}

// Config holds registry dependencies
type Config struct {
	RefreshDelay time.Duration
	Bus          state.Bus
	Metrics      *metrics.Recorder
}

// NewRegistry creates a registry seeded with bots
func NewRegistry(seed []contracts.TradingBot, gen *sample.Generator, cfg Config, log *logger.Logger) *Registry {
	r := &Registry{
		bots:         cloneBots(seed),
		gen:          gen,
		refreshDelay: cfg.RefreshDelay,
		logger:       log.WithComponent("bots"),
		metrics:      cfg.Metrics,
	}
	r.updateStatsLocked()
	r.stats.AllActive = allActive(r.bots)
	r.view = state.NewValue(state.TopicBots, r.snapshotLocked(false), cfg.Bus, log)
	return r
}

// View exposes the published snapshot
func (r *Registry) View() *state.Value[Snapshot] {
	return r.view
}

// Refresh waits the simulated latency and recomputes the aggregates
func (r *Registry) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.view.Set(r.snapshotLocked(true))
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		r.mu.Lock()
		r.view.Set(r.snapshotLocked(false))
		r.mu.Unlock()
		r.metrics.RecordRefresh("bots", ctx.Err())
		return ctx.Err()
	case <-time.After(r.refreshDelay):
	}

	r.mu.Lock()
	r.updateStatsLocked()
	r.stats.AllActive = allActive(r.bots)
	r.publishLocked()
	stats := r.stats
	r.mu.Unlock()

	r.metrics.RecordRefresh("bots", nil)
	r.logger.WithFields(map[string]interface{}{
		"total_profit": stats.TotalProfit,
		"total_trades": stats.TotalTrades,
	}).Debug("Bot stats refreshed")
	return nil
}

// ToggleAll flips the fleet-wide flag and sets every bot Active or Paused to match
func (r *Registry) ToggleAll() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := !r.stats.AllActive
	status := contracts.BotPaused
	if active {
		status = contracts.BotActive
	}

	now := r.gen.Now()
	for i := range r.bots {
		r.bots[i].Status = status
		r.bots[i].LastUpdate = now
	}

	r.updateStatsLocked()
	r.stats.AllActive = active

	r.logger.WithField("all_active", active).Info("Toggled all bots")
	return r.publishLocked()
}

// Simulate advances every running bot by one random trading step
func (r *Registry) Simulate() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.gen.Now()
	for i := range r.bots {
		b := &r.bots[i]
		if !b.IsRunning() || !r.gen.Chance(0.5) {
			continue
		}

		delta := r.gen.Uniform(-50, 80)
		n := float64(b.TotalTrades)
		win := 0.0
		if delta > 0 {
			win = 1
		}
		b.WinRate = clamp01((b.WinRate*n + win) / (n + 1))
		b.TotalTrades++
		b.ProfitLoss += delta
		b.LastTradeAt = now
		b.LastUpdate = now
	}

	r.updateStatsLocked()
	r.stats.AllActive = allActive(r.bots)
	return r.publishLocked()
}

// Add registers a bot, assigning an id when missing
func (r *Registry) Add(bot contracts.TradingBot) (contracts.TradingBot, error) {
	if !bot.Strategy.IsValid() {
		return contracts.TradingBot{}, fmt.Errorf("unknown strategy %q", bot.Strategy)
	}
	if bot.Status == "" {
		bot.Status = contracts.BotInactive
	}
	if !bot.Status.IsValid() {
		return contracts.TradingBot{}, ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if bot.ID == "" {
		bot.ID = r.gen.ID()
	}
	bot.LastUpdate = r.gen.Now()
	r.bots = append(r.bots, bot)

	r.updateStatsLocked()
	r.stats.AllActive = allActive(r.bots)
	r.publishLocked()
	return bot, nil
}

// SetStatus changes one bot's status
func (r *Registry) SetStatus(id string, status contracts.BotStatus) (contracts.TradingBot, error) {
	if !status.IsValid() {
		return contracts.TradingBot{}, ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return contracts.TradingBot{}, ErrNotFound
	}
	r.bots[i].Status = status
	r.bots[i].LastUpdate = r.gen.Now()

	r.updateStatsLocked()
	r.stats.AllActive = allActive(r.bots)
	r.publishLocked()
	return r.bots[i], nil
}

// Get returns a copy of one bot
func (r *Registry) Get(id string) (contracts.TradingBot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return contracts.TradingBot{}, ErrNotFound
	}
	return r.bots[i], nil
}

// List returns a copy of the fleet
func (r *Registry) List() []contracts.TradingBot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneBots(r.bots)
}

// Stats returns the last computed aggregates
func (r *Registry) Stats() contracts.BotStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Best is the bot with the highest profit
func (r *Registry) Best() (contracts.TradingBot, bool) {
	return r.maxBy(func(a, b contracts.TradingBot) bool { return a.ProfitLoss > b.ProfitLoss })
}

// MostActive is the bot with the most trades
func (r *Registry) MostActive() (contracts.TradingBot, bool) {
	return r.maxBy(func(a, b contracts.TradingBot) bool { return a.TotalTrades > b.TotalTrades })
}

// HighestWinRate is the bot with the best win rate
func (r *Registry) HighestWinRate() (contracts.TradingBot, bool) {
	return r.maxBy(func(a, b contracts.TradingBot) bool { return a.WinRate > b.WinRate })
}

func (r *Registry) maxBy(better func(a, b contracts.TradingBot) bool) (contracts.TradingBot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.bots) == 0 {
		return contracts.TradingBot{}, false
	}
	best := r.bots[0]
	for _, b := range r.bots[1:] {
		if better(b, best) {
			best = b
		}
	}
	return best, true
}

// updateStatsLocked recomputes sums and the mean win rate.
// The mean is left unchanged for an empty fleet. AllActive is set by callers.
func (r *Registry) updateStatsLocked() {
	totalProfit := 0.0
	totalTrades := 0
	winRateSum := 0.0
	active := 0
	for _, b := range r.bots {
		totalProfit += b.ProfitLoss
		totalTrades += b.TotalTrades
		winRateSum += b.WinRate
		if b.IsRunning() {
			active++
		}
	}

	r.stats.TotalProfit = totalProfit
	r.stats.TotalTrades = totalTrades
	if len(r.bots) > 0 {
		r.stats.OverallWinRate = winRateSum / float64(len(r.bots))
	}
	r.stats.TotalTradingVolume = r.gen.Uniform(minTradingVolume, maxTradingVolume)
	r.stats.ActiveCount = active
	r.stats.BotCount = len(r.bots)
}

func (r *Registry) publishLocked() Snapshot {
	snap := r.snapshotLocked(false)
	r.view.Set(snap)
	return snap
}

func (r *Registry) snapshotLocked(refreshing bool) Snapshot {
	return Snapshot{
		Bots:         cloneBots(r.bots),
		Stats:        r.stats,
		IsRefreshing: refreshing,
	}
}

func (r *Registry) indexLocked(id string) int {
	for i := range r.bots {
		if r.bots[i].ID == id {
			return i
		}
	}
	return -1
}

func allActive(bots []contracts.TradingBot) bool {
	for _, b := range bots {
		if b.Status != contracts.BotActive {
			return false
		}
	}
	return true
}

func cloneBots(in []contracts.TradingBot) []contracts.TradingBot {
	out := make([]contracts.TradingBot, len(in))
	copy(out, in)
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
