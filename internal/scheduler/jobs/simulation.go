package jobs

import (
	"context"
	"time"

	"github.com/planetprotrader/backend/internal/bots"
	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/pkg/logger"
)

// BotSimulator is the part of the bot registry the simulation jobs drive
type BotSimulator interface {
	Simulate() bots.Snapshot
	Refresh(ctx context.Context) error
}

// BotActivityJob moves running bots' P&L and win rates
type BotActivityJob struct {
	registry BotSimulator
	logger   *logger.Logger
}

// NewBotActivityJob creates a new bot activity job
func NewBotActivityJob(registry BotSimulator, log *logger.Logger) *BotActivityJob {
	return &BotActivityJob{
		registry: registry,
		logger:   log.WithField("job", "bot_activity"),
	}
}

func (j *BotActivityJob) Name() string { return "bot_activity" }

// Schedule: every 10 seconds
func (j *BotActivityJob) Schedule() string { return "@every 10s" }

func (j *BotActivityJob) Run(ctx context.Context) error {
	snap := j.registry.Simulate()
	j.logger.WithFields(map[string]interface{}{
		"active":   snap.Stats.ActiveCount,
		"totalPnL": snap.Stats.TotalProfit,
	}).Debug("Bot activity simulated")
	return nil
}

// BotRefreshJob recomputes fleet statistics
type BotRefreshJob struct {
	registry BotSimulator
	logger   *logger.Logger
}

// NewBotRefreshJob creates a new bot refresh job
func NewBotRefreshJob(registry BotSimulator, log *logger.Logger) *BotRefreshJob {
	return &BotRefreshJob{
		registry: registry,
		logger:   log.WithField("job", "bot_refresh"),
	}
}

func (j *BotRefreshJob) Name() string { return "bot_refresh" }

// Schedule: every 30 seconds
func (j *BotRefreshJob) Schedule() string { return "@every 30s" }

func (j *BotRefreshJob) Run(ctx context.Context) error {
	return j.registry.Refresh(ctx)
}

// TradingRefresher is the part of the trading store the refresh job drives
type TradingRefresher interface {
	Refresh(ctx context.Context) (contracts.TradingSnapshot, error)
}

// TradingRefreshJob walks the gold price and marks open trades
type TradingRefreshJob struct {
	store  TradingRefresher
	logger *logger.Logger
}

// NewTradingRefreshJob creates a new trading refresh job
func NewTradingRefreshJob(store TradingRefresher, log *logger.Logger) *TradingRefreshJob {
	return &TradingRefreshJob{
		store:  store,
		logger: log.WithField("job", "trading_refresh"),
	}
}

func (j *TradingRefreshJob) Name() string { return "trading_refresh" }

// Schedule: every 5 seconds
func (j *TradingRefreshJob) Schedule() string { return "@every 5s" }

func (j *TradingRefreshJob) Run(ctx context.Context) error {
	snap, err := j.store.Refresh(ctx)
	if err != nil {
		return err
	}
	j.logger.WithField("price", snap.CurrentPrice).Debug("Trading data refreshed")
	return nil
}

// SignalSource is the part of the signal store the generation job drives
type SignalSource interface {
	Generate(now time.Time) contracts.Signal
	Expire(now time.Time, ttl time.Duration) int
}

// DefaultSignalTTL is how long a pending signal stays actionable
const DefaultSignalTTL = time.Hour

// SignalGenerationJob publishes a new signal and expires stale ones
type SignalGenerationJob struct {
	store  SignalSource
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger
}

// NewSignalGenerationJob creates a new signal job. ttl <= 0 uses DefaultSignalTTL.
func NewSignalGenerationJob(store SignalSource, ttl time.Duration, log *logger.Logger) *SignalGenerationJob {
	if ttl <= 0 {
		ttl = DefaultSignalTTL
	}
	return &SignalGenerationJob{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: log.WithField("job", "signal_generation"),
	}
}

func (j *SignalGenerationJob) Name() string { return "signal_generation" }

// Schedule: every minute
func (j *SignalGenerationJob) Schedule() string { return "@every 1m" }

func (j *SignalGenerationJob) Run(ctx context.Context) error {
	now := j.now()
	expired := j.store.Expire(now, j.ttl)
	signal := j.store.Generate(now)

	j.logger.WithFields(map[string]interface{}{
		"direction": signal.Direction,
		"entry":     signal.EntryPrice,
		"expired":   expired,
	}).Debug("Signal generated")
	return nil
}

// FleetMonitor is the part of the VPS registry the heartbeat job drives
type FleetMonitor interface {
	Heartbeat() int
}

// VPSHeartbeatJob stamps LastPing on connected servers
type VPSHeartbeatJob struct {
	fleet  FleetMonitor
	logger *logger.Logger
}

// NewVPSHeartbeatJob creates a new heartbeat job
func NewVPSHeartbeatJob(fleet FleetMonitor, log *logger.Logger) *VPSHeartbeatJob {
	return &VPSHeartbeatJob{
		fleet:  fleet,
		logger: log.WithField("job", "vps_heartbeat"),
	}
}

func (j *VPSHeartbeatJob) Name() string { return "vps_heartbeat" }

// Schedule: every 15 seconds
func (j *VPSHeartbeatJob) Schedule() string { return "@every 15s" }

func (j *VPSHeartbeatJob) Run(ctx context.Context) error {
	n := j.fleet.Heartbeat()
	j.logger.WithField("pinged", n).Debug("VPS heartbeat")
	return nil
}
