package controlplane

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/logger"
	"github.com/planetprotrader/backend/pkg/metrics"
)

// DefaultPollInterval is how often Run refreshes
const DefaultPollInterval = 5 * time.Second

// API is the subset of Client the monitor needs
type API interface {
	Status(ctx context.Context) (*BotStatus, error)
	Account(ctx context.Context) (*AccountInfo, error)
	Trades(ctx context.Context) (*TradeHistory, error)
	Start(ctx context.Context) (string, error)
	Stop(ctx context.Context) (string, error)
}

// Monitor polls the control service and publishes what it learns
// ⭐ SSOT: control plane state is only mutated here
type Monitor struct {
	api     API
	view    *state.Value[ControlState]
	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Recorder
}

// NewMonitor creates a monitor over api
func NewMonitor(api API, bus state.Bus, rec *metrics.Recorder, log *logger.Logger) *Monitor {
	return &Monitor{
		api:     api,
		view:    state.NewValue(state.TopicControl, ControlState{}, bus, log),
		now:     time.Now,
		logger:  log.WithComponent("control_monitor"),
		metrics: rec,
	}
}

// View exposes the published state
func (m *Monitor) View() *state.Value[ControlState] {
	return m.view
}

// State returns the current state
func (m *Monitor) State() ControlState {
	return m.view.Get()
}

// RefreshData fetches status, account and trades concurrently and waits for all three.
// Whatever succeeded is published; the first failure becomes the error message.
func (m *Monitor) RefreshData(ctx context.Context) error {
	m.view.Update(func(s *ControlState) {
		s.IsLoading = true
	})

	var (
		g       errgroup.Group
		status  *BotStatus
		account *AccountInfo
		trades  *TradeHistory
	)
	g.Go(func() error {
		var err error
		status, err = m.api.Status(ctx)
		m.recordFailure(EndpointStatus, err)
		return err
	})
	g.Go(func() error {
		var err error
		account, err = m.api.Account(ctx)
		m.recordFailure(EndpointAccount, err)
		return err
	})
	g.Go(func() error {
		var err error
		trades, err = m.api.Trades(ctx)
		m.recordFailure(EndpointTrades, err)
		return err
	})
	err := g.Wait()

	m.view.Update(func(s *ControlState) {
		if status != nil {
			s.Status = status
		}
		if account != nil {
			s.Account = account
		}
		if trades != nil {
			s.Trades = trades
		}
		s.IsLoading = false
		s.ErrorMessage = ""
		if err != nil {
			s.ErrorMessage = err.Error()
		}
		s.LastUpdated = m.now()
	})

	m.metrics.RecordRefresh("control", err)
	return err
}

// StartBot asks the service to start the bot, then refreshes
func (m *Monitor) StartBot(ctx context.Context) error {
	return m.act(ctx, "start", m.api.Start)
}

// StopBot asks the service to stop the bot, then refreshes
func (m *Monitor) StopBot(ctx context.Context) error {
	return m.act(ctx, "stop", m.api.Stop)
}

func (m *Monitor) act(ctx context.Context, action string, call func(context.Context) (string, error)) error {
	msg, err := call(ctx)
	if err != nil {
		m.recordFailure(EndpointControl+action, err)
		m.view.Update(func(s *ControlState) {
			s.ErrorMessage = err.Error()
		})
		return err
	}

	m.view.Update(func(s *ControlState) {
		s.LastMessage = msg
	})
	return m.RefreshData(ctx)
}

// Run refreshes immediately and then every interval until ctx is cancelled
func (m *Monitor) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	m.logger.WithField("interval", interval.String()).Info("Control plane polling started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := m.RefreshData(ctx); err != nil && ctx.Err() == nil {
			m.logger.WithError(err).Warn("Control plane refresh failed")
		}

		select {
		case <-ctx.Done():
			m.logger.Info("Control plane polling stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Monitor) recordFailure(endpoint string, err error) {
	if err == nil {
		return
	}
	m.metrics.RecordControlError(endpoint)
	m.logger.WithError(err).WithField("endpoint", endpoint).Debug("Control plane call failed")
}
