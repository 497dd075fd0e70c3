package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/screenshot"
	"github.com/planetprotrader/backend/pkg/logger"
)

type fakeSignals struct {
	generated []time.Time
	ttl       time.Duration
}

func (f *fakeSignals) Generate(now time.Time) contracts.Signal {
	f.generated = append(f.generated, now)
	return contracts.Signal{Direction: contracts.DirectionBuy, EntryPrice: 2045}
}

func (f *fakeSignals) Expire(now time.Time, ttl time.Duration) int {
	f.ttl = ttl
	return 2
}

type fakeTicker struct{ err error }

func (f fakeTicker) Tick(ctx context.Context) error { return f.err }

type fakeChecker struct {
	typ contracts.SessionType
	err error
}

func (f *fakeChecker) RunHealthCheck(ctx context.Context, typ contracts.SessionType) (contracts.DebugSession, error) {
	f.typ = typ
	return contracts.DebugSession{Type: typ, Status: contracts.SessionCompleted}, f.err
}

type pollFunc func(ctx context.Context) error

func (f pollFunc) RefreshData(ctx context.Context) error { return f(ctx) }

func TestSignalGenerationJob(t *testing.T) {
	store := &fakeSignals{}
	job := NewSignalGenerationJob(store, 0, logger.NewNop())
	fixedNow := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixedNow }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []time.Time{fixedNow}, store.generated)
	assert.Equal(t, DefaultSignalTTL, store.ttl)
	assert.Equal(t, "signal_generation", job.Name())
	assert.Equal(t, "@every 1m", job.Schedule())
}

func TestScreenshotJob_SkipsWhenBusy(t *testing.T) {
	log := logger.NewNop()

	busy := NewScreenshotJob(fakeTicker{err: screenshot.ErrUploadInProgress}, 0, log)
	assert.NoError(t, busy.Run(context.Background()))
	assert.Equal(t, "@every 30s", busy.Schedule())

	failing := NewScreenshotJob(fakeTicker{err: errors.New("bucket gone")}, time.Minute, log)
	assert.EqualError(t, failing.Run(context.Background()), "bucket gone")
	assert.Equal(t, "@every 1m0s", failing.Schedule())
}

func TestControlPollJob(t *testing.T) {
	calls := 0
	job := NewControlPollJob(pollFunc(func(ctx context.Context) error {
		calls++
		return errors.New("No data received")
	}), 2*time.Second, logger.NewNop())

	assert.Error(t, job.Run(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "@every 2s", job.Schedule())
	assert.Equal(t, "control_poll", job.Name())
}

func TestHealthCheckJob(t *testing.T) {
	checker := &fakeChecker{}
	job := NewHealthCheckJob(checker, logger.NewNop())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, contracts.SessionHealthCheck, checker.typ)

	checker.err = context.Canceled
	assert.ErrorIs(t, job.Run(context.Background()), context.Canceled)
}
