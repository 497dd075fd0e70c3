package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/config"
	"github.com/planetprotrader/backend/pkg/logger"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Port: "0",
		Env:  "test",
		Auth: config.AuthConfig{
			Provider:     "memory",
			EmailDomain:  "goldex.ai",
			ResetTTL:     time.Hour,
			SignInPerMin: 10,
		},
		Screenshot: config.ScreenshotConfig{Quality: 80},
		Simulation: config.SimulationConfig{Seed: 42},
	}
}

func TestBuildApp_InMemory(t *testing.T) {
	a, err := buildApp(context.Background(), memoryConfig(), logger.NewNop())
	require.NoError(t, err)
	defer a.close()

	assert.Nil(t, a.db)
	assert.Nil(t, a.control)
	assert.False(t, a.redis.Enabled())
	assert.IsType(t, &state.MemoryBus{}, a.bus)

	h := a.headline()
	assert.Greater(t, h.Price, 0.0)
	assert.Equal(t, len(a.bots.List()), h.BotsTotal)

	hub := a.hub()
	assert.NotContains(t, hub.Topics(), state.TopicControl)
	assert.Contains(t, hub.Topics(), state.TopicTrading)
	assert.NotNil(t, a.server(hub))
}

func TestBuildApp_SchedulerJobs(t *testing.T) {
	cfg := memoryConfig()
	cfg.Screenshot.Enabled = true
	cfg.Screenshot.Interval = time.Minute

	a, err := buildApp(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer a.close()

	sched, err := a.scheduler()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"bot_activity",
		"bot_refresh",
		"health_check",
		"screenshot_capture",
		"signal_generation",
		"trading_refresh",
		"vps_heartbeat",
	}, sched.GetAllJobs())

	result, err := sched.RunJobSync(context.Background(), "signal_generation")
	require.NoError(t, err)
	assert.True(t, result.Success, result.Error)
	assert.NotEmpty(t, a.signals.List())
}

func TestBuildApp_SeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bots:
  - name: Night Owl
    strategy: Scalping
    risk_level: 2
    win_rate: 0.61
vps:
  - id: vps-test
    name: Test Box
    host: 10.0.0.5
    port: 22
    username: root
    max_accounts: 2
`), 0o600))

	cfg := memoryConfig()
	cfg.Simulation.SeedFile = path

	a, err := buildApp(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer a.close()

	require.Len(t, a.bots.List(), 1)
	assert.Equal(t, "Night Owl", a.bots.List()[0].Name)

	fleet, err := loadFleet(cfg)
	require.NoError(t, err)
	require.Len(t, fleet, 1)
	assert.Equal(t, "vps-test", fleet[0].ID)
}

func TestBuildApp_BadSeedFile(t *testing.T) {
	cfg := memoryConfig()
	cfg.Simulation.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := buildApp(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}
