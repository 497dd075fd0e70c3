package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/planetprotrader/backend/internal/api"
	"github.com/planetprotrader/backend/internal/api/handlers"
	"github.com/planetprotrader/backend/internal/api/ws"
	"github.com/planetprotrader/backend/internal/auth"
	"github.com/planetprotrader/backend/internal/blob"
	s3blob "github.com/planetprotrader/backend/internal/blob/s3"
	"github.com/planetprotrader/backend/internal/bots"
	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/controlplane"
	"github.com/planetprotrader/backend/internal/debug"
	"github.com/planetprotrader/backend/internal/marketplace"
	"github.com/planetprotrader/backend/internal/playbook"
	"github.com/planetprotrader/backend/internal/profile"
	"github.com/planetprotrader/backend/internal/sample"
	"github.com/planetprotrader/backend/internal/scheduler"
	"github.com/planetprotrader/backend/internal/scheduler/jobs"
	"github.com/planetprotrader/backend/internal/screenshot"
	"github.com/planetprotrader/backend/internal/signals"
	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/internal/trading"
	"github.com/planetprotrader/backend/internal/vps"
	"github.com/planetprotrader/backend/pkg/config"
	"github.com/planetprotrader/backend/pkg/database"
	"github.com/planetprotrader/backend/pkg/httputil"
	"github.com/planetprotrader/backend/pkg/logger"
	"github.com/planetprotrader/backend/pkg/metrics"
	"github.com/planetprotrader/backend/pkg/redis"
)

// snapshotTTL bounds how long a mirrored snapshot outlives its publisher
const snapshotTTL = redis.TTLLong

// app holds every store, service and client the commands share
type app struct {
	cfg *config.Config
	log *logger.Logger

	db      *database.DB
	redis   *redis.Client
	cache   *redis.Cache
	bus     state.Bus
	metrics *metrics.Recorder

	gateway     *auth.Gateway
	bots        *bots.Registry
	trading     *trading.Store
	signals     *signals.Store
	playbook    *playbook.Journal
	marketplace *marketplace.Catalog
	debug       *debug.Store
	vps         *vps.Registry
	uploader    *screenshot.Uploader
	control     *controlplane.Monitor
}

// loadConfig loads config and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// buildApp connects the backing services and creates the stores.
// Postgres and Redis are optional: without them the in-memory variants are used.
func buildApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	// 1. Redis (bus, cache, shared rate limits)
	rc, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc
	a.cache = redis.NewCache(rc)
	if rc.Enabled() {
		a.bus = state.NewRedisBus(redis.NewBus(rc))
		log.Info("Connected to redis")
	} else {
		a.bus = state.NewMemoryBus()
	}

	// 2. Postgres (identity, profiles, screenshot records)
	if cfg.UsesPostgres() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		if err := db.EnsureSchema(ctx); err != nil {
			a.close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("Connected to database")
	}

	// 3. Simulation stores
	gen := sample.NewGenerator(cfg.Simulation.Seed)
	botSeed := sample.Bots(gen)
	fleet := sample.VPSInstances()
	if cfg.Simulation.SeedFile != "" {
		seed, err := sample.LoadSeed(cfg.Simulation.SeedFile)
		if err != nil {
			a.close()
			return nil, err
		}
		if len(seed.Bots) > 0 {
			botSeed = seed.TradingBots(gen)
		}
		if len(seed.VPS) > 0 {
			fleet = seed.VPSInstances()
		}
		log.WithFields(map[string]interface{}{
			"file": cfg.Simulation.SeedFile,
			"bots": len(seed.Bots),
			"vps":  len(seed.VPS),
		}).Info("Loaded seed file")
	}

	a.bots = bots.NewRegistry(botSeed, gen.Derive(), bots.Config{
		RefreshDelay: cfg.Simulation.BotRefreshDelay,
		Bus:          a.bus,
		Metrics:      a.metrics,
	}, log)
	a.trading = trading.NewStore(sample.TradingSnapshot(gen), gen.Derive(), cfg.Simulation.TradingDelay, a.bus, a.metrics, log)
	a.signals = signals.NewStore(gen.Derive(), func() float64 {
		return a.trading.Snapshot().CurrentPrice
	}, 0, a.bus, log)
	a.playbook = playbook.NewJournal(sample.PlaybookTrades(gen), sample.JournalEntries(gen), gen.Derive(), a.bus, log)
	a.marketplace = marketplace.NewCatalog(sample.MarketplaceBots(gen))
	a.debug = debug.NewStore(sample.ErrorLogs(gen), gen.Derive(), a.bus, log)
	a.vps = vps.NewRegistry(fleet, cfg.Simulation.VPSConnectDelay, a.bus, log)

	// 4. Identity and profiles
	var (
		provider auth.IdentityProvider
		profiles profile.Repository
	)
	if cfg.Auth.Provider == "postgres" && a.db != nil {
		provider = auth.NewPostgresProvider(a.db.Pool, cfg.Auth.ResetTTL, log)
	} else {
		provider = auth.NewMemoryProvider(cfg.Auth.ResetTTL)
	}
	if a.db != nil {
		profiles = profile.NewPostgresRepository(a.db.Pool)
	} else {
		profiles = profile.NewMemoryRepository()
	}
	authCfg := auth.Config{
		EmailDomain:  cfg.Auth.EmailDomain,
		SignInPerMin: cfg.Auth.SignInPerMin,
		Bus:          a.bus,
		Metrics:      a.metrics,
	}
	if rc.Enabled() {
		profiles = profile.NewCachedRepository(profiles, a.cache, log)
		authCfg.SharedLimiter = redis.NewRateLimiter(rc)
	}
	a.gateway = auth.NewGateway(provider, profiles, authCfg, log)

	// 5. Screenshots
	writer, err := a.blobWriter(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	var records screenshot.RecordStore = screenshot.NewMemoryRecordStore()
	if a.db != nil {
		records = screenshot.NewPostgresRecordStore(a.db.Pool)
	}
	a.uploader = screenshot.NewUploader(screenshot.NewDashboardCapturer(a.headline), writer, records, screenshot.Config{
		Quality:      cfg.Screenshot.Quality,
		AccountLogin: cfg.Screenshot.AccountLogin,
		Bus:          a.bus,
		Metrics:      a.metrics,
	}, log)

	// 6. Control plane, only when configured
	if cfg.ControlPlane.BaseURL != "" {
		monitor, err := newControlMonitor(cfg, a.bus, a.metrics, log)
		if err != nil {
			a.close()
			return nil, err
		}
		a.control = monitor
	}

	return a, nil
}

func (a *app) blobWriter(ctx context.Context) (blob.Writer, error) {
	if !a.cfg.Storage.Enabled {
		return blob.NewMemoryWriter(a.cfg.Storage.PublicBaseURL), nil
	}
	client, err := s3blob.New(ctx, s3blob.ConfigFrom(a.cfg.Storage))
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if err := client.Health(ctx); err != nil {
		a.log.WithError(err).WithField("bucket", client.Bucket()).Warn("Screenshot bucket is not reachable yet")
	} else {
		a.log.WithField("bucket", client.Bucket()).Info("Screenshot storage enabled")
	}
	return s3blob.NewWriter(client), nil
}

// headline feeds the dashboard card from the live stores
func (a *app) headline() screenshot.Headline {
	snap := a.trading.Snapshot()
	fleet := a.bots.View().Get()
	return screenshot.Headline{
		Price:       snap.CurrentPrice,
		PriceChange: snap.PriceChange,
		TodaysPnL:   snap.TodaysPnL,
		WinRate:     snap.WinRate,
		BotsActive:  fleet.Stats.ActiveCount,
		BotsTotal:   fleet.Stats.BotCount,
	}
}

func newControlMonitor(cfg *config.Config, bus state.Bus, rec *metrics.Recorder, log *logger.Logger) (*controlplane.Monitor, error) {
	httpClient := httputil.New(log, httputil.Options{
		Timeout:    cfg.ControlPlane.Timeout,
		Retry:      cfg.ControlPlane.RetryEnabled,
		RatePerSec: cfg.ControlPlane.RatePerSec,
	})
	client, err := controlplane.NewClient(cfg.ControlPlane.BaseURL, httpClient, log)
	if err != nil {
		return nil, fmt.Errorf("control plane client: %w", err)
	}
	return controlplane.NewMonitor(client, bus, rec, log), nil
}

// scheduler registers the simulation and service jobs
func (a *app) scheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log, scheduler.Options{
		JobTimeout: time.Minute,
		Metrics:    a.metrics,
	})

	list := []scheduler.Job{
		jobs.NewBotActivityJob(a.bots, a.log),
		jobs.NewBotRefreshJob(a.bots, a.log),
		jobs.NewTradingRefreshJob(a.trading, a.log),
		jobs.NewSignalGenerationJob(a.signals, jobs.DefaultSignalTTL, a.log),
		jobs.NewVPSHeartbeatJob(a.vps, a.log),
		jobs.NewHealthCheckJob(a.debug, a.log),
	}
	if a.control != nil {
		list = append(list, jobs.NewControlPollJob(a.control, a.cfg.ControlPlane.PollInterval, a.log))
	}
	if a.cfg.Screenshot.Enabled {
		list = append(list, jobs.NewScreenshotJob(a.uploader, a.cfg.Screenshot.Interval, a.log))
	}

	for _, job := range list {
		if err := sched.AddJob(job); err != nil {
			return nil, fmt.Errorf("add job %s: %w", job.Name(), err)
		}
	}
	return sched, nil
}

// hub streams every store's changes to websocket clients
func (a *app) hub() *ws.Hub {
	sources := map[string]ws.Source{
		state.TopicAuth:       func() interface{} { return a.gateway.Session().Get() },
		state.TopicBots:       func() interface{} { return a.bots.View().Get() },
		state.TopicTrading:    func() interface{} { return a.trading.View().Get() },
		state.TopicSignals:    func() interface{} { return a.signals.View().Get() },
		state.TopicPlaybook:   func() interface{} { return a.playbook.View().Get() },
		state.TopicDebug:      func() interface{} { return a.debug.View().Get() },
		state.TopicVPS:        func() interface{} { return a.vps.View().Get() },
		state.TopicScreenshot: func() interface{} { return a.uploader.View().Get() },
	}
	if a.control != nil {
		sources[state.TopicControl] = func() interface{} { return a.control.View().Get() }
	}
	return ws.NewHub(a.bus, sources, a.log)
}

// server builds the HTTP server over every handler
func (a *app) server(hub *ws.Hub) *api.Server {
	h := api.Handlers{
		Auth:        handlers.NewAuthHandler(a.gateway, a.log),
		Bots:        handlers.NewBotsHandler(a.bots, a.log),
		Trading:     handlers.NewTradingHandler(a.trading, a.signals, a.log),
		Playbook:    handlers.NewPlaybookHandler(a.playbook, a.log),
		Marketplace: handlers.NewMarketplaceHandler(a.marketplace),
		Control:     handlers.NewControlHandler(a.control, a.log),
		VPS:         handlers.NewVPSHandler(a.vps, a.log),
		Debug:       handlers.NewDebugHandler(a.debug, a.log),
		Screenshots: handlers.NewScreenshotHandler(a.uploader, a.log),
		Hub:         hub,
	}
	if a.metrics != nil {
		h.Metrics = a.metrics.Handler()
	}
	return api.New(a.cfg, a.log, api.NewRouter(h, a.cfg.APIKey, a.log))
}

// mirror copies bus changes into Redis for the snapshot command
func (a *app) mirror(ctx context.Context) {
	if !a.redis.Enabled() {
		return
	}
	go func() {
		if err := state.Mirror(ctx, a.bus, a.cache, snapshotTTL, a.log); err != nil && ctx.Err() == nil {
			a.log.WithError(err).Warn("Snapshot mirror stopped")
		}
	}()
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// seedLabel is printed in banners so a run can be reproduced
func seedLabel(cfg *config.Config) string {
	if cfg.Simulation.Seed == 0 {
		return "random"
	}
	return fmt.Sprintf("%d", cfg.Simulation.Seed)
}

// botStatusLine formats one bot for terminal output
func botStatusLine(b contracts.TradingBot) string {
	return fmt.Sprintf("%-24s %-16s %-10s win %s  P&L %.2f", b.Name, b.Strategy, b.Status, b.FormattedWinRate(), b.ProfitLoss)
}

// loadFleet returns the VPS list from the seed file, or the built-in one
func loadFleet(cfg *config.Config) ([]contracts.VPSInstance, error) {
	if cfg.Simulation.SeedFile == "" {
		return sample.VPSInstances(), nil
	}
	seed, err := sample.LoadSeed(cfg.Simulation.SeedFile)
	if err != nil {
		return nil, err
	}
	if len(seed.VPS) == 0 {
		return sample.VPSInstances(), nil
	}
	return seed.VPSInstances(), nil
}
