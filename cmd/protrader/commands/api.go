package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/planetprotrader/backend/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST and websocket API.

This command:
- builds every store (in-memory, or Postgres/Redis backed when configured)
- serves the REST endpoints under /api
- streams store changes on /ws
- runs the simulation jobs in-process unless --no-scheduler is set

Endpoints:
  GET  /health        - Health check
  GET  /metrics       - Prometheus metrics (METRICS_ENABLED=true)
  GET  /ws            - Store change stream
  *    /api/...       - auth, bots, trading, signals, playbook,
                        marketplace, control, vps, debug, screenshots

Example:
  go run ./cmd/protrader api
  go run ./cmd/protrader api --port 9090 --no-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort        string
	apiNoScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
	apiCmd.Flags().BoolVar(&apiNoScheduler, "no-scheduler", false, "do not run simulation jobs in this process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Planet ProTrader API Server ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)
	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
		"seed": seedLabel(cfg),
	}).Info("Initializing API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Build stores and services
	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	// 4. Websocket hub and snapshot mirror
	hub := a.hub()
	go func() {
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("Websocket hub stopped")
		}
	}()
	a.mirror(ctx)

	// 5. Simulation jobs
	if !apiNoScheduler {
		sched, err := a.scheduler()
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 6. Start server with graceful shutdown
	server := a.server(hub)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Printf("   Seed: %s  Redis: %v  Postgres: %v  Control: %v\n",
		seedLabel(cfg), a.redis.Enabled(), a.db != nil, a.control != nil)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
