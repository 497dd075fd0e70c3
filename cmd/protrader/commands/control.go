package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/planetprotrader/backend/internal/controlplane"
	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/logger"
)

// controlCmd talks to the live bot control service
var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Query or drive the live bot control service",
	Long: `Talk to the MT5 bot control service at CONTROL_BASE_URL.

Subcommands:
  status  - bot status, account and recent trades
  start   - start the bot, then refresh
  stop    - stop the bot, then refresh

Example:
  CONTROL_BASE_URL=http://172.234.201.231:8080 go run ./cmd/protrader control status`,
}

var (
	controlStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show bot status, account and trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonitor(func(ctx context.Context, m *controlplane.Monitor) error {
				err := m.RefreshData(ctx)
				printControlState(m.State())
				return err
			})
		},
	}

	controlStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the trading bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonitor(func(ctx context.Context, m *controlplane.Monitor) error {
				err := m.StartBot(ctx)
				printControlState(m.State())
				return err
			})
		},
	}

	controlStopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Stop the trading bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonitor(func(ctx context.Context, m *controlplane.Monitor) error {
				err := m.StopBot(ctx)
				printControlState(m.State())
				return err
			})
		},
	}
)

func init() {
	rootCmd.AddCommand(controlCmd)
	controlCmd.AddCommand(controlStatusCmd)
	controlCmd.AddCommand(controlStartCmd)
	controlCmd.AddCommand(controlStopCmd)
}

func withMonitor(fn func(ctx context.Context, m *controlplane.Monitor) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ControlPlane.BaseURL == "" {
		return errors.New("CONTROL_BASE_URL is not set")
	}
	log := logger.New(cfg)

	monitor, err := newControlMonitor(cfg, state.NewMemoryBus(), nil, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ControlPlane.Timeout+30*time.Second)
	defer cancel()

	fmt.Printf("Control service: %s\n\n", cfg.ControlPlane.BaseURL)
	return fn(ctx, monitor)
}

func printControlState(s controlplane.ControlState) {
	if s.Status != nil {
		running := "❌ stopped"
		if s.IsBotRunning() {
			running = "✅ running"
		}
		fmt.Printf("🤖 Bot: %s (service %s)\n", running, s.Status.ServiceStatus)
		for _, line := range strings.Split(strings.TrimSpace(s.Status.RecentActivity), "\n") {
			if line != "" {
				fmt.Printf("   %s\n", line)
			}
		}
	}

	if s.Account != nil {
		acc := s.Account.Account
		fmt.Printf("\n💰 Account %d @ %s\n", acc.Login, acc.Server)
		fmt.Printf("   Balance: %.2f %s\n", acc.Balance, acc.Currency)
		fmt.Printf("   Equity:  %.2f\n", acc.Equity)
		fmt.Printf("   Profit:  %.2f\n", acc.Profit)
		fmt.Printf("   Leverage: 1:%d\n", acc.Leverage)
	}

	if s.Trades != nil {
		fmt.Printf("\n📈 Trades (%d total)\n", s.Trades.TotalTrades)
		for _, t := range s.Trades.Trades {
			at := time.Unix(t.Timestamp, 0).Format("2006-01-02 15:04:05")
			fmt.Printf("   %s %-6s %-8s %s\n", at, t.Type, t.Status, t.Log)
		}
	}

	if s.LastMessage != "" {
		fmt.Printf("\n%s\n", s.LastMessage)
	}
	if s.ErrorMessage != "" {
		fmt.Printf("\n❌ %s\n", s.ErrorMessage)
	}
}
