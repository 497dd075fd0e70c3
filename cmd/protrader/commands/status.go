package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planetprotrader/backend/pkg/logger"
)

// statusCmd prints the simulation's starting state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the bot fleet, trading snapshot and VPS fleet",
	Long: `Build the stores from SIM_SEED / SIM_SEED_FILE and print them.

Useful to check a seed file before starting the API.

Example:
  SIM_SEED=42 go run ./cmd/protrader status
  SIM_SEED_FILE=seed.yaml go run ./cmd/protrader status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// status never needs the backing services
	cfg.Redis.Enabled = false
	cfg.Auth.Provider = "memory"
	cfg.Database.URL = ""
	cfg.Storage.Enabled = false

	a, err := buildApp(context.Background(), cfg, logger.New(cfg))
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Printf("=== Planet ProTrader Status (seed %s) ===\n\n", seedLabel(cfg))

	snap := a.trading.Snapshot()
	fmt.Printf("📈 %s %.2f (%+.2f, %+.2f%%)\n", snap.Symbol, snap.CurrentPrice, snap.PriceChange, snap.PriceChangePercent)
	fmt.Printf("   Today: %+.2f  Week: %+.2f  Month: %+.2f  Win rate: %.1f%%\n",
		snap.TodaysPnL, snap.WeeklyPnL, snap.MonthlyPnL, snap.WinRate)
	fmt.Printf("   Open trades: %d  Pending orders: %d\n\n", len(snap.ActiveTrades), len(snap.PendingOrders))

	fleet := a.bots.View().Get()
	fmt.Printf("🤖 Bots (%d/%d active, P&L %.2f)\n", fleet.Stats.ActiveCount, fleet.Stats.BotCount, fleet.Stats.TotalProfit)
	for _, b := range fleet.Bots {
		fmt.Printf("   %s\n", botStatusLine(b))
	}

	fmt.Println("\n🖥  VPS")
	for _, v := range a.vps.List() {
		fmt.Printf("   %-20s %-22s %-12s %d/%d accounts\n",
			v.Name, fmt.Sprintf("%s:%d", v.Host, v.Port), v.Status, v.AccountsRunning, v.MaxAccounts)
	}

	stats := a.playbook.View().Get().Stats
	fmt.Printf("\n📒 Playbook: %d trades, win rate %.1f%%, P&L %.2f\n", stats.TotalTrades, stats.WinRate*100, stats.TotalPnL)

	return nil
}
