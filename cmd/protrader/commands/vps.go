package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/internal/vps"
	"github.com/planetprotrader/backend/pkg/logger"
)

var vpsCmd = &cobra.Command{
	Use:   "vps",
	Short: "Inspect the simulated VPS fleet",
}

var (
	vpsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List VPS instances",
		RunE:  runVPSList,
	}

	vpsConnectCmd = &cobra.Command{
		Use:   "connect [id]",
		Short: "Run the simulated connect handshake against one instance",
		Args:  cobra.ExactArgs(1),
		RunE:  runVPSConnect,
	}
)

func init() {
	rootCmd.AddCommand(vpsCmd)
	vpsCmd.AddCommand(vpsListCmd)
	vpsCmd.AddCommand(vpsConnectCmd)
}

func newFleet() (*vps.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	fleet, err := loadFleet(cfg)
	if err != nil {
		return nil, err
	}
	return vps.NewRegistry(fleet, cfg.Simulation.VPSConnectDelay, state.NewMemoryBus(), log), nil
}

func runVPSList(cmd *cobra.Command, args []string) error {
	registry, err := newFleet()
	if err != nil {
		return err
	}

	for _, v := range registry.List() {
		fmt.Printf("%-14s %-20s %-22s %-12s %d/%d (%.0f%%)\n",
			v.ID, v.Name, fmt.Sprintf("%s@%s:%d", v.Username, v.Host, v.Port),
			v.Status, v.AccountsRunning, v.MaxAccounts, v.Utilization()*100)
	}
	return nil
}

func runVPSConnect(cmd *cobra.Command, args []string) error {
	registry, err := newFleet()
	if err != nil {
		return err
	}

	fmt.Printf("Connecting to %s...\n", args[0])
	v, err := registry.Connect(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("❌ connect failed: %w", err)
	}
	fmt.Printf("✅ %s is %s\n", v.Name, v.Status)
	return nil
}
