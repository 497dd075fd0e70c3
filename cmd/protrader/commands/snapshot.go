package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/redis"
)

// snapshotCmd reads the last mirrored change for a topic
var snapshotCmd = &cobra.Command{
	Use:   "snapshot [topic]",
	Short: "Print the last published state of a store",
	Long: `Print the last change a running api or scheduler published for a topic.

Requires REDIS_ENABLED=true on both sides.

Topics: auth, bots, trading, signals, control, screenshot, vps, debug, playbook

Example:
  go run ./cmd/protrader snapshot trading`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Redis.Enabled {
		return errors.New("REDIS_ENABLED is false, nothing is mirrored")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rc.Close()

	change, ok, err := state.LastChange(ctx, redis.NewCache(rc), args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no snapshot for topic %q", args[0])
	}

	fmt.Printf("# %s at %s\n", change.Topic, change.At.Format(time.RFC3339))
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(change.Payload)
}
