package commands

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/planetprotrader/backend/pkg/database"
)

// dbCheckCmd represents the db-check command
var dbCheckCmd = &cobra.Command{
	Use:   "db-check",
	Short: "Test the PostgreSQL connection",
	Long: `Connect to DATABASE_URL and print pool statistics.

This command:
- loads DATABASE_URL from config
- opens the pool and pings it
- runs a health check
- with --migrate, creates the app schema tables

Example:
  go run ./cmd/protrader db-check
  go run ./cmd/protrader db-check --migrate`,
	RunE: runDBCheck,
}

var dbCheckMigrate bool

func init() {
	rootCmd.AddCommand(dbCheckCmd)
	dbCheckCmd.Flags().BoolVar(&dbCheckMigrate, "migrate", false, "create the schema tables")
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Planet ProTrader Database Check ===")

	fmt.Println("Loading configuration...")
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}
	if !cfg.UsesPostgres() {
		return errors.New("❌ DATABASE_URL is not set")
	}
	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fmt.Println("Connecting to database...")
	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()
	fmt.Println("✅ Database connection established")

	fmt.Println("Getting health status...")
	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	fmt.Println("✅ Health Check Results:")
	fmt.Printf("   Healthy: %v\n", status.Healthy)
	fmt.Printf("   Response Time: %v\n", status.ResponseTime)
	fmt.Printf("   Timestamp: %v\n\n", status.Timestamp.Format(time.RFC3339))

	fmt.Println("📊 Connection Pool Statistics:")
	fmt.Printf("   Max Connections: %d\n", status.Stats.MaxConns)
	fmt.Printf("   Total Connections: %d\n", status.Stats.TotalConns)
	fmt.Printf("   Acquired Connections: %d\n", status.Stats.AcquiredConns)
	fmt.Printf("   Idle Connections: %d\n", status.Stats.IdleConns)
	fmt.Printf("   Acquire Count: %d\n", status.Stats.AcquireCount)
	fmt.Printf("   Acquire Duration: %v\n", status.Stats.AcquireDuration)

	if dbCheckMigrate {
		fmt.Println("\nCreating schema...")
		if err := db.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("❌ Schema failed: %w", err)
		}
		fmt.Println("✅ Schema up to date")
	}

	fmt.Println("\n✅ All checks passed!")
	return nil
}

// maskPassword hides the password in a database URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
