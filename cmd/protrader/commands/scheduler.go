package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/planetprotrader/backend/internal/scheduler"
	"github.com/planetprotrader/backend/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the simulation scheduler",
	Long: `Start the scheduler or inspect its jobs.

Subcommands:
  start   - run the scheduler until interrupted
  list    - list registered jobs
  run     - run one job now and print the result
  status  - per-job run statistics

Example:
  go run ./cmd/protrader scheduler start
  go run ./cmd/protrader scheduler run signal_generation`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Start the scheduler and every registered job.

Registered jobs:
- bot_activity: every 10s (bot P&L and win rate drift)
- bot_refresh: every 30s (fleet aggregates)
- trading_refresh: every 5s (gold price walk)
- signal_generation: every minute (new signal, expire stale ones)
- vps_heartbeat: every 15s
- health_check: every 5 minutes (debugger health check)
- control_poll: CONTROL_POLL_INTERVAL, when CONTROL_BASE_URL is set
- screenshot_capture: SCREENSHOT_INTERVAL, when SCREENSHOT_ENABLED=true

With Redis enabled every change is mirrored so 'snapshot' can read it.
Stop with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job statistics",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Planet ProTrader Scheduler ===")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, sched, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	a.mirror(ctx)
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	cancel()
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	stats := sched.GetJobStats()
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %-20s %s\n", jobName, stats[jobName].Schedule)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	fmt.Printf("Running job: %s\n", jobName)

	ctx := context.Background()
	a, sched, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	result, err := sched.RunJobSync(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Printf("   Duration: %v\n", result.Duration)
	fmt.Printf("   Attempts: %d\n", result.Attempts)
	if !result.Success {
		fmt.Printf("❌ Failed: %s\n", result.Error)
		return fmt.Errorf("job %s failed", jobName)
	}
	fmt.Println("✅ Job finished")
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d (retried runs: %d)\n", stat.FailureCount, stat.RetriedRuns)
		fmt.Printf("   Avg Duration: %v\n", stat.AverageDuration)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s (%s)\n", stat.LastFailure.Format("2006-01-02 15:04:05"), stat.LastError)
		}
		fmt.Println()
	}

	return nil
}

func initScheduler(ctx context.Context) (*app, *scheduler.Scheduler, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg)

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	sched, err := a.scheduler()
	if err != nil {
		a.close()
		return nil, nil, err
	}
	return a, sched, nil
}
