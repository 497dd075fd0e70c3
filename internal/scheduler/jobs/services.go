package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/screenshot"
	"github.com/planetprotrader/backend/pkg/logger"
)

// every renders an interval as a cron descriptor
func every(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}

// ControlPoller is the part of the control monitor the poll job drives
type ControlPoller interface {
	RefreshData(ctx context.Context) error
}

// ControlPollJob pulls status, account and trades from the control service
type ControlPollJob struct {
	monitor  ControlPoller
	interval time.Duration
	logger   *logger.Logger
}

// NewControlPollJob creates a new control poll job
func NewControlPollJob(monitor ControlPoller, interval time.Duration, log *logger.Logger) *ControlPollJob {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ControlPollJob{
		monitor:  monitor,
		interval: interval,
		logger:   log.WithField("job", "control_poll"),
	}
}

func (j *ControlPollJob) Name() string { return "control_poll" }

func (j *ControlPollJob) Schedule() string { return every(j.interval) }

func (j *ControlPollJob) Run(ctx context.Context) error {
	return j.monitor.RefreshData(ctx)
}

// ScreenshotTicker is the part of the uploader the capture job drives
type ScreenshotTicker interface {
	Tick(ctx context.Context) error
}

// ScreenshotJob captures and uploads the dashboard on a timer
type ScreenshotJob struct {
	uploader ScreenshotTicker
	interval time.Duration
	logger   *logger.Logger
}

// NewScreenshotJob creates a new screenshot job
func NewScreenshotJob(uploader ScreenshotTicker, interval time.Duration, log *logger.Logger) *ScreenshotJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ScreenshotJob{
		uploader: uploader,
		interval: interval,
		logger:   log.WithField("job", "screenshot_capture"),
	}
}

func (j *ScreenshotJob) Name() string { return "screenshot_capture" }

func (j *ScreenshotJob) Schedule() string { return every(j.interval) }

// Run skips quietly when the previous upload has not finished
func (j *ScreenshotJob) Run(ctx context.Context) error {
	err := j.uploader.Tick(ctx)
	if errors.Is(err, screenshot.ErrUploadInProgress) {
		j.logger.Debug("Upload in progress, tick skipped")
		return nil
	}
	return err
}

// HealthChecker is the part of the debug store the health job drives
type HealthChecker interface {
	RunHealthCheck(ctx context.Context, typ contracts.SessionType) (contracts.DebugSession, error)
}

// HealthCheckJob runs a periodic debugger health check
type HealthCheckJob struct {
	debugger HealthChecker
	logger   *logger.Logger
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(debugger HealthChecker, log *logger.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		debugger: debugger,
		logger:   log.WithField("job", "health_check"),
	}
}

func (j *HealthCheckJob) Name() string { return "health_check" }

// Schedule: every 5 minutes
func (j *HealthCheckJob) Schedule() string { return "0 */5 * * * *" }

func (j *HealthCheckJob) Run(ctx context.Context) error {
	session, err := j.debugger.RunHealthCheck(ctx, contracts.SessionHealthCheck)
	if err != nil {
		return err
	}
	j.logger.WithFields(map[string]interface{}{
		"status":   session.Status,
		"findings": len(session.Findings),
	}).Info("Health check finished")
	return nil
}
