package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planetprotrader/backend/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32
	runs     int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.runs, 1)
	if n <= atomic.LoadInt32(&j.failures) {
		return errors.New("boom")
	}
	return nil
}

func newTestScheduler(opts Options) *Scheduler {
	return New(logger.NewNop(), opts)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler(Options{})

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "@every 1h"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@every 1h"}))

	err := s.AddJob(&countingJob{name: "a", schedule: "@every 1h"})
	assert.Error(t, err)

	err = s.AddJob(&countingJob{name: "bad", schedule: "not a schedule"})
	assert.Error(t, err)

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler(Options{})
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@every 1h"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))

	_, err := s.GetJobHistory("a")
	assert.Error(t, err)
}

func TestRunJobSync_Success(t *testing.T) {
	s := newTestScheduler(Options{})
	job := &countingJob{name: "tick", schedule: "@every 1h"}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "tick")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Empty(t, result.Error)

	history, err := s.GetJobHistory("tick")
	require.NoError(t, err)
	assert.Len(t, history.Results, 1)

	_, err = s.RunJobSync(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRunJobSync_NoRetryByDefault(t *testing.T) {
	s := newTestScheduler(Options{})
	job := &countingJob{name: "flaky", schedule: "@every 1h", failures: 1}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "flaky")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "boom", result.Error)
}

func TestRunJobSync_Retries(t *testing.T) {
	s := newTestScheduler(Options{MaxRetries: 2, RetryDelay: time.Millisecond})
	job := &countingJob{name: "flaky", schedule: "@every 1h", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.EqualValues(t, 3, atomic.LoadInt32(&job.runs))
}

func TestRunJobSync_CancelledContextStopsRetries(t *testing.T) {
	s := newTestScheduler(Options{MaxRetries: 5, RetryDelay: time.Hour})
	job := &countingJob{name: "flaky", schedule: "@every 1h", failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunJobSync(ctx, "flaky")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
}

func TestRunJob_Background(t *testing.T) {
	s := newTestScheduler(Options{})
	job := &countingJob{name: "bg", schedule: "@every 1h"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("bg"))
	assert.Error(t, s.RunJob("missing"))

	s.Stop()
	assert.EqualValues(t, 1, atomic.LoadInt32(&job.runs))
}

func TestGetJobStats(t *testing.T) {
	s := newTestScheduler(Options{})
	job := &countingJob{name: "flaky", schedule: "@every 1h", failures: 1}
	require.NoError(t, s.AddJob(job))

	for i := 0; i < 3; i++ {
		_, err := s.RunJobSync(context.Background(), "flaky")
		require.NoError(t, err)
	}

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, "@every 1h", stats.Schedule)
	assert.Equal(t, 3, stats.TotalRuns)
	assert.Equal(t, 2, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailureCount)
	assert.InDelta(t, 2.0/3.0, stats.SuccessRate, 1e-9)
	assert.Zero(t, stats.RetriedRuns)
	assert.Equal(t, "boom", stats.LastError)
	require.NotNil(t, stats.LastRun)
	require.NotNil(t, stats.LastSuccess)
	require.NotNil(t, stats.LastFailure)
	assert.True(t, stats.LastRun.Equal(*stats.LastSuccess))
	assert.False(t, stats.LastFailure.After(*stats.LastSuccess))
}

func TestJobHistory_Summarize(t *testing.T) {
	base := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	h := &JobHistory{}
	h.AddResult(JobResult{StartTime: base, Duration: 2 * time.Second, Success: true, Attempts: 1})
	h.AddResult(JobResult{StartTime: base.Add(time.Minute), Duration: 4 * time.Second, Attempts: 3, Error: "timeout"})

	stats := h.Summarize("vps_heartbeat", "@every 15s")
	assert.Equal(t, "vps_heartbeat", stats.JobName)
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.RetriedRuns)
	assert.Equal(t, 3*time.Second, stats.AverageDuration)
	assert.Equal(t, "timeout", stats.LastError)
	assert.Equal(t, base, *stats.LastSuccess)
	assert.Equal(t, base.Add(time.Minute), *stats.LastFailure)
	assert.Equal(t, base.Add(time.Minute), *stats.LastRun)

	empty := (&JobHistory{}).Summarize("idle", "@every 1h")
	assert.Zero(t, empty.TotalRuns)
	assert.Zero(t, empty.AverageDuration)
	assert.Nil(t, empty.LastRun)
}

func TestJobHistory_Bounded(t *testing.T) {
	var h JobHistory
	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(5), 5)
	assert.Len(t, h.GetLatestResults(1000), maxHistory)
	assert.Empty(t, h.GetLatestResults(0))
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
	assert.Zero(t, (&JobHistory{}).GetSuccessRate())
}
