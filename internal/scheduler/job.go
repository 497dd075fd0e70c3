package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: the scheduled job contract is only defined here
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron expression, with seconds.
	// Examples: "@every 5s", "0 */5 * * * *"
	Schedule() string
}

// maxHistory bounds the results kept per job
const maxHistory = 100

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Attempts  int           `json:"attempts"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory stores job execution history
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, keeping the last maxHistory
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// GetLatestResults returns the latest n results, oldest first
func (h *JobHistory) GetLatestResults(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// GetSuccessRate returns the success rate (0.0 - 1.0)
func (h *JobHistory) GetSuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}
	return float64(h.countSuccess()) / float64(len(h.Results))
}

func (h *JobHistory) countSuccess() int {
	n := 0
	for _, r := range h.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// JobStats summarises a job's kept history
type JobStats struct {
	JobName         string        `json:"job_name"`
	Schedule        string        `json:"schedule"`
	TotalRuns       int           `json:"total_runs"`
	SuccessCount    int           `json:"success_count"`
	FailureCount    int           `json:"failure_count"`
	SuccessRate     float64       `json:"success_rate"`
	RetriedRuns     int           `json:"retried_runs"`
	AverageDuration time.Duration `json:"average_duration"`
	LastRun         *time.Time    `json:"last_run,omitempty"`
	LastSuccess     *time.Time    `json:"last_success,omitempty"`
	LastFailure     *time.Time    `json:"last_failure,omitempty"`
	LastError       string        `json:"last_error,omitempty"`
}

// Summarize walks the history once, newest last
func (h *JobHistory) Summarize(name, schedule string) JobStats {
	stats := JobStats{
		JobName:     name,
		Schedule:    schedule,
		TotalRuns:   len(h.Results),
		SuccessRate: h.GetSuccessRate(),
	}

	var total time.Duration
	for i := range h.Results {
		r := h.Results[i]
		total += r.Duration
		if r.Attempts > 1 {
			stats.RetriedRuns++
		}
		at := r.StartTime
		stats.LastRun = &at
		if r.Success {
			stats.SuccessCount++
			stats.LastSuccess = &at
		} else {
			stats.FailureCount++
			stats.LastFailure = &at
			stats.LastError = r.Error
		}
	}
	if stats.TotalRuns > 0 {
		stats.AverageDuration = total / time.Duration(stats.TotalRuns)
	}
	return stats
}
