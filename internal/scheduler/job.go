package scheduler

import (
	"context"
	"time"
)

// Job is a pipeline trigger fired on a cron schedule
// ⭐ SSOT: the scheduled job interface is defined here only
type Job interface {
	// Name returns the job name
	Name() string

	// Run triggers the pipeline and reports what it did
	Run(ctx context.Context) (Outcome, error)

	// Schedule returns the cron schedule expression
	// Six fields, seconds first: "0 15 9 * * 1-5" is 09:15 on weekdays
	Schedule() string
}

// Outcome is what one pipeline trigger reports back
type Outcome struct {
	RunID    string `json:"run_id,omitempty"`
	Skipped  bool   `json:"skipped"` // the day was already done
	Sent     bool   `json:"sent"`
	Degraded bool   `json:"degraded,omitempty"`
}

// JobResult is one execution, retries included
type JobResult struct {
	JobName string `json:"job_name"`
	Outcome
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// Ran reports whether the pipeline actually ran instead of finding the day done
func (r JobResult) Ran() bool {
	return r.Success && !r.Skipped
}

const maxHistory = 100

// JobHistory keeps the most recent results of one job, oldest first
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, dropping the oldest past maxHistory
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// Latest returns the newest result
func (h *JobHistory) Latest() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// LatestRun returns the newest result that ran the pipeline
func (h *JobHistory) LatestRun() (JobResult, bool) {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if h.Results[i].Ran() {
			return h.Results[i], true
		}
	}
	return JobResult{}, false
}

// Tally counts pipeline runs, same-day skips and failures
func (h *JobHistory) Tally() (ran, skipped, failed int) {
	for _, r := range h.Results {
		switch {
		case !r.Success:
			failed++
		case r.Skipped:
			skipped++
		default:
			ran++
		}
	}
	return ran, skipped, failed
}

// SuccessRate is the share of successful executions (0.0 - 1.0); skips count
// as successes because the day was already handled
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}
	_, _, failed := h.Tally()
	return float64(len(h.Results)-failed) / float64(len(h.Results))
}
