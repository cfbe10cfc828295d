package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingJob struct {
	name     string
	schedule string
	failures int32
	skipFrom int32 // calls from this one on find the day done; 0 never
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) (Outcome, error) {
	n := j.calls.Add(1)
	if n <= j.failures {
		return Outcome{}, errors.New("upstream unavailable")
	}
	if j.skipFrom > 0 && n >= j.skipFrom {
		return Outcome{Skipped: true}, ctx.Err()
	}
	return Outcome{RunID: fmt.Sprintf("run-%d", n), Sent: true}, ctx.Err()
}

func newTestScheduler() *Scheduler {
	return New(time.UTC, nil).WithRetry(2, time.Millisecond)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&countingJob{name: "morning_report", schedule: "0 15 9 * * 1-5"}))
	assert.ErrorContains(t, s.AddJob(&countingJob{name: "morning_report", schedule: "0 15 9 * * 1-5"}), "already exists")
	assert.ErrorContains(t, s.AddJob(&countingJob{name: "bad", schedule: "15 9 * *"}), "failed to schedule")

	require.NoError(t, s.AddJob(&countingJob{name: "eod_review", schedule: "0 45 15 * * 1-5"}))
	assert.Equal(t, []string{"eod_review", "morning_report"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("eod_review"))
	assert.Error(t, s.RemoveJob("eod_review"))
	assert.Equal(t, []string{"morning_report"}, s.GetAllJobs())
}

func TestRunNow_RetriesUntilSuccess(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "morning_report", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunNow(context.Background(), "morning_report"))
	assert.Equal(t, int32(3), job.calls.Load())

	history, err := s.GetJobHistory("morning_report")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
	assert.Equal(t, 3, history.Results[0].Attempts)
	assert.Equal(t, "run-3", history.Results[0].RunID)
	assert.True(t, history.Results[0].Sent)
}

func TestRunNow_RecordsPipelineOutcome(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "morning_report", schedule: "@daily", skipFrom: 2}
	require.NoError(t, s.AddJob(job))

	ctx := context.Background()
	require.NoError(t, s.RunNow(ctx, "morning_report"))
	require.NoError(t, s.RunNow(ctx, "morning_report"))

	history, err := s.GetJobHistory("morning_report")
	require.NoError(t, err)
	require.Len(t, history.Results, 2)
	assert.True(t, history.Results[0].Ran())
	assert.True(t, history.Results[1].Skipped)
	assert.Empty(t, history.Results[1].RunID)

	stats := s.GetJobStats()["morning_report"]
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 2, stats.SuccessCount)
	assert.Equal(t, 1, stats.SkippedCount)
	assert.Equal(t, "run-1", stats.LastRunID, "a skip does not hide the last real run")
	assert.InDelta(t, 1.0, stats.SuccessRate, 1e-9)
}

func TestRunNow_GivesUp(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "eod_review", schedule: "@daily", failures: 10}
	require.NoError(t, s.AddJob(job))

	err := s.RunNow(context.Background(), "eod_review")
	require.Error(t, err)
	assert.Equal(t, int32(3), job.calls.Load())

	stats := s.GetJobStats()["eod_review"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Zero(t, stats.SuccessRate)
	require.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestRunNow_CancelStopsRetry(t *testing.T) {
	s := New(time.UTC, nil).WithRetry(5, time.Hour)
	job := &countingJob{name: "eod_review", schedule: "@daily", failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.RunNow(ctx, "eod_review")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), job.calls.Load())
}

func TestRunNow_UnknownJob(t *testing.T) {
	s := newTestScheduler()
	assert.ErrorContains(t, s.RunNow(context.Background(), "weekly"), "not found")
	assert.ErrorContains(t, s.RunJob("weekly"), "not found")
	_, err := s.GetJobHistory("weekly")
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestScheduler()
	job := &countingJob{name: "morning_report", schedule: "0 15 9 * * 1-5"}
	require.NoError(t, s.AddJob(job))

	s.Start()
	require.NoError(t, s.RunJob("morning_report"))
	assert.Eventually(t, func() bool { return job.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	stats := s.GetJobStats()["morning_report"]
	require.NotNil(t, stats.NextRun)
	assert.Equal(t, 15, stats.NextRun.Minute())

	s.Stop()
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Zero(t, h.SuccessRate())
	_, ok := h.Latest()
	assert.False(t, ok)
	_, ok = h.LatestRun()
	assert.False(t, ok)

	// every fourth fails, every fourth after that finds the day done
	for i := 0; i < 120; i++ {
		h.AddResult(JobResult{
			JobName: "j",
			Outcome: Outcome{RunID: fmt.Sprintf("run-%d", i), Skipped: i%4 == 1},
			Success: i%4 != 0,
		})
	}

	assert.Len(t, h.Results, 100)
	ran, skipped, failed := h.Tally()
	assert.Equal(t, 50, ran)
	assert.Equal(t, 25, skipped)
	assert.Equal(t, 25, failed)
	assert.InDelta(t, 0.75, h.SuccessRate(), 1e-9)

	last, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, "run-119", last.RunID)

	run, ok := h.LatestRun()
	require.True(t, ok)
	assert.Equal(t, "run-119", run.RunID)
	assert.True(t, run.Ran())
}
