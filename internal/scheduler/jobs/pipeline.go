package jobs

import (
	"context"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/brain"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/scheduler"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// Runner executes a pipeline by job name
type Runner interface {
	Run(ctx context.Context, job string) (*brain.RunResult, error)
}

// PipelineJob triggers one orchestrator job on a cron schedule.
// Re-triggering on the same day is a no-op because the orchestrator
// checks the day state first.
type PipelineJob struct {
	name     string
	job      string
	schedule string
	runner   Runner
	logger   *logger.Logger
}

// NewMorningJob schedules the morning report
func NewMorningJob(runner Runner, schedule string, log *logger.Logger) *PipelineJob {
	return newPipelineJob("morning_report", brain.JobMorning, schedule, runner, log)
}

// NewEODJob schedules the end-of-day review
func NewEODJob(runner Runner, schedule string, log *logger.Logger) *PipelineJob {
	return newPipelineJob("eod_review", brain.JobEOD, schedule, runner, log)
}

func newPipelineJob(name, job, schedule string, runner Runner, log *logger.Logger) *PipelineJob {
	if log == nil {
		log = logger.Nop()
	}
	return &PipelineJob{
		name:     name,
		job:      job,
		schedule: schedule,
		runner:   runner,
		logger:   log,
	}
}

// Name returns the job name
func (j *PipelineJob) Name() string {
	return j.name
}

// Schedule returns the cron schedule
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// Run executes the pipeline
func (j *PipelineJob) Run(ctx context.Context) (scheduler.Outcome, error) {
	result, err := j.runner.Run(ctx, j.job)
	if result == nil {
		return scheduler.Outcome{}, err
	}
	outcome := scheduler.Outcome{
		RunID:    result.RunID,
		Skipped:  result.Skipped,
		Sent:     result.Sent,
		Degraded: result.Degraded,
	}
	if err != nil {
		return outcome, err
	}

	if result.Skipped {
		j.logger.WithField("job", j.name).Debug("Pipeline already ran today")
		return outcome, nil
	}

	j.logger.WithFields(map[string]interface{}{
		"job":      j.name,
		"run_id":   result.RunID,
		"sent":     result.Sent,
		"degraded": result.Degraded,
	}).Info("Pipeline finished")

	return outcome, nil
}
