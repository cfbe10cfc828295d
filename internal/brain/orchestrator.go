package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/audit"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/daystate"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/drift"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/portfolio"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/report"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/s0_data/quality"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/s2_signals"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/selection"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/metrics"
)

// Job names, shared with the scheduler and the HTTP hook
const (
	JobMorning = "morning"
	JobEOD     = "eod"
)

// Notification events guarded by sent_<event> keys
const (
	EventMorningReport = "morning_report"
	EventEODReport     = "eod_report"
)

// Deps are the external collaborators of a run
type Deps struct {
	Fetcher  contracts.SeriesFetcher
	Universe contracts.UniverseLoader
	News     contracts.SentimentSource
	Notifier contracts.Notifier
	State    *daystate.Coordinator
}

// Orchestrator coordinates the morning and EOD pipelines
// ⭐ SSOT: pipeline coordination lives here only
type Orchestrator struct {
	config *strategyconfig.Config
	deps   Deps

	builder *s2_signals.Builder
	market  *s2_signals.MarketAnalyzer
	ranker  *selection.Ranker
	planner *portfolio.Constructor
	drift   *drift.Monitor
	tracker *audit.Tracker

	metrics    *metrics.Recorder
	logger     *logger.Logger
	configHash string
	now        func() time.Time
	newRunID   func() string
}

// RunResult describes one job invocation
type RunResult struct {
	RunID    string
	Job      string
	Date     string
	Skipped  bool // already done today
	Stages   []string
	Plan     *contracts.AllocationPlan
	Exits    []contracts.ExitEvent
	Outcomes []contracts.PickOutcome
	Report   string
	Sent     bool
	Degraded bool // a state write failed; the job may run again today
	Duration time.Duration
}

func (r *RunResult) stage(name string) {
	r.Stages = append(r.Stages, name)
}

// NewOrchestrator wires every stage from the strategy config
func NewOrchestrator(cfg *strategyconfig.Config, deps Deps, rec *metrics.Recorder, log *logger.Logger) *Orchestrator {
	if cfg == nil {
		cfg = strategyconfig.Default()
	}
	if log == nil {
		log = logger.Nop()
	}

	validator := quality.NewValidator(quality.Config{MinBars: cfg.Validation.MinBars}, log)
	engine := s2_signals.NewEngine(cfg.Scoring, log)
	builder := s2_signals.NewBuilder(deps.Fetcher, validator, engine, s2_signals.BuilderConfig{
		Workers:      cfg.Fetch.Workers,
		LookbackDays: cfg.Fetch.LookbackDays,
		Timeout:      cfg.Fetch.Timeout,
		Retry:        cfg.Fetch.Retry,
		RetryBackoff: cfg.Fetch.RetryBackoff,
	}, rec, log)

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		log.WithError(err).Warn("Could not hash strategy config")
	} else {
		hash = hash[:12]
	}

	return &Orchestrator{
		config:     cfg,
		deps:       deps,
		builder:    builder,
		market:     s2_signals.NewMarketAnalyzer(deps.Fetcher, cfg.Market, cfg.Scoring.RSIPeriod, cfg.Fetch.Timeout, log),
		ranker:     selection.NewRanker(cfg.Ranking, log),
		planner:    portfolio.NewConstructor(cfg.Portfolio, log),
		drift:      drift.NewMonitor(cfg.Drift, log),
		tracker:    audit.NewTracker(cfg.Audit, log),
		metrics:    rec,
		logger:     log,
		configHash: hash,
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
}

// WithClock replaces the wall clock used for plan timestamps
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Run dispatches a job by name
func (o *Orchestrator) Run(ctx context.Context, job string) (*RunResult, error) {
	switch job {
	case JobMorning:
		return o.RunMorning(ctx)
	case JobEOD:
		return o.RunEOD(ctx)
	default:
		return nil, fmt.Errorf("unknown job %q", job)
	}
}

// RunMorning scores the universe, builds the allocation plan and sends
// the morning report. It does nothing when already done today.
func (o *Orchestrator) RunMorning(ctx context.Context) (*RunResult, error) {
	return o.runOnce(ctx, JobMorning, contracts.KeyLastMorningRun, o.morning)
}

// RunEOD re-scores the last plan, emits exits and grades the picks
func (o *Orchestrator) RunEOD(ctx context.Context) (*RunResult, error) {
	return o.runOnce(ctx, JobEOD, contracts.KeyLastEODRun, o.eod)
}

func (o *Orchestrator) runOnce(
	ctx context.Context,
	job, key string,
	fn func(ctx context.Context, result *RunResult) error,
) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		RunID: o.newRunID(),
		Job:   job,
		Date:  o.deps.State.Today(),
	}

	log := o.logger.WithFields(map[string]interface{}{
		"run_id":      result.RunID,
		"job":         job,
		"date":        result.Date,
		"config_hash": o.configHash,
	})
	log.Info("Starting run")

	completed := false
	ran, err := o.deps.State.RunOnce(ctx, key, func(ctx context.Context) error {
		if err := fn(ctx, result); err != nil {
			return err
		}
		completed = true
		return nil
	})
	result.Skipped = !ran
	result.Duration = time.Since(start)

	switch {
	case err != nil && completed:
		// The report is out; only the run key is missing. Returning nil keeps
		// the scheduler from retrying and sending the report again.
		result.Degraded = true
		o.metrics.RecordJob(job, "degraded", result.Duration)
		log.WithError(err).Warn("Run completed but could not be marked done")
		return result, nil
	case err != nil:
		o.metrics.RecordJob(job, "failure", result.Duration)
		log.WithError(err).Error("Run failed")
		return result, err
	case result.Skipped:
		o.metrics.RecordJob(job, "skipped", result.Duration)
		return result, nil
	}

	o.metrics.RecordJob(job, "success", result.Duration)
	log.WithFields(map[string]interface{}{
		"stages":   len(result.Stages),
		"sent":     result.Sent,
		"duration": result.Duration.String(),
	}).Info("Run completed")

	return result, nil
}

func (o *Orchestrator) morning(ctx context.Context, result *RunResult) error {
	universe := o.deps.Universe.Load(ctx)
	result.stage("universe")

	sentiment := o.deps.News.Fetch(ctx)
	riskOn := sentiment.RiskOn(o.config.Sentiment.MaxNoise)
	result.stage("sentiment")

	snapshot := o.market.Analyze(ctx)
	result.stage("market")

	built := o.builder.Build(ctx, universe.Symbols)
	result.stage("signals")

	memory := o.deps.State.LoadHealthMemory(ctx)
	candidates := o.ranker.Rank(built.Results, universe.Sectors, riskOn, memory)
	result.stage("ranking")

	base := portfolio.DefaultCaps(o.config.Portfolio)
	caps := portfolio.EffectiveCaps(base, sentiment, o.config.Sentiment.RiskOffBelow, o.config.Portfolio.RiskOffScale)
	plan := o.planner.Construct(candidates, caps)
	plan.Date = result.Date
	plan.RunID = result.RunID
	plan.CreatedAt = o.now()
	plan.Regime = snapshot.Regime
	plan.RiskOn = riskOn
	result.Plan = &plan
	result.stage("portfolio")

	o.metrics.RecordPlan(plan.Count(), plan.TotalExposure())

	planSaved := o.persisted(result, contracts.KeyLastPlan,
		o.deps.State.SaveJSON(ctx, contracts.KeyLastPlan, plan))
	memorySaved := o.persisted(result, contracts.KeyHealthState,
		o.deps.State.SaveHealthMemory(ctx, selection.NextMemory(memory, built.Results)))
	if planSaved && memorySaved {
		result.stage("persist")
	}

	result.Report = report.Morning(report.MorningInput{
		Date:       result.Date,
		Market:     snapshot,
		Sentiment:  sentiment,
		RiskOn:     riskOn,
		CapsScaled: caps.Global < base.Global,
		Candidates: candidates,
		Plan:       plan,
		Requested:  built.Requested(),
		Absent:     len(built.Absent),
	})
	result.Sent = o.notify(ctx, EventMorningReport, result.Report)
	result.stage("report")

	return nil
}

func (o *Orchestrator) eod(ctx context.Context, result *RunResult) error {
	var plan contracts.AllocationPlan
	if _, err := o.deps.State.LoadJSON(ctx, contracts.KeyLastPlan, &plan); err != nil {
		o.logger.WithError(err).Warn("Stored plan unreadable, reviewing an empty plan")
		plan = contracts.AllocationPlan{}
	}
	result.Plan = &plan
	result.stage("load_plan")

	var fresh []contracts.SignalResult
	if !plan.IsEmpty() {
		fresh = o.builder.Build(ctx, plan.Symbols()).Results
	}
	result.stage("signals")

	result.Exits = o.drift.Check(result.Date, plan, fresh)
	o.metrics.RecordExits(len(result.Exits))
	result.stage("drift")

	history := o.audit(ctx, plan, fresh, result)
	result.stage("audit")

	result.Report = report.EOD(result.Date, plan, result.Exits, result.Outcomes) +
		"\n\n" + audit.Snapshot(history, o.config.Audit)
	result.Sent = o.notify(ctx, EventEODReport, result.Report)
	result.stage("report")

	return nil
}

// audit grades the plan once per plan run and returns the full history.
// A failed write leaves the plan ungraded in the store so a later run grades it.
func (o *Orchestrator) audit(ctx context.Context, plan contracts.AllocationPlan, fresh []contracts.SignalResult, result *RunResult) []contracts.PickOutcome {
	var history []contracts.PickOutcome
	if _, err := o.deps.State.LoadJSON(ctx, contracts.KeyPickHistory, &history); err != nil {
		history = nil
	}

	if plan.IsEmpty() || plan.RunID == "" {
		return history
	}
	if last, ok := o.deps.State.Get(ctx, contracts.KeyLastAuditedRun); ok && last == plan.RunID {
		o.logger.WithField("plan_run_id", plan.RunID).Info("Plan already graded")
		return history
	}

	closes := make(map[string]float64, len(fresh))
	for _, r := range fresh {
		closes[r.Symbol] = r.Close
	}
	result.Outcomes = o.tracker.Evaluate(plan, closes)
	history = o.tracker.Append(history, result.Outcomes)

	if o.persisted(result, contracts.KeyPickHistory, o.deps.State.SaveJSON(ctx, contracts.KeyPickHistory, history)) {
		o.persisted(result, contracts.KeyLastAuditedRun, o.deps.State.Set(ctx, contracts.KeyLastAuditedRun, plan.RunID))
	}
	return history
}

// persisted logs a failed state write and reports whether err was nil.
// The run continues either way so the report still goes out.
func (o *Orchestrator) persisted(result *RunResult, key string, err error) bool {
	if err == nil {
		return true
	}
	result.Degraded = true
	o.metrics.RecordStateError("persist")
	o.logger.WithError(err).WithField("key", key).Warn("State write failed, continuing")
	return false
}

// notify sends text at most once per day per event. A delivery failure is
// logged and leaves the event unmarked; it never fails the run.
func (o *Orchestrator) notify(ctx context.Context, event, text string) bool {
	key := contracts.SentKey(event)
	if o.deps.State.AlreadyHappenedToday(ctx, key) {
		o.metrics.RecordNotification("skipped")
		o.logger.WithField("event", event).Info("Notification already sent today")
		return false
	}

	if err := o.deps.Notifier.Send(ctx, text); err != nil {
		o.metrics.RecordNotification("failure")
		o.logger.WithError(err).WithField("event", event).Error("Notification failed")
		return false
	}
	o.metrics.RecordNotification("sent")

	if err := o.deps.State.MarkDoneToday(ctx, key); err != nil {
		o.logger.WithError(err).WithField("event", event).Warn("Could not mark notification as sent")
	}
	return true
}

// Score runs the signal pipeline for ad-hoc symbols without touching state
func (o *Orchestrator) Score(ctx context.Context, symbols []string) *s2_signals.BuildResult {
	return o.builder.Build(ctx, symbols)
}

// Accuracy renders the performance snapshot from the stored pick history
func (o *Orchestrator) Accuracy(ctx context.Context) string {
	var history []contracts.PickOutcome
	if _, err := o.deps.State.LoadJSON(ctx, contracts.KeyPickHistory, &history); err != nil {
		history = nil
	}
	return audit.Snapshot(history, o.config.Audit)
}
