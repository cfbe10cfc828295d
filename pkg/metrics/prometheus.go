package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records pipeline metrics in Prometheus.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	symbols       *prometheus.CounterVec
	planSize      prometheus.Gauge
	planExposure  prometheus.Gauge
	exitSignals   prometheus.Counter
	stateErrors   *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	notifications *prometheus.CounterVec
}

// New creates a recorder registered on the default registry
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		jobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_job_runs_total",
				Help: "Scheduled job invocations by result",
			},
			[]string{"job", "result"},
		),
		jobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screener_job_duration_seconds",
				Help:    "Duration of job invocations in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"job"},
		),
		symbols: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_symbols_total",
				Help: "Symbols processed by the worker pool by outcome",
			},
			[]string{"outcome"},
		),
		planSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "screener_plan_positions",
			Help: "Number of positions in the latest allocation plan",
		}),
		planExposure: factory.NewGauge(prometheus.GaugeOpts{
			Name: "screener_plan_exposure",
			Help: "Total size fraction of the latest allocation plan",
		}),
		exitSignals: factory.NewCounter(prometheus.CounterOpts{
			Name: "screener_exit_signals_total",
			Help: "EXIT events emitted by the drift monitor",
		}),
		stateErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_state_errors_total",
				Help: "State store failures by operation",
			},
			[]string{"op"},
		),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_fetch_duration_seconds",
			Help:    "Per-symbol series fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_notifications_total",
				Help: "Outgoing notifications by result",
			},
			[]string{"result"},
		),
	}
}

// RecordJob records one job invocation
func (r *Recorder) RecordJob(job, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.jobRuns.WithLabelValues(job, result).Inc()
	r.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

// RecordSymbols records scored and absent symbol counts
func (r *Recorder) RecordSymbols(scored, absent int) {
	if r == nil {
		return
	}
	r.symbols.WithLabelValues("scored").Add(float64(scored))
	r.symbols.WithLabelValues("absent").Add(float64(absent))
}

// RecordPlan records the latest plan shape
func (r *Recorder) RecordPlan(positions int, exposure float64) {
	if r == nil {
		return
	}
	r.planSize.Set(float64(positions))
	r.planExposure.Set(exposure)
}

// RecordExits records emitted exit signals
func (r *Recorder) RecordExits(n int) {
	if r == nil {
		return
	}
	r.exitSignals.Add(float64(n))
}

// RecordStateError records a state store failure
func (r *Recorder) RecordStateError(op string) {
	if r == nil {
		return
	}
	r.stateErrors.WithLabelValues(op).Inc()
}

// RecordFetch records one series fetch latency
func (r *Recorder) RecordFetch(d time.Duration) {
	if r == nil {
		return
	}
	r.fetchDuration.Observe(d.Seconds())
}

// RecordNotification records a notification attempt
func (r *Recorder) RecordNotification(result string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(result).Inc()
}
