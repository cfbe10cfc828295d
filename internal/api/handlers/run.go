package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/brain"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/redis"
)

// Runner executes a pipeline synchronously
type Runner interface {
	Run(ctx context.Context, job string) (*brain.RunResult, error)
}

// Trigger starts a scheduled job in the background
type Trigger interface {
	RunJob(name string) error
}

// RunHandler exposes the external job hook
type RunHandler struct {
	runner    Runner
	trigger   Trigger
	schedules map[string]string // pipeline job → scheduler job
	limiter   *redis.RateLimiter
	timeout   time.Duration
	logger    *logger.Logger
}

// NewRunHandler creates the hook handler. schedules maps each pipeline job
// name to the scheduler job that runs it; a nil limiter allows every call.
func NewRunHandler(runner Runner, trigger Trigger, schedules map[string]string, limiter *redis.RateLimiter, log *logger.Logger) *RunHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RunHandler{
		runner:    runner,
		trigger:   trigger,
		schedules: schedules,
		limiter:   limiter,
		timeout:   10 * time.Minute,
		logger:    log,
	}
}

// Run triggers a pipeline. The job runs in the background unless
// ?wait=true is given, in which case the run result is returned.
// POST /api/run/{job}
func (h *RunHandler) Run(w http.ResponseWriter, r *http.Request) {
	job := mux.Vars(r)["job"]
	scheduled, known := h.schedules[job]
	if !known {
		respondError(w, http.StatusNotFound, "unknown job")
		return
	}

	allowed, remaining, err := h.limiter.Allow(r.Context(), redis.RunHookRateLimit)
	if err != nil {
		h.logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
	}
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if err == nil && !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(redis.RunHookRateLimit.Window.Seconds())))
		respondError(w, http.StatusTooManyRequests, "too many run requests")
		return
	}

	if r.URL.Query().Get("wait") != "true" {
		if err := h.trigger.RunJob(scheduled); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusAccepted, map[string]string{
			"job":    job,
			"status": "accepted",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.timeout)
	defer cancel()

	result, err := h.runner.Run(ctx, job)
	if err != nil {
		h.logger.WithError(err).WithField("job", job).Error("Hook run failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job":      job,
		"run_id":   result.RunID,
		"date":     result.Date,
		"skipped":  result.Skipped,
		"sent":     result.Sent,
		"degraded": result.Degraded,
		"stages":   result.Stages,
		"duration": result.Duration.String(),
	})
}
