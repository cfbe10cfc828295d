package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// Check probes one dependency
type Check func(ctx context.Context) error

// HealthHandler serves liveness and dependency health
type HealthHandler struct {
	service string
	started time.Time
	checks  map[string]Check
	timeout time.Duration
}

// NewHealthHandler creates a health handler; checks may be nil
func NewHealthHandler(service string, checks map[string]Check) *HealthHandler {
	if checks == nil {
		checks = map[string]Check{}
	}
	return &HealthHandler{
		service: service,
		started: time.Now(),
		checks:  checks,
		timeout: 3 * time.Second,
	}
}

// Alive answers the uptime probe
// GET|HEAD /
func (h *HealthHandler) Alive(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		return
	}
	respondText(w, http.StatusOK, "OK")
}

// Health runs every check
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	code := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			results[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	respondJSON(w, code, map[string]interface{}{
		"status":  status,
		"service": h.service,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"checks":  results,
	})
}
