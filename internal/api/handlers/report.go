package handlers

import (
	"context"
	"net/http"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/scheduler"
)

// AccuracyReporter renders the pick accuracy snapshot
type AccuracyReporter interface {
	Accuracy(ctx context.Context) string
}

// JobStatter reports scheduler statistics
type JobStatter interface {
	GetJobStats() map[string]scheduler.JobStats
}

// ReportHandler serves read-only reports
type ReportHandler struct {
	accuracy AccuracyReporter
	jobs     JobStatter
}

// NewReportHandler creates a report handler
func NewReportHandler(accuracy AccuracyReporter, jobs JobStatter) *ReportHandler {
	return &ReportHandler{accuracy: accuracy, jobs: jobs}
}

// Accuracy returns the performance snapshot as plain text
// GET /api/report/accuracy
func (h *ReportHandler) Accuracy(w http.ResponseWriter, r *http.Request) {
	respondText(w, http.StatusOK, h.accuracy.Accuracy(r.Context()))
}

// Jobs returns per-job run statistics
// GET /api/jobs
func (h *ReportHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.jobs.GetJobStats())
}
