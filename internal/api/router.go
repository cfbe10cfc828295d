package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/api/handlers"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// Handlers groups every endpoint the router serves
type Handlers struct {
	Health  *handlers.HealthHandler
	Run     *handlers.RunHandler
	State   *handlers.StateHandler
	Report  *handlers.ReportHandler
	Metrics http.Handler // nil disables /metrics
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routing is configured here only
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	r := mux.NewRouter()

	// Liveness for the hosting platform's uptime pings
	r.HandleFunc("/", h.Health.Alive).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)

	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/run/{job}", h.Run.Run).Methods(http.MethodPost)
	api.HandleFunc("/state", h.State.List).Methods(http.MethodGet)
	api.HandleFunc("/state/{key}", h.State.Get).Methods(http.MethodGet)
	api.HandleFunc("/report/accuracy", h.Report.Accuracy).Methods(http.MethodGet)
	api.HandleFunc("/jobs", h.Report.Jobs).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not found")
	})

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// statusRecorder captures the status code for the access log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					writeJSONError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
