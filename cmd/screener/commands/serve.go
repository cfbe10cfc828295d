package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/api"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/api/handlers"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/brain"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/scheduler"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/scheduler/jobs"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the HTTP server",
	Long: `Starts the long-running process.

This command:
- schedules the morning report and the end-of-day review
- serves the liveness endpoint used by uptime pings
- exposes the run hook, run state and metrics

Endpoints:
  GET|HEAD /                      - Liveness
  GET      /health                - Dependency checks
  GET      /metrics               - Prometheus metrics
  POST     /api/run/{job}         - Trigger morning or eod (?wait=true)
  GET      /api/state             - Run-state snapshot
  GET      /api/state/{key}       - One run-state key
  GET      /api/report/accuracy   - Performance snapshot
  GET      /api/jobs              - Scheduler statistics

Example:
  go run ./cmd/screener serve
  go run ./cmd/screener serve --port 8080 --run-on-start`,
	RunE: runServe,
}

var (
	servePort   string
	runOnStart  bool
	noScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP port (overrides PORT)")
	serveCmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run the morning job once at startup")
	serveCmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "serve HTTP only, never fire cron jobs")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, log := a.cfg, a.log
	if servePort != "" {
		cfg.Port = servePort
	}

	// 1. Scheduler
	sched := scheduler.New(a.state.Location(), log)
	morningJob := jobs.NewMorningJob(a.brain, cfg.MorningSchedule, log)
	eodJob := jobs.NewEODJob(a.brain, cfg.EODSchedule, log)
	for _, job := range []scheduler.Job{morningJob, eodJob} {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name(), err)
		}
	}

	// 2. Handlers
	checks := map[string]handlers.Check{
		"state": func(ctx context.Context) error {
			_, err := a.store.Rows(ctx)
			return err
		},
	}
	if a.redis.Enabled() {
		checks["redis"] = func(ctx context.Context) error {
			return a.redis.Redis().Ping(ctx).Err()
		}
	}

	var limiter *redis.RateLimiter
	if a.redis.Enabled() {
		limiter = redis.NewRateLimiter(a.redis, "screener")
	}

	h := api.Handlers{
		Health: handlers.NewHealthHandler("screener", checks),
		Run: handlers.NewRunHandler(a.brain, sched, map[string]string{
			brain.JobMorning: morningJob.Name(),
			brain.JobEOD:     eodJob.Name(),
		}, limiter, log),
		State:  handlers.NewStateHandler(a.state),
		Report: handlers.NewReportHandler(a.brain, sched),
	}
	if a.metrics != nil {
		h.Metrics = promhttp.Handler()
	}

	server := api.New(cfg, log, api.NewRouter(h, log))

	// 3. Start
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	if !noScheduler {
		sched.Start()
	}

	if runOnStart || cfg.RunOnStart {
		if err := sched.RunJob(morningJob.Name()); err != nil {
			log.WithError(err).Warn("Run-on-start failed to trigger")
		}
	}

	log.WithFields(map[string]interface{}{
		"port":      cfg.Port,
		"env":       cfg.Env,
		"timezone":  cfg.Timezone,
		"morning":   cfg.MorningSchedule,
		"eod":       cfg.EODSchedule,
		"scheduler": !noScheduler,
	}).Info("Screener started")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// 4. Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-errCh:
		sched.Stop()
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	sched.Stop()

	log.Info("Screener stopped")
	return nil
}
