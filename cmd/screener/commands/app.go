package commands

import (
	"context"
	"fmt"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/brain"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/daystate"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/external/news"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/external/telegram"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/external/yahoo"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/s1_universe"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/config"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/httputil"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/metrics"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/redis"
)

// app holds every long-lived component a command needs
type app struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	log      *logger.Logger
	redis    *redis.Client
	store    contracts.StateStore
	state    *daystate.Coordinator
	metrics  *metrics.Recorder
	brain    *brain.Orchestrator
}

// loadConfig reads the environment and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return applyFlags(cfg)
}

func applyFlags(cfg *config.Config) (*config.Config, error) {
	if strategyFile != "" {
		cfg.StrategyFile = strategyFile
	}
	if env != "" {
		switch env {
		case "development", "staging", "production":
			cfg.Env = env
		default:
			return nil, fmt.Errorf("--env must be one of: development, staging, production")
		}
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp wires the pipeline. withMetrics registers the Prometheus
// collectors on the default registry and is meant for long-running processes.
func newApp(ctx context.Context, withMetrics bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg)

	strategy, err := strategyconfig.LoadOrDefault(cfg.StrategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rdb, _ = redis.New(ctx, config.RedisConfig{})
	}

	store, err := daystate.Open(ctx, cfg, log)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("open state store: %w", err)
	}

	var rec *metrics.Recorder
	if withMetrics && cfg.MetricsEnabled {
		rec = metrics.New()
	}

	state := daystate.NewCoordinator(store, loc, log, daystate.WithMetrics(rec))

	httpClient := httputil.NewWithTimeout(log, cfg.Market.FetchTimeout).
		WithRateLimit(cfg.Market.RateLimit, 1)
	if !cfg.Market.FetchRetry {
		httpClient = httpClient.DisableRetry()
	}

	fetcher := yahoo.NewClient(httpClient, cfg.Market.DataURL, log).
		WithCache(redis.NewCache(rdb, "screener"))

	notifier, err := telegram.FromConfig(cfg.Telegram, log)
	if err != nil {
		log.WithError(err).Warn("Telegram not configured, reports go to the log")
		notifier = telegram.NewLogNotifier(log)
	}

	deps := brain.Deps{
		Fetcher:  fetcher,
		Universe: s1_universe.NewLoader(httpClient, cfg.Market.UniverseURL, strategy.Universe, log),
		News:     news.NewClient(httputil.NewWithTimeout(log, cfg.Market.FetchTimeout), cfg.News, strategy.Sentiment, log),
		Notifier: notifier,
		State:    state,
	}

	return &app{
		cfg:      cfg,
		strategy: strategy,
		log:      log,
		redis:    rdb,
		store:    store,
		state:    state,
		metrics:  rec,
		brain:    brain.NewOrchestrator(strategy, deps, rec, log),
	}, nil
}

// Close releases the state store and the Redis connection
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close state store")
	}
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}
