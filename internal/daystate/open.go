package daystate

import (
	"context"
	"fmt"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/config"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/database"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
	redisclient "github.com/HarminderAI/Vedic-Market-Energy/pkg/redis"
)

// DialerFor returns the dialer for the configured backend
func DialerFor(cfg *config.Config) (Dialer, error) {
	switch cfg.State.Backend {
	case config.StateBackendSQLite:
		return func(ctx context.Context) (contracts.StateStore, error) {
			return OpenSQLite(ctx, cfg.State.SQLitePath)
		}, nil

	case config.StateBackendPostgres:
		return func(ctx context.Context) (contracts.StateStore, error) {
			db, err := database.New(ctx, cfg.Database)
			if err != nil {
				return nil, err
			}
			store, err := NewPostgresStore(ctx, db)
			if err != nil {
				db.Close()
				return nil, err
			}
			return store, nil
		}, nil

	case config.StateBackendRedis:
		return func(ctx context.Context) (contracts.StateStore, error) {
			rc := cfg.Redis
			rc.Enabled = true
			client, err := redisclient.New(ctx, rc)
			if err != nil {
				return nil, err
			}
			store, err := NewRedisStore(client, cfg.State.RedisKey)
			if err != nil {
				client.Close()
				return nil, err
			}
			return store, nil
		}, nil

	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}

// Open builds the configured store. Remote and file backends are wrapped
// in a ReconnectingStore; an initial dial failure is logged, not returned,
// so the job can still run in degraded mode.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (contracts.StateStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.State.Backend == config.StateBackendMemory {
		return NewMemoryStore(), nil
	}

	dial, err := DialerFor(cfg)
	if err != nil {
		return nil, err
	}

	store := NewReconnectingStore(dial, cfg.State.MaxAttempts, cfg.State.RetryBackoff, log)
	if err := store.Connect(ctx); err != nil {
		log.WithFields(map[string]interface{}{
			"backend": cfg.State.Backend,
			"error":   err.Error(),
		}).Warn("State store not reachable at startup, continuing degraded")
	}
	return store, nil
}
