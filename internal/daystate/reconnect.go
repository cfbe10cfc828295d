package daystate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// Dialer opens a fresh connection to the backing store
type Dialer func(ctx context.Context) (contracts.StateStore, error)

// ReconnectingStore wraps a store with a reconnect-on-failure policy:
// a failed call drops the connection, re-dials and retries with
// exponential backoff up to MaxAttempts. A missing row or a cancelled
// context is returned as is and keeps the connection.
type ReconnectingStore struct {
	dial        Dialer
	maxAttempts int
	backoff     time.Duration
	logger      *logger.Logger

	mu    sync.Mutex
	store contracts.StateStore
}

// NewReconnectingStore creates a lazily-dialled store
func NewReconnectingStore(dial Dialer, maxAttempts int, backoff time.Duration, log *logger.Logger) *ReconnectingStore {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReconnectingStore{
		dial:        dial,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      log,
	}
}

// Connect dials eagerly; later calls re-dial on their own if this fails
func (r *ReconnectingStore) Connect(ctx context.Context) error {
	_, err := r.current(ctx)
	return err
}

func (r *ReconnectingStore) current(ctx context.Context) (contracts.StateStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store != nil {
		return r.store, nil
	}
	s, err := r.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial state store: %w", err)
	}
	r.store = s
	return s, nil
}

func (r *ReconnectingStore) drop(s contracts.StateStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == s {
		_ = s.Close()
		r.store = nil
	}
}

func (r *ReconnectingStore) do(ctx context.Context, op string, fn func(contracts.StateStore) error) error {
	delay := r.backoff
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		s, err := r.current(ctx)
		if err == nil {
			if err = fn(s); err == nil {
				return nil
			}
			if permanent(err) {
				return fmt.Errorf("%s: %w", op, err)
			}
			r.drop(s)
		}
		lastErr = err

		if attempt == r.maxAttempts || ctx.Err() != nil {
			break
		}

		r.logger.WithFields(map[string]interface{}{
			"op":      op,
			"attempt": attempt,
			"delay":   delay,
			"error":   err.Error(),
		}).Warn("State store call failed, reconnecting")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}
	return fmt.Errorf("%s after %d attempts: %w", op, r.maxAttempts, lastErr)
}

// permanent reports errors a new connection would not fix
func permanent(err error) bool {
	return errors.Is(err, contracts.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Rows implements contracts.StateStore
func (r *ReconnectingStore) Rows(ctx context.Context) ([]contracts.StateRow, error) {
	var rows []contracts.StateRow
	err := r.do(ctx, "rows", func(s contracts.StateStore) error {
		var err error
		rows, err = s.Rows(ctx)
		return err
	})
	return rows, err
}

// UpdateRow implements contracts.StateStore
func (r *ReconnectingStore) UpdateRow(ctx context.Context, row contracts.StateRow, value string) error {
	return r.do(ctx, "update", func(s contracts.StateStore) error {
		return s.UpdateRow(ctx, row, value)
	})
}

// AppendRow implements contracts.StateStore
func (r *ReconnectingStore) AppendRow(ctx context.Context, key, value string) error {
	return r.do(ctx, "append", func(s contracts.StateStore) error {
		return s.AppendRow(ctx, key, value)
	})
}

// Close implements contracts.StateStore
func (r *ReconnectingStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	return err
}
