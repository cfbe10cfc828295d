package daystate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/metrics"
)

// DateLayout is the format of every "done today" marker
const DateLayout = "2006-01-02"

// Coordinator is the day-scoped idempotency layer over a StateStore
// ⭐ SSOT: every run-state read and write goes through here
//
// Reads that fail degrade to "unknown": a job may then run twice, but a
// due job is never skipped because the store was unreachable.
type Coordinator struct {
	store   contracts.StateStore
	loc     *time.Location
	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Recorder

	runMu sync.Mutex
}

// Option customises a Coordinator
type Option func(*Coordinator)

// WithClock injects the time source
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithMetrics attaches a metrics recorder
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *Coordinator) { c.metrics = rec }
}

// NewCoordinator creates a coordinator; a nil location means UTC
func NewCoordinator(store contracts.StateStore, loc *time.Location, log *logger.Logger, opts ...Option) *Coordinator {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	c := &Coordinator{
		store:  store,
		loc:    loc,
		now:    time.Now,
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Today returns the current date in the configured timezone
func (c *Coordinator) Today() string {
	return c.now().In(c.loc).Format(DateLayout)
}

// Location returns the configured timezone
func (c *Coordinator) Location() *time.Location {
	return c.loc
}

// ReadAll returns the deduplicated key/value view. When a key appears in
// several rows the newest UpdatedAt wins, then the highest id.
// A failed read yields an empty state.
func (c *Coordinator) ReadAll(ctx context.Context) contracts.RunState {
	rows, err := c.store.Rows(ctx)
	if err != nil {
		c.fail("read", "", err)
		return contracts.RunState{}
	}
	return Dedupe(rows)
}

// Dedupe collapses rows to one value per key
func Dedupe(rows []contracts.StateRow) contracts.RunState {
	winners := make(map[string]contracts.StateRow, len(rows))
	for _, r := range rows {
		cur, ok := winners[r.Key]
		if !ok || newer(r, cur) {
			winners[r.Key] = r
		}
	}

	state := make(contracts.RunState, len(winners))
	for k, r := range winners {
		state[k] = r.Value
	}
	return state
}

func newer(a, b contracts.StateRow) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}

// Get returns one key's value
func (c *Coordinator) Get(ctx context.Context, key string) (string, bool) {
	v, ok := c.ReadAll(ctx)[key]
	return v, ok
}

// Set writes value to every row holding key, or appends a row if none does
func (c *Coordinator) Set(ctx context.Context, key, value string) error {
	rows, err := c.store.Rows(ctx)
	if err != nil {
		return c.fail("write", key, err)
	}

	updated := 0
	for _, r := range rows {
		if r.Key != key {
			continue
		}
		if err := c.store.UpdateRow(ctx, r, value); err != nil {
			return c.fail("write", key, err)
		}
		updated++
	}

	if updated == 0 {
		if err := c.store.AppendRow(ctx, key, value); err != nil {
			return c.fail("write", key, err)
		}
	}
	return nil
}

// AlreadyHappenedToday reports whether key is marked with today's date
func (c *Coordinator) AlreadyHappenedToday(ctx context.Context, key string) bool {
	v, ok := c.Get(ctx, key)
	return ok && v == c.Today()
}

// MarkDoneToday marks key with today's date
func (c *Coordinator) MarkDoneToday(ctx context.Context, key string) error {
	return c.Set(ctx, key, c.Today())
}

// RunOnce runs fn at most once per day for key. The check, the work and
// the mark happen under one mutex. fn failing leaves the key unmarked so a
// later trigger retries.
func (c *Coordinator) RunOnce(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	day := c.Today()
	if v, ok := c.Get(ctx, key); ok && v == day {
		c.logger.WithFields(map[string]interface{}{
			"key":  key,
			"date": day,
		}).Info("Already done today, skipping")
		return false, nil
	}

	if err := fn(ctx); err != nil {
		return true, err
	}

	if err := c.Set(ctx, key, day); err != nil {
		return true, fmt.Errorf("mark %s done: %w", key, err)
	}
	return true, nil
}

// LoadJSON decodes the value under key into dest. Missing keys return
// (false, nil).
func (c *Coordinator) LoadJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.Get(ctx, key)
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Stored value is not valid JSON")
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key
func (c *Coordinator) SaveJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, string(data))
}

// LoadHealthMemory returns the remembered trend health; empty when
// missing or unreadable
func (c *Coordinator) LoadHealthMemory(ctx context.Context) contracts.SymbolHealthMemory {
	memory := contracts.SymbolHealthMemory{}
	if _, err := c.LoadJSON(ctx, contracts.KeyHealthState, &memory); err != nil {
		return contracts.SymbolHealthMemory{}
	}
	return memory
}

// SaveHealthMemory persists the trend health memory
func (c *Coordinator) SaveHealthMemory(ctx context.Context, memory contracts.SymbolHealthMemory) error {
	return c.SaveJSON(ctx, contracts.KeyHealthState, memory)
}

func (c *Coordinator) fail(op, key string, err error) error {
	c.metrics.RecordStateError(op)
	c.logger.WithFields(map[string]interface{}{
		"op":    op,
		"key":   key,
		"error": err.Error(),
	}).Error("State store operation failed")

	if errors.Is(err, contracts.ErrStateUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %w", contracts.ErrStateUnavailable, op, key, err)
}
