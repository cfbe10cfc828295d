package s2_signals

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/s0_data/quality"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/metrics"
)

// BuilderConfig tunes the download-and-score worker pool
type BuilderConfig struct {
	Workers      int
	LookbackDays int
	Timeout      time.Duration
	Retry        bool
	RetryBackoff time.Duration
}

// DefaultBuilderConfig returns the default pool settings
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		Workers:      5,
		LookbackDays: 90,
		Timeout:      10 * time.Second,
		Retry:        false,
		RetryBackoff: time.Second,
	}
}

// BuildResult is the merged output of one pool run
type BuildResult struct {
	Results  []contracts.SignalResult // sorted by symbol
	Absent   map[string]string        // symbol → reason
	Duration time.Duration
}

// Requested returns the number of distinct symbols submitted
func (r *BuildResult) Requested() int {
	return len(r.Results) + len(r.Absent)
}

// Builder fetches, validates and scores symbols concurrently
// ⭐ SSOT: the only fan-out in the pipeline
type Builder struct {
	fetcher   contracts.SeriesFetcher
	validator *quality.Validator
	engine    *Engine
	config    BuilderConfig
	metrics   *metrics.Recorder
	logger    *logger.Logger
}

// NewBuilder creates a new signal builder
func NewBuilder(
	fetcher contracts.SeriesFetcher,
	validator *quality.Validator,
	engine *Engine,
	config BuilderConfig,
	rec *metrics.Recorder,
	log *logger.Logger,
) *Builder {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		fetcher:   fetcher,
		validator: validator,
		engine:    engine,
		config:    config,
		metrics:   rec,
		logger:    log,
	}
}

// Build scores every symbol with at most Workers in flight.
// A per-symbol failure is recorded in Absent and never cancels siblings.
func (b *Builder) Build(ctx context.Context, symbols []string) *BuildResult {
	start := time.Now()
	symbols = uniqueSorted(symbols)

	b.logger.WithFields(map[string]interface{}{
		"symbols": len(symbols),
		"workers": b.config.Workers,
	}).Info("Starting signal generation")

	// one slot per symbol: workers never share a write target
	results := make([]*contracts.SignalResult, len(symbols))
	reasons := make([]string, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.Workers)

	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			res, err := b.scoreOne(gctx, symbol)
			if err != nil {
				reasons[i] = err.Error()
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	out := &BuildResult{
		Results: make([]contracts.SignalResult, 0, len(symbols)),
		Absent:  make(map[string]string),
	}
	for i, symbol := range symbols {
		if results[i] != nil {
			out.Results = append(out.Results, *results[i])
			continue
		}
		out.Absent[symbol] = reasons[i]
	}
	out.Duration = time.Since(start)

	b.metrics.RecordSymbols(len(out.Results), len(out.Absent))
	b.logger.WithFields(map[string]interface{}{
		"total":    len(symbols),
		"scored":   len(out.Results),
		"absent":   len(out.Absent),
		"duration": out.Duration.String(),
	}).Info("Signal generation completed")

	return out
}

// scoreOne runs fetch → validate → score for one symbol
func (b *Builder) scoreOne(ctx context.Context, symbol string) (contracts.SignalResult, error) {
	raw, err := b.fetch(ctx, symbol)
	if err != nil && b.config.Retry {
		b.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		}).Debug("Fetch failed, retrying once")

		if waitErr := sleepCtx(ctx, b.config.RetryBackoff); waitErr != nil {
			return contracts.SignalResult{}, fmt.Errorf("fetch %s: %w", symbol, err)
		}
		raw, err = b.fetch(ctx, symbol)
	}
	if err != nil {
		b.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		}).Warn("Symbol absent: fetch failed")
		return contracts.SignalResult{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	series, err := b.validator.Inspect(raw)
	if err != nil {
		b.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"reason": err.Error(),
		}).Warn("Symbol absent: series rejected")
		return contracts.SignalResult{}, err
	}
	// the fetcher may report a provider alias; results are keyed by the requested symbol
	series.Symbol = symbol

	return b.engine.Score(series), nil
}

// fetch applies the per-symbol timeout
func (b *Builder) fetch(ctx context.Context, symbol string) (*contracts.PriceSeries, error) {
	fctx, cancel := context.WithTimeout(ctx, b.config.Timeout)
	defer cancel()

	start := time.Now()
	series, err := b.fetcher.FetchSeries(fctx, symbol, b.config.LookbackDays)
	b.metrics.RecordFetch(time.Since(start))
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, contracts.ErrNoData
	}
	return series, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func uniqueSorted(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
