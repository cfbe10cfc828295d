package quality

import (
	"fmt"
	"math"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// Config holds series gate thresholds
type Config struct {
	MinBars int `yaml:"min_bars"` // 30
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{MinBars: 30}
}

// Validator normalizes and sanity-checks raw daily series
// ⭐ SSOT: fetcher → engine data gate
type Validator struct {
	config Config
	logger *logger.Logger
}

// NewValidator creates a new Validator
func NewValidator(config Config, log *logger.Logger) *Validator {
	if log == nil {
		log = logger.Nop()
	}
	return &Validator{config: config, logger: log}
}

// Validate returns the cleaned series, or false when it is unusable.
// Malformed input is an expected condition and never produces an error.
func (v *Validator) Validate(raw *contracts.PriceSeries) (*contracts.PriceSeries, bool) {
	series, err := v.Inspect(raw)
	if err != nil {
		v.logger.WithFields(map[string]interface{}{
			"symbol": symbolOf(raw),
			"reason": err.Error(),
		}).Debug("series rejected")
		return nil, false
	}
	return series, true
}

// Inspect is Validate with the rejection reason.
// Every returned error wraps contracts.ErrNoData.
func (v *Validator) Inspect(raw *contracts.PriceSeries) (*contracts.PriceSeries, error) {
	if raw == nil || len(raw.Bars) == 0 {
		return nil, fmt.Errorf("empty series: %w", contracts.ErrNoData)
	}

	// 1. Normalize: drop rows without a close (holidays, partial sessions)
	bars := make([]contracts.Bar, 0, len(raw.Bars))
	for _, b := range raw.Bars {
		if math.IsNaN(b.Close) {
			continue
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no closes: %w", contracts.ErrNoData)
	}

	// 2. Reject
	for i, b := range bars {
		if i > 0 && !b.Date.After(bars[i-1].Date) {
			return nil, fmt.Errorf("dates not strictly increasing at %s: %w",
				b.Date.Format("2006-01-02"), contracts.ErrNoData)
		}
		if !validNumber(b.Open) || !validNumber(b.High) || !validNumber(b.Low) ||
			!validNumber(b.Close) || !validNumber(b.Volume) {
			return nil, fmt.Errorf("bad value on %s: %w", b.Date.Format("2006-01-02"), contracts.ErrNoData)
		}
	}

	if len(bars) < v.config.MinBars {
		return nil, fmt.Errorf("%d bars < %d: %w", len(bars), v.config.MinBars, contracts.ErrNoData)
	}

	return &contracts.PriceSeries{Symbol: raw.Symbol, Bars: bars}, nil
}

func validNumber(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

func symbolOf(s *contracts.PriceSeries) string {
	if s == nil {
		return ""
	}
	return s.Symbol
}
