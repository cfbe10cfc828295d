package s2_signals

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// neutralRSI is used whenever the oscillator is undefined
const neutralRSI = 50.0

// Indicators are the raw readings behind one score
type Indicators struct {
	RSI         float64
	EMA         float64
	Stretch     float64
	Health      contracts.TrendHealth
	VolumeRatio float64

	BBUpper float64
	BBLower float64
	KCUpper float64
	KCLower float64
	BandsOK bool

	IsSqueezed bool
	IsBreakout bool
	Close      float64
}

// Engine maps a validated series to a SignalResult
// ⭐ SSOT: the only place a score is produced
// Pure: no clock, no I/O, no data from other symbols.
type Engine struct {
	config strategyconfig.Scoring
	logger *logger.Logger
}

// NewEngine creates a new scoring engine
func NewEngine(config strategyconfig.Scoring, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{config: config, logger: log}
}

// Score computes the SignalResult for one series
func (e *Engine) Score(series *contracts.PriceSeries) contracts.SignalResult {
	ind := e.Compute(series)
	score := e.Assemble(ind)

	e.logger.WithFields(map[string]interface{}{
		"symbol":       series.Symbol,
		"rsi":          ind.RSI,
		"stretch":      ind.Stretch,
		"health":       ind.Health,
		"volume_ratio": ind.VolumeRatio,
		"squeeze":      ind.IsSqueezed,
		"breakout":     ind.IsBreakout,
		"score":        score,
	}).Debug("Calculated signal")

	return contracts.SignalResult{
		Symbol:      series.Symbol,
		Score:       score,
		Health:      ind.Health,
		VolumeRatio: ind.VolumeRatio,
		IsSqueezed:  ind.IsSqueezed,
		IsBreakout:  ind.IsBreakout,
		RSI:         ind.RSI,
		Stretch:     ind.Stretch,
		Close:       ind.Close,
	}
}

// Compute derives every indicator, applying the documented defaults
// when one is undefined
func (e *Engine) Compute(series *contracts.PriceSeries) Indicators {
	closes := series.Closes()
	ind := Indicators{
		RSI:         neutralRSI,
		Health:      contracts.HealthUnknown,
		VolumeRatio: 1.0,
	}
	if len(closes) == 0 {
		return ind
	}
	ind.Close = closes[len(closes)-1]

	// 1. Momentum
	if rsi, err := e.rsi(closes); err == nil {
		ind.RSI = rsi
	}

	// 2. Trend health
	if ema, err := lastEMA(closes, e.config.EMAPeriod); err == nil {
		ind.EMA = ema
		ind.Stretch = (ind.Close - ema) / ema * 100
		ind.Health = e.classify(ind.Stretch)
	}

	// 3. Volume confirmation
	ind.VolumeRatio = volumeRatio(series.Volumes(), e.config.VolumeWindow)

	// 4. Volatility compression
	e.bands(series, closes, &ind)

	return ind
}

// Assemble turns indicators into the clamped integer score
func (e *Engine) Assemble(ind Indicators) int {
	c := e.config
	score := c.Base

	switch {
	case ind.RSI > c.RSIStrong:
		score += c.MomentumStrong
	case ind.RSI > c.RSINeutral:
		score += c.MomentumMild
	default:
		score += c.MomentumWeak
	}

	switch ind.Health {
	case contracts.HealthHealthy:
		score += c.TrendHealthy
	case contracts.HealthOverstretched:
		score += c.TrendOverstretched
	}

	switch {
	case ind.VolumeRatio >= c.VolumeSurge:
		score += c.VolumeSurgePoints
	case ind.VolumeRatio >= c.VolumeConfirm:
		score += c.VolumeConfirmPoints
	}

	if ind.IsSqueezed {
		score += c.SqueezePoints
	}

	return clampScore(score)
}

func (e *Engine) classify(stretch float64) contracts.TrendHealth {
	switch {
	case stretch > e.config.OverstretchedPct:
		return contracts.HealthOverstretched
	case stretch < e.config.DeepPullbackPct:
		return contracts.HealthDeepPullback
	default:
		return contracts.HealthHealthy
	}
}

// rsi returns the last RSI value. A flat series has no gains or losses,
// for which talib reports 0, so it is treated as undefined.
func (e *Engine) rsi(closes []float64) (float64, error) {
	period := e.config.RSIPeriod
	if len(closes) < period+1 {
		return 0, contracts.ErrInsufficientBars
	}
	if isFlat(closes) {
		return 0, contracts.ErrInsufficientBars
	}

	out := talib.Rsi(closes, period)
	v := out[len(out)-1]
	if !finite(v) {
		return 0, contracts.ErrInsufficientBars
	}
	return v, nil
}

// bands fills the Bollinger and Keltner envelopes and derives the flags
func (e *Engine) bands(series *contracts.PriceSeries, closes []float64, ind *Indicators) {
	period := e.config.BandPeriod
	// ATR needs one prior close for the first true range
	if len(closes) < period+1 {
		return
	}

	upper, _, lower := talib.BBands(closes, period, e.config.BandStdDev, e.config.BandStdDev, talib.SMA)
	mid := talib.Ema(closes, period)
	atr := talib.Atr(series.Highs(), series.Lows(), closes, period)

	last := len(closes) - 1
	bbUpper, bbLower := upper[last], lower[last]
	kcMid, kcATR := mid[last], atr[last]
	if !finite(bbUpper) || !finite(bbLower) || !finite(kcMid) || !finite(kcATR) {
		return
	}

	ind.BBUpper = bbUpper
	ind.BBLower = bbLower
	ind.KCUpper = kcMid + e.config.KeltnerATRMult*kcATR
	ind.KCLower = kcMid - e.config.KeltnerATRMult*kcATR
	ind.BandsOK = true

	ind.IsSqueezed = ind.BBUpper < ind.KCUpper && ind.BBLower > ind.KCLower
	ind.IsBreakout = ind.Close > ind.BBUpper
}

// lastEMA returns the final EMA value, or ErrInsufficientBars
func lastEMA(values []float64, period int) (float64, error) {
	if len(values) < period {
		return 0, contracts.ErrInsufficientBars
	}
	out := talib.Ema(values, period)
	v := out[len(out)-1]
	if !finite(v) || v <= 0 {
		return 0, contracts.ErrInsufficientBars
	}
	return v, nil
}

// volumeRatio is latest volume over the mean of the last window volumes
// (latest included); 1.0 when the mean is zero or undefined
func volumeRatio(volumes []float64, window int) float64 {
	if len(volumes) == 0 || window <= 0 {
		return 1.0
	}
	if len(volumes) < window {
		window = len(volumes)
	}

	tail := volumes[len(volumes)-window:]
	sum := 0.0
	for _, v := range tail {
		sum += v
	}
	mean := sum / float64(window)
	if mean <= 0 || !finite(mean) {
		return 1.0
	}

	ratio := volumes[len(volumes)-1] / mean
	if !finite(ratio) || ratio < 0 {
		return 1.0
	}
	return ratio
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func isFlat(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
