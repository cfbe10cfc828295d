package s2_signals

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/markcheno/go-talib"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

const (
	// neutralVIX is reported when the volatility index is unavailable
	neutralVIX = 15.0

	benchmarkLookbackDays = 120
	vixLookbackDays       = 10
	volumeConfirmWindow   = 10
)

// MarketAnalyzer derives the benchmark regime, RSI and sector rotation
// Every failure degrades to a neutral value.
type MarketAnalyzer struct {
	fetcher   contracts.SeriesFetcher
	config    strategyconfig.Market
	rsiPeriod int
	timeout   time.Duration
	logger    *logger.Logger
}

// NewMarketAnalyzer creates a new market analyzer
func NewMarketAnalyzer(fetcher contracts.SeriesFetcher, config strategyconfig.Market, rsiPeriod int, timeout time.Duration, log *logger.Logger) *MarketAnalyzer {
	if log == nil {
		log = logger.Nop()
	}
	return &MarketAnalyzer{
		fetcher:   fetcher,
		config:    config,
		rsiPeriod: rsiPeriod,
		timeout:   timeout,
		logger:    log,
	}
}

// Analyze fetches the benchmark, the volatility index and every sector index
func (a *MarketAnalyzer) Analyze(ctx context.Context) contracts.MarketSnapshot {
	snap := contracts.MarketSnapshot{
		Benchmark: a.config.Benchmark,
		Regime:    contracts.RegimeUnknown,
		IndexRSI:  neutralRSI,
		VIX:       neutralVIX,
	}

	bench := a.fetch(ctx, a.config.Benchmark, benchmarkLookbackDays)
	if bench != nil && bench.Len() > 0 {
		snap.Available = true
		last, _ := bench.Last()
		snap.IndexClose = last.Close
		snap.IndexRSI = IndexRSI(bench.Closes(), a.rsiPeriod)
		snap.Regime = Regime(bench, a.config.RegimePeriod, a.config.ADXTrending, a.config.VolatileMult)
		snap.VolumeConfirmed = volumeAboveAverage(bench.Volumes(), volumeConfirmWindow)
	}

	if a.config.VolatilityIndex != "" {
		if vix := a.fetch(ctx, a.config.VolatilityIndex, vixLookbackDays); vix != nil {
			if last, ok := vix.Last(); ok && finite(last.Close) && last.Close > 0 {
				snap.VIX = math.Round(last.Close*100) / 100
			}
		}
	}

	sectors := make(map[string]*contracts.PriceSeries, len(a.config.SectorIndices))
	for name, symbol := range a.config.SectorIndices {
		sectors[name] = a.fetch(ctx, symbol, a.config.RotationLookback*2)
	}
	snap.Rotation = SectorRotation(bench, sectors, a.config.RotationLookback)

	a.logger.WithFields(map[string]interface{}{
		"benchmark": snap.Benchmark,
		"regime":    snap.Regime,
		"rsi":       snap.IndexRSI,
		"vix":       snap.VIX,
		"sectors":   len(snap.Rotation),
	}).Info("Market snapshot computed")

	return snap
}

func (a *MarketAnalyzer) fetch(ctx context.Context, symbol string, days int) *contracts.PriceSeries {
	fctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	series, err := a.fetcher.FetchSeries(fctx, symbol, days)
	if err != nil {
		a.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		}).Warn("Market series unavailable")
		return nil
	}
	return series
}

// IndexRSI returns the last RSI of closes, 50 when undefined
func IndexRSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || isFlat(closes) {
		return neutralRSI
	}
	out := talib.Rsi(closes, period)
	v := out[len(out)-1]
	if !finite(v) {
		return neutralRSI
	}
	return math.Round(v*100) / 100
}

// Regime classifies the benchmark.
// TRENDING when ADX > adxTrending and ATR% > σ(daily returns);
// VOLATILE when ATR% > volatileMult·σ; otherwise RANGE.
// ATR is taken as a fraction of the last close so both sides are unitless.
func Regime(series *contracts.PriceSeries, period int, adxTrending, volatileMult float64) contracts.MarketRegime {
	if series.Len() < 2*period+1 {
		return contracts.RegimeUnknown
	}

	highs, lows, closes := series.Highs(), series.Lows(), series.Closes()
	adxOut := talib.Adx(highs, lows, closes, period)
	atrOut := talib.Atr(highs, lows, closes, period)

	last := len(closes) - 1
	adx, atr, lastClose := adxOut[last], atrOut[last], closes[last]
	vol := returnsStdDev(closes)
	if !finite(adx) || !finite(atr) || !finite(vol) || lastClose <= 0 {
		return contracts.RegimeUnknown
	}
	atrPct := atr / lastClose

	switch {
	case adx > adxTrending && atrPct > vol:
		return contracts.RegimeTrending
	case atrPct > vol*volatileMult:
		return contracts.RegimeVolatile
	default:
		return contracts.RegimeRange
	}
}

// SectorRotation returns each sector's lookback return minus the benchmark's,
// strongest first. Missing series report 0 and Available=false.
func SectorRotation(benchmark *contracts.PriceSeries, sectors map[string]*contracts.PriceSeries, lookback int) []contracts.SectorMove {
	benchRet, _ := windowReturn(benchmark, lookback)

	out := make([]contracts.SectorMove, 0, len(sectors))
	for name, s := range sectors {
		move := contracts.SectorMove{Sector: name}
		if ret, ok := windowReturn(s, lookback); ok {
			move.RelativePct = math.Round((ret-benchRet)*100) / 100
			move.Available = true
		}
		out = append(out, move)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RelativePct != out[j].RelativePct {
			return out[i].RelativePct > out[j].RelativePct
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}

// windowReturn is the percent change across the last lookback bars
func windowReturn(s *contracts.PriceSeries, lookback int) (float64, bool) {
	n := s.Len()
	if n < 2 || lookback < 2 {
		return 0, false
	}
	if lookback > n {
		lookback = n
	}
	first := s.Bars[n-lookback].Close
	last := s.Bars[n-1].Close
	if first <= 0 || !finite(first) || !finite(last) {
		return 0, false
	}
	return (last/first - 1) * 100, true
}

// returnsStdDev is the sample standard deviation of daily percent changes
func returnsStdDev(closes []float64) float64 {
	rets := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] > 0 {
			rets = append(rets, closes[i]/closes[i-1]-1)
		}
	}
	if len(rets) < 2 {
		return math.NaN()
	}
	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	ss := 0.0
	for _, r := range rets {
		ss += (r - mean) * (r - mean)
	}
	return math.Sqrt(ss / float64(len(rets)-1))
}

func volumeAboveAverage(volumes []float64, window int) bool {
	if len(volumes) < window {
		return false
	}
	tail := volumes[len(volumes)-window:]
	sum := 0.0
	for _, v := range tail {
		sum += v
	}
	return volumes[len(volumes)-1] > sum/float64(window)
}
