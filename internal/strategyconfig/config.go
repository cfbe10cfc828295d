package strategyconfig

import "time"

// Config is the full screening policy.
// Every numeric threshold of the pipeline lives here; nothing downstream hard-codes one.
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Universe   Universe   `yaml:"universe" json:"universe"`
	Fetch      Fetch      `yaml:"fetch" json:"fetch"`
	Validation Validation `yaml:"validation" json:"validation"`
	Scoring    Scoring    `yaml:"scoring" json:"scoring"`
	Ranking    Ranking    `yaml:"ranking" json:"ranking"`
	Portfolio  Portfolio  `yaml:"portfolio" json:"portfolio"`
	Sentiment  Sentiment  `yaml:"sentiment" json:"sentiment"`
	Drift      Drift      `yaml:"drift" json:"drift"`
	Audit      Audit      `yaml:"audit" json:"audit"`
	Market     Market     `yaml:"market" json:"market"`
}

// Meta identifies the policy version
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id" default:"daily_swing" validate:"required"`
	Version    string `yaml:"version" json:"version" default:"1.0.0" validate:"required"`
}

// Universe describes the CSV layout and the fallback list
type Universe struct {
	SymbolColumn   string   `yaml:"symbol_column" json:"symbol_column" default:"Symbol" validate:"required"`
	SectorColumn   string   `yaml:"sector_column" json:"sector_column" default:"Industry"`
	SymbolSuffix   string   `yaml:"symbol_suffix" json:"symbol_suffix" default:".NS"`
	ExcludeSectors []string `yaml:"exclude_sectors" json:"exclude_sectors"`
	MaxSymbols     int      `yaml:"max_symbols" json:"max_symbols" default:"0" validate:"gte=0"`
	Fallback       []string `yaml:"fallback" json:"fallback" default:"[\"RELIANCE.NS\",\"TCS.NS\",\"HDFCBANK.NS\",\"INFY.NS\",\"ICICIBANK.NS\",\"SBIN.NS\",\"ITC.NS\",\"LT.NS\"]" validate:"min=1,dive,required"`
}

// Fetch tunes the download worker pool
type Fetch struct {
	Workers      int           `yaml:"workers" json:"workers" default:"5" validate:"min=1,max=16"`
	LookbackDays int           `yaml:"lookback_days" json:"lookback_days" default:"90" validate:"min=30"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" default:"10s" validate:"gt=0"`
	Retry        bool          `yaml:"retry" json:"retry" default:"false"`
	RetryBackoff time.Duration `yaml:"retry_backoff" json:"retry_backoff" default:"1s" validate:"gte=0"`
}

// Validation configures the series validator
type Validation struct {
	MinBars int `yaml:"min_bars" json:"min_bars" default:"30" validate:"min=2"`
}

// Scoring holds indicator windows and score weights
type Scoring struct {
	RSIPeriod      int     `yaml:"rsi_period" json:"rsi_period" default:"14" validate:"min=2"`
	EMAPeriod      int     `yaml:"ema_period" json:"ema_period" default:"20" validate:"min=2"`
	VolumeWindow   int     `yaml:"volume_window" json:"volume_window" default:"20" validate:"min=1"`
	BandPeriod     int     `yaml:"band_period" json:"band_period" default:"20" validate:"min=2"`
	BandStdDev     float64 `yaml:"band_stddev" json:"band_stddev" default:"2" validate:"gt=0"`
	KeltnerATRMult float64 `yaml:"keltner_atr_mult" json:"keltner_atr_mult" default:"1.5" validate:"gt=0"`

	OverstretchedPct float64 `yaml:"overstretched_pct" json:"overstretched_pct" default:"4"`
	DeepPullbackPct  float64 `yaml:"deep_pullback_pct" json:"deep_pullback_pct" default:"-2"`

	RSIStrong      float64 `yaml:"rsi_strong" json:"rsi_strong" default:"60" validate:"gte=0,lte=100"`
	RSINeutral     float64 `yaml:"rsi_neutral" json:"rsi_neutral" default:"50" validate:"gte=0,lte=100"`
	MomentumStrong int     `yaml:"momentum_strong" json:"momentum_strong" default:"30"`
	MomentumMild   int     `yaml:"momentum_mild" json:"momentum_mild" default:"15"`
	MomentumWeak   int     `yaml:"momentum_weak" json:"momentum_weak" default:"5"`

	TrendHealthy       int `yaml:"trend_healthy" json:"trend_healthy" default:"10"`
	TrendOverstretched int `yaml:"trend_overstretched" json:"trend_overstretched" default:"-20"`

	VolumeSurge         float64 `yaml:"volume_surge" json:"volume_surge" default:"2.0" validate:"gt=0"`
	VolumeConfirm       float64 `yaml:"volume_confirm" json:"volume_confirm" default:"1.5" validate:"gt=0"`
	VolumeSurgePoints   int     `yaml:"volume_surge_points" json:"volume_surge_points" default:"15"`
	VolumeConfirmPoints int     `yaml:"volume_confirm_points" json:"volume_confirm_points" default:"10"`

	SqueezePoints int `yaml:"squeeze_points" json:"squeeze_points" default:"5"`

	// Base is added before clamping. Zero keeps the canonical point table.
	Base int `yaml:"base" json:"base" default:"0"`
}

// MaxScore returns the best score the point table can produce
func (s Scoring) MaxScore() int {
	best := s.Base + maxInt(s.MomentumStrong, s.MomentumMild, s.MomentumWeak) +
		maxInt(s.TrendHealthy, s.TrendOverstretched, 0) +
		maxInt(s.VolumeSurgePoints, s.VolumeConfirmPoints, 0) +
		maxInt(s.SqueezePoints, 0)
	if best > 100 {
		return 100
	}
	return best
}

func maxInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// LargestWindow returns the longest indicator lookback
func (s Scoring) LargestWindow() int {
	largest := s.RSIPeriod + 1
	for _, w := range []int{s.EMAPeriod, s.VolumeWindow, s.BandPeriod + 1} {
		if w > largest {
			largest = w
		}
	}
	return largest
}

// Ranking holds bucket thresholds
type Ranking struct {
	StrongBuyMin    int  `yaml:"strong_buy_min" json:"strong_buy_min" default:"80" validate:"gte=0,lte=100"`
	BuyMin          int  `yaml:"buy_min" json:"buy_min" default:"65" validate:"gte=0,lte=100"`
	WatchlistMin    int  `yaml:"watchlist_min" json:"watchlist_min" default:"50" validate:"gte=0,lte=100"`
	CooldownEnabled bool `yaml:"cooldown_enabled" json:"cooldown_enabled" default:"true"`
}

// Portfolio holds exposure caps and the bucket size table
type Portfolio struct {
	GlobalCap    float64     `yaml:"global_cap" json:"global_cap" default:"0.90" validate:"gt=0,lte=1"`
	SectorCap    float64     `yaml:"sector_cap" json:"sector_cap" default:"0.50" validate:"gt=0,lte=1"`
	MaxPositions int         `yaml:"max_positions" json:"max_positions" default:"5" validate:"min=1"`
	Sizes        BucketSizes `yaml:"sizes" json:"sizes"`
	RiskOffScale float64     `yaml:"risk_off_scale" json:"risk_off_scale" default:"0.5" validate:"gt=0,lte=1"`
}

// BucketSizes maps each deployable bucket to its size fraction
type BucketSizes struct {
	StrongBuy float64 `yaml:"strong_buy" json:"strong_buy" default:"0.25" validate:"gt=0,lte=1"`
	Buy       float64 `yaml:"buy" json:"buy" default:"0.15" validate:"gt=0,lte=1"`
	Watchlist float64 `yaml:"watchlist" json:"watchlist" default:"0.05" validate:"gt=0,lte=1"`
}

// Sentiment holds the news gates
type Sentiment struct {
	MaxNoise      float64  `yaml:"max_noise" json:"max_noise" default:"0.6" validate:"gte=0,lte=1"`
	RiskOffBelow  float64  `yaml:"risk_off_below" json:"risk_off_below" default:"-0.2" validate:"gte=-1,lte=1"`
	MaxHeadlines  int      `yaml:"max_headlines" json:"max_headlines" default:"3" validate:"min=1"`
	LookbackHours int      `yaml:"lookback_hours" json:"lookback_hours" default:"12" validate:"min=1"`
	Keywords      []string `yaml:"keywords" json:"keywords" default:"[\"nifty\",\"sensex\",\"market\",\"stocks\",\"equity\",\"rbi\",\"inflation\",\"gdp\",\"rates\",\"economy\"]"`
}

// Drift holds the exit rule
type Drift struct {
	ExitThreshold int `yaml:"exit_threshold" json:"exit_threshold" default:"15" validate:"min=1"`
}

// Audit tunes the pick accuracy tracker
type Audit struct {
	SuccessThresholdPct float64 `yaml:"success_threshold_pct" json:"success_threshold_pct" default:"0.20" validate:"gte=0"`
	HistoryLimit        int     `yaml:"history_limit" json:"history_limit" default:"100" validate:"min=1"`
	RollingWindow       int     `yaml:"rolling_window" json:"rolling_window" default:"30" validate:"min=1"`
	RollingMinOutcomes  int     `yaml:"rolling_min_outcomes" json:"rolling_min_outcomes" default:"5" validate:"min=1"`
}

// Market configures the benchmark regime and sector rotation views
type Market struct {
	Benchmark        string            `yaml:"benchmark" json:"benchmark" default:"^NSEI" validate:"required"`
	VolatilityIndex  string            `yaml:"volatility_index" json:"volatility_index" default:"^INDIAVIX"`
	RegimePeriod     int               `yaml:"regime_period" json:"regime_period" default:"14" validate:"min=2"`
	ADXTrending      float64           `yaml:"adx_trending" json:"adx_trending" default:"20" validate:"gt=0"`
	VolatileMult     float64           `yaml:"volatile_mult" json:"volatile_mult" default:"1.5" validate:"gt=0"`
	RotationLookback int               `yaml:"rotation_lookback" json:"rotation_lookback" default:"20" validate:"min=1"`
	SectorIndices    map[string]string `yaml:"sector_indices" json:"sector_indices" default:"{\"PSU\":\"^CNXPSUBANK\",\"INFRA\":\"^CNXINFRA\",\"IT\":\"^CNXIT\",\"BANK\":\"^NSEBANK\",\"FMCG\":\"^CNXFMCG\",\"AUTO\":\"^CNXAUTO\",\"METAL\":\"^CNXMETAL\",\"PHARMA\":\"^CNXPHARMA\"}"`
}
