package contracts

// TrendHealth classifies how far price has run from its trend line
type TrendHealth string

const (
	HealthHealthy       TrendHealth = "HEALTHY"
	HealthOverstretched TrendHealth = "OVERSTRETCHED"
	HealthDeepPullback  TrendHealth = "DEEP_PULLBACK"
	HealthUnknown       TrendHealth = "UNKNOWN"
)

// Valid reports whether h is one of the known labels
func (h TrendHealth) Valid() bool {
	switch h {
	case HealthHealthy, HealthOverstretched, HealthDeepPullback, HealthUnknown:
		return true
	}
	return false
}

// SignalResult is the scored output for one symbol
// ⭐ SSOT: engine → ranker / drift monitor signal data
// Produced once per symbol per run and never modified afterwards.
type SignalResult struct {
	Symbol      string      `json:"symbol"`
	Score       int         `json:"score"` // 0 ~ 100
	Health      TrendHealth `json:"trend_health"`
	VolumeRatio float64     `json:"volume_ratio"`
	IsSqueezed  bool        `json:"is_squeezed"`
	IsBreakout  bool        `json:"is_breakout"`

	// Diagnostics for reports and the audit tracker
	RSI     float64 `json:"rsi"`
	Stretch float64 `json:"stretch_pct"`
	Close   float64 `json:"close"`
}

// ResultsBySymbol indexes results by symbol
func ResultsBySymbol(results []SignalResult) map[string]SignalResult {
	out := make(map[string]SignalResult, len(results))
	for _, r := range results {
		out[r.Symbol] = r
	}
	return out
}
