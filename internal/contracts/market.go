package contracts

// MarketRegime labels the benchmark's behaviour
type MarketRegime string

const (
	RegimeTrending MarketRegime = "TRENDING"
	RegimeVolatile MarketRegime = "VOLATILE"
	RegimeRange    MarketRegime = "RANGE"
	RegimeUnknown  MarketRegime = "UNKNOWN"
)

// SectorMove is one sector index's return relative to the benchmark
type SectorMove struct {
	Sector      string  `json:"sector"`
	RelativePct float64 `json:"relative_pct"`
	Available   bool    `json:"available"`
}

// MarketSnapshot is the benchmark context printed with each morning report
type MarketSnapshot struct {
	Benchmark       string       `json:"benchmark"`
	Regime          MarketRegime `json:"regime"`
	IndexRSI        float64      `json:"index_rsi"`
	IndexClose      float64      `json:"index_close"`
	VolumeConfirmed bool         `json:"volume_confirmed"`
	VIX             float64      `json:"vix"`
	Rotation        []SectorMove `json:"rotation"`
	Available       bool         `json:"available"`
}
