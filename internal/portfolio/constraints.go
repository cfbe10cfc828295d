package portfolio

import (
	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
)

// Caps bounds the exposure the planner may take in one pass
// ⭐ SSOT: exposure caps are resolved here
type Caps struct {
	Global float64 `json:"global"` // total size fraction across the plan
	Sector float64 `json:"sector"` // size fraction per sector label
}

// DefaultCaps returns the configured caps without sentiment adjustment
func DefaultCaps(cfg strategyconfig.Portfolio) Caps {
	return Caps{Global: cfg.GlobalCap, Sector: cfg.SectorCap}
}

// EffectiveCaps scales the global cap by riskOffScale when market mood
// falls below riskOffBelow. The sector cap never exceeds the global cap.
func EffectiveCaps(base Caps, s contracts.Sentiment, riskOffBelow, riskOffScale float64) Caps {
	caps := base
	if s.Overall < riskOffBelow {
		caps.Global = base.Global * riskOffScale
	}
	if caps.Sector > caps.Global {
		caps.Sector = caps.Global
	}
	return caps
}
