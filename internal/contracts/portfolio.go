package contracts

import "time"

// AllocationEntry is one accepted position in the plan
type AllocationEntry struct {
	Symbol       string  `json:"symbol"`
	Bucket       Bucket  `json:"bucket"`
	SizeFraction float64 `json:"size_fraction"` // (0, 1]
	Score        int     `json:"score"`
	Sector       string  `json:"sector"`
	EntryPrice   float64 `json:"entry_price"`
}

// AllocationPlan is the ordered, capped list of positions for a run
// ⭐ SSOT: planner → state / drift monitor plan data
type AllocationPlan struct {
	Date      string            `json:"date"` // YYYY-MM-DD in the configured timezone
	RunID     string            `json:"run_id"`
	CreatedAt time.Time         `json:"created_at"`
	Regime    MarketRegime      `json:"regime"`
	RiskOn    bool              `json:"risk_on"`
	Entries   []AllocationEntry `json:"entries"`
	GlobalCap float64           `json:"global_cap"`
	SectorCap float64           `json:"sector_cap"`
}

// Count returns the number of positions
func (p *AllocationPlan) Count() int {
	return len(p.Entries)
}

// IsEmpty reports a plan with no deployable opportunity
func (p *AllocationPlan) IsEmpty() bool {
	return len(p.Entries) == 0
}

// TotalExposure returns the sum of all size fractions
func (p *AllocationPlan) TotalExposure() float64 {
	total := 0.0
	for _, e := range p.Entries {
		total += e.SizeFraction
	}
	return total
}

// SectorExposure returns the summed size fraction per sector
func (p *AllocationPlan) SectorExposure() map[string]float64 {
	out := make(map[string]float64)
	for _, e := range p.Entries {
		out[e.Sector] += e.SizeFraction
	}
	return out
}

// Scores returns symbol → score at selection time
func (p *AllocationPlan) Scores() map[string]int {
	out := make(map[string]int, len(p.Entries))
	for _, e := range p.Entries {
		out[e.Symbol] = e.Score
	}
	return out
}

// Symbols returns the plan symbols in plan order
func (p *AllocationPlan) Symbols() []string {
	out := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Symbol
	}
	return out
}

// Get finds an entry by symbol
func (p *AllocationPlan) Get(symbol string) (*AllocationEntry, bool) {
	for i := range p.Entries {
		if p.Entries[i].Symbol == symbol {
			return &p.Entries[i], true
		}
	}
	return nil, false
}
