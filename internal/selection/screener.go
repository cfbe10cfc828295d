package selection

import (
	"sort"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// Screener applies the overstretch cooldown before ranking
// ⭐ SSOT: hysteresis on remembered trend health lives here
//
// A symbol remembered as OVERSTRETCHED stays out until it is observed
// HEALTHY again; from that run on it is eligible like any other symbol.
type Screener struct {
	enabled bool
	logger  *logger.Logger
}

// NewScreener creates a new screener
func NewScreener(enabled bool, log *logger.Logger) *Screener {
	if log == nil {
		log = logger.Nop()
	}
	return &Screener{enabled: enabled, logger: log}
}

// Screen splits results into eligible ones and those still cooling down
func (s *Screener) Screen(results []contracts.SignalResult, memory contracts.SymbolHealthMemory) (kept []contracts.SignalResult, cooling []string) {
	kept = make([]contracts.SignalResult, 0, len(results))
	for _, res := range results {
		if s.enabled && inCooldown(memory[res.Symbol], res.Health) {
			cooling = append(cooling, res.Symbol)
			continue
		}
		kept = append(kept, res)
	}

	if len(cooling) > 0 {
		sort.Strings(cooling)
		s.logger.WithFields(map[string]interface{}{
			"count":   len(cooling),
			"symbols": cooling,
		}).Info("Symbols held out by cooldown")
	}
	return kept, cooling
}

func inCooldown(previous, current contracts.TrendHealth) bool {
	return previous == contracts.HealthOverstretched && current != contracts.HealthHealthy
}

// NextMemory returns the health memory to persist after a run.
// OVERSTRETCHED is latched until HEALTHY is observed; otherwise the
// current health is recorded. Symbols without a result keep their entry.
func NextMemory(prev contracts.SymbolHealthMemory, results []contracts.SignalResult) contracts.SymbolHealthMemory {
	next := make(contracts.SymbolHealthMemory, len(prev)+len(results))
	for sym, h := range prev {
		next[sym] = h
	}
	for _, res := range results {
		if inCooldown(prev[res.Symbol], res.Health) {
			next[res.Symbol] = contracts.HealthOverstretched
			continue
		}
		next[res.Symbol] = res.Health
	}
	return next
}
