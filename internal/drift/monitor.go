package drift

import (
	"sort"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// Monitor compares a stored plan against fresh scores
// ⭐ SSOT: exit rule lives here only
type Monitor struct {
	threshold int
	logger    *logger.Logger
}

// NewMonitor creates a drift monitor
func NewMonitor(config strategyconfig.Drift, log *logger.Logger) *Monitor {
	if log == nil {
		log = logger.Nop()
	}
	return &Monitor{threshold: config.ExitThreshold, logger: log}
}

// Check emits an EXIT for each plan entry whose score fell by at least
// the threshold. Entries without a fresh score are skipped.
// Events are sorted by symbol.
func (m *Monitor) Check(date string, plan contracts.AllocationPlan, fresh []contracts.SignalResult) []contracts.ExitEvent {
	current := contracts.ResultsBySymbol(fresh)
	events := make([]contracts.ExitEvent, 0)
	var missing []string

	for _, entry := range plan.Entries {
		res, ok := current[entry.Symbol]
		if !ok {
			missing = append(missing, entry.Symbol)
			continue
		}
		if entry.Score-res.Score >= m.threshold {
			events = append(events, contracts.ExitEvent{
				Date:     date,
				Symbol:   entry.Symbol,
				Action:   contracts.ActionExit,
				OldScore: entry.Score,
				NewScore: res.Score,
			})
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Symbol < events[j].Symbol })

	if len(missing) > 0 {
		sort.Strings(missing)
		m.logger.WithFields(map[string]interface{}{
			"symbols": missing,
		}).Warn("No fresh score for planned symbols, drift check skipped")
	}

	m.logger.WithFields(map[string]interface{}{
		"date":      date,
		"planned":   plan.Count(),
		"exits":     len(events),
		"threshold": m.threshold,
	}).Info("Drift check completed")

	return events
}
