package audit

import (
	"math"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// Tracker grades yesterday's picks against today's closes
// ⭐ SSOT: pick grading lives here only
type Tracker struct {
	config strategyconfig.Audit
	logger *logger.Logger
}

// NewTracker creates a pick tracker
func NewTracker(config strategyconfig.Audit, log *logger.Logger) *Tracker {
	if log == nil {
		log = logger.Nop()
	}
	return &Tracker{config: config, logger: log}
}

// Grade classifies a percentage move
func (t *Tracker) Grade(deltaPct float64) contracts.Outcome {
	switch {
	case deltaPct >= t.config.SuccessThresholdPct:
		return contracts.OutcomeCorrect
	case deltaPct <= -t.config.SuccessThresholdPct:
		return contracts.OutcomeIncorrect
	default:
		return contracts.OutcomeNoEdge
	}
}

// Evaluate grades each plan entry that has an entry price and a close
// in closes. Results follow plan order.
func (t *Tracker) Evaluate(plan contracts.AllocationPlan, closes map[string]float64) []contracts.PickOutcome {
	outcomes := make([]contracts.PickOutcome, 0, plan.Count())
	skipped := 0

	for _, e := range plan.Entries {
		exit, ok := closes[e.Symbol]
		if !ok || e.EntryPrice <= 0 || exit <= 0 {
			skipped++
			continue
		}

		delta := math.Round((exit-e.EntryPrice)/e.EntryPrice*100*100) / 100
		outcomes = append(outcomes, contracts.PickOutcome{
			Date:       plan.Date,
			Symbol:     e.Symbol,
			Bucket:     e.Bucket,
			Score:      e.Score,
			Regime:     plan.Regime,
			EntryPrice: e.EntryPrice,
			ExitPrice:  exit,
			DeltaPct:   delta,
			Result:     t.Grade(delta),
		})
	}

	t.logger.WithFields(map[string]interface{}{
		"plan_date": plan.Date,
		"graded":    len(outcomes),
		"skipped":   skipped,
	}).Info("Picks evaluated")

	return outcomes
}

// Append adds outcomes to history and keeps only the newest HistoryLimit rows
func (t *Tracker) Append(history, outcomes []contracts.PickOutcome) []contracts.PickOutcome {
	merged := make([]contracts.PickOutcome, 0, len(history)+len(outcomes))
	merged = append(merged, history...)
	merged = append(merged, outcomes...)

	if limit := t.config.HistoryLimit; limit > 0 && len(merged) > limit {
		merged = merged[len(merged)-limit:]
	}
	return merged
}
