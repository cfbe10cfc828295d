package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// Constructor turns ranked candidates into a capped allocation plan
// ⭐ SSOT: allocation logic lives here only
type Constructor struct {
	config strategyconfig.Portfolio
	logger *logger.Logger
}

// NewConstructor creates a new allocation planner
func NewConstructor(config strategyconfig.Portfolio, log *logger.Logger) *Constructor {
	if log == nil {
		log = logger.Nop()
	}
	return &Constructor{config: config, logger: log}
}

// SizeFor returns the position size for a bucket (0 for AVOID)
func (c *Constructor) SizeFor(b contracts.Bucket) float64 {
	switch b {
	case contracts.BucketStrongBuy:
		return c.config.Sizes.StrongBuy
	case contracts.BucketBuy:
		return c.config.Sizes.Buy
	case contracts.BucketWatchlist:
		return c.config.Sizes.Watchlist
	default:
		return 0
	}
}

// Construct walks candidates once in the given order.
// A candidate is skipped when it would push the global or its sector
// total above the cap; the walk stops once MaxPositions are accepted.
// Candidates are expected in ranker order.
func (c *Constructor) Construct(candidates []contracts.Candidate, caps Caps) contracts.AllocationPlan {
	plan := contracts.AllocationPlan{
		Entries:   make([]contracts.AllocationEntry, 0),
		GlobalCap: caps.Global,
		SectorCap: caps.Sector,
	}

	globalCap := decimal.NewFromFloat(caps.Global)
	sectorCap := decimal.NewFromFloat(caps.Sector)
	total := decimal.Zero
	sectors := make(map[string]decimal.Decimal)
	skipped := 0

	for _, cand := range candidates {
		if len(plan.Entries) >= c.config.MaxPositions {
			break
		}

		size := c.SizeFor(cand.Bucket)
		if size <= 0 {
			continue
		}
		sz := decimal.NewFromFloat(size)

		nextTotal := total.Add(sz)
		nextSector := sectors[cand.Sector].Add(sz)
		if nextTotal.GreaterThan(globalCap) || nextSector.GreaterThan(sectorCap) {
			skipped++
			c.logger.WithFields(map[string]interface{}{
				"symbol": cand.Symbol,
				"sector": cand.Sector,
				"size":   size,
			}).Debug("Candidate skipped by exposure cap")
			continue
		}

		total = nextTotal
		sectors[cand.Sector] = nextSector
		plan.Entries = append(plan.Entries, contracts.AllocationEntry{
			Symbol:       cand.Symbol,
			Bucket:       cand.Bucket,
			SizeFraction: size,
			Score:        cand.Score,
			Sector:       cand.Sector,
			EntryPrice:   cand.Close,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"positions":  len(plan.Entries),
		"exposure":   total.String(),
		"skipped":    skipped,
		"global_cap": caps.Global,
		"sector_cap": caps.Sector,
	}).Info("Allocation plan constructed")

	return plan
}

// Exposure sums entry sizes exactly
func Exposure(entries []contracts.AllocationEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.SizeFraction))
	}
	return total
}
