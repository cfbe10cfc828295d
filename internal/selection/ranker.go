package selection

import (
	"sort"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// Ranker assigns buckets and orders candidates
// ⭐ SSOT: bucket policy lives here
type Ranker struct {
	config   strategyconfig.Ranking
	screener *Screener
	logger   *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(config strategyconfig.Ranking, log *logger.Logger) *Ranker {
	if log == nil {
		log = logger.Nop()
	}
	return &Ranker{
		config:   config,
		screener: NewScreener(config.CooldownEnabled, log),
		logger:   log,
	}
}

// Rank buckets every eligible result, drops AVOID and sorts by
// score descending, then symbol ascending.
// riskOn=false caps the bucket at BUY.
func (r *Ranker) Rank(
	results []contracts.SignalResult,
	sectors map[string]string,
	riskOn bool,
	memory contracts.SymbolHealthMemory,
) []contracts.Candidate {
	eligible, _ := r.screener.Screen(results, memory)

	candidates := make([]contracts.Candidate, 0, len(eligible))
	avoided := 0
	for _, res := range eligible {
		bucket := r.Bucket(res, riskOn)
		if !bucket.Deployable() {
			avoided++
			continue
		}

		sector, ok := sectors[res.Symbol]
		if !ok || sector == "" {
			sector = contracts.UnknownSector
		}

		candidates = append(candidates, contracts.Candidate{
			SignalResult: res,
			Bucket:       bucket,
			Sector:       sector,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})

	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	fields := map[string]interface{}{
		"scored":     len(results),
		"eligible":   len(eligible),
		"candidates": len(candidates),
		"avoided":    avoided,
		"risk_on":    riskOn,
	}
	if len(candidates) > 0 {
		fields["top_symbol"] = candidates[0].Symbol
		fields["top_score"] = candidates[0].Score
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return candidates
}

// Bucket maps one result to its conviction tier
func (r *Ranker) Bucket(res contracts.SignalResult, riskOn bool) contracts.Bucket {
	switch {
	case res.Score >= r.config.StrongBuyMin && res.IsBreakout && !res.IsSqueezed && riskOn:
		return contracts.BucketStrongBuy
	case res.Score >= r.config.BuyMin:
		return contracts.BucketBuy
	case res.Score >= r.config.WatchlistMin:
		return contracts.BucketWatchlist
	default:
		return contracts.BucketAvoid
	}
}
