package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
)

func defaultRanking() strategyconfig.Ranking {
	return strategyconfig.Default().Ranking
}

func result(symbol string, score int, breakout bool) contracts.SignalResult {
	return contracts.SignalResult{
		Symbol:      symbol,
		Score:       score,
		Health:      contracts.HealthHealthy,
		VolumeRatio: 1,
		IsBreakout:  breakout,
	}
}

func TestRanker_Bucket(t *testing.T) {
	r := NewRanker(defaultRanking(), nil)

	tests := []struct {
		name   string
		res    contracts.SignalResult
		riskOn bool
		want   contracts.Bucket
	}{
		{"strong buy", result("A", 85, true), true, contracts.BucketStrongBuy},
		{"strong at threshold", result("A", 80, true), true, contracts.BucketStrongBuy},
		{"no breakout caps at buy", result("A", 90, false), true, contracts.BucketBuy},
		{"squeezed caps at buy", contracts.SignalResult{Symbol: "A", Score: 90, IsBreakout: true, IsSqueezed: true}, true, contracts.BucketBuy},
		{"risk off caps at buy", result("A", 95, true), false, contracts.BucketBuy},
		{"buy", result("A", 65, false), true, contracts.BucketBuy},
		{"watchlist", result("A", 64, true), true, contracts.BucketWatchlist},
		{"watchlist floor", result("A", 50, false), true, contracts.BucketWatchlist},
		{"avoid", result("A", 49, true), true, contracts.BucketAvoid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Bucket(tt.res, tt.riskOn))
		})
	}
}

func TestRanker_BucketMonotonic(t *testing.T) {
	r := NewRanker(defaultRanking(), nil)

	for _, riskOn := range []bool{true, false} {
		for _, breakout := range []bool{true, false} {
			for _, squeezed := range []bool{true, false} {
				for a := 0; a <= 100; a++ {
					for b := 0; b < a; b++ {
						ra := contracts.SignalResult{Score: a, IsBreakout: breakout, IsSqueezed: squeezed}
						rb := contracts.SignalResult{Score: b, IsBreakout: breakout, IsSqueezed: squeezed}
						if r.Bucket(ra, riskOn).Rank() < r.Bucket(rb, riskOn).Rank() {
							t.Fatalf("score %d ranked below %d (riskOn=%v breakout=%v squeezed=%v)",
								a, b, riskOn, breakout, squeezed)
						}
					}
				}
			}
		}
	}
}

func TestRanker_RankOrderAndSectors(t *testing.T) {
	r := NewRanker(defaultRanking(), nil)

	results := []contracts.SignalResult{
		result("ZZZ", 70, false),
		result("BBB", 85, true),
		result("AAA", 70, false),
		result("LOW", 20, false),
		result("CCC", 55, false),
	}
	sectors := map[string]string{"ZZZ": "IT", "BBB": "BANK", "AAA": "IT"}

	got := r.Rank(results, sectors, true, nil)
	require.Len(t, got, 4)

	assert.Equal(t, []string{"BBB", "AAA", "ZZZ", "CCC"}, symbols(got))
	assert.Equal(t, contracts.BucketStrongBuy, got[0].Bucket)
	assert.Equal(t, contracts.BucketBuy, got[1].Bucket)
	assert.Equal(t, contracts.BucketWatchlist, got[3].Bucket)
	assert.Equal(t, "BANK", got[0].Sector)
	assert.Equal(t, contracts.UnknownSector, got[3].Sector)
	for i, c := range got {
		assert.Equal(t, i+1, c.Rank)
	}
}

func TestRanker_RiskOffNeverStrongBuy(t *testing.T) {
	r := NewRanker(defaultRanking(), nil)
	got := r.Rank([]contracts.SignalResult{result("A", 100, true), result("B", 90, true)}, nil, false, nil)

	require.Len(t, got, 2)
	for _, c := range got {
		assert.Equal(t, contracts.BucketBuy, c.Bucket)
	}
}

func TestRanker_EmptyInput(t *testing.T) {
	r := NewRanker(defaultRanking(), nil)
	got := r.Rank(nil, nil, true, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRanker_InputOrderIndependent(t *testing.T) {
	r := NewRanker(defaultRanking(), nil)
	a := []contracts.SignalResult{result("B", 70, false), result("A", 70, false), result("C", 90, true)}
	b := []contracts.SignalResult{result("C", 90, true), result("A", 70, false), result("B", 70, false)}

	assert.Equal(t, r.Rank(a, nil, true, nil), r.Rank(b, nil, true, nil))
}

func TestRanker_Cooldown(t *testing.T) {
	memory := contracts.SymbolHealthMemory{
		"HOT":  contracts.HealthOverstretched,
		"BACK":  contracts.HealthOverstretched,
		"CALM": contracts.HealthHealthy,
	}

	hot := result("HOT", 70, false)
	hot.Health = contracts.HealthDeepPullback
	back := result("BACK", 70, false) // healthy again
	calm := result("CALM", 70, false)
	results := []contracts.SignalResult{hot, back, calm}

	on := NewRanker(defaultRanking(), nil)
	assert.Equal(t, []string{"BACK", "CALM"}, symbols(on.Rank(results, nil, true, memory)))

	cfg := defaultRanking()
	cfg.CooldownEnabled = false
	off := NewRanker(cfg, nil)
	assert.Equal(t, []string{"BACK", "CALM", "HOT"}, symbols(off.Rank(results, nil, true, memory)))
}

func symbols(cs []contracts.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Symbol
	}
	return out
}
