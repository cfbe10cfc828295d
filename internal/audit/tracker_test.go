package audit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
)

func defaultAudit() strategyconfig.Audit {
	return strategyconfig.Default().Audit
}

func TestGrade(t *testing.T) {
	tr := NewTracker(defaultAudit(), nil)

	tests := []struct {
		delta float64
		want  contracts.Outcome
	}{
		{0.20, contracts.OutcomeCorrect},
		{3.5, contracts.OutcomeCorrect},
		{0.19, contracts.OutcomeNoEdge},
		{0, contracts.OutcomeNoEdge},
		{-0.19, contracts.OutcomeNoEdge},
		{-0.20, contracts.OutcomeIncorrect},
		{-4, contracts.OutcomeIncorrect},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.delta), func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Grade(tt.delta))
		})
	}
}

func TestEvaluate(t *testing.T) {
	tr := NewTracker(defaultAudit(), nil)
	plan := contracts.AllocationPlan{
		Date:   "2024-05-02",
		Regime: contracts.RegimeTrending,
		Entries: []contracts.AllocationEntry{
			{Symbol: "UP", Bucket: contracts.BucketBuy, Score: 70, EntryPrice: 100},
			{Symbol: "DOWN", Bucket: contracts.BucketWatchlist, Score: 55, EntryPrice: 200},
			{Symbol: "FLAT", Bucket: contracts.BucketBuy, Score: 66, EntryPrice: 50},
			{Symbol: "NOCLOSE", Bucket: contracts.BucketBuy, Score: 66, EntryPrice: 50},
			{Symbol: "NOENTRY", Bucket: contracts.BucketBuy, Score: 66},
		},
	}
	closes := map[string]float64{"UP": 101, "DOWN": 196, "FLAT": 50.05, "NOENTRY": 10}

	got := tr.Evaluate(plan, closes)
	require.Len(t, got, 3)

	assert.Equal(t, "UP", got[0].Symbol)
	assert.Equal(t, 1.0, got[0].DeltaPct)
	assert.Equal(t, contracts.OutcomeCorrect, got[0].Result)
	assert.Equal(t, contracts.RegimeTrending, got[0].Regime)
	assert.Equal(t, "2024-05-02", got[0].Date)

	assert.Equal(t, -2.0, got[1].DeltaPct)
	assert.Equal(t, contracts.OutcomeIncorrect, got[1].Result)

	assert.Equal(t, 0.1, got[2].DeltaPct)
	assert.Equal(t, contracts.OutcomeNoEdge, got[2].Result)
}

func TestAppend_CapsHistory(t *testing.T) {
	cfg := defaultAudit()
	cfg.HistoryLimit = 3
	tr := NewTracker(cfg, nil)

	history := []contracts.PickOutcome{{Symbol: "A"}, {Symbol: "B"}}
	got := tr.Append(history, []contracts.PickOutcome{{Symbol: "C"}, {Symbol: "D"}})

	require.Len(t, got, 3)
	assert.Equal(t, "B", got[0].Symbol)
	assert.Equal(t, "D", got[2].Symbol)
	assert.Len(t, history, 2)
}
