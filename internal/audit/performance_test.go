package audit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
)

func outcome(date string, bucket contracts.Bucket, score int, regime contracts.MarketRegime, result contracts.Outcome) contracts.PickOutcome {
	return contracts.PickOutcome{Date: date, Symbol: "X", Bucket: bucket, Score: score, Regime: regime, Result: result}
}

func TestSnapshot_Empty(t *testing.T) {
	assert.Equal(t, "📈 Performance Snapshot\nNo data yet.", Snapshot(nil, defaultAudit()))
}

func TestSnapshot_OnlyNoEdge(t *testing.T) {
	history := []contracts.PickOutcome{
		outcome("2024-05-01", contracts.BucketBuy, 70, contracts.RegimeRange, contracts.OutcomeNoEdge),
	}
	assert.Equal(t, "📈 Performance Snapshot\nNo valid outcomes yet.", Snapshot(history, defaultAudit()))
}

func TestSummarize(t *testing.T) {
	history := []contracts.PickOutcome{
		outcome("2024-05-01", contracts.BucketBuy, 70, contracts.RegimeTrending, contracts.OutcomeCorrect),
		outcome("2024-05-01", contracts.BucketBuy, 66, contracts.RegimeTrending, contracts.OutcomeIncorrect),
		outcome("2024-05-02", contracts.BucketWatchlist, 55, contracts.RegimeRange, contracts.OutcomeCorrect),
		outcome("2024-05-02", contracts.BucketWatchlist, 52, contracts.RegimeRange, contracts.OutcomeNoEdge),
	}

	s := Summarize(history, defaultAudit())

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Graded)
	assert.Equal(t, 66.7, s.Overall)

	require.Len(t, s.ByBucket, 2)
	assert.Equal(t, Stat{Label: "BUY", Accuracy: 50, Trades: 2}, s.ByBucket[0])
	assert.Equal(t, Stat{Label: "WATCHLIST", Accuracy: 100, Trades: 1}, s.ByBucket[1])

	require.Len(t, s.ByRegime, 2)
	assert.Equal(t, "TRENDING", s.ByRegime[0].Label)
	assert.Equal(t, "RANGE", s.ByRegime[1].Label)

	require.Len(t, s.ByScore, 2)
	assert.Equal(t, "50-64", s.ByScore[0].Label)
	assert.Equal(t, "65-79", s.ByScore[1].Label)

	assert.Nil(t, s.Rolling, "fewer than five graded outcomes")
}

func TestSummarize_Rolling(t *testing.T) {
	cfg := defaultAudit()
	var history []contracts.PickOutcome
	// 40 graded outcomes: first 10 wrong, last 30 right
	for i := 0; i < 40; i++ {
		result := contracts.OutcomeCorrect
		if i < 10 {
			result = contracts.OutcomeIncorrect
		}
		history = append(history, outcome(fmt.Sprintf("2024-03-%02d", i%28+1), contracts.BucketBuy, 70, contracts.RegimeRange, result))
	}
	// dates are not monotonic in insertion order; rolling uses date order
	s := Summarize(history, cfg)

	require.NotNil(t, s.Rolling)
	assert.Equal(t, 30, s.Rolling.Trades)
	assert.Equal(t, 75.0, s.Overall)
}

func TestSummarize_HistoryLimit(t *testing.T) {
	cfg := defaultAudit()
	cfg.HistoryLimit = 2
	history := []contracts.PickOutcome{
		outcome("2024-05-01", contracts.BucketBuy, 70, contracts.RegimeRange, contracts.OutcomeIncorrect),
		outcome("2024-05-02", contracts.BucketBuy, 70, contracts.RegimeRange, contracts.OutcomeCorrect),
		outcome("2024-05-03", contracts.BucketBuy, 70, contracts.RegimeRange, contracts.OutcomeCorrect),
	}

	s := Summarize(history, cfg)
	assert.Equal(t, 2, s.Graded)
	assert.Equal(t, 100.0, s.Overall)
}

func TestSnapshot_Render(t *testing.T) {
	var history []contracts.PickOutcome
	for i := 0; i < 5; i++ {
		history = append(history, outcome(fmt.Sprintf("2024-05-0%d", i+1), contracts.BucketStrongBuy, 85, contracts.RegimeTrending, contracts.OutcomeCorrect))
	}

	text := Snapshot(history, defaultAudit())

	assert.Contains(t, text, "📈 Performance Snapshot\nOverall Accuracy: 100.0% (Picks: 5)")
	assert.Contains(t, text, "📌 Win-Rate by Bucket\nSTRONG_BUY: 100.0% (Trades: 5)")
	assert.Contains(t, text, "📌 Win-Rate by Regime\nTRENDING: 100.0% (Trades: 5)")
	assert.Contains(t, text, "📌 Win-Rate by Score\n80-100: 100.0% (Trades: 5)")
	assert.Contains(t, text, "📉 Rolling 30-Pick Accuracy: 100.0%")
}
