package audit

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
)

// Header opens every performance snapshot
const Header = "📈 Performance Snapshot"

// ScoreBand is an inclusive score range
type ScoreBand struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// ScoreBands follow the bucket thresholds
var ScoreBands = []ScoreBand{{50, 64}, {65, 79}, {80, 100}}

// Stat is the hit rate of one slice of outcomes
type Stat struct {
	Label    string  `json:"label"`
	Accuracy float64 `json:"accuracy"` // percent, one decimal
	Trades   int     `json:"trades"`
}

// Summary is the computed performance over graded outcomes
type Summary struct {
	Total    int     `json:"total"`  // rows considered
	Graded   int     `json:"graded"` // CORRECT + INCORRECT
	Overall  float64 `json:"overall"`
	ByBucket []Stat  `json:"by_bucket"`
	ByRegime []Stat  `json:"by_regime"`
	ByScore  []Stat  `json:"by_score"`
	Rolling  *Stat   `json:"rolling,omitempty"`
}

// Summarize computes accuracy over the newest HistoryLimit rows.
// NO_EDGE outcomes are not counted.
func Summarize(history []contracts.PickOutcome, cfg strategyconfig.Audit) Summary {
	if limit := cfg.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	graded := make([]contracts.PickOutcome, 0, len(history))
	for _, o := range history {
		if o.Graded() {
			graded = append(graded, o)
		}
	}

	s := Summary{Total: len(history), Graded: len(graded)}
	if len(graded) == 0 {
		return s
	}
	s.Overall = accuracy(graded)

	for _, b := range []contracts.Bucket{contracts.BucketStrongBuy, contracts.BucketBuy, contracts.BucketWatchlist} {
		if st, ok := stat(string(b), graded, func(o contracts.PickOutcome) bool { return o.Bucket == b }); ok {
			s.ByBucket = append(s.ByBucket, st)
		}
	}

	regimes := []contracts.MarketRegime{contracts.RegimeTrending, contracts.RegimeRange, contracts.RegimeVolatile, contracts.RegimeUnknown}
	for _, r := range regimes {
		if st, ok := stat(string(r), graded, func(o contracts.PickOutcome) bool { return o.Regime == r }); ok {
			s.ByRegime = append(s.ByRegime, st)
		}
	}

	for _, band := range ScoreBands {
		label := fmt.Sprintf("%d-%d", band.Low, band.High)
		if st, ok := stat(label, graded, func(o contracts.PickOutcome) bool {
			return o.Score >= band.Low && o.Score <= band.High
		}); ok {
			s.ByScore = append(s.ByScore, st)
		}
	}

	recent := make([]contracts.PickOutcome, len(graded))
	copy(recent, graded)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date < recent[j].Date })
	if len(recent) > cfg.RollingWindow {
		recent = recent[len(recent)-cfg.RollingWindow:]
	}
	if len(recent) >= cfg.RollingMinOutcomes {
		s.Rolling = &Stat{
			Label:    fmt.Sprintf("Rolling %d", cfg.RollingWindow),
			Accuracy: accuracy(recent),
			Trades:   len(recent),
		}
	}

	return s
}

// Snapshot renders the plain-text performance message
func Snapshot(history []contracts.PickOutcome, cfg strategyconfig.Audit) string {
	if len(history) == 0 {
		return Header + "\nNo data yet."
	}

	s := Summarize(history, cfg)
	if s.Graded == 0 {
		return Header + "\nNo valid outcomes yet."
	}

	var b strings.Builder
	b.WriteString(Header + "\n")
	fmt.Fprintf(&b, "Overall Accuracy: %.1f%% (Picks: %d)\n", s.Overall, s.Graded)

	writeSection(&b, "📌 Win-Rate by Bucket", s.ByBucket)
	writeSection(&b, "📌 Win-Rate by Regime", s.ByRegime)
	writeSection(&b, "📌 Win-Rate by Score", s.ByScore)

	if s.Rolling != nil {
		fmt.Fprintf(&b, "\n📉 Rolling %d-Pick Accuracy: %.1f%%", cfg.RollingWindow, s.Rolling.Accuracy)
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, title string, stats []Stat) {
	if len(stats) == 0 {
		return
	}
	b.WriteString("\n" + title + "\n")
	for _, st := range stats {
		fmt.Fprintf(b, "%s: %.1f%% (Trades: %d)\n", st.Label, st.Accuracy, st.Trades)
	}
}

func stat(label string, outcomes []contracts.PickOutcome, match func(contracts.PickOutcome) bool) (Stat, bool) {
	var sub []contracts.PickOutcome
	for _, o := range outcomes {
		if match(o) {
			sub = append(sub, o)
		}
	}
	if len(sub) == 0 {
		return Stat{}, false
	}
	return Stat{Label: label, Accuracy: accuracy(sub), Trades: len(sub)}, true
}

// accuracy is the CORRECT share in percent, rounded to one decimal
func accuracy(outcomes []contracts.PickOutcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	correct := 0
	for _, o := range outcomes {
		if o.Result == contracts.OutcomeCorrect {
			correct++
		}
	}
	pct := float64(correct) / float64(len(outcomes)) * 100
	return math.Round(pct*10) / 10
}
