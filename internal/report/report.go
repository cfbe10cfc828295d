package report

import (
	"fmt"
	"strings"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
)

// Disclaimer closes every market message
const Disclaimer = "⚠️ Not SEBI Advice"

// Thresholds used by the news block
const (
	MoodThreshold       = 0.15
	OpinionSubjectivity = 0.6
	HeadlineRunes       = 75
)

// MorningInput is everything the morning report prints
type MorningInput struct {
	Date       string
	Market     contracts.MarketSnapshot
	Sentiment  contracts.Sentiment
	RiskOn     bool
	CapsScaled bool // global cap reduced by negative news
	Candidates []contracts.Candidate
	Plan       contracts.AllocationPlan
	Requested  int
	Absent     int
}

// Morning renders the morning report
func Morning(in MorningInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🏛️ Morning Market Report (%s)\n", in.Date)
	b.WriteString(marketBlock(in.Market))
	b.WriteString("\n")
	b.WriteString(NewsBlock(in.Sentiment))
	b.WriteString("\n\n")

	if rot := RotationBlock(in.Market.Rotation); rot != "" {
		b.WriteString(rot)
		b.WriteString("\n\n")
	}

	if !in.RiskOn {
		b.WriteString("🛡️ Risk-off: noisy news, STRONG_BUY disabled\n")
	}
	if in.CapsScaled {
		fmt.Fprintf(&b, "🛡️ Negative news: exposure capped at %s\n", pct(in.Plan.GlobalCap))
	}
	if !in.RiskOn || in.CapsScaled {
		b.WriteString("\n")
	}

	if in.Plan.IsEmpty() {
		b.WriteString("No deployable opportunities today\n")
	} else {
		health := make(map[string]contracts.TrendHealth, len(in.Candidates))
		for _, c := range in.Candidates {
			health[c.Symbol] = c.Health
		}

		b.WriteString("🎯 Picks\n")
		for i, e := range in.Plan.Entries {
			fmt.Fprintf(&b, "%d. %s | %s | Score %d | %s | Size %s | %s\n",
				i+1, e.Symbol, e.Bucket, e.Score, health[e.Symbol], pct(e.SizeFraction), e.Sector)
		}
		fmt.Fprintf(&b, "\nExposure: %s (cap %s, sector cap %s)\n",
			pct(in.Plan.TotalExposure()), pct(in.Plan.GlobalCap), pct(in.Plan.SectorCap))
	}

	if in.Requested > 0 {
		fmt.Fprintf(&b, "Scanned: %d symbols, %d without data\n", in.Requested, in.Absent)
	}

	b.WriteString("\n")
	b.WriteString(Disclaimer)
	return b.String()
}

func marketBlock(m contracts.MarketSnapshot) string {
	if !m.Available {
		return fmt.Sprintf("Benchmark %s: data unavailable\nRegime: %s\n", m.Benchmark, contracts.RegimeUnknown)
	}
	return fmt.Sprintf("Index RSI: %.2f\nVIX: %.2f\nVolume Confirmed: %t\nRegime: %s\n",
		m.IndexRSI, m.VIX, m.VolumeConfirmed, m.Regime)
}

// RotationBlock lists sector returns relative to the benchmark
func RotationBlock(moves []contracts.SectorMove) string {
	if len(moves) == 0 {
		return ""
	}
	lines := []string{"🔄 Sector Rotation"}
	for _, m := range moves {
		if !m.Available {
			lines = append(lines, fmt.Sprintf("• %s: n/a", m.Sector))
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s: %+.2f%%", m.Sector, m.RelativePct))
	}
	return strings.Join(lines, "\n")
}

// NewsBlock renders mood, tone and the top headlines
func NewsBlock(s contracts.Sentiment) string {
	if len(s.Headlines) == 0 {
		return "📰 News: Neutral (No relevant macro headlines)"
	}

	mood := "🟡 Neutral"
	switch {
	case s.Overall > MoodThreshold:
		mood = "🟢 Positive"
	case s.Overall < -MoodThreshold:
		mood = "🔴 Negative"
	}

	tone := "📘 Factual"
	if s.Noise > OpinionSubjectivity {
		tone = "🔥 Opinion-Heavy"
	}

	lines := []string{
		fmt.Sprintf("📰 News Sentiment: %+.2f (%s)", s.Overall, mood),
		fmt.Sprintf("🧠 News Tone: %s (Subjectivity: %.2f)", tone, s.Noise),
	}
	for _, h := range s.Headlines {
		lines = append(lines, "• "+Truncate(h, HeadlineRunes))
	}
	return strings.Join(lines, "\n")
}

// EOD renders the end-of-day review
func EOD(date string, plan contracts.AllocationPlan, exits []contracts.ExitEvent, outcomes []contracts.PickOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌆 EOD Review (%s)\n", date)

	if plan.IsEmpty() {
		b.WriteString("No open picks to review\n")
	} else {
		fmt.Fprintf(&b, "Reviewed %d picks from %s\n", plan.Count(), plan.Date)
	}

	if len(exits) == 0 {
		b.WriteString("\n✅ No exits triggered\n")
	} else {
		b.WriteString("\n🚪 Exits\n")
		for _, e := range exits {
			fmt.Fprintf(&b, "• %s %s (%s)\n", e.Action, e.Symbol, e.Detail())
		}
	}

	if len(outcomes) > 0 {
		b.WriteString("\n📊 Outcomes\n")
		for _, o := range outcomes {
			fmt.Fprintf(&b, "• %s: %+.2f%% %s\n", o.Symbol, o.DeltaPct, o.Result)
		}
	}

	b.WriteString("\n")
	b.WriteString(Disclaimer)
	return b.String()
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func pct(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
