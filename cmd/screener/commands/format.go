package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/brain"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/report"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/s2_signals"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/config"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// Every command prints through these so the output stays uniform
// ═══════════════════════════════════════════════════════════

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

// PrintRunResult prints the outcome of one pipeline job
func PrintRunResult(w io.Writer, r *brain.RunResult) {
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s run %s\n", r.Job, r.Date)
	PrintSeparator(w)

	if r.Skipped {
		fmt.Fprintf(w, "⏭️  Already done today, nothing to do\n")
		return
	}

	fmt.Fprintf(w, "  Run ID    : %s\n", r.RunID)
	fmt.Fprintf(w, "  Stages    : %s\n", strings.Join(r.Stages, " → "))
	if r.Plan != nil {
		fmt.Fprintf(w, "  Positions : %d (exposure %.0f%%)\n", r.Plan.Count(), r.Plan.TotalExposure()*100)
	}
	if len(r.Exits) > 0 {
		fmt.Fprintf(w, "  Exits     : %d\n", len(r.Exits))
	}
	if len(r.Outcomes) > 0 {
		fmt.Fprintf(w, "  Graded    : %d\n", len(r.Outcomes))
	}
	fmt.Fprintf(w, "  Sent      : %t\n", r.Sent)
	if r.Degraded {
		fmt.Fprintf(w, "⚠️  State writes failed, the job may run again today\n")
	}
	PrintSeparator(w)
	fmt.Fprintln(w, r.Report)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "✅ %s completed in %.2fs\n", r.Job, r.Duration.Seconds())
}

// PrintScores prints scored symbols, best first, then the absent ones
func PrintScores(w io.Writer, r *s2_signals.BuildResult) {
	results := make([]contracts.SignalResult, len(r.Results))
	copy(results, r.Results)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	fmt.Fprintf(w, "%-16s %5s  %-14s %6s %6s %8s  %s\n", "SYMBOL", "SCORE", "HEALTH", "RSI", "VOL", "STRETCH", "FLAGS")
	for _, s := range results {
		fmt.Fprintf(w, "%-16s %5d  %-14s %6.1f %6.2f %7.1f%%  %s\n",
			s.Symbol, s.Score, s.Health, s.RSI, s.VolumeRatio, s.Stretch, flags(s))
	}

	if len(r.Absent) > 0 {
		symbols := make([]string, 0, len(r.Absent))
		for sym := range r.Absent {
			symbols = append(symbols, sym)
		}
		sort.Strings(symbols)

		PrintSeparator(w)
		for _, sym := range symbols {
			fmt.Fprintf(w, "⚠️  %s: %s\n", sym, r.Absent[sym])
		}
	}
}

func flags(s contracts.SignalResult) string {
	var out []string
	if s.IsSqueezed {
		out = append(out, "squeeze")
	}
	if s.IsBreakout {
		out = append(out, "breakout")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}

// PrintState prints the run state sorted by key; keys marked today get a check
func PrintState(w io.Writer, today string, state contracts.RunState) {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "Today: %s\n", today)
	PrintSeparator(w)
	if len(keys) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for _, k := range keys {
		mark := " "
		if state[k] == today {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s %-24s %s\n", mark, k, report.Truncate(state[k], 60))
	}
}

// PrintSettings prints runtime settings with secrets masked
func PrintSettings(w io.Writer, cfg *config.Config) {
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  Env       : %s\n", cfg.Env)
	fmt.Fprintf(w, "  Timezone  : %s\n", cfg.Timezone)
	fmt.Fprintf(w, "  Port      : %s\n", cfg.Port)
	fmt.Fprintf(w, "  Morning   : %s\n", cfg.MorningSchedule)
	fmt.Fprintf(w, "  EOD       : %s\n", cfg.EODSchedule)
	fmt.Fprintf(w, "  State     : %s\n", cfg.State.Backend)
	fmt.Fprintf(w, "  Redis     : %t\n", cfg.Redis.Enabled)
	fmt.Fprintf(w, "  Telegram  : %t (token %s, chat %s)\n", cfg.Telegram.Enabled, Mask(cfg.Telegram.Token), Mask(cfg.Telegram.ChatID))
	fmt.Fprintf(w, "  GNews key : %s\n", Mask(cfg.News.GNewsAPIKey))
	fmt.Fprintf(w, "  Universe  : %s\n", cfg.Market.UniverseURL)
}

// Mask hides all but the last four characters
func Mask(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	r := []rune(secret)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}
