package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/brain"
)

// runCmd runs one pipeline job in the foreground
var runCmd = &cobra.Command{
	Use:   "run [morning|eod]",
	Short: "Run one pipeline job now",
	Long: `Runs the morning or end-of-day job once, honouring the run state.

A job already done today is skipped; a report already sent today is
not sent again.

Example:
  go run ./cmd/screener run morning
  go run ./cmd/screener run eod`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{brain.JobMorning, brain.JobEOD},
	RunE:      runJob,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runJob(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.brain.Run(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("%s run failed: %w", args[0], err)
	}

	PrintRunResult(cmd.OutOrStdout(), result)
	return nil
}
