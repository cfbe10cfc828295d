package commands

import (
	"github.com/spf13/cobra"
)

// scoreCmd scores ad-hoc symbols without touching the run state
var scoreCmd = &cobra.Command{
	Use:   "score SYMBOL...",
	Short: "Score symbols with the current policy",
	Long: `Fetches and scores the given symbols. Nothing is persisted and no
report is sent.

Example:
  go run ./cmd/screener score RELIANCE.NS TCS.NS`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.Close()

	result := a.brain.Score(cmd.Context(), args)
	PrintScores(cmd.OutOrStdout(), result)
	return nil
}
