package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	env          string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Daily equity screener with run-once scheduling",
	Long: `Daily equity screener

Scores the index universe before the open, builds a capped allocation
plan and reviews it after the close. Every run is recorded in the
run-state store so each report goes out at most once per day.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener serve
  go run ./cmd/screener run morning
  go run ./cmd/screener score RELIANCE.NS TCS.NS
  go run ./cmd/screener state list`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy policy YAML (overrides STRATEGY_FILE)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production), overrides ENV")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
