package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
)

// configCmd prints the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the strategy policy, its hash and the runtime settings",
	Long: `Prints the effective strategy policy as YAML together with its hash
and the non-secret runtime settings. Secrets are masked.

Example:
  go run ./cmd/screener config show
  go run ./cmd/screener config show --strategy strategy.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	strategy, err := strategyconfig.LoadOrDefault(cfg.StrategyFile)
	if err != nil {
		return fmt.Errorf("load strategy: %w", err)
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return fmt.Errorf("hash strategy: %w", err)
	}
	policy, err := strategyconfig.YAML(strategy)
	if err != nil {
		return fmt.Errorf("render strategy: %w", err)
	}

	out := cmd.OutOrStdout()
	PrintSettings(out, cfg)
	PrintSeparator(out)
	fmt.Fprintf(out, "  Strategy  : %s v%s\n", strategy.Meta.StrategyID, strategy.Meta.Version)
	fmt.Fprintf(out, "  Hash      : %s\n", hash[:12])
	for _, w := range strategyconfig.Warn(strategy) {
		fmt.Fprintf(out, "  ⚠️  %s: %s\n", w.Code, w.Message)
	}
	PrintSeparator(out)
	fmt.Fprint(out, string(policy))
	return nil
}
