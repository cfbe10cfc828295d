package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/daystate"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// stateCmd inspects and edits the run-state store
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or edit the run state",
	Long: `Reads and writes the key/value run state.

Subcommands:
  list            - Print the deduplicated state
  get KEY         - Print one key
  set KEY VALUE   - Write one key
  mark KEY        - Mark KEY as done today

Example:
  go run ./cmd/screener state list
  go run ./cmd/screener state set last_morning_run 2024-05-01`,
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the deduplicated state",
	Args:  cobra.NoArgs,
	RunE: withState(func(cmd *cobra.Command, c *daystate.Coordinator, args []string) error {
		PrintState(cmd.OutOrStdout(), c.Today(), c.ReadAll(cmd.Context()))
		return nil
	}),
}

var stateGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one key",
	Args:  cobra.ExactArgs(1),
	RunE: withState(func(cmd *cobra.Command, c *daystate.Coordinator, args []string) error {
		value, ok := c.Get(cmd.Context(), args[0])
		if !ok {
			return fmt.Errorf("key %q not found", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}),
}

var stateSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Write one key",
	Args:  cobra.ExactArgs(2),
	RunE: withState(func(cmd *cobra.Command, c *daystate.Coordinator, args []string) error {
		if err := c.Set(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return nil
	}),
}

var stateMarkCmd = &cobra.Command{
	Use:   "mark KEY",
	Short: "Mark KEY as done today",
	Args:  cobra.ExactArgs(1),
	RunE: withState(func(cmd *cobra.Command, c *daystate.Coordinator, args []string) error {
		if err := c.MarkDoneToday(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], c.Today())
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateListCmd, stateGetCmd, stateSetCmd, stateMarkCmd)
}

type stateFunc func(cmd *cobra.Command, c *daystate.Coordinator, args []string) error

// withState opens only the state store; no market or chat clients are built
func withState(fn stateFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, store, err := openState(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd, c, args)
	}
}

func openState(ctx context.Context) (*daystate.Coordinator, contracts.StateStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg)

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("timezone: %w", err)
	}

	store, err := daystate.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open state store: %w", err)
	}
	return daystate.NewCoordinator(store, loc, log), store, nil
}
