package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one evaluation cycle and exit",
	Long: `Run a single evaluation cycle against the configured fact and outcome
stores, print the cycle summary, and exit.

The exit code is non-zero only when the cycle itself cannot run (for
example, the rule list cannot be loaded). Individual rule failures are
reported in the summary and do not fail the command.

Examples:
  # Run one cycle with the default config
  saturn run

  # Run against a specific config
  saturn run --config /etc/saturn/saturn.yaml`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := setup(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := c.engine.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("cycle failed: %w", err)
	}

	fmt.Printf("Cycle %s\n", summary.CycleID)
	fmt.Printf("  Processed rules: %d\n", summary.ProcessedRules)
	fmt.Printf("  Skipped rules:   %d\n", summary.SkippedRules)
	fmt.Printf("  Alerts:          %d\n", summary.TotalAlerts)
	fmt.Printf("  Actions:         %d\n", summary.TotalActions)
	fmt.Printf("  Duration:        %s\n", summary.FinishedAt.Sub(summary.StartedAt))
	if len(summary.Errors) > 0 {
		fmt.Printf("  Rule errors:     %d\n", len(summary.Errors))
		for _, e := range summary.Errors {
			fmt.Printf("    - %s: %s\n", e.RuleID, e.Message)
		}
	}
	return nil
}
