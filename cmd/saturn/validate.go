package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"steward-hq/saturn/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load a configuration file, apply defaults and environment overrides,
and report every validation error found.

Examples:
  # Validate the default config
  saturn validate

  # Validate a specific file
  saturn validate --config /etc/saturn/saturn.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Configuration valid: %s\n", cfgFile)
	if verbose {
		fmt.Printf("  facts backend:    %s\n", cfg.Facts.Backend)
		fmt.Printf("  storage backend:  %s\n", cfg.Storage.Backend)
		fmt.Printf("  cycle schedule:   %s\n", cfg.Scheduler.CycleSchedule)
		fmt.Printf("  retention:        every %q, keep %d days\n", cfg.Scheduler.RetentionSchedule, cfg.Storage.RetentionDays)
		fmt.Printf("  metrics:          enabled=%t address=%s\n", cfg.Telemetry.Metrics.Enabled, cfg.Telemetry.Metrics.ListenAddress)
	}
	return nil
}
