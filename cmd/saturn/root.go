package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Saturn - rule evaluation and governance engine for ad automation",
	Long: `Saturn evaluates tenant-configured automation rules against advertising
performance facts and queues governed mutation actions.

Each evaluation cycle:
  - Gates rules through tenant kill switches, plan entitlements, and throttles
  - Detects budget depletion, spend spikes, and search-term opportunities
  - Vets actions against protected entities, daily quotas, and bid guardrails
  - Persists alerts and idempotent actions for the downstream applier`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "saturn.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
