// Package cmd implements the chainsim CLI: `run` drives a full
// simulation from a config YAML to completion, `colors` runs only the
// chain-decomposition diagnostic (spec.md §6.3).
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "chainsim",
	Short: "Discrete-event simulator for locality-aware task-graph scheduling",
}

// Execute runs the root command, exiting nonzero on any unrecoverable
// failure (spec.md §7).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the run config YAML (required)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(colorsCmd)
}
