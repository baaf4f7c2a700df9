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
	Use:   "tabula",
	Short: "Tabula - decision table and state machine evaluator",
	Long: `Tabula evaluates decision tables and guarded state machines.

Rule tables map input tuples to verdicts through wildcard, exact, and
interval cells, with construction-time completeness and disjointness
validation. State machines map (state, event) pairs to new states and
effect lists, with guards branching on external context.

Tables are defined in YAML and can be linted, evaluated ad hoc, or served
with live reload, Prometheus metrics, and an auditable decision log.`,
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
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
