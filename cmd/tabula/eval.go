package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/tabula/pkg/cli"
	"mercator-hq/tabula/pkg/table"
	"mercator-hq/tabula/pkg/table/source"
	"mercator-hq/tabula/pkg/telemetry/logging"
)

var evalFlags struct {
	file   string
	input  string
	trace  bool
	format string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate an input tuple against a table",
	Long: `Evaluate one input tuple against a decision table file.

The input is a comma-separated list of components, one per dimension in
declaration order. Components for continuous dimensions are parsed as
numbers.

Examples:
  # Discrete table
  tabula eval --file tables/access.yaml --input "Editor,Document,Write,other"

  # Continuous table
  tabula eval --file tables/hvac.yaml --input "22.5,55"

  # Show which rules were tried
  tabula eval --file tables/hvac.yaml --input "22.5,55" --trace`,
	RunE: evalTable,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalFlags.file, "file", "f", "", "table file (required)")
	evalCmd.Flags().StringVarP(&evalFlags.input, "input", "i", "", "comma-separated input tuple (required)")
	evalCmd.Flags().BoolVar(&evalFlags.trace, "trace", false, "include per-rule evaluation trace")
	evalCmd.Flags().StringVar(&evalFlags.format, "format", "text", "output format: text, json")
	evalCmd.MarkFlagRequired("file")
	evalCmd.MarkFlagRequired("input")
}

// EvalResult is the rendered outcome of one evaluation.
type EvalResult struct {
	Table    string   `json:"table"`
	Input    string   `json:"input"`
	RuleID   string   `json:"rule_id"`
	Output   string   `json:"output"`
	TimeUS   int64    `json:"time_us"`
	Trace    []string `json:"trace,omitempty"`
}

func evalTable(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(evalFlags.file)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	tbl, err := source.ParseBytes(data)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	tuple, err := parseTuple(evalFlags.input, tbl.Dimensions())
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Format: "text"})
	if err != nil {
		return err
	}

	config := table.DefaultEvaluatorConfig()
	config.EnableTrace = evalFlags.trace

	ev, err := table.NewEvaluator(tbl, config, logger)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	decision, err := ev.Evaluate(tuple)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	result := EvalResult{
		Table:  decision.Table,
		Input:  decision.Input.String(),
		RuleID: decision.RuleID,
		Output: fmt.Sprintf("%v", decision.Output),
		TimeUS: decision.EvaluationTime.Microseconds(),
	}
	if decision.Trace != nil {
		for _, step := range decision.Trace.Steps {
			mark := " "
			if step.Matched {
				mark = "*"
			}
			result.Trace = append(result.Trace, fmt.Sprintf("%s %s: %s", mark, step.RuleID, step.Pattern))
		}
	}

	if evalFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, result)
	}

	fmt.Printf("%s %s -> %s (rule %s)\n", result.Table, result.Input, result.Output, result.RuleID)
	for _, line := range result.Trace {
		fmt.Printf("  %s\n", line)
	}
	return nil
}

// parseTuple splits the input on commas and converts components for
// continuous dimensions to float64.
func parseTuple(input string, dims []table.Dimension) (table.InputTuple, error) {
	parts := strings.Split(input, ",")
	if len(parts) != len(dims) {
		return nil, fmt.Errorf("input has %d components, table has %d dimensions", len(parts), len(dims))
	}

	tuple := make(table.InputTuple, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if dims[i].Kind == table.Continuous {
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, fmt.Errorf("dimension %q expects a number, got %q", dims[i].Name, part)
			}
			tuple[i] = v
		} else {
			tuple[i] = part
		}
	}
	return tuple, nil
}
