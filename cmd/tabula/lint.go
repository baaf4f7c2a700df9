package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mercator-hq/tabula/pkg/cli"
	"mercator-hq/tabula/pkg/table"
	"mercator-hq/tabula/pkg/table/source"
	"mercator-hq/tabula/pkg/telemetry/logging"
)

var lintFlags struct {
	file   string
	dir    string
	format string
	watch  bool
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate table files",
	Long: `Validate YAML decision table files.

The lint command parses table files and runs the full construction-time
validation: dimension and cell well-formedness, rule arity, completeness
over discrete dimensions, and pairwise disjointness for strict tables.

Examples:
  # Lint a single file
  tabula lint --file tables/access.yaml

  # Lint a directory
  tabula lint --dir tables/

  # JSON output for CI
  tabula lint --file tables/access.yaml --format json

  # Re-lint on every change
  tabula lint --dir tables/ --watch`,
	RunE: lintTables,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "table file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of table files")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
	lintCmd.Flags().BoolVarP(&lintFlags.watch, "watch", "w", false, "re-lint when files change")
}

// LintResult is the validation outcome for a single table file.
type LintResult struct {
	File   string   `json:"file"`
	Table  string   `json:"table,omitempty"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func lintTables(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	path := lintFlags.file
	if path == "" {
		path = lintFlags.dir
	}

	if err := runLint(); err != nil {
		return err
	}

	if !lintFlags.watch {
		return nil
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Format: "text"})
	if err != nil {
		return err
	}

	watcher, err := source.NewWatcher(&source.WatcherConfig{Path: path}, logger)
	if err != nil {
		return err
	}

	ctx := cli.SetupSignalHandler()
	return watcher.Watch(ctx, runLint)
}

func runLint() error {
	files, err := collectLintFiles()
	if err != nil {
		return err
	}

	results := make([]LintResult, 0, len(files))
	failed := 0
	for _, file := range files {
		result := lintFile(file)
		if !result.Valid {
			failed++
		}
		results = append(results, result)
	}

	if lintFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s (%s)\n", r.File, r.Table)
				continue
			}
			fmt.Printf("✗ %s\n", r.File)
			for _, e := range r.Errors {
				fmt.Printf("    %s\n", e)
			}
		}
	}

	if failed > 0 && !lintFlags.watch {
		return fmt.Errorf("%d of %d files failed validation", failed, len(files))
	}
	return nil
}

func collectLintFiles() ([]string, error) {
	var files []string

	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return nil, fmt.Errorf("failed to list table files: %w", err)
			}
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no table files found")
	}
	return files, nil
}

func lintFile(path string) LintResult {
	result := LintResult{File: path, Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	tbl, err := source.ParseBytes(data)
	if err != nil {
		result.Valid = false
		var verr *table.ValidationError
		if errors.As(err, &verr) {
			result.Table = verr.Table
			result.Errors = append(result.Errors, verr.Errors...)
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
		return result
	}

	result.Table = tbl.Name()
	return result
}
