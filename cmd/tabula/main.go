// Tabula evaluates decision tables and state machines.
//
// It loads rule tables from YAML, validates them for completeness and
// disjointness, evaluates input tuples against them, and records outcomes
// in an auditable decision log.
//
// Usage:
//
//	# Validate table files
//	tabula lint --file tables/access.yaml
//
//	# Evaluate a tuple against a table
//	tabula eval --file tables/access.yaml --input "Editor,Document,Write,other"
//
//	# Walk the built-in demo decisions
//	tabula demo access
//
//	# Serve tables with live reload and metrics
//	tabula serve --config config.yaml
//
//	# Show version information
//	tabula version
package main

func main() {
	Execute()
}
