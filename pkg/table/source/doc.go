// Package source loads decision table definitions from YAML documents.
//
// A document declares the table name, mode, dimensions, and rules:
//
//	name: hvac
//	mode: strict
//	dimensions:
//	  - name: temperature
//	    kind: continuous
//	  - name: signal
//	    kind: discrete
//	    values: [red, green]
//	rules:
//	  - id: freezing
//	    cells:
//	      - interval: "(-inf,0)"
//	      - is: red
//	    output: heat
//
// Each cell takes exactly one of three forms: {any: true} for a wildcard,
// {is: <value>} for a discrete match, or {interval: "<range>"} for a
// continuous range. Outputs are carried through as strings.
//
// FileSource reads documents from a single file or a directory of .yaml and
// .yml files, and can watch the path for changes so callers can rebuild
// their tables on edit. MemorySource serves a fixed set of tables and is
// meant for tests.
package source
