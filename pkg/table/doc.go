// Package table provides a decision-table evaluation engine: a tuple of
// discrete and/or continuous input values is matched against a finite set of
// rules, and the output of the matching rule is returned deterministically.
//
// A table is built once from a Spec and is immutable afterwards. Construction
// validates the table so that classes of specification defects (wrong arity,
// values outside a declared domain, overlapping rules, uncovered discrete
// inputs) are rejected before the first evaluation rather than discovered at
// run time.
//
// # Dimensions and cells
//
// Each table axis is a Dimension, either discrete (a finite named value set)
// or continuous (an ordered numeric domain). A rule carries one Cell per
// dimension:
//
//   - Any()      matches every value ("don't care")
//   - Is(v)      matches a discrete value exactly
//   - In(iv)     matches a continuous value against an interval with explicit
//     boundary semantics, e.g. Closed(0, 20) for [0,20] or ClosedOpen(0, 20)
//     for [0,20)
//
// The wildcard is an explicit cell kind rather than a sentinel value, so
// matching stays uniform across both dimension kinds.
//
// # Modes
//
// In ModeStrict (the default) rules must be pairwise disjoint; this is
// verified at construction time, independent of declaration order, so
// reordering rules can never change behavior. In ModeFirstMatch rules are an
// ordered sequence and the first match wins; overlap is permitted and must be
// an intentional part of the table's design (typically wildcard rows with a
// trailing catch-all).
//
// For tables whose dimensions are all discrete, construction additionally
// enumerates the full cross product and rejects tables that leave any input
// uncovered. No such static check exists for continuous dimensions; callers
// are expected to cover gaps with property-style tests that sample densely
// around the declared boundaries.
//
// # Evaluation
//
//	tbl, err := table.New(spec)
//	ev, err := table.NewEvaluator(tbl, nil, logger)
//	decision, err := ev.Evaluate(table.Tuple("Admin", "Document", "Read", "true"))
//
// Evaluation is pure: no side effects, no internal state, O(rules), and
// unconditionally terminating. The same tuple always yields the same
// decision. An input matched by no rule is a defect in the table, not a
// normal control-flow path: Evaluate fails loudly with *UnmatchedError and
// never falls back to a silent default.
package table
