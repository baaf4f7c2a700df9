package table

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrInvalidConfig indicates invalid evaluator configuration.
	ErrInvalidConfig = errors.New("invalid evaluator configuration")

	// ErrNilTable indicates an evaluator was constructed without a table.
	ErrNilTable = errors.New("table cannot be nil")
)

// ValidationError indicates a table specification failed construction-time
// validation. It aggregates every problem found rather than stopping at the
// first.
type ValidationError struct {
	Table  string
	Errors []string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("table %s: validation error: %s", e.Table, e.Errors[0])
	}
	return fmt.Sprintf("table %s: %d validation errors: %v", e.Table, len(e.Errors), e.Errors)
}

// ArityError indicates a rule pattern or input tuple whose component count
// does not match the table's dimension count.
type ArityError struct {
	Table  string
	RuleID string
	Want   int
	Got    int
}

// Error returns the error message.
func (e *ArityError) Error() string {
	if e.RuleID != "" {
		return fmt.Sprintf("table %s rule %s: expected %d cells, got %d", e.Table, e.RuleID, e.Want, e.Got)
	}
	return fmt.Sprintf("expected a tuple of %d components, got %d", e.Want, e.Got)
}

// DimensionError indicates a value or cell that does not fit its dimension.
type DimensionError struct {
	Dimension string
	Message   string
}

// Error returns the error message.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension %q: %s", e.Dimension, e.Message)
}

// OverlapError indicates two rules of a strict table that can match the same
// input tuple. Overlap is a design defect: it would make the table's output
// depend on rule declaration order.
type OverlapError struct {
	Table  string
	RuleA  string
	RuleB  string
}

// Error returns the error message.
func (e *OverlapError) Error() string {
	return fmt.Sprintf("table %s: rules %s and %s overlap; strict tables require disjoint rules", e.Table, e.RuleA, e.RuleB)
}

// CompletenessError indicates a table over all-discrete dimensions that
// leaves part of its input domain uncovered.
type CompletenessError struct {
	Table   string
	Missing InputTuple
	Count   int
}

// Error returns the error message.
func (e *CompletenessError) Error() string {
	return fmt.Sprintf("table %s: %d uncovered input combinations, first missing: %s", e.Table, e.Count, e.Missing)
}

// UnmatchedError indicates an input tuple matched by no rule. For tables with
// continuous dimensions this is the one defect construction cannot rule out;
// it surfaces loudly here instead of degrading into a silent default.
type UnmatchedError struct {
	Table string
	Tuple InputTuple
}

// Error returns the error message.
func (e *UnmatchedError) Error() string {
	return fmt.Sprintf("table %s: no rule matches input %s", e.Table, e.Tuple)
}
