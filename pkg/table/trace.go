package table

import "time"

// EvaluationTrace records the rule-by-rule path of a single evaluation for
// debugging and demo output.
type EvaluationTrace struct {
	// Steps contains one entry per rule considered, in evaluation order.
	Steps []*TraceStep

	// TotalTime is the total evaluation time.
	TotalTime time.Duration
}

// TraceStep records the outcome of testing one rule against the input.
type TraceStep struct {
	// RuleID is the rule that was tested.
	RuleID string

	// Pattern is the rule's printed pattern row.
	Pattern string

	// Matched reports whether the rule matched the input tuple.
	Matched bool
}
