package table

import (
	"fmt"
	"log/slog"
	"time"
)

// Decision is the result of evaluating one input tuple against a table.
type Decision struct {
	// Table is the name of the evaluated table.
	Table string

	// RuleID identifies the matching rule.
	RuleID string

	// Output is the matching rule's output value.
	Output any

	// Input is the normalized input tuple that was evaluated.
	Input InputTuple

	// EvaluationTime is the time taken to evaluate the tuple.
	EvaluationTime time.Duration

	// Trace contains the rule-by-rule evaluation path (if enabled).
	Trace *EvaluationTrace
}

// Evaluator evaluates input tuples against a single validated table.
//
// The evaluator is pure and stateless: it holds only the immutable table and
// configuration, so it is safe for concurrent use, and evaluating the same
// tuple twice always yields the same decision.
type Evaluator struct {
	table  *Table
	config *EvaluatorConfig
	logger *slog.Logger
}

// NewEvaluator creates an evaluator for the given table.
func NewEvaluator(t *Table, config *EvaluatorConfig, logger *slog.Logger) (*Evaluator, error) {
	if t == nil {
		return nil, ErrNilTable
	}
	if config == nil {
		config = DefaultEvaluatorConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(t.rules) > config.MaxRules {
		return nil, fmt.Errorf("%w: table %s has %d rules (max: %d)",
			ErrInvalidConfig, t.name, len(t.rules), config.MaxRules)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Evaluator{
		table:  t,
		config: config,
		logger: logger,
	}, nil
}

// Table returns the evaluator's table.
func (e *Evaluator) Table() *Table { return e.table }

// Evaluate resolves an input tuple to the output of the first (in strict
// mode: the unique) matching rule.
//
// An unmatched tuple is a table defect, never normal control flow: the
// returned error is a *UnmatchedError and no default output is substituted.
// For all-discrete tables, construction-time completeness checking makes
// this branch unreachable.
func (e *Evaluator) Evaluate(tuple InputTuple) (*Decision, error) {
	start := time.Now()

	normalized, err := normalize(tuple, e.table.dims)
	if err != nil {
		return nil, err
	}

	var trace *EvaluationTrace
	if e.config.EnableTrace {
		trace = &EvaluationTrace{}
	}

	for _, rule := range e.table.rules {
		matched := rule.matches(normalized)

		if trace != nil {
			trace.Steps = append(trace.Steps, &TraceStep{
				RuleID:  rule.ID,
				Pattern: rule.String(),
				Matched: matched,
			})
		}

		if !matched {
			continue
		}

		elapsed := time.Since(start)
		if trace != nil {
			trace.TotalTime = elapsed
		}

		e.logger.Debug("tuple resolved",
			"table", e.table.name,
			"rule", rule.ID,
			"input", normalized.String(),
			"duration", elapsed,
		)

		return &Decision{
			Table:          e.table.name,
			RuleID:         rule.ID,
			Output:         rule.Output,
			Input:          normalized,
			EvaluationTime: elapsed,
			Trace:          trace,
		}, nil
	}

	err = &UnmatchedError{Table: e.table.name, Tuple: normalized}
	e.logger.Error("no rule matches input",
		"table", e.table.name,
		"input", normalized.String(),
	)
	return nil, err
}

// MustEvaluate is Evaluate for callers that have proven their table complete
// over the inputs they supply; any error is a broken invariant and panics.
func (e *Evaluator) MustEvaluate(tuple InputTuple) *Decision {
	decision, err := e.Evaluate(tuple)
	if err != nil {
		panic(err)
	}
	return decision
}
