package table

import "fmt"

// EvaluatorConfig contains configuration for the table evaluator.
type EvaluatorConfig struct {
	// EnableTrace records a per-rule evaluation trace on every decision.
	// Tracing allocates; leave it off outside debugging and demos.
	// Default: false.
	EnableTrace bool

	// MaxRules is the maximum number of rules the evaluator accepts.
	// This guards against pathological generated tables.
	// Default: 256.
	MaxRules int
}

// DefaultEvaluatorConfig returns the default evaluator configuration.
func DefaultEvaluatorConfig() *EvaluatorConfig {
	return &EvaluatorConfig{
		EnableTrace: false,
		MaxRules:    256,
	}
}

// Validate validates the evaluator configuration.
func (c *EvaluatorConfig) Validate() error {
	if c.MaxRules <= 0 {
		return fmt.Errorf("%w: max rules must be positive", ErrInvalidConfig)
	}
	return nil
}

// WithTrace enables or disables evaluation tracing.
func (c *EvaluatorConfig) WithTrace(enabled bool) *EvaluatorConfig {
	c.EnableTrace = enabled
	return c
}

// WithMaxRules sets the maximum number of rules.
func (c *EvaluatorConfig) WithMaxRules(max int) *EvaluatorConfig {
	c.MaxRules = max
	return c
}
