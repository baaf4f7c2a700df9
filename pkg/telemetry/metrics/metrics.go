// Package metrics exposes Prometheus instrumentation for table evaluation
// and state machine stepping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config contains configuration for metric registration.
type Config struct {
	// Namespace is the metric name prefix.
	Namespace string

	// Subsystem is the second metric name segment.
	Subsystem string
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{
		Namespace: "tabula",
	}
}

// DecisionMetrics tracks table evaluation and machine stepping.
//
// Metrics:
//   - tabula_evaluations_total: table evaluations by table and rule
//   - tabula_unmatched_total: evaluations that matched no rule, by table
//   - tabula_evaluation_duration_seconds: evaluation latency by table
//   - tabula_transitions_total: machine steps by machine, event, and outcome
type DecisionMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	unmatchedTotal     *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	transitionsTotal   *prometheus.CounterVec
}

// NewDecisionMetrics creates and registers decision metrics with the
// provided registry.
func NewDecisionMetrics(cfg *Config, registry *prometheus.Registry) *DecisionMetrics {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	dm := &DecisionMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of table evaluations",
			},
			[]string{"table", "rule_id"},
		),

		unmatchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "unmatched_total",
				Help:      "Total number of evaluations that matched no rule",
			},
			[]string{"table"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of table evaluation in seconds",
				// Evaluations are in-memory scans; sub-millisecond is normal.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
			},
			[]string{"table"},
		),

		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "transitions_total",
				Help:      "Total number of state machine steps by outcome",
			},
			[]string{"machine", "event", "outcome"},
		),
	}

	registry.MustRegister(
		dm.evaluationsTotal,
		dm.unmatchedTotal,
		dm.evaluationDuration,
		dm.transitionsTotal,
	)

	return dm
}

// RecordEvaluation records one successful table evaluation.
func (dm *DecisionMetrics) RecordEvaluation(tableName, ruleID string, duration time.Duration) {
	dm.evaluationsTotal.WithLabelValues(tableName, ruleID).Inc()
	dm.evaluationDuration.WithLabelValues(tableName).Observe(duration.Seconds())
}

// RecordUnmatched records an evaluation that matched no rule.
func (dm *DecisionMetrics) RecordUnmatched(tableName string, duration time.Duration) {
	dm.unmatchedTotal.WithLabelValues(tableName).Inc()
	dm.evaluationDuration.WithLabelValues(tableName).Observe(duration.Seconds())
}

// RecordTransition records one machine step. Outcome is "applied" when a
// transition fired and "noop" when the event was absorbed.
func (dm *DecisionMetrics) RecordTransition(machineName, event string, applied bool) {
	outcome := "noop"
	if applied {
		outcome = "applied"
	}
	dm.transitionsTotal.WithLabelValues(machineName, event, outcome).Inc()
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
