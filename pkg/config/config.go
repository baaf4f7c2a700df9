// Package config defines the application configuration, its defaults, and
// YAML loading with environment overrides.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	// Tables configures where decision tables are loaded from.
	Tables TablesConfig `yaml:"tables"`

	// Evaluator configures table evaluation behavior.
	Evaluator EvaluatorConfig `yaml:"evaluator"`

	// DecisionLog configures audit recording of evaluation outcomes.
	DecisionLog DecisionLogConfig `yaml:"decision_log"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TablesConfig configures the table source.
type TablesConfig struct {
	// Path is a YAML file or a directory of YAML files.
	Path string `yaml:"path"`

	// Watch enables reloading tables when files change.
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a reload fires.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// EvaluatorConfig configures table evaluation.
type EvaluatorConfig struct {
	// Trace enables per-rule evaluation traces.
	Trace bool `yaml:"trace"`

	// MaxRules caps the rule count a table may carry.
	MaxRules int `yaml:"max_rules"`
}

// DecisionLogConfig configures the audit log.
type DecisionLogConfig struct {
	// Enabled turns decision recording on.
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend ("memory" or "sqlite").
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`

	// RetentionDays is how many days of records to keep. 0 keeps forever.
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the total record count. 0 means unlimited.
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning.
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics server binds to.
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path the metrics are served on.
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	Namespace string `yaml:"namespace"`
}

// ApplyDefaults fills in zero-valued fields with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Tables.Path == "" {
		cfg.Tables.Path = "tables/"
	}
	if cfg.Tables.DebounceInterval <= 0 {
		cfg.Tables.DebounceInterval = 100 * time.Millisecond
	}
	if cfg.Evaluator.MaxRules <= 0 {
		cfg.Evaluator.MaxRules = 256
	}
	if cfg.DecisionLog.Backend == "" {
		cfg.DecisionLog.Backend = "memory"
	}
	if cfg.DecisionLog.SQLitePath == "" {
		cfg.DecisionLog.SQLitePath = "data/decisions.db"
	}
	if cfg.DecisionLog.RetentionDays == 0 {
		cfg.DecisionLog.RetentionDays = 90
	}
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = ":9090"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "tabula"
	}
}

// Validate checks the configuration for inconsistencies.
func Validate(cfg *Config) error {
	if cfg.Evaluator.MaxRules <= 0 {
		return fmt.Errorf("evaluator.max_rules must be positive, got %d", cfg.Evaluator.MaxRules)
	}

	switch cfg.DecisionLog.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("decision_log.backend must be %q or %q, got %q",
			"memory", "sqlite", cfg.DecisionLog.Backend)
	}
	if cfg.DecisionLog.Backend == "sqlite" && cfg.DecisionLog.SQLitePath == "" {
		return fmt.Errorf("decision_log.sqlite_path is required for the sqlite backend")
	}
	if cfg.DecisionLog.RetentionDays < 0 {
		return fmt.Errorf("decision_log.retention_days must not be negative, got %d",
			cfg.DecisionLog.RetentionDays)
	}
	if cfg.DecisionLog.MaxRecords < 0 {
		return fmt.Errorf("decision_log.max_records must not be negative, got %d",
			cfg.DecisionLog.MaxRecords)
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level %q is not a known level",
			cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format %q is not a known format",
			cfg.Telemetry.Logging.Format)
	}

	return nil
}
