package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and then
// applies environment variable overrides. Variables follow the naming
// convention TABULA_SECTION_FIELD (e.g. TABULA_TABLES_PATH) and always take
// precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("TABULA_TABLES_PATH"); val != "" {
		cfg.Tables.Path = val
	}
	if val := os.Getenv("TABULA_TABLES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tables.Watch = b
		}
	}
	if val := os.Getenv("TABULA_TABLES_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Tables.DebounceInterval = d
		}
	}

	if val := os.Getenv("TABULA_EVALUATOR_TRACE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Evaluator.Trace = b
		}
	}
	if val := os.Getenv("TABULA_EVALUATOR_MAX_RULES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Evaluator.MaxRules = i
		}
	}

	if val := os.Getenv("TABULA_DECISION_LOG_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.DecisionLog.Enabled = b
		}
	}
	if val := os.Getenv("TABULA_DECISION_LOG_BACKEND"); val != "" {
		cfg.DecisionLog.Backend = val
	}
	if val := os.Getenv("TABULA_DECISION_LOG_SQLITE_PATH"); val != "" {
		cfg.DecisionLog.SQLitePath = val
	}
	if val := os.Getenv("TABULA_DECISION_LOG_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.DecisionLog.RetentionDays = i
		}
	}
	if val := os.Getenv("TABULA_DECISION_LOG_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.DecisionLog.MaxRecords = i
		}
	}
	if val := os.Getenv("TABULA_DECISION_LOG_PRUNE_SCHEDULE"); val != "" {
		cfg.DecisionLog.PruneSchedule = val
	}

	if val := os.Getenv("TABULA_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("TABULA_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("TABULA_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("TABULA_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("TABULA_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
