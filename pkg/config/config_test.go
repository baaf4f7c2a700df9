package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(Default()) error = %v", err)
	}
	if cfg.Tables.Path != "tables/" {
		t.Errorf("Tables.Path = %q, want tables/", cfg.Tables.Path)
	}
	if cfg.Evaluator.MaxRules != 256 {
		t.Errorf("Evaluator.MaxRules = %d, want 256", cfg.Evaluator.MaxRules)
	}
	if cfg.DecisionLog.Backend != "memory" {
		t.Errorf("DecisionLog.Backend = %q, want memory", cfg.DecisionLog.Backend)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("logging defaults = %q/%q, want info/json",
			cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
tables:
  path: /etc/tabula/tables
  watch: true
  debounce_interval: 250ms
evaluator:
  trace: true
  max_rules: 64
decision_log:
  enabled: true
  backend: sqlite
  sqlite_path: /var/lib/tabula/decisions.db
  retention_days: 30
telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: true
    listen_address: ":9100"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Tables.Path != "/etc/tabula/tables" || !cfg.Tables.Watch {
		t.Errorf("Tables = %+v", cfg.Tables)
	}
	if cfg.Tables.DebounceInterval != 250*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 250ms", cfg.Tables.DebounceInterval)
	}
	if cfg.Evaluator.MaxRules != 64 || !cfg.Evaluator.Trace {
		t.Errorf("Evaluator = %+v", cfg.Evaluator)
	}
	if cfg.DecisionLog.Backend != "sqlite" || cfg.DecisionLog.RetentionDays != 30 {
		t.Errorf("DecisionLog = %+v", cfg.DecisionLog)
	}
	if cfg.Telemetry.Metrics.ListenAddress != ":9100" {
		t.Errorf("Metrics.ListenAddress = %q", cfg.Telemetry.Metrics.ListenAddress)
	}
	// Unset fields still get defaults.
	if cfg.Telemetry.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want /metrics", cfg.Telemetry.Metrics.Path)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("LoadConfig() error = nil, want read failure")
		}
	})

	t.Run("malformed YAML", func(t *testing.T) {
		path := writeConfig(t, "tables: [broken")
		if _, err := LoadConfig(path); err == nil {
			t.Error("LoadConfig() error = nil, want parse failure")
		}
	})

	t.Run("invalid backend", func(t *testing.T) {
		path := writeConfig(t, "decision_log:\n  backend: redis\n")
		if _, err := LoadConfig(path); err == nil {
			t.Error("LoadConfig() error = nil, want validation failure")
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		path := writeConfig(t, "telemetry:\n  logging:\n    level: loud\n")
		if _, err := LoadConfig(path); err == nil {
			t.Error("LoadConfig() error = nil, want validation failure")
		}
	})
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "tables:\n  path: from-file\n")

	t.Setenv("TABULA_TABLES_PATH", "from-env")
	t.Setenv("TABULA_TABLES_WATCH", "true")
	t.Setenv("TABULA_EVALUATOR_MAX_RULES", "32")
	t.Setenv("TABULA_DECISION_LOG_BACKEND", "sqlite")
	t.Setenv("TABULA_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Tables.Path != "from-env" {
		t.Errorf("Tables.Path = %q, want from-env", cfg.Tables.Path)
	}
	if !cfg.Tables.Watch {
		t.Error("Tables.Watch = false, want true")
	}
	if cfg.Evaluator.MaxRules != 32 {
		t.Errorf("Evaluator.MaxRules = %d, want 32", cfg.Evaluator.MaxRules)
	}
	if cfg.DecisionLog.Backend != "sqlite" {
		t.Errorf("DecisionLog.Backend = %q, want sqlite", cfg.DecisionLog.Backend)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
}

func TestEnvOverridesRevalidate(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("TABULA_DECISION_LOG_BACKEND", "redis")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Error("LoadConfigWithEnvOverrides() error = nil, want validation failure")
	}
}
