package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/tabula/pkg/cli"
	"mercator-hq/tabula/pkg/config"
	"mercator-hq/tabula/pkg/decisionlog"
	"mercator-hq/tabula/pkg/server"
	"mercator-hq/tabula/pkg/table/source"
	"mercator-hq/tabula/pkg/telemetry/logging"
	"mercator-hq/tabula/pkg/telemetry/metrics"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve decision tables over HTTP",
	Long: `Load decision tables and serve evaluations over HTTP.

The server exposes the loaded tables for evaluation, optionally watches
the table path for changes and reloads on edit, records outcomes in the
decision log, and publishes Prometheus metrics.

Examples:
  # Serve with default config
  tabula serve

  # Serve with custom config
  tabula serve --config /etc/tabula/config.yaml

  # Override listen address
  tabula serve --listen 0.0.0.0:9090

  # Validate config and tables without starting
  tabula serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config and tables without starting")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	ctx := cli.SetupSignalHandler()

	src := source.NewFileSource(cfg.Tables.Path, logger)
	tables, err := src.Load(ctx)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	if serveFlags.dryRun {
		fmt.Printf("✓ Configuration valid, %d tables loaded\n", len(tables))
		return nil
	}

	registry := prometheus.NewRegistry()
	var dm *metrics.DecisionMetrics
	if cfg.Telemetry.Metrics.Enabled {
		dm = metrics.NewDecisionMetrics(&metrics.Config{
			Namespace: cfg.Telemetry.Metrics.Namespace,
		}, registry)
	}

	var rec *decisionlog.Recorder
	if cfg.DecisionLog.Enabled {
		store, err := openDecisionLog(cfg, logger)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer store.Close()
		rec = decisionlog.NewRecorder(store, logger)

		pruner := decisionlog.NewPruner(store, &decisionlog.RetentionConfig{
			RetentionDays: cfg.DecisionLog.RetentionDays,
			MaxRecords:    cfg.DecisionLog.MaxRecords,
			PruneSchedule: cfg.DecisionLog.PruneSchedule,
		}, logger)
		if err := pruner.Start(ctx); err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer pruner.Stop()
	}

	srv, err := server.NewServer(cfg, tables, logger, dm, rec)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	if cfg.Tables.Watch {
		watcher, err := source.NewWatcher(&source.WatcherConfig{
			Path:             cfg.Tables.Path,
			DebounceInterval: cfg.Tables.DebounceInterval,
		}, logger)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		go func() {
			err := watcher.Watch(ctx, func() error {
				reloaded, err := src.Load(ctx)
				if err != nil {
					return err
				}
				return srv.Reload(reloaded)
			})
			if err != nil {
				logger.Error("table watcher exited", "error", err)
			}
		}()
	}

	return srv.Start(ctx, registry)
}

// loadServeConfig loads the config file, applying flag overrides. A missing
// file with the default name falls back to pure defaults so serve works out
// of the box.
func loadServeConfig() (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(cfgFile); err != nil && cfgFile == "config.yaml" {
		cfg = config.Default()
	} else {
		loaded, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return nil, cli.NewConfigError("", err.Error())
		}
		cfg = loaded
	}

	if serveFlags.listenAddress != "" {
		cfg.Telemetry.Metrics.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return cfg, nil
}

func openDecisionLog(cfg *config.Config, logger *slog.Logger) (decisionlog.Storage, error) {
	switch cfg.DecisionLog.Backend {
	case "sqlite":
		sqliteCfg := decisionlog.DefaultSQLiteConfig()
		sqliteCfg.Path = cfg.DecisionLog.SQLitePath
		return decisionlog.NewSQLiteStorage(sqliteCfg, logger)
	default:
		return decisionlog.NewMemoryStorage(), nil
	}
}
