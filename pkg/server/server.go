// Package server exposes loaded decision tables over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/tabula/pkg/config"
	"mercator-hq/tabula/pkg/decisionlog"
	"mercator-hq/tabula/pkg/table"
	"mercator-hq/tabula/pkg/telemetry/metrics"
)

// Server serves table evaluations over HTTP. Tables can be swapped at
// runtime via Reload, which the file watcher uses for live updates.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.DecisionMetrics
	rec     *decisionlog.Recorder

	httpServer   *http.Server
	shutdownOnce sync.Once

	mu         sync.RWMutex
	evaluators map[string]*table.Evaluator
	isRunning  bool
}

// NewServer creates a server for the given tables. Metrics and the decision
// recorder are optional.
func NewServer(cfg *config.Config, tables []*table.Table, logger *slog.Logger, dm *metrics.DecisionMetrics, rec *decisionlog.Recorder) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: dm,
		rec:     rec,
	}
	if err := s.Reload(tables); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the served tables. In-flight evaluations finish against
// the tables they started with.
func (s *Server) Reload(tables []*table.Table) error {
	evalConfig := table.DefaultEvaluatorConfig()
	evalConfig.EnableTrace = s.cfg.Evaluator.Trace
	evalConfig.MaxRules = s.cfg.Evaluator.MaxRules

	evaluators := make(map[string]*table.Evaluator, len(tables))
	for _, tbl := range tables {
		if _, exists := evaluators[tbl.Name()]; exists {
			return fmt.Errorf("duplicate table name %q", tbl.Name())
		}
		ev, err := table.NewEvaluator(tbl, evalConfig, s.logger)
		if err != nil {
			return fmt.Errorf("table %q: %w", tbl.Name(), err)
		}
		evaluators[tbl.Name()] = ev
	}

	s.mu.Lock()
	s.evaluators = evaluators
	s.mu.Unlock()

	s.logger.Info("tables loaded", "table_count", len(evaluators))
	return nil
}

// TableNames returns the names of the served tables.
func (s *Server) TableNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.evaluators))
	for name := range s.evaluators {
		names = append(names, name)
	}
	return names
}

// Start starts the HTTP server and blocks until the context is cancelled
// or the server fails.
func (s *Server) Start(ctx context.Context, registry *prometheus.Registry) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.cfg.Telemetry.Metrics.ListenAddress,
		Handler:      s.Handler(registry),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// Handler returns the configured HTTP handler. The metrics registry is
// optional; without it no metrics endpoint is registered.
func (s *Server) Handler(registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/tables", s.handleListTables)
	mux.HandleFunc("POST /v1/tables/{name}/eval", s.handleEval)

	if registry != nil && s.cfg.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.cfg.Telemetry.Metrics.Path, metrics.Handler(registry))
	}

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// tableInfo is the list entry for one served table.
type tableInfo struct {
	Name       string `json:"name"`
	Mode       string `json:"mode"`
	Dimensions int    `json:"dimensions"`
	Rules      int    `json:"rules"`
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	infos := make([]tableInfo, 0, len(s.evaluators))
	for _, ev := range s.evaluators {
		tbl := ev.Table()
		infos = append(infos, tableInfo{
			Name:       tbl.Name(),
			Mode:       string(tbl.Mode()),
			Dimensions: len(tbl.Dimensions()),
			Rules:      len(tbl.Rules()),
		})
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, infos)
}

// evalRequest is the body of an evaluation call. Input components are
// strings for discrete dimensions and numbers for continuous ones.
type evalRequest struct {
	Input []any `json:"input"`
}

// evalResponse is the rendered decision.
type evalResponse struct {
	Table  string `json:"table"`
	RuleID string `json:"rule_id"`
	Output string `json:"output"`
	TimeUS int64  `json:"time_us"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	s.mu.RLock()
	ev, ok := s.evaluators[name]
	s.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown table %q", name)})
		return
	}

	var req evalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	start := time.Now()
	decision, err := ev.Evaluate(table.Tuple(req.Input...))
	if err != nil {
		s.recordFailure(r.Context(), name, req.Input, err, time.Since(start))

		var unmatched *table.UnmatchedError
		if errors.As(err, &unmatched) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if s.metrics != nil {
		s.metrics.RecordEvaluation(name, decision.RuleID, decision.EvaluationTime)
	}
	if s.rec != nil {
		if _, err := s.rec.RecordDecision(r.Context(), decision); err != nil {
			s.logger.Error("failed to record decision", "table", name, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, evalResponse{
		Table:  decision.Table,
		RuleID: decision.RuleID,
		Output: fmt.Sprintf("%v", decision.Output),
		TimeUS: decision.EvaluationTime.Microseconds(),
	})
}

func (s *Server) recordFailure(ctx context.Context, name string, input []any, err error, elapsed time.Duration) {
	var unmatched *table.UnmatchedError
	if !errors.As(err, &unmatched) {
		return
	}
	if s.metrics != nil {
		s.metrics.RecordUnmatched(name, elapsed)
	}
	if s.rec != nil {
		if _, rerr := s.rec.RecordUnmatched(ctx, name, table.Tuple(input...)); rerr != nil {
			s.logger.Error("failed to record unmatched evaluation", "table", name, "error", rerr)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
