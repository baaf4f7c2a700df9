package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/tabula/pkg/config"
	"mercator-hq/tabula/pkg/decisionlog"
	"mercator-hq/tabula/pkg/decisions/access"
	"mercator-hq/tabula/pkg/decisions/climate"
	"mercator-hq/tabula/pkg/table"
	"mercator-hq/tabula/pkg/table/source"
	"mercator-hq/tabula/pkg/telemetry/metrics"
)

type testServer struct {
	srv      *Server
	registry *prometheus.Registry
	store    *decisionlog.MemoryStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	accessTable, err := access.New()
	if err != nil {
		t.Fatal(err)
	}
	climateTable, err := climate.New()
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Telemetry.Metrics.Enabled = true

	logger := slog.New(slog.DiscardHandler)
	registry := prometheus.NewRegistry()
	dm := metrics.NewDecisionMetrics(nil, registry)
	store := decisionlog.NewMemoryStorage()
	t.Cleanup(func() { store.Close() })
	rec := decisionlog.NewRecorder(store, logger)

	srv, err := NewServer(cfg, []*table.Table{accessTable, climateTable}, logger, dm, rec)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return &testServer{srv: srv, registry: registry, store: store}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler(ts.registry).ServeHTTP(rec, req)
	return rec
}

func TestServerHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", rec.Code)
	}
}

func TestServerListTables(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, "GET", "/v1/tables", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/tables status = %d, want 200", rec.Code)
	}

	var infos []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if len(infos) != 2 {
		t.Errorf("listed %d tables, want 2", len(infos))
	}
}

func TestServerEvalDiscrete(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, "POST", "/v1/tables/access-control/eval",
		`{"input": ["Editor", "Document", "Write", "other"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("eval status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["output"] != "allow" || resp["rule_id"] != "editor-write" {
		t.Errorf("eval response = %v", resp)
	}
}

func TestServerEvalContinuous(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, "POST", "/v1/tables/hvac/eval", `{"input": [30, 80]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("eval status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["output"] != "cool/dehumidify" {
		t.Errorf("eval output = %v, want cool/dehumidify", resp["output"])
	}
}

func TestServerEvalErrors(t *testing.T) {
	ts := newTestServer(t)

	t.Run("unknown table", func(t *testing.T) {
		rec := ts.do(t, "POST", "/v1/tables/nonexistent/eval", `{"input": ["x"]}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := ts.do(t, "POST", "/v1/tables/hvac/eval", `{"input": [`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("bad arity", func(t *testing.T) {
		rec := ts.do(t, "POST", "/v1/tables/hvac/eval", `{"input": [30]}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown discrete value", func(t *testing.T) {
		rec := ts.do(t, "POST", "/v1/tables/access-control/eval",
			`{"input": ["Superuser", "Document", "Read", "other"]}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestServerEvalUnmatchedFailsLoud(t *testing.T) {
	// A first-match table with a deliberate hole.
	holed, err := source.ParseBytes([]byte(`name: holed
mode: first-match
dimensions:
  - name: level
    kind: continuous
rules:
  - id: low
    cells:
      - interval: "(-inf,10)"
    output: low
`))
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	srv, err := NewServer(cfg, []*table.Table{holed}, slog.New(slog.DiscardHandler), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/v1/tables/holed/eval", strings.NewReader(`{"input": [50]}`))
	rec := httptest.NewRecorder()
	srv.Handler(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unmatched eval status = %d, want 422", rec.Code)
	}
}

func TestServerRecordsDecisions(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, "POST", "/v1/tables/hvac/eval", `{"input": [22.5, 50]}`)
	ts.do(t, "POST", "/v1/tables/access-control/eval",
		`{"input": ["Admin", "Report", "Read", "owner"]}`)

	records, err := ts.store.Query(context.Background(), &decisionlog.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("recorded %d decisions, want 2", len(records))
	}
	for _, r := range records {
		if r.Kind != decisionlog.KindTable || !r.Matched {
			t.Errorf("record = %+v, want matched table record", r)
		}
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, "POST", "/v1/tables/hvac/eval", `{"input": [22.5, 50]}`)

	rec := ts.do(t, "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "tabula_evaluations_total") {
		t.Error("metrics exposition missing tabula_evaluations_total")
	}
}

func TestServerReload(t *testing.T) {
	ts := newTestServer(t)

	climateTable, err := climate.New()
	if err != nil {
		t.Fatal(err)
	}
	if err := ts.srv.Reload([]*table.Table{climateTable}); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	names := ts.srv.TableNames()
	if len(names) != 1 || names[0] != "hvac" {
		t.Errorf("TableNames() = %v, want [hvac]", names)
	}

	rec := ts.do(t, "POST", "/v1/tables/access-control/eval",
		`{"input": ["Admin", "Report", "Read", "owner"]}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("dropped table eval status = %d, want 404", rec.Code)
	}
}

func TestServerReloadRejectsDuplicates(t *testing.T) {
	ts := newTestServer(t)

	climateTable, err := climate.New()
	if err != nil {
		t.Fatal(err)
	}
	other, err := climate.New()
	if err != nil {
		t.Fatal(err)
	}
	if err := ts.srv.Reload([]*table.Table{climateTable, other}); err == nil {
		t.Error("Reload() with duplicate names error = nil, want error")
	}
}
