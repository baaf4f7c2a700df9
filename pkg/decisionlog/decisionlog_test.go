package decisionlog

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/tabula/pkg/machine"
	"mercator-hq/tabula/pkg/table"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func seedRecords(t *testing.T, s Storage, base time.Time) {
	t.Helper()
	records := []*Record{
		{ID: "r1", Kind: KindTable, Subject: "access-control", Input: "(Admin)", RuleID: "admin-full-access", Output: "allow", Matched: true, CreatedAt: base},
		{ID: "r2", Kind: KindTable, Subject: "hvac", Input: "(22.5)", RuleID: "comfortable-normal", Output: "hold/none", Matched: true, CreatedAt: base.Add(time.Minute)},
		{ID: "r3", Kind: KindTable, Subject: "hvac", Input: "(99)", Matched: false, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "r4", Kind: KindMachine, Subject: "order-processing", Input: "Submit", From: "Draft", To: "PendingPayment", Matched: true, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, r := range records {
		if err := s.Store(context.Background(), r); err != nil {
			t.Fatalf("Store(%s) error = %v", r.ID, err)
		}
	}
}

// runStorageTests exercises the Storage contract against any backend.
func runStorageTests(t *testing.T, s Storage) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedRecords(t, s, base)

	t.Run("query all newest first", func(t *testing.T) {
		got, err := s.Query(ctx, &Query{})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("Query() returned %d records, want 4", len(got))
		}
		if got[0].ID != "r4" || got[3].ID != "r1" {
			t.Errorf("Query() order = [%s..%s], want [r4..r1]", got[0].ID, got[3].ID)
		}
	})

	t.Run("filter by subject", func(t *testing.T) {
		got, err := s.Query(ctx, &Query{Subject: "hvac"})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("Query(subject=hvac) returned %d records, want 2", len(got))
		}
	})

	t.Run("filter by kind", func(t *testing.T) {
		count, err := s.Count(ctx, &Query{Kind: KindMachine})
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if count != 1 {
			t.Errorf("Count(kind=machine) = %d, want 1", count)
		}
	})

	t.Run("filter unmatched", func(t *testing.T) {
		got, err := s.Query(ctx, &Query{OnlyUnmatched: true})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "r3" {
			t.Errorf("Query(unmatched) = %v, want just r3", got)
		}
	})

	t.Run("time window", func(t *testing.T) {
		got, err := s.Query(ctx, &Query{
			Since: base.Add(30 * time.Second),
			Until: base.Add(150 * time.Second),
		})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("Query(window) returned %d records, want 2", len(got))
		}
	})

	t.Run("limit and offset", func(t *testing.T) {
		got, err := s.Query(ctx, &Query{Limit: 2, Offset: 1})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 2 || got[0].ID != "r3" || got[1].ID != "r2" {
			t.Errorf("Query(limit=2 offset=1) = %v, want [r3 r2]", got)
		}
	})

	t.Run("delete before", func(t *testing.T) {
		deleted, err := s.DeleteBefore(ctx, base.Add(90*time.Second))
		if err != nil {
			t.Fatalf("DeleteBefore() error = %v", err)
		}
		if deleted != 2 {
			t.Errorf("DeleteBefore() = %d, want 2", deleted)
		}
	})

	t.Run("delete oldest", func(t *testing.T) {
		deleted, err := s.DeleteOldest(ctx, 1)
		if err != nil {
			t.Fatalf("DeleteOldest() error = %v", err)
		}
		if deleted != 1 {
			t.Errorf("DeleteOldest() = %d, want 1", deleted)
		}

		remaining, err := s.Query(ctx, &Query{})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(remaining) != 1 || remaining[0].ID != "r4" {
			t.Errorf("remaining = %v, want just r4", remaining)
		}
	})
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	runStorageTests(t, s)
}

func TestSQLiteStorage(t *testing.T) {
	s, err := NewSQLiteStorage(&SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "decisions.db"),
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		WALMode:      true,
		BusyTimeout:  time.Second,
	}, discard())
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	defer s.Close()
	runStorageTests(t, s)
}

func TestMemoryStorageClosed(t *testing.T) {
	s := NewMemoryStorage()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Store(context.Background(), &Record{ID: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Store() after Close error = %v, want ErrClosed", err)
	}
	if _, err := s.Query(context.Background(), nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Query() after Close error = %v, want ErrClosed", err)
	}
}

func TestMemoryStorageCopiesRecords(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	in := &Record{ID: "a", Kind: KindTable, Subject: "t", Matched: true, CreatedAt: time.Now()}
	if err := s.Store(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	in.Subject = "mutated"

	got, err := s.Query(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Subject != "t" {
		t.Errorf("stored record was mutated through caller's pointer")
	}
}

func TestRecorder(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	rec := NewRecorder(s, discard())
	ctx := context.Background()

	decision := &table.Decision{
		Table:          "hvac",
		RuleID:         "comfortable-normal",
		Output:         "hold/none",
		Input:          table.Tuple(22.5, 50.0),
		EvaluationTime: 40 * time.Microsecond,
	}
	id, err := rec.RecordDecision(ctx, decision)
	if err != nil {
		t.Fatalf("RecordDecision() error = %v", err)
	}
	if id == "" {
		t.Error("RecordDecision() returned an empty ID")
	}

	if _, err := rec.RecordUnmatched(ctx, "hvac", table.Tuple(999.0, 50.0)); err != nil {
		t.Fatalf("RecordUnmatched() error = %v", err)
	}

	result := machine.Result{
		From:    "Draft",
		Event:   "Submit",
		To:      "PendingPayment",
		Effects: []machine.Effect{"validateOrder", "sendEmail"},
		Applied: true,
	}
	if _, err := rec.RecordStep(ctx, "order-processing", result); err != nil {
		t.Fatalf("RecordStep() error = %v", err)
	}

	records, err := s.Query(ctx, &Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("stored %d records, want 3", len(records))
	}

	for _, r := range records {
		if r.ID == "" {
			t.Error("record has no ID")
		}
		switch r.Kind {
		case KindTable:
			if r.Subject != "hvac" {
				t.Errorf("table record subject = %s, want hvac", r.Subject)
			}
		case KindMachine:
			if r.From != "Draft" || r.To != "PendingPayment" {
				t.Errorf("machine record states = %s->%s, want Draft->PendingPayment", r.From, r.To)
			}
			if r.Output != "validateOrder,sendEmail" {
				t.Errorf("machine record output = %q, want effect list", r.Output)
			}
		}
	}

	unmatched, err := s.Query(ctx, &Query{OnlyUnmatched: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(unmatched) != 1 || unmatched[0].RuleID != "" {
		t.Errorf("unmatched records = %v, want one with no rule ID", unmatched)
	}
}

func TestPrunerByAge(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	old := &Record{ID: "old", Kind: KindTable, Subject: "t", CreatedAt: now.AddDate(0, 0, -120)}
	fresh := &Record{ID: "fresh", Kind: KindTable, Subject: "t", CreatedAt: now.AddDate(0, 0, -5)}
	for _, r := range []*Record{old, fresh} {
		if err := s.Store(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}

	p := NewPruner(s, &RetentionConfig{RetentionDays: 90}, discard())
	p.clock = func() time.Time { return now }

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() = %d, want 1", deleted)
	}

	remaining, err := s.Query(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].ID != "fresh" {
		t.Errorf("remaining = %v, want just fresh", remaining)
	}
}

func TestPrunerByCount(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r := &Record{
			ID:        string(rune('a' + i)),
			Kind:      KindTable,
			Subject:   "t",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Store(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}

	p := NewPruner(s, &RetentionConfig{MaxRecords: 3}, discard())
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() = %d, want 2", deleted)
	}

	count, err := s.Count(context.Background(), &Query{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestPrunerSchedulerValidation(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	p := NewPruner(s, &RetentionConfig{PruneSchedule: "not a cron expression"}, discard())
	if err := p.Start(context.Background()); err == nil {
		t.Error("Start() error = nil, want invalid schedule error")
	}

	// An empty schedule is a configured no-op rather than an error.
	p = NewPruner(s, &RetentionConfig{}, discard())
	if err := p.Start(context.Background()); err != nil {
		t.Errorf("Start() with empty schedule error = %v", err)
	}
	if p.IsRunning() {
		t.Error("IsRunning() = true after no-op start")
	}
}

func TestPrunerSchedulerLifecycle(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPruner(s, &RetentionConfig{RetentionDays: 1, PruneSchedule: "0 3 * * *"}, discard())
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !p.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	p.Stop()
	if p.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}
