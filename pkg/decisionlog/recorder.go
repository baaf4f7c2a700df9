package decisionlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/tabula/pkg/machine"
	"mercator-hq/tabula/pkg/table"
)

// Recorder turns evaluation outcomes into stored records.
type Recorder struct {
	storage Storage
	logger  *slog.Logger
	clock   func() time.Time
}

// NewRecorder creates a recorder writing to the given storage.
func NewRecorder(storage Storage, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		storage: storage,
		logger:  logger.With("component", "decisionlog.recorder"),
		clock:   time.Now,
	}
}

// RecordDecision logs one table evaluation outcome.
func (r *Recorder) RecordDecision(ctx context.Context, decision *table.Decision) (string, error) {
	record := &Record{
		ID:        uuid.NewString(),
		Kind:      KindTable,
		Subject:   decision.Table,
		Input:     decision.Input.String(),
		RuleID:    decision.RuleID,
		Output:    fmt.Sprintf("%v", decision.Output),
		Matched:   true,
		EvalTime:  decision.EvaluationTime,
		CreatedAt: r.clock(),
	}
	return r.store(ctx, record)
}

// RecordUnmatched logs a failed table evaluation.
func (r *Recorder) RecordUnmatched(ctx context.Context, tableName string, input table.InputTuple) (string, error) {
	record := &Record{
		ID:        uuid.NewString(),
		Kind:      KindTable,
		Subject:   tableName,
		Input:     input.String(),
		Matched:   false,
		CreatedAt: r.clock(),
	}
	return r.store(ctx, record)
}

// RecordStep logs one state machine step, applied or not.
func (r *Recorder) RecordStep(ctx context.Context, machineName string, result machine.Result) (string, error) {
	record := &Record{
		ID:        uuid.NewString(),
		Kind:      KindMachine,
		Subject:   machineName,
		Input:     string(result.Event),
		From:      string(result.From),
		To:        string(result.To),
		Output:    effectsString(result.Effects),
		Matched:   result.Applied,
		CreatedAt: r.clock(),
	}
	return r.store(ctx, record)
}

func (r *Recorder) store(ctx context.Context, record *Record) (string, error) {
	if err := r.storage.Store(ctx, record); err != nil {
		return "", err
	}
	r.logger.Debug("decision recorded",
		"record_id", record.ID,
		"kind", record.Kind,
		"subject", record.Subject,
		"matched", record.Matched,
	)
	return record.ID, nil
}

func effectsString(effects []machine.Effect) string {
	if len(effects) == 0 {
		return ""
	}
	s := string(effects[0])
	for _, e := range effects[1:] {
		s += "," + string(e)
	}
	return s
}
