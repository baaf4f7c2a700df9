package decisionlog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RecordKind distinguishes table evaluations from machine steps.
type RecordKind string

const (
	KindTable   RecordKind = "table"
	KindMachine RecordKind = "machine"
)

// Record is one logged evaluation outcome.
type Record struct {
	// ID is a UUID assigned when the record is created.
	ID string

	// Kind says whether this record came from a decision table or a state
	// machine.
	Kind RecordKind

	// Subject is the table or machine name.
	Subject string

	// Input is the rendered input tuple for table records, or the
	// triggering event for machine records.
	Input string

	// RuleID is the matching rule for table records; empty for machine
	// records and for unmatched evaluations.
	RuleID string

	// Output is the rendered verdict for table records.
	Output string

	// From and To are the states around a machine step; empty for table
	// records.
	From string
	To   string

	// Matched reports whether a rule matched or a transition applied.
	Matched bool

	// EvalTime is how long the evaluation took.
	EvalTime time.Duration

	// CreatedAt is when the record was written.
	CreatedAt time.Time
}

// Query filters stored records. Zero-valued fields are ignored.
type Query struct {
	// Kind restricts results to table or machine records.
	Kind RecordKind

	// Subject restricts results to one table or machine name.
	Subject string

	// RuleID restricts results to one matching rule.
	RuleID string

	// Since and Until bound CreatedAt.
	Since time.Time
	Until time.Time

	// OnlyUnmatched restricts results to failed evaluations.
	OnlyUnmatched bool

	// Limit caps the number of results; 0 means the backend default.
	Limit int

	// Offset skips this many results for pagination.
	Offset int
}

// Storage persists decision records.
type Storage interface {
	// Store persists one record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteBefore removes records created strictly before the cutoff and
	// returns how many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the n oldest records and returns how many were
	// removed.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// Close releases backend resources.
	Close() error
}

// ErrClosed is returned by operations on a closed storage backend.
var ErrClosed = errors.New("decisionlog: storage is closed")

// StorageError wraps a backend failure with the backend name and the
// operation that failed.
type StorageError struct {
	Backend   string
	Operation string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("decisionlog %s storage: %s: %v", e.Backend, e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func newStorageError(backend, operation string, err error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Err: err}
}
