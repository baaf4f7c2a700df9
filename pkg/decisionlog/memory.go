package decisionlog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage backend. Records are held in
// insertion order and copied on the way in and out, so callers can mutate
// what they pass or receive without corrupting the log.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*Record
	closed  bool
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends a copy of the record.
func (s *MemoryStorage) Store(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	clone := *record
	s.records = append(s.records, &clone)
	return nil
}

// Query returns matching records, newest first.
func (s *MemoryStorage) Query(ctx context.Context, query *Query) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if query == nil {
		query = &Query{}
	}

	var matched []*Record
	for _, r := range s.records {
		if query.matches(r) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			return []*Record{}, nil
		}
		matched = matched[query.Offset:]
	}

	limit := query.Limit
	if limit <= 0 || limit > len(matched) {
		limit = len(matched)
	}

	out := make([]*Record, 0, limit)
	for _, r := range matched[:limit] {
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, query *Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}
	if query == nil {
		query = &Query{}
	}

	var count int64
	for _, r := range s.records {
		if query.matches(r) {
			count++
		}
	}
	return count, nil
}

// DeleteBefore removes records created strictly before the cutoff.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	kept := s.records[:0]
	var deleted int64
	for _, r := range s.records {
		if r.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted, nil
}

// DeleteOldest removes the n oldest records.
func (s *MemoryStorage) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if n <= 0 {
		return 0, nil
	}

	sorted := make([]*Record, len(s.records))
	copy(sorted, s.records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	if n > int64(len(sorted)) {
		n = int64(len(sorted))
	}

	doomed := make(map[*Record]struct{}, n)
	for _, r := range sorted[:n] {
		doomed[r] = struct{}{}
	}

	kept := s.records[:0]
	for _, r := range s.records {
		if _, ok := doomed[r]; ok {
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return n, nil
}

// Close marks the backend closed; further operations fail with ErrClosed.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil
	return nil
}

func (q *Query) matches(r *Record) bool {
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	if q.Subject != "" && r.Subject != q.Subject {
		return false
	}
	if q.RuleID != "" && r.RuleID != q.RuleID {
		return false
	}
	if !q.Since.IsZero() && r.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && r.CreatedAt.After(q.Until) {
		return false
	}
	if q.OnlyUnmatched && r.Matched {
		return false
	}
	return true
}
