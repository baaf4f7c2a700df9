// Package decisionlog records evaluation outcomes for audit.
//
// Every table evaluation and state machine step can be captured as a
// Record: what was asked, which rule or transition answered, and how long
// the evaluation took. Records are written through the Storage interface,
// with an in-memory backend for tests and short-lived tooling and a SQLite
// backend for durable history.
//
// The Recorder adapts evaluator and machine outputs into records and
// assigns each one a UUID. The Pruner enforces retention, either on demand
// or on a cron schedule.
package decisionlog
