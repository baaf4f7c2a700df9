// Package machine provides a small Mealy-style finite state machine: a
// closed set of states, a transition table keyed by (state, event), optional
// guard predicates over a caller-supplied context value, and effect tokens
// describing the side effects a transition nominally triggers.
//
// The machine never executes effects; it only reports them. Executing them is
// the caller's responsibility, which keeps Transition a pure function of its
// inputs.
//
// # Error policy
//
// Unlike a decision table lookup, where an unmatched input is a build defect
// that must fail loudly, an undefined (state, event) combination here is
// expected at run time (a duplicate shipment notification, a payment callback
// arriving twice) and must not take the system down. Transition therefore
// degrades gracefully: it returns the unchanged state and no effects.
// Terminal states absorb every event the same way. Preserve this asymmetry
// when wiring the two packages together.
//
// # Guards
//
// Several transitions may share a (state, event) key when they carry guards;
// they are tried in declaration order and the first whose guard accepts the
// context wins. Guard disjointness cannot be validated at construction, so
// declaration order is an explicit part of a machine's definition. At most
// one unguarded transition per key is allowed, and a guarded transition may
// not follow the unguarded one, which would make it unreachable.
//
// # Concurrency
//
// A Definition is immutable and reentrant. The caller owns the current-state
// value; concurrent instances each hold their own state and need no locking
// inside this package.
package machine
