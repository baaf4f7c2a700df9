package machine

// State is an enumerated machine state.
type State string

// Event is a named stimulus delivered to the machine.
type Event string

// Effect is an opaque named action token emitted by a transition. Effects
// are reported to the caller in declaration order and never executed here.
type Effect string

// Guard is a boolean predicate over ancillary context that further
// discriminates among transitions sharing the same (state, event) key.
type Guard[C any] func(ctx C) bool

// Transition declares one row of the transition table.
type Transition[C any] struct {
	// From is the source state.
	From State

	// On is the triggering event.
	On Event

	// To is the destination state.
	To State

	// Guard optionally gates the transition. A nil guard always accepts.
	Guard Guard[C]

	// Effects are the tokens emitted when the transition fires, in order.
	Effects []Effect

	// Description is optional human-readable context for reviews.
	Description string
}

// Result describes the outcome of delivering one event.
type Result struct {
	// From is the state the event was delivered in.
	From State

	// Event is the delivered event.
	Event Event

	// To is the resulting state. Equal to From when no transition applied.
	To State

	// Effects are the emitted tokens, empty when no transition applied.
	Effects []Effect

	// Applied reports whether a transition fired. False for undefined
	// (state, event) combinations, rejected guards, and terminal states.
	Applied bool
}

// key indexes the transition table.
type key struct {
	from  State
	event Event
}
