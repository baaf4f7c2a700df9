package machine

import "fmt"

// Spec declares a state machine prior to validation.
type Spec[C any] struct {
	// Name identifies the machine in logs and errors.
	Name string

	// States is the closed state set.
	States []State

	// Initial is the state a fresh instance starts in.
	Initial State

	// Terminal marks the states that admit no further transitions.
	Terminal []State

	// Transitions is the transition table. Order is significant only among
	// guarded transitions sharing a (state, event) key.
	Transitions []Transition[C]
}

// Definition is an immutable, validated state machine definition. The type
// parameter C is the guard context evaluated by guarded transitions.
type Definition[C any] struct {
	name        string
	initial     State
	states      map[State]bool
	terminal    map[State]bool
	transitions map[key][]Transition[C]
}

// New validates a machine specification and returns the immutable
// definition.
//
// Validation covers: non-empty closed state set, a declared initial state,
// terminal states being members of the state set, transitions referencing
// declared states only, no transitions out of terminal states (the invariant
// that terminal means terminal is enforced structurally, not by convention),
// at most one unguarded transition per (state, event) key, and no guarded
// transition shadowed by an earlier unguarded one.
func New[C any](spec Spec[C]) (*Definition[C], error) {
	name := spec.Name
	if name == "" {
		name = "unnamed"
	}

	var problems []string

	states := make(map[State]bool, len(spec.States))
	for _, s := range spec.States {
		if s == "" {
			problems = append(problems, "state name cannot be empty")
			continue
		}
		if states[s] {
			problems = append(problems, fmt.Sprintf("duplicate state %q", s))
		}
		states[s] = true
	}
	if len(states) == 0 {
		problems = append(problems, "machine must declare at least one state")
	}

	if spec.Initial == "" {
		problems = append(problems, "machine must declare an initial state")
	} else if !states[spec.Initial] {
		problems = append(problems, fmt.Sprintf("initial state %q is not declared", spec.Initial))
	}

	terminal := make(map[State]bool, len(spec.Terminal))
	for _, s := range spec.Terminal {
		if !states[s] {
			problems = append(problems, fmt.Sprintf("terminal state %q is not declared", s))
			continue
		}
		terminal[s] = true
	}

	transitions := make(map[key][]Transition[C])
	for i, tr := range spec.Transitions {
		label := string(tr.From) + "/" + string(tr.On)
		if tr.On == "" {
			problems = append(problems, fmt.Sprintf("transition %d has no event", i))
			continue
		}
		if !states[tr.From] {
			problems = append(problems, fmt.Sprintf("transition %s: source state %q is not declared", label, tr.From))
			continue
		}
		if !states[tr.To] {
			problems = append(problems, fmt.Sprintf("transition %s: destination state %q is not declared", label, tr.To))
			continue
		}
		if terminal[tr.From] {
			problems = append(problems, fmt.Sprintf("transition %s: state %q is terminal and admits no transitions", label, tr.From))
			continue
		}

		k := key{from: tr.From, event: tr.On}
		existing := transitions[k]
		if len(existing) > 0 && existing[len(existing)-1].Guard == nil {
			if tr.Guard == nil {
				problems = append(problems, fmt.Sprintf("transition %s: duplicate unguarded transition", label))
			} else {
				problems = append(problems, fmt.Sprintf("transition %s: guarded transition is unreachable after an unguarded one", label))
			}
			continue
		}
		transitions[k] = append(existing, tr)
	}

	if len(problems) > 0 {
		return nil, &DefinitionError{Machine: name, Errors: problems}
	}

	return &Definition[C]{
		name:        name,
		initial:     spec.Initial,
		states:      states,
		terminal:    terminal,
		transitions: transitions,
	}, nil
}

// MustNew is New for machines declared statically in code. It panics on a
// definition error.
func MustNew[C any](spec Spec[C]) *Definition[C] {
	d, err := New(spec)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the machine name.
func (d *Definition[C]) Name() string { return d.name }

// Initial returns the declared initial state.
func (d *Definition[C]) Initial() State { return d.initial }

// IsTerminal reports whether s is a terminal state.
func (d *Definition[C]) IsTerminal(s State) bool { return d.terminal[s] }

// States returns the declared state set (unordered).
func (d *Definition[C]) States() []State {
	out := make([]State, 0, len(d.states))
	for s := range d.states {
		out = append(out, s)
	}
	return out
}

// Transition delivers an event to a machine instance in the given state and
// returns the new state plus the effects the transition emits.
//
// Undefined (state, event) combinations, rejected guards, unknown states,
// and events delivered to terminal states all degrade gracefully to
// (same state, no effects). Use Step to additionally learn whether a
// transition actually fired.
func (d *Definition[C]) Transition(state State, event Event, guardCtx C) (State, []Effect) {
	r := d.Step(state, event, guardCtx)
	return r.To, r.Effects
}

// Step is Transition with a full Result, for drivers that trace or audit
// machine activity.
func (d *Definition[C]) Step(state State, event Event, guardCtx C) Result {
	noop := Result{From: state, Event: event, To: state, Effects: nil, Applied: false}

	if !d.states[state] || d.terminal[state] {
		return noop
	}

	for _, tr := range d.transitions[key{from: state, event: event}] {
		if tr.Guard != nil && !tr.Guard(guardCtx) {
			continue
		}
		return Result{
			From:    state,
			Event:   event,
			To:      tr.To,
			Effects: append([]Effect(nil), tr.Effects...),
			Applied: true,
		}
	}

	return noop
}
