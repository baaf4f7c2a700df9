package table

import (
	"fmt"
	"sort"
)

// Mode determines how a table treats overlap between its rules.
type Mode string

const (
	// ModeStrict requires rules to be pairwise disjoint; the property is
	// verified at construction time, so evaluation order can never influence
	// the result. This is the default.
	ModeStrict Mode = "strict"

	// ModeFirstMatch treats rules as an ordered sequence in which the first
	// matching rule wins. Overlap is permitted and must be intentional;
	// typical first-match tables end with a catch-all default row.
	ModeFirstMatch Mode = "first-match"
)

// maxEnumeratedInputs bounds the cross-product completeness check for
// all-discrete tables. Larger domains skip the check.
const maxEnumeratedInputs = 1 << 16

// Spec declares a decision table prior to validation.
type Spec struct {
	// Name identifies the table in logs, errors, and the decision log.
	Name string

	// Mode is ModeStrict or ModeFirstMatch. Empty defaults to ModeStrict.
	Mode Mode

	// Dimensions declares the table's axes in tuple order.
	Dimensions []Dimension

	// Rules is the rule set. In ModeFirstMatch, order is significant.
	Rules []Rule
}

// Table is an immutable, validated decision table.
type Table struct {
	name string
	mode Mode
	dims []Dimension
	rules []Rule
}

// New validates a table specification and returns the immutable table.
//
// Validation covers: dimension declarations, rule arity, cell/dimension kind
// agreement, membership of discrete cell values in their declared sets,
// pairwise rule disjointness (ModeStrict only, independent of declaration
// order), and completeness over the full cross product for all-discrete
// tables. All problems found are reported together in a *ValidationError.
func New(spec Spec) (*Table, error) {
	name := spec.Name
	if name == "" {
		name = "unnamed"
	}

	mode := spec.Mode
	if mode == "" {
		mode = ModeStrict
	}
	if mode != ModeStrict && mode != ModeFirstMatch {
		return nil, &ValidationError{Table: name, Errors: []string{fmt.Sprintf("unknown mode %q", mode)}}
	}

	var problems []string

	if len(spec.Dimensions) == 0 {
		problems = append(problems, "table must declare at least one dimension")
	}
	if len(spec.Rules) == 0 {
		problems = append(problems, "table must declare at least one rule")
	}

	seenDims := make(map[string]bool, len(spec.Dimensions))
	for _, dim := range spec.Dimensions {
		if err := dim.validate(); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if seenDims[dim.Name] {
			problems = append(problems, fmt.Sprintf("duplicate dimension %q", dim.Name))
		}
		seenDims[dim.Name] = true
	}

	seenRules := make(map[string]bool, len(spec.Rules))
	for i, rule := range spec.Rules {
		id := rule.ID
		if id == "" {
			problems = append(problems, fmt.Sprintf("rule %d has no ID", i))
			continue
		}
		if seenRules[id] {
			problems = append(problems, fmt.Sprintf("duplicate rule ID %q", id))
		}
		seenRules[id] = true

		if len(rule.Cells) != len(spec.Dimensions) {
			problems = append(problems, (&ArityError{Table: name, RuleID: id, Want: len(spec.Dimensions), Got: len(rule.Cells)}).Error())
			continue
		}
		for j, cell := range rule.Cells {
			if err := cell.validate(spec.Dimensions[j]); err != nil {
				problems = append(problems, fmt.Sprintf("rule %s: %v", id, err))
			}
		}
		if rule.Output == nil {
			problems = append(problems, fmt.Sprintf("rule %s has no output", id))
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Table: name, Errors: problems}
	}

	t := &Table{
		name: name,
		mode: mode,
		dims: append([]Dimension(nil), spec.Dimensions...),
		rules: append([]Rule(nil), spec.Rules...),
	}

	if mode == ModeStrict {
		if err := t.checkDisjoint(); err != nil {
			return nil, err
		}
	}

	if err := t.checkCompleteness(); err != nil {
		return nil, err
	}

	return t, nil
}

// MustNew is New for tables declared statically in code, where a validation
// failure is a programming defect. It panics on error.
func MustNew(spec Spec) *Table {
	t, err := New(spec)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Mode returns the table's overlap mode.
func (t *Table) Mode() Mode { return t.mode }

// Dimensions returns a copy of the table's dimension declarations.
func (t *Table) Dimensions() []Dimension {
	return append([]Dimension(nil), t.dims...)
}

// Rules returns a copy of the table's rules in declaration order.
func (t *Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// checkDisjoint verifies pairwise rule disjointness. Because the check is
// pairwise over the whole rule set, it does not depend on declaration order;
// reordering a strict table's rules can never change what New accepts.
func (t *Table) checkDisjoint() error {
	for i := 0; i < len(t.rules); i++ {
		for j := i + 1; j < len(t.rules); j++ {
			if t.rules[i].overlaps(t.rules[j]) {
				return &OverlapError{Table: t.name, RuleA: t.rules[i].ID, RuleB: t.rules[j].ID}
			}
		}
	}
	return nil
}

// checkCompleteness enumerates the full discrete cross product and verifies
// every combination is covered by some rule. The check applies only to
// all-discrete tables: no equivalent static check exists for continuous
// dimensions, where coverage remains a design-review and property-test
// responsibility. Domains larger than maxEnumeratedInputs are skipped.
func (t *Table) checkCompleteness() error {
	product := 1
	for _, dim := range t.dims {
		if dim.Kind != Discrete {
			return nil
		}
		product *= len(dim.Values)
		if product > maxEnumeratedInputs {
			return nil
		}
	}

	var first InputTuple
	missing := 0

	tuple := make(InputTuple, len(t.dims))
	var walk func(i int)
	walk = func(i int) {
		if i == len(t.dims) {
			for _, rule := range t.rules {
				if rule.matches(tuple) {
					return
				}
			}
			missing++
			if first == nil {
				first = append(InputTuple(nil), tuple...)
			}
			return
		}
		for _, v := range t.dims[i].Values {
			tuple[i] = v
			walk(i + 1)
		}
	}
	walk(0)

	if missing > 0 {
		return &CompletenessError{Table: t.name, Missing: first, Count: missing}
	}
	return nil
}

// CoverageGaps projects a continuous dimension's cells onto the number line
// and returns the ranges covered by no rule at all. A non-empty result proves
// the table incomplete; an empty result does not prove it complete, since a
// gap can hide in a combination of dimensions. Intended for lint tooling.
func (t *Table) CoverageGaps(dimension string) ([]Interval, error) {
	idx := -1
	for i, dim := range t.dims {
		if dim.Name == dimension {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &DimensionError{Dimension: dimension, Message: "no such dimension"}
	}
	if t.dims[idx].Kind != Continuous {
		return nil, &DimensionError{Dimension: dimension, Message: "coverage gaps apply to continuous dimensions only"}
	}

	var covered []Interval
	for _, rule := range t.rules {
		switch rule.Cells[idx].Kind {
		case CellAny:
			return nil, nil // A wildcard covers the whole axis.
		case CellInterval:
			covered = append(covered, rule.Cells[idx].Interval)
		}
	}
	if len(covered) == 0 {
		return []Interval{Unbounded()}, nil
	}

	return complementOf(covered), nil
}

// complementOf computes the uncovered ranges of the number line given a set
// of (possibly overlapping) intervals.
func complementOf(covered []Interval) []Interval {
	sorted := append([]Interval(nil), covered...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.LowerUnbounded != b.LowerUnbounded {
			return a.LowerUnbounded
		}
		if a.Lower != b.Lower {
			return a.Lower < b.Lower
		}
		return a.LowerInclusive && !b.LowerInclusive
	})

	var gaps []Interval

	// Gap below the lowest interval.
	frontier := sorted[0]
	if !frontier.LowerUnbounded {
		gaps = append(gaps, Interval{
			LowerUnbounded: true,
			Upper:          frontier.Lower,
			UpperInclusive: !frontier.LowerInclusive,
		})
	}

	// Sweep upward, extending the covered frontier and recording holes.
	for _, iv := range sorted[1:] {
		if frontier.UpperUnbounded {
			break
		}
		if !iv.LowerUnbounded && beginsAfter(iv, frontier.Upper, frontier.UpperInclusive) {
			gaps = append(gaps, Interval{
				Lower:          frontier.Upper,
				LowerInclusive: !frontier.UpperInclusive,
				Upper:          iv.Lower,
				UpperInclusive: !iv.LowerInclusive,
			})
		}
		if advances(iv, frontier.Upper, frontier.UpperInclusive) {
			frontier.Upper = iv.Upper
			frontier.UpperInclusive = iv.UpperInclusive
			frontier.UpperUnbounded = iv.UpperUnbounded
		}
	}

	if !frontier.UpperUnbounded {
		gaps = append(gaps, Interval{
			Lower:          frontier.Upper,
			LowerInclusive: !frontier.UpperInclusive,
			UpperUnbounded: true,
		})
	}

	// Drop degenerate empty gaps produced by touching half-open bounds.
	out := gaps[:0]
	for _, g := range gaps {
		if !g.Empty() {
			out = append(out, g)
		}
	}
	return out
}

// beginsAfter reports whether iv's lower end leaves a gap above the cursor.
func beginsAfter(iv Interval, cursor float64, cursorInclusive bool) bool {
	if iv.Lower > cursor {
		return true
	}
	return iv.Lower == cursor && !cursorInclusive && !iv.LowerInclusive
}

// advances reports whether iv's upper end extends coverage past the cursor.
func advances(iv Interval, cursor float64, cursorInclusive bool) bool {
	if iv.UpperUnbounded {
		return true
	}
	if iv.Upper > cursor {
		return true
	}
	return iv.Upper == cursor && iv.UpperInclusive && !cursorInclusive
}
