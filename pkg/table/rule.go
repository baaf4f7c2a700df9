package table

import (
	"fmt"
	"strings"
)

// Rule pairs a pattern over the table's dimensions with an output. A rule
// matches an input tuple when every cell matches the corresponding tuple
// component.
type Rule struct {
	// ID uniquely identifies the rule within its table.
	ID string

	// Description is optional human-readable context for reviews.
	Description string

	// Cells is the pattern, one cell per dimension, in dimension order.
	Cells []Cell

	// Output is the opaque result value returned when the rule matches.
	Output any
}

// matches reports whether the rule matches a normalized input tuple.
func (r Rule) matches(tuple InputTuple) bool {
	for i, cell := range r.Cells {
		if !cell.matches(tuple[i]) {
			return false
		}
	}
	return true
}

// overlaps reports whether two rules of the same table can match a common
// input tuple: they overlap exactly when every dimension's cells overlap.
func (r Rule) overlaps(other Rule) bool {
	for i, cell := range r.Cells {
		if !cell.overlaps(other.Cells[i]) {
			return false
		}
	}
	return true
}

// String formats the rule pattern as a printed table row, e.g.
// "Admin | * | Read | * -> allow".
func (r Rule) String() string {
	cells := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		cells[i] = c.String()
	}
	var sb strings.Builder
	sb.WriteString(strings.Join(cells, " | "))
	sb.WriteString(" -> ")
	sb.WriteString(outputString(r.Output))
	return sb.String()
}

func outputString(output any) string {
	return fmt.Sprintf("%v", output)
}
