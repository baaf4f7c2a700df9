package table

import "fmt"

// CellKind identifies the kind of a rule pattern component.
type CellKind string

const (
	// CellAny matches every value of its dimension ("don't care").
	CellAny CellKind = "any"

	// CellValue matches one discrete value exactly.
	CellValue CellKind = "value"

	// CellInterval matches a continuous value against an interval.
	CellInterval CellKind = "interval"
)

// Cell is one component of a rule pattern, covering one dimension.
// Use the Any, Is, and In constructors; the zero Cell is invalid.
type Cell struct {
	// Kind is the cell kind.
	Kind CellKind

	// Value is the exact discrete value for CellValue cells.
	Value string

	// Interval is the matched range for CellInterval cells.
	Interval Interval
}

// Any returns a wildcard cell that matches every value.
func Any() Cell {
	return Cell{Kind: CellAny}
}

// Is returns a cell that matches a discrete value exactly.
func Is(value string) Cell {
	return Cell{Kind: CellValue, Value: value}
}

// In returns a cell that matches a continuous value against an interval.
func In(iv Interval) Cell {
	return Cell{Kind: CellInterval, Interval: iv}
}

// matches reports whether the cell matches a single tuple component.
// The component has already been checked against its dimension, so a
// discrete component is a string and a continuous component a float64.
func (c Cell) matches(component any) bool {
	switch c.Kind {
	case CellAny:
		return true
	case CellValue:
		v, ok := component.(string)
		return ok && v == c.Value
	case CellInterval:
		v, ok := component.(float64)
		return ok && c.Interval.Contains(v)
	default:
		return false
	}
}

// overlaps reports whether two cells of the same dimension can match a common
// value. Used for order-independent disjointness validation.
func (c Cell) overlaps(other Cell) bool {
	if c.Kind == CellAny || other.Kind == CellAny {
		return true
	}
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case CellValue:
		return c.Value == other.Value
	case CellInterval:
		return c.Interval.Overlaps(other.Interval)
	default:
		return false
	}
}

// validate checks that the cell is well-formed for its dimension.
func (c Cell) validate(dim Dimension) error {
	switch c.Kind {
	case CellAny:
		return nil

	case CellValue:
		if dim.Kind != Discrete {
			return &DimensionError{Dimension: dim.Name, Message: "value cell requires a discrete dimension"}
		}
		if !dim.contains(c.Value) {
			return &DimensionError{Dimension: dim.Name, Message: fmt.Sprintf("value %q is not in the declared set", c.Value)}
		}
		return nil

	case CellInterval:
		if dim.Kind != Continuous {
			return &DimensionError{Dimension: dim.Name, Message: "interval cell requires a continuous dimension"}
		}
		if c.Interval.Empty() {
			return &DimensionError{Dimension: dim.Name, Message: fmt.Sprintf("interval %s is empty", c.Interval)}
		}
		return nil

	default:
		return &DimensionError{Dimension: dim.Name, Message: fmt.Sprintf("unknown cell kind %q", c.Kind)}
	}
}

// String formats the cell the way it would appear in a printed table row.
func (c Cell) String() string {
	switch c.Kind {
	case CellAny:
		return "*"
	case CellValue:
		return c.Value
	case CellInterval:
		return c.Interval.String()
	default:
		return fmt.Sprintf("invalid(%s)", string(c.Kind))
	}
}
