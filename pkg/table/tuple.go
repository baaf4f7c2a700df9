package table

import (
	"fmt"
	"strings"
)

// InputTuple is an ordered combination of input values, one per dimension.
// Discrete components are strings; continuous components are any numeric type
// and are normalized to float64 during evaluation. Tuples are constructed
// fresh per call and never mutated by the evaluator.
type InputTuple []any

// Tuple builds an InputTuple from the given components.
func Tuple(components ...any) InputTuple {
	return InputTuple(components)
}

// String formats the tuple as "(a, b, c)" for logs and error messages.
func (t InputTuple) String() string {
	parts := make([]string, len(t))
	for i, c := range t {
		parts[i] = fmt.Sprintf("%v", c)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// normalize validates the tuple against the table's dimensions and returns a
// canonical copy: discrete components checked against the declared value set,
// continuous components converted to float64.
func normalize(tuple InputTuple, dims []Dimension) (InputTuple, error) {
	if len(tuple) != len(dims) {
		return nil, &ArityError{Want: len(dims), Got: len(tuple)}
	}

	out := make(InputTuple, len(tuple))
	for i, dim := range dims {
		switch dim.Kind {
		case Discrete:
			v, ok := tuple[i].(string)
			if !ok {
				return nil, &DimensionError{
					Dimension: dim.Name,
					Message:   fmt.Sprintf("expected a string value, got %T", tuple[i]),
				}
			}
			if !dim.contains(v) {
				return nil, &DimensionError{
					Dimension: dim.Name,
					Message:   fmt.Sprintf("value %q is not in the declared set", v),
				}
			}
			out[i] = v

		case Continuous:
			v, err := toFloat64(tuple[i])
			if err != nil {
				return nil, &DimensionError{
					Dimension: dim.Name,
					Message:   err.Error(),
				}
			}
			out[i] = v
		}
	}

	return out, nil
}

// toFloat64 converts a numeric tuple component to float64.
func toFloat64(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("expected a numeric value, got %T", v)
	}
}
