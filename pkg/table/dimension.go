package table

import "fmt"

// DimensionKind identifies the kind of a table axis.
type DimensionKind string

const (
	// Discrete dimensions draw their values from a finite named set.
	Discrete DimensionKind = "discrete"

	// Continuous dimensions draw their values from an ordered numeric domain,
	// classified by rules into non-overlapping intervals.
	Continuous DimensionKind = "continuous"
)

// Dimension is one axis of classification for a decision.
type Dimension struct {
	// Name identifies the dimension within its table.
	Name string

	// Kind is Discrete or Continuous.
	Kind DimensionKind

	// Values is the closed value set for a discrete dimension.
	// It must be empty for continuous dimensions.
	Values []string
}

// DiscreteDimension declares a discrete dimension over the given value set.
func DiscreteDimension(name string, values ...string) Dimension {
	return Dimension{Name: name, Kind: Discrete, Values: values}
}

// ContinuousDimension declares a continuous numeric dimension.
func ContinuousDimension(name string) Dimension {
	return Dimension{Name: name, Kind: Continuous}
}

// contains reports whether v belongs to a discrete dimension's value set.
func (d Dimension) contains(v string) bool {
	for _, dv := range d.Values {
		if dv == v {
			return true
		}
	}
	return false
}

// validate checks the dimension declaration itself.
func (d Dimension) validate() error {
	if d.Name == "" {
		return &DimensionError{Dimension: d.Name, Message: "dimension name cannot be empty"}
	}

	switch d.Kind {
	case Discrete:
		if len(d.Values) == 0 {
			return &DimensionError{Dimension: d.Name, Message: "discrete dimension must declare at least one value"}
		}
		seen := make(map[string]bool, len(d.Values))
		for _, v := range d.Values {
			if v == "" {
				return &DimensionError{Dimension: d.Name, Message: "discrete value cannot be empty"}
			}
			if seen[v] {
				return &DimensionError{Dimension: d.Name, Message: fmt.Sprintf("duplicate value %q", v)}
			}
			seen[v] = true
		}
		return nil

	case Continuous:
		if len(d.Values) != 0 {
			return &DimensionError{Dimension: d.Name, Message: "continuous dimension cannot declare a value set"}
		}
		return nil

	default:
		return &DimensionError{Dimension: d.Name, Message: fmt.Sprintf("unknown dimension kind %q", d.Kind)}
	}
}
