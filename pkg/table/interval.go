package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Interval is a numeric range with explicit boundary semantics. Each bound is
// either inclusive, exclusive, or unbounded; nothing is implied by
// convention, so a rule's author always states whether a boundary value
// belongs to the range.
type Interval struct {
	// Lower is the lower bound. Ignored when LowerUnbounded is set.
	Lower float64

	// LowerInclusive reports whether Lower itself belongs to the interval.
	LowerInclusive bool

	// LowerUnbounded marks the interval as extending to negative infinity.
	LowerUnbounded bool

	// Upper is the upper bound. Ignored when UpperUnbounded is set.
	Upper float64

	// UpperInclusive reports whether Upper itself belongs to the interval.
	UpperInclusive bool

	// UpperUnbounded marks the interval as extending to positive infinity.
	UpperUnbounded bool
}

// Closed returns the interval [lo,hi].
func Closed(lo, hi float64) Interval {
	return Interval{Lower: lo, LowerInclusive: true, Upper: hi, UpperInclusive: true}
}

// ClosedOpen returns the half-open interval [lo,hi).
func ClosedOpen(lo, hi float64) Interval {
	return Interval{Lower: lo, LowerInclusive: true, Upper: hi}
}

// OpenClosed returns the half-open interval (lo,hi].
func OpenClosed(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi, UpperInclusive: true}
}

// Open returns the open interval (lo,hi).
func Open(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi}
}

// AtLeast returns the unbounded interval [lo,∞).
func AtLeast(lo float64) Interval {
	return Interval{Lower: lo, LowerInclusive: true, UpperUnbounded: true}
}

// GreaterThan returns the unbounded interval (lo,∞).
func GreaterThan(lo float64) Interval {
	return Interval{Lower: lo, UpperUnbounded: true}
}

// AtMost returns the unbounded interval (-∞,hi].
func AtMost(hi float64) Interval {
	return Interval{LowerUnbounded: true, Upper: hi, UpperInclusive: true}
}

// LessThan returns the unbounded interval (-∞,hi).
func LessThan(hi float64) Interval {
	return Interval{LowerUnbounded: true, Upper: hi}
}

// Unbounded returns the interval (-∞,∞), which contains every value.
func Unbounded() Interval {
	return Interval{LowerUnbounded: true, UpperUnbounded: true}
}

// Contains reports whether v belongs to the interval.
func (iv Interval) Contains(v float64) bool {
	if !iv.LowerUnbounded {
		if v < iv.Lower {
			return false
		}
		if v == iv.Lower && !iv.LowerInclusive {
			return false
		}
	}
	if !iv.UpperUnbounded {
		if v > iv.Upper {
			return false
		}
		if v == iv.Upper && !iv.UpperInclusive {
			return false
		}
	}
	return true
}

// Empty reports whether the interval contains no values at all.
func (iv Interval) Empty() bool {
	if iv.LowerUnbounded || iv.UpperUnbounded {
		return false
	}
	if iv.Lower > iv.Upper {
		return true
	}
	if iv.Lower == iv.Upper {
		return !(iv.LowerInclusive && iv.UpperInclusive)
	}
	return false
}

// Overlaps reports whether the two intervals share at least one value.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.Empty() || other.Empty() {
		return false
	}

	// iv entirely below other?
	if !iv.UpperUnbounded && !other.LowerUnbounded {
		if iv.Upper < other.Lower {
			return false
		}
		if iv.Upper == other.Lower && !(iv.UpperInclusive && other.LowerInclusive) {
			return false
		}
	}

	// iv entirely above other?
	if !iv.LowerUnbounded && !other.UpperUnbounded {
		if iv.Lower > other.Upper {
			return false
		}
		if iv.Lower == other.Upper && !(iv.LowerInclusive && other.UpperInclusive) {
			return false
		}
	}

	return true
}

// String formats the interval in mathematical notation, e.g. "[0,20)" or
// "(-inf,0)".
func (iv Interval) String() string {
	var sb strings.Builder

	if iv.LowerUnbounded {
		sb.WriteString("(-inf")
	} else {
		if iv.LowerInclusive {
			sb.WriteByte('[')
		} else {
			sb.WriteByte('(')
		}
		sb.WriteString(formatBound(iv.Lower))
	}

	sb.WriteByte(',')

	if iv.UpperUnbounded {
		sb.WriteString("inf)")
	} else {
		sb.WriteString(formatBound(iv.Upper))
		if iv.UpperInclusive {
			sb.WriteByte(']')
		} else {
			sb.WriteByte(')')
		}
	}

	return sb.String()
}

// formatBound renders a bound without trailing zeros.
func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseInterval parses mathematical interval notation as produced by
// Interval.String: "[a,b)", "(a,b]", "[a,b]", "(a,b)", with "inf" and "-inf"
// accepted for unbounded ends (an unbounded end must use a parenthesis).
func ParseInterval(s string) (Interval, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 5 {
		return Interval{}, fmt.Errorf("invalid interval %q", s)
	}

	open := trimmed[0]
	closing := trimmed[len(trimmed)-1]
	if open != '[' && open != '(' {
		return Interval{}, fmt.Errorf("invalid interval %q: must start with '[' or '('", s)
	}
	if closing != ']' && closing != ')' {
		return Interval{}, fmt.Errorf("invalid interval %q: must end with ']' or ')'", s)
	}

	body := trimmed[1 : len(trimmed)-1]
	parts := strings.Split(body, ",")
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("invalid interval %q: expected two comma-separated bounds", s)
	}

	var iv Interval

	lower := strings.TrimSpace(parts[0])
	switch lower {
	case "-inf":
		if open == '[' {
			return Interval{}, fmt.Errorf("invalid interval %q: unbounded lower end cannot be inclusive", s)
		}
		iv.LowerUnbounded = true
	default:
		v, err := strconv.ParseFloat(lower, 64)
		if err != nil || math.IsNaN(v) {
			return Interval{}, fmt.Errorf("invalid interval %q: bad lower bound %q", s, lower)
		}
		iv.Lower = v
		iv.LowerInclusive = open == '['
	}

	upper := strings.TrimSpace(parts[1])
	switch upper {
	case "inf", "+inf":
		if closing == ']' {
			return Interval{}, fmt.Errorf("invalid interval %q: unbounded upper end cannot be inclusive", s)
		}
		iv.UpperUnbounded = true
	default:
		v, err := strconv.ParseFloat(upper, 64)
		if err != nil || math.IsNaN(v) {
			return Interval{}, fmt.Errorf("invalid interval %q: bad upper bound %q", s, upper)
		}
		iv.Upper = v
		iv.UpperInclusive = closing == ']'
	}

	if iv.Empty() {
		return Interval{}, fmt.Errorf("invalid interval %q: interval is empty", s)
	}

	return iv, nil
}
