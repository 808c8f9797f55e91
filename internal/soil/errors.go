package soil

import (
	"fmt"
	"sort"
	"strings"
)

// RangeError reports an input parameter outside its valid domain.
type RangeError struct {
	Parameter string
	Value     float64
	Min       float64
	Max       float64
	// MaxExclusive is set when Max itself is not a valid value.
	MaxExclusive bool
}

// Range renders the valid interval, e.g. "[0, 60)".
func (e *RangeError) Range() string {
	closing := "]"
	if e.MaxExclusive {
		closing = ")"
	}
	return fmt.Sprintf("[%g, %g%s", e.Min, e.Max, closing)
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s = %g is outside the valid range %s", e.Parameter, e.Value, e.Range())
}

// ComputationError reports a degenerate intermediate result. Step names the
// derived quantity that could not be computed; Values holds the offending
// intermediates.
type ComputationError struct {
	Step   string
	Values map[string]float64
}

func (e *ComputationError) Error() string {
	keys := make([]string, 0, len(e.Values))
	for k := range e.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, e.Values[k]))
	}
	return fmt.Sprintf("computation failed at %s (%s)", e.Step, strings.Join(parts, ", "))
}
