package machine

import "fmt"

// DefinitionError indicates a machine specification failed construction-time
// validation. It aggregates every problem found.
type DefinitionError struct {
	Machine string
	Errors  []string
}

// Error returns the error message.
func (e *DefinitionError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("machine %s: definition error: %s", e.Machine, e.Errors[0])
	}
	return fmt.Sprintf("machine %s: %d definition errors: %v", e.Machine, len(e.Errors), e.Errors)
}
