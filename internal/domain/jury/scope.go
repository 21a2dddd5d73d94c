package jury

import (
	"fmt"
	"strings"
)

// ResetScope is the breadth of a reset operation.
type ResetScope string

const (
	ScopeIndividual      ResetScope = "individual"
	ScopeByCandidate     ResetScope = "by_candidate"
	ScopeByReviewer      ResetScope = "by_reviewer"
	ScopePhaseTransition ResetScope = "phase_transition"
	ScopeFullSystem      ResetScope = "full_system"
)

// ParseResetScope normalizes and validates a scope string.
func ParseResetScope(raw string) (ResetScope, error) {
	scope := ResetScope(strings.ToLower(strings.TrimSpace(raw)))
	switch scope {
	case ScopeIndividual, ScopeByCandidate, ScopeByReviewer, ScopePhaseTransition, ScopeFullSystem:
		return scope, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, raw)
	}
}
