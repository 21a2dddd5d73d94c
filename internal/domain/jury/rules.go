package jury

import (
	"fmt"
	"strings"
)

// Role is the permission level of an actor.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
)

// Actor identifies who initiates an operation. ID is the stable surrogate
// id; account-level identifiers are translated to it at the boundary and
// never enter the store.
type Actor struct {
	ID   uint64
	Role Role
}

// ResetTarget carries the scope-dependent target ids of a reset request.
type ResetTarget struct {
	CandidateID uint64
	ReviewerID  uint64
}

// Authorize applies the self-service rule: an admin may perform any scope,
// a reviewer may only reset their own individual record.
func Authorize(actor Actor, scope ResetScope, target ResetTarget) error {
	if actor.ID == 0 {
		return fmt.Errorf("%w: actor id is required", ErrUnauthorized)
	}

	switch actor.Role {
	case RoleAdmin:
		return nil
	case RoleReviewer:
		if scope != ScopeIndividual {
			return fmt.Errorf("%w: scope %s requires admin role", ErrUnauthorized, scope)
		}
		if target.ReviewerID != actor.ID {
			return fmt.Errorf("%w: reviewers may only reset their own record", ErrUnauthorized)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown role %q", ErrUnauthorized, actor.Role)
	}
}

// ValidateFullSystem enforces the mandatory reason and confirmation flag
// of the full-system scope.
func ValidateFullSystem(reason string, confirmed bool) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: full system reset", ErrMissingReason)
	}
	if !confirmed {
		return ErrConfirmRequired
	}
	return nil
}
