package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced aggregate does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrRuleViolation indicates a well-formed request that is not currently
	// allowed by a business invariant.
	ErrRuleViolation = errors.New("rule violation")
	// ErrInvalidTransition indicates an illegal state-machine edge. It is a
	// specialization of ErrRuleViolation: errors.Is matches both.
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrRuleViolation)
	// ErrConflict indicates a concurrent update or duplicate was detected.
	ErrConflict = errors.New("conflict")
)

// TransitionErrorf builds a transition violation naming the attempted
// transition and the current status.
func TransitionErrorf(entity, transition, status string) error {
	return fmt.Errorf("%w: %s %s: status is %s", ErrInvalidTransition, entity, transition, status)
}
