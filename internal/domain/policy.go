package domain

import "fmt"

// Transition policy:
// a verified (repaid) loan must never be silently reopened as approved or
// rejected. Every other pair stays legal so admins can correct mistakes:
// approved -> pending undoes an approval, rejected -> pending reconsiders,
// verified -> pending is the full reset escape hatch.
var forbiddenTransitions = [...]struct{ From, To LoanStatus }{
	{StatusVerified, StatusApproved},
	{StatusVerified, StatusRejected},
}

// ValidStatus reports whether s is one of the four known loan states.
func ValidStatus(s LoanStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusVerified:
		return true
	}
	return false
}

// ValidateTransition checks the (from, to) pair against the forbidden table.
// The returned error wraps ErrInvalidTransition and names the attempted pair.
func ValidateTransition(from, to LoanStatus) error {
	for _, t := range forbiddenTransitions {
		if t.From == from && t.To == to {
			return fmt.Errorf("%w: cannot change loan status from %s to %s", ErrInvalidTransition, from, to)
		}
	}
	return nil
}
