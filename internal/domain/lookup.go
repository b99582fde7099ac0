package domain

import "context"

// MechanismLookup fetches a published mechanism for an event from an external
// catalog. A nil solution with a nil error means the catalog has none.
type MechanismLookup interface {
	LookupMechanism(ctx context.Context, eventID string) (*MechanismSolution, error)
}
