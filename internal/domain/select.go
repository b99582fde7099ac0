package domain

import (
	"context"
	"log/slog"
)

// SelectMechanismSource picks the mechanism input for an event in order of
// fidelity: a catalog solution, the nodal plane carried by the origin
// document, then the fallback plane. It returns the source label alongside.
//
// A failed catalog lookup degrades to "no catalog solution" with a warning;
// whether to halt on it is not this function's decision.
func SelectMechanismSource(ctx context.Context, eventID string, origin Origin, lookup MechanismLookup, fallback NodalPlane, logger *slog.Logger) (MechanismSource, string) {
	if lookup != nil {
		sol, err := lookup.LookupMechanism(ctx, eventID)
		if err != nil {
			logger.Warn("catalog mechanism lookup failed",
				"event_id", eventID,
				"error", err,
			)
		}
		if err == nil && sol != nil {
			return MechanismSource{Catalog: sol}, SourceCatalog
		}
	}

	plane, label := fallback, SourceFallback
	if origin.NodalPlane != nil {
		plane, label = *origin.NodalPlane, SourceQuakeML
	}
	return MechanismSource{
		Focal: FocalMechanism{
			Strike:    plane.Strike,
			Dip:       plane.Dip,
			Rake:      plane.Rake,
			Magnitude: origin.Magnitude,
		},
	}, label
}
