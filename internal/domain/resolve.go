package domain

// MechanismSource is the input to Resolve. Catalog, when non-nil, is a
// solution published by an external catalog and takes precedence over Focal.
type MechanismSource struct {
	Focal   FocalMechanism
	Catalog *MechanismSolution
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Solution MechanismSolution

	// CompositeForced is true when no observed mechanism was available and
	// the solution is a synthetic double couple. The GMPE selection stage
	// uses it to choose a composite model.
	CompositeForced bool
}

// Resolve returns the catalog solution verbatim when one is present.
// Otherwise it builds a double-couple tensor from the focal mechanism and
// decomposes it.
func Resolve(src MechanismSource) (Resolution, error) {
	if src.Catalog != nil {
		return Resolution{Solution: *src.Catalog}, nil
	}

	f := src.Focal
	mt, err := BuildTensor(f.Strike, f.Dip, f.Rake, f.Magnitude)
	if err != nil {
		return Resolution{}, &MechanismError{Stage: "build", Err: err}
	}
	sol, err := Decompose(mt)
	if err != nil {
		return Resolution{}, &MechanismError{Stage: "decompose", Err: err}
	}
	return Resolution{Solution: sol, CompositeForced: true}, nil
}
