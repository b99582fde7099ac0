package domain

// FocalMechanism is a double-couple source described by one fault plane and
// the event magnitude. Angles are in degrees.
type FocalMechanism struct {
	Strike    float64 `json:"strike"`
	Dip       float64 `json:"dip"`
	Rake      float64 `json:"rake"`
	Magnitude float64 `json:"magnitude"`
}

// MomentTensor holds the six independent components of a symmetric seismic
// moment tensor in the spherical r (up), t (south), p (east) convention,
// in dyne·cm.
type MomentTensor struct {
	Mrr float64 `json:"mrr"`
	Mtt float64 `json:"mtt"`
	Mpp float64 `json:"mpp"`
	Mrt float64 `json:"mrt"`
	Mrp float64 `json:"mrp"`
	Mtp float64 `json:"mtp"`
}

// PrincipalAxis is a downward-pointing principal stress axis.
type PrincipalAxis struct {
	Azimuth float64 `json:"azimuth"` // degrees clockwise from north, [0,360)
	Plunge  float64 `json:"plunge"`  // degrees below horizontal, [0,90]

	// Value is the eigenvalue of the axis. Catalog solutions leave it zero.
	Value float64 `json:"value,omitempty"`
}

// NodalPlane is one of the two fault-plane solutions of a double couple.
type NodalPlane struct {
	Strike float64 `json:"strike"`
	Dip    float64 `json:"dip"`
	Rake   float64 `json:"rake"`
}

// MechanismSolution is the principal-axis and nodal-plane description of a
// source mechanism. It is created once and never mutated.
type MechanismSolution struct {
	T   PrincipalAxis `json:"t_axis"`
	N   PrincipalAxis `json:"n_axis"`
	P   PrincipalAxis `json:"p_axis"`
	NP1 NodalPlane    `json:"nodal_plane_1"`
	NP2 NodalPlane    `json:"nodal_plane_2"`
}
