// Package domain models earthquake origin products and resolves their source
// mechanism into principal stress axes and nodal planes.
//
// # Data Source
//
// Origin products are announced by the USGS Product Distribution Layer (PDL).
// Each notification names the network source and product code of an event
// ("us" + "7000abcd" = event id "us7000abcd") and points to a QuakeML or EQXML
// origin document. Published moment-tensor products are fetched separately
// from the ComCat event service, see the comcat adapter.
//
// # Coordinate Conventions
//
// Moment tensors use the spherical convention of the Global CMT catalog:
//
//	r = up, t = south, p = east
//	Mrr, Mtt, Mpp, Mrt, Mrp, Mtp in dyne·cm
//
// Axes and planes are computed in a local north, east, down frame:
//
//	north = -t, east = p, down = -r
//
// Fault planes follow Aki & Richards: strike measured clockwise from north
// with the fault dipping to the right, dip from horizontal, rake as the slip
// direction in the fault plane measured from the strike direction.
//
// # Scalar Moment
//
// Magnitude is converted to scalar moment with
//
//	M0 = 10^(1.5·M + 16.1)   dyne·cm
//
// so M7.0 gives roughly 4.0e26 dyne·cm.
//
// # Axis Labelling
//
// The symmetric tensor is eigen-decomposed. Eigenvalues sorted descending
// label the T (tension), N (neutral) and P (pressure) axes. A pure double
// couple has eigenvalues {+M0, 0, -M0}.
//
// Each axis is reported pointing downward:
//
//	plunge  = angle below horizontal, [0,90]
//	azimuth = clockwise from north, [0,360)
//
// An eigenvector pointing up is negated, which adds 180° to its azimuth.
// Horizontal axes carry no up/down preference, so they are reported with
// azimuth in [0,180). Vertical axes are reported with azimuth 0.
//
// # Nodal Planes
//
// The two planes of a double couple are found from the unit T and P vectors:
//
//	normal1 = (T + P)/√2, slip1 = (T - P)/√2
//	normal2 = slip1,      slip2 = normal1
//
// Each is the auxiliary plane of the other; neither can be identified as the
// fault plane from the tensor alone, so both are reported. Vertical planes are
// reported with strike in [0,180) and horizontal planes with strike 0.
//
// # Composite Flag
//
// Catalog mechanisms are observed and take precedence over a synthetic double
// couple. When no catalog mechanism exists the resolved solution is marked
// composite-forced; the downstream ground-motion selector then uses a
// composite model. See [Resolve].
package domain
