package domain

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	rad2deg = 180.0 / math.Pi

	// degenerateTolerance is the relative eigenvalue spread below which a
	// tensor is treated as isotropic.
	degenerateTolerance = 1e-9

	// orthogonalityTolerance bounds |dot| between returned eigenvectors.
	orthogonalityTolerance = 1e-6

	// horizontalTolerance is the vertical component below which a unit
	// vector is treated as horizontal, and the horizontal component below
	// which it is treated as vertical.
	horizontalTolerance = 1e-9

	// angleTolerance snaps reported angles (degrees) onto range boundaries.
	angleTolerance = 1e-6

	// minNormal is the smallest normal float64. Tensors whose largest
	// component is below it carry no usable precision.
	minNormal = 0x1p-1022
)

// Decompose computes the principal axes and the two nodal planes of a moment
// tensor. The eigenvector of the largest eigenvalue is the T axis, the
// smallest the P axis and the remaining one the N axis.
//
// Axes point downward. A horizontal axis is reported with azimuth in [0,180)
// and a vertical axis with azimuth 0, so every axis has one representation.
func Decompose(mt MomentTensor) (MechanismSolution, error) {
	if !mt.finite() {
		return MechanismSolution{}, ErrInvalidInput
	}

	// Normalise so tensors near the float64 range limits factorize cleanly.
	var scale float64
	for _, v := range mt.components() {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale < minNormal {
		return MechanismSolution{}, ErrDegenerateTensor
	}
	data := mt.matrix()
	for i := range data {
		data[i] /= scale
	}

	var es mat.EigenSym
	if ok := es.Factorize(mat.NewSymDense(3, data), true); !ok {
		return MechanismSolution{}, ErrNumericalInstability
	}
	values := es.Values(nil) // ascending
	var vectors mat.Dense
	es.VectorsTo(&vectors)

	spread := values[2] - values[0]
	largest := math.Max(math.Abs(values[0]), math.Abs(values[2]))
	if largest == 0 || spread <= degenerateTolerance*largest {
		return MechanismSolution{}, ErrDegenerateTensor
	}

	column := func(j int) vec3 {
		return fromRTP(vectors.At(0, j), vectors.At(1, j), vectors.At(2, j))
	}
	p, n, t := column(0), column(1), column(2)
	if !orthonormal(t, n, p) {
		return MechanismSolution{}, ErrNumericalInstability
	}

	t, n, p = canonicalAxis(t), canonicalAxis(n), canonicalAxis(p)
	np1, np2 := nodalPlanes(t, p)

	return MechanismSolution{
		T:   axisFromVector(t, values[2]*scale),
		N:   axisFromVector(n, values[1]*scale),
		P:   axisFromVector(p, values[0]*scale),
		NP1: np1,
		NP2: np2,
	}, nil
}

func orthonormal(vs ...vec3) bool {
	for i := range vs {
		if math.Abs(vs[i].norm()-1) > orthogonalityTolerance {
			return false
		}
		for j := i + 1; j < len(vs); j++ {
			if math.Abs(vs[i].dot(vs[j])) > orthogonalityTolerance {
				return false
			}
		}
	}
	return true
}

// canonicalAxis picks the downward sign of an eigenvector. Horizontal vectors
// are flipped into the half-plane with azimuth in [0,180).
func canonicalAxis(v vec3) vec3 {
	switch {
	case v[2] < -horizontalTolerance:
		return v.scale(-1)
	case v[2] <= horizontalTolerance:
		v[2] = 0
		if az := wrap360(math.Atan2(v[1], v[0]) * rad2deg); az >= 180-angleTolerance {
			return v.scale(-1)
		}
	}
	return v
}

func axisFromVector(v vec3, value float64) PrincipalAxis {
	h := math.Hypot(v[0], v[1])
	if h < horizontalTolerance {
		return PrincipalAxis{Azimuth: 0, Plunge: 90, Value: value}
	}
	plunge := math.Atan2(v[2], h) * rad2deg
	switch {
	case plunge < angleTolerance:
		plunge = 0
	case plunge > 90-angleTolerance:
		plunge = 90
	}
	return PrincipalAxis{
		Azimuth: wrap360(math.Atan2(v[1], v[0]) * rad2deg),
		Plunge:  plunge,
		Value:   value,
	}
}

// nodalPlanes derives both planes of the double couple from the T and P
// axes: the normal of one plane is the slip vector of the other.
func nodalPlanes(t, p vec3) (NodalPlane, NodalPlane) {
	normal := t.add(p).unit()
	slip := t.sub(p).unit()
	return planeFromVectors(normal, slip), planeFromVectors(slip, normal)
}

// planeFromVectors converts a fault normal and slip vector (north, east,
// down) into strike, dip and rake using the Aki & Richards convention.
func planeFromVectors(n, d vec3) NodalPlane {
	if n[2] > 0 {
		n, d = n.scale(-1), d.scale(-1)
	}

	var strike, dipDeg float64
	h := math.Hypot(n[0], n[1])
	switch {
	case h < horizontalTolerance:
		// Horizontal plane: the strike is arbitrary and stays at north.
	case math.Atan2(h, -n[2])*rad2deg > 90-angleTolerance:
		// Vertical plane: report the strike in [0,180).
		n[2] = 0
		if s := wrap360(math.Atan2(-n[0], n[1]) * rad2deg); s >= 180-angleTolerance {
			n, d = n.scale(-1), d.scale(-1)
		}
		strike, dipDeg = math.Atan2(-n[0], n[1]), 90
	default:
		strike, dipDeg = math.Atan2(-n[0], n[1]), math.Atan2(h, -n[2])*rad2deg
	}

	sinS, cosS := math.Sincos(strike)
	sinD, cosD := math.Sincos(dipDeg * deg2rad)
	sinR := d[0]*sinS*cosD - d[1]*cosS*cosD - d[2]*sinD
	cosR := d[0]*cosS + d[1]*sinS
	rake := math.Atan2(sinR, cosR) * rad2deg
	if rake <= -180+angleTolerance {
		rake = 180
	}
	if math.Abs(rake) < angleTolerance {
		rake = 0
	}

	return NodalPlane{
		Strike: wrap360(strike * rad2deg),
		Dip:    dipDeg,
		Rake:   rake,
	}
}
