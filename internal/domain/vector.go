package domain

import "math"

// vec3 is a Cartesian vector in the north, east, down frame.
type vec3 [3]float64

func (a vec3) add(b vec3) vec3 {
	return vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (a vec3) sub(b vec3) vec3 {
	return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (a vec3) scale(s float64) vec3 {
	return vec3{a[0] * s, a[1] * s, a[2] * s}
}

func (a vec3) dot(b vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (a vec3) norm() float64 {
	return math.Sqrt(a.dot(a))
}

func (a vec3) unit() vec3 {
	n := a.norm()
	if n == 0 {
		return a
	}
	return a.scale(1 / n)
}

// fromRTP converts an r (up), t (south), p (east) vector to north, east, down.
func fromRTP(r, t, p float64) vec3 {
	return vec3{-t, p, -r}
}

// wrap360 folds an angle in degrees into [0,360).
func wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg == 0 || deg >= 360-angleTolerance {
		return 0 // also clears -0
	}
	return deg
}
