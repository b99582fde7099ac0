package domain

import "math"

const deg2rad = math.Pi / 180.0

// ScalarMoment converts a magnitude to a scalar seismic moment in dyne·cm
// using M0 = 10^(1.5·M + 16.1).
func ScalarMoment(magnitude float64) float64 {
	return math.Pow(10, 1.5*magnitude+16.1)
}

// BuildTensor converts a double-couple fault plane and magnitude into the six
// moment-tensor components using the Aki & Richards radiation formulas.
// Angles outside their physical ranges are accepted as-is.
func BuildTensor(strike, dip, rake, magnitude float64) (MomentTensor, error) {
	for _, v := range [...]float64{strike, dip, rake, magnitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return MomentTensor{}, ErrInvalidInput
		}
	}

	m0 := ScalarMoment(magnitude)
	if math.IsInf(m0, 0) {
		return MomentTensor{}, ErrArithmeticOverflow
	}

	s := strike * deg2rad
	d := dip * deg2rad
	r := rake * deg2rad

	sinS, cosS := math.Sincos(s)
	sin2S, cos2S := math.Sincos(2 * s)
	sinD, cosD := math.Sincos(d)
	sin2D, cos2D := math.Sincos(2 * d)
	sinR, cosR := math.Sincos(r)

	mt := MomentTensor{
		Mrr: m0 * sin2D * sinR,
		Mtt: -m0 * (sinD*cosR*sin2S + sin2D*sinR*sinS*sinS),
		Mpp: m0 * (sinD*cosR*sin2S - sin2D*sinR*cosS*cosS),
		Mrt: -m0 * (cosD*cosR*cosS + cos2D*sinR*sinS),
		Mrp: m0 * (cosD*cosR*sinS - cos2D*sinR*cosS),
		Mtp: -m0 * (sinD*cosR*cos2S + 0.5*sin2D*sinR*sin2S),
	}
	if !mt.finite() {
		return MomentTensor{}, ErrArithmeticOverflow
	}
	return mt, nil
}

func (m MomentTensor) finite() bool {
	for _, v := range m.components() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (m MomentTensor) components() [6]float64 {
	return [6]float64{m.Mrr, m.Mtt, m.Mpp, m.Mrt, m.Mrp, m.Mtp}
}

// matrix returns the tensor as a row-major 3×3 matrix in r, t, p order.
func (m MomentTensor) matrix() []float64 {
	return []float64{
		m.Mrr, m.Mrt, m.Mrp,
		m.Mrt, m.Mtt, m.Mtp,
		m.Mrp, m.Mtp, m.Mpp,
	}
}
