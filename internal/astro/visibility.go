package astro

import "math"

// IsCircumpolar reports whether a body at declination decDeg never crosses
// the horizon at latitude latDeg.
func IsCircumpolar(decDeg, latDeg float64) bool {
	return 90-math.Abs(decDeg) <= math.Abs(latDeg)
}

// AscensionalDifference returns asin(tan φ · tan δ) in degrees, the amount
// by which a body's semi-diurnal arc exceeds 90°. The argument is clamped so
// circumpolar bodies yield ±90.
func AscensionalDifference(decDeg, latDeg float64) float64 {
	x := math.Tan(DegToRad(latDeg)) * math.Tan(DegToRad(decDeg))
	return RadToDeg(math.Asin(Clamp1(x)))
}

// SemiDiurnalArc returns half the time, as an equatorial arc in degrees, that
// a body at declination decDeg spends above the horizon at latitude latDeg.
// It is 180 for bodies that never set and 0 for bodies that never rise.
func SemiDiurnalArc(decDeg, latDeg float64) float64 {
	x := -math.Tan(DegToRad(latDeg)) * math.Tan(DegToRad(decDeg))
	return RadToDeg(math.Acos(Clamp1(x)))
}
