// Package astro provides spherical astronomy primitives used by the house engine:
// angle normalization, frame rotations, sidereal time and obliquity.
package astro

import "math"

const (
	// Epsilon guards divisions and inverse-trig domains against round-off.
	Epsilon = 1e-10

	// SnapTolerance is the distance (1 arcsecond) within which an angle is
	// snapped onto the nearest cardinal point.
	SnapTolerance = 1.0 / 3600

	// MilliArcsec is one milliarcsecond in degrees.
	MilliArcsec = 1.0 / 3600000
)

// Normalize maps an angle in degrees into [0, 360).
func Normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d -= 360
	}
	return d
}

// SignedDiff returns a-b reduced to [-180, 180).
func SignedDiff(a, b float64) float64 {
	d := Normalize(a - b)
	if d >= 180 {
		d -= 360
	}
	return d
}

// SnapCardinal normalizes an angle and pulls it onto 90, 180 or 270 when it
// lies within SnapTolerance of one. Values just below 360 become 0.
func SnapCardinal(deg float64) float64 {
	d := Normalize(deg)
	for _, c := range [...]float64{90, 180, 270} {
		if math.Abs(d-c) < SnapTolerance {
			return c
		}
	}
	if 360-d < SnapTolerance {
		return 0
	}
	return d
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Clamp1 limits x to [-1, 1] so it is a valid asin/acos argument.
func Clamp1(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
