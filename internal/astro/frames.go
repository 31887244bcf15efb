package astro

import (
	"math"
)

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// FromSpherical returns the unit vector for a longitude/latitude pair in degrees.
func FromSpherical(lonDeg, latDeg float64) Vec3 {
	lon := DegToRad(lonDeg)
	lat := DegToRad(latDeg)
	return Vec3{
		X: math.Cos(lat) * math.Cos(lon),
		Y: math.Cos(lat) * math.Sin(lon),
		Z: math.Sin(lat),
	}
}

// Spherical returns the longitude in [0,360) and latitude in [-90,90] of the
// vector, in degrees. The zero vector maps to (0, 0).
func (v Vec3) Spherical() (lonDeg, latDeg float64) {
	r := v.Norm()
	if r == 0 {
		return 0, 0
	}
	lonDeg = Normalize(RadToDeg(math.Atan2(v.Y, v.X)))
	latDeg = RadToDeg(math.Asin(Clamp1(v.Z / r)))
	return lonDeg, latDeg
}

// RotateX rotates the frame about the X axis by angleDeg. A positive angle
// takes equatorial vectors to the ecliptic frame when angleDeg is the obliquity.
func (v Vec3) RotateX(angleDeg float64) Vec3 {
	a := DegToRad(angleDeg)
	cosA := math.Cos(a)
	sinA := math.Sin(a)

	return Vec3{
		X: v.X,
		Y: v.Y*cosA + v.Z*sinA,
		Z: -v.Y*sinA + v.Z*cosA,
	}
}

// Cotrans rotates spherical coordinates about the X axis (the line of the
// equinoxes) by angleDeg.
func Cotrans(lonDeg, latDeg, angleDeg float64) (float64, float64) {
	return FromSpherical(lonDeg, latDeg).RotateX(angleDeg).Spherical()
}

// EclipticToEquatorial converts ecliptic longitude/latitude to right
// ascension and declination for obliquity eps.
func EclipticToEquatorial(lonDeg, latDeg, epsDeg float64) (raDeg, decDeg float64) {
	return Cotrans(lonDeg, latDeg, -epsDeg)
}

// EquatorialToEcliptic converts right ascension and declination to ecliptic
// longitude/latitude for obliquity eps.
func EquatorialToEcliptic(raDeg, decDeg, epsDeg float64) (lonDeg, latDeg float64) {
	return Cotrans(raDeg, decDeg, epsDeg)
}

// RAToLongitude returns the ecliptic longitude of the point on the ecliptic
// whose right ascension is raDeg. The result lies in the same half circle as
// the input: 90 and 270 map to themselves exactly.
func RAToLongitude(raDeg, cosEps float64) float64 {
	ra := Normalize(raDeg)
	switch {
	case math.Abs(ra-90) <= Epsilon:
		return 90
	case math.Abs(ra-270) <= Epsilon:
		return 270
	}
	lon := RadToDeg(math.Atan(math.Tan(DegToRad(ra)) / cosEps))
	if ra > 90 && ra <= 270 {
		lon += 180
	}
	return Normalize(lon)
}
