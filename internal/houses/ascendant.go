package houses

import (
	"math"

	"github.com/litescript/ls-houses/internal/astro"
)

// Ascendant returns the ecliptic longitude of the point where the ecliptic
// crosses a great circle through the east point, given that circle's hour
// angle and pseudo-latitude (pole height). With hourAngle = ARMC+90 and the
// geographic latitude this is the ascendant proper.
//
// The base formula is only single-valued on a quarter circle, so the hour
// angle is reduced to its quadrant and the result reflected back. Results
// within astro.SnapTolerance of a cardinal point are snapped onto it.
func Ascendant(hourAngle, pseudoLat, sinEps, cosEps float64) float64 {
	x := astro.Normalize(hourAngle)

	var asc float64
	switch int(x/90) + 1 {
	case 1:
		asc = asc2(x, pseudoLat, sinEps, cosEps)
	case 2:
		asc = 180 - asc2(180-x, -pseudoLat, sinEps, cosEps)
	case 3:
		asc = 180 + asc2(x-180, -pseudoLat, sinEps, cosEps)
	default:
		asc = 360 - asc2(360-x, pseudoLat, sinEps, cosEps)
	}
	return astro.SnapCardinal(asc)
}

// asc2 is valid for x in [0, 90).
func asc2(x, pole, sinEps, cosEps float64) float64 {
	denom := -tand(pole)*sinEps + cosEps*cosd(x)
	if math.Abs(denom) < astro.Epsilon {
		denom = 0
	}
	numer := sind(x)
	if math.Abs(numer) < astro.Epsilon {
		numer = 0
	}

	var asc float64
	switch {
	case numer == 0:
		// atan(0/0) is ambiguous; lean toward the sign of the denominator.
		if denom < 0 {
			asc = -astro.Epsilon
		} else {
			asc = astro.Epsilon
		}
	case denom == 0:
		if numer < 0 {
			asc = -90
		} else {
			asc = 90
		}
	default:
		asc = atand(numer / denom)
	}
	if asc < 0 {
		asc += 180
	}
	return asc
}
