package houses

import (
	"math"

	"github.com/litescript/ls-houses/internal/astro"
)

// placidusCusps places each intermediate cusp where the ecliptic point has
// covered one or two thirds of its own semi-arc. The pole height of each
// cusp depends on the cusp's declination, so it is refined iteratively.
func placidusCusps(e *Engine, f *frame, sys System) error {
	if f.inPolarCircle(f.lat) {
		return f.undefined(sys)
	}

	var fh1, fh2 float64
	if math.Abs(f.tanEps) < astro.Epsilon {
		// Without obliquity each cusp is its own right ascension and the
		// seed only has to stay finite.
		fh1 = atand(f.tanLat / 3)
		fh2 = atand(f.tanLat * 2 / 3)
	} else {
		a := asind(f.tanLat * f.tanEps)
		fh1 = atand(sind(a/3) / f.tanEps)
		fh2 = atand(sind(a*2/3) / f.tanEps)
	}

	f.cusps[11] = f.placidusCusp(30, fh1, 3, e.iterations)
	f.cusps[12] = f.placidusCusp(60, fh2, 1.5, e.iterations)
	f.cusps[2] = f.placidusCusp(120, fh2, 1.5, e.iterations)
	f.cusps[3] = f.placidusCusp(150, fh1, 3, e.iterations)
	return nil
}

// placidusCusp solves one cusp at right ascension ARMC+offset. divisor is
// 3 for houses 11 and 3, 1.5 for houses 12 and 2.
func (f *frame) placidusCusp(offset, seedPole, divisor float64, iterations int) float64 {
	ra := astro.Normalize(f.armc + offset)

	tant := tand(asind(f.sinEps * sind(f.ascendant(ra, seedPole))))
	if math.Abs(tant) < astro.Epsilon {
		return ra
	}
	cusp := f.ascendant(ra, f.poleHeight(tant, divisor))

	for i := 0; i < iterations; i++ {
		tant = tand(asind(f.sinEps * sind(cusp)))
		if math.Abs(tant) < astro.Epsilon {
			return ra
		}
		cusp = f.ascendant(ra, f.poleHeight(tant, divisor))
	}
	return cusp
}

// poleHeight is the pole of the position circle through a point of
// declination atan(tant) that has covered 1/divisor of its semi-arc.
func (f *frame) poleHeight(tant, divisor float64) float64 {
	return atand(sind(asind(f.tanLat*tant)/divisor) / tant)
}
