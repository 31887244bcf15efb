package houses

import (
	"math"

	"github.com/litescript/ls-houses/internal/astro"
)

const (
	// topocentricTolerance is the residual latitude, in degrees, at which
	// the position-line search stops.
	topocentricTolerance = 1e-6
	// maxBisections bounds the search; it converges in under 30 halvings.
	maxBisections = 64
)

// topocentricPosition has no closed form. It bisects simultaneously on the
// pole height and the oblique ascension of the position line through the
// point. Points below the horizon are mirrored to the opposite point and
// western points to the east, so the search always runs on one branch.
func topocentricPosition(f *frame, p point) Placement {
	md := astro.Normalize(p.mdd)
	ra := p.ra
	dec := math.Max(math.Min(p.dec, 90-astro.Epsilon), -90+astro.Epsilon)

	above := tand(dec)*f.tanLat+cosd(md) >= 0
	if !above {
		ra = astro.Normalize(ra + 180)
		dec = -dec
		md = astro.Normalize(md + 180)
	}
	west := md > 180
	if west {
		ra = astro.Normalize(f.armc - md)
	}

	pole := f.lat
	ra0 := astro.Normalize(f.armc + 90)
	residual := 1.0
	fac := 2.0
	for i := 0; i < maxBisections && math.Abs(residual) > topocentricTolerance; i++ {
		if residual > 0 {
			pole = atand(tand(pole) - f.tanLat/fac)
			ra0 -= 90 / fac
		} else {
			pole = atand(tand(pole) + f.tanLat/fac)
			ra0 += 90 / fac
		}
		_, residual = astro.Cotrans(ra-ra0, dec, 90-pole)
		fac *= 2
	}

	h := astro.Normalize(ra0 - f.armc)
	if west {
		h = astro.Normalize(-h)
	}
	if !above {
		h = astro.Normalize(h + 180)
	}
	return placeAt(h - 90)
}
