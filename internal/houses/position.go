package houses

import (
	"fmt"
	"math"

	"github.com/litescript/ls-houses/internal/astro"
)

// Diagnostics attached to best-effort placements.
const (
	DiagKochCircumpolarPoint = "no Koch house position, because planet is circumpolar"
	DiagKochCircumpolarMC    = "no Koch house position, because mc is circumpolar"
	DiagPlacidusCircumpolar  = "circumpolar point, placed by the linear semi-arc procedure"
	DiagHorizonEquinoctial   = "horizon frame degenerate at the equator with an equinox on the meridian"
)

// Placement is a house position in [1, 13). Koch reports 0 when no
// position exists.
type Placement struct {
	Value      float64 `json:"value"`
	Diagnostic string  `json:"diagnostic,omitempty"`
}

// Degenerate reports whether the value is a best-effort approximation.
func (p Placement) Degenerate() bool {
	return p.Diagnostic != ""
}

// House returns the house number (1..12) containing the point, or 0 when
// no position exists.
func (p Placement) House() int {
	if p.Value < 1 {
		return 0
	}
	return int(p.Value)
}

// Err wraps ErrDegeneratePosition with the diagnostic, or returns nil.
func (p Placement) Err() error {
	if !p.Degenerate() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDegeneratePosition, p.Diagnostic)
}

// point is an ecliptic point with its equatorial coordinates and its
// meridian distances from the upper (mdd) and lower (mdn) meridian, both
// in [-180, 180).
type point struct {
	lon, lat float64
	ra, dec  float64
	mdd, mdn float64
}

func (f *frame) point(lon, lat float64) point {
	p := point{lon: lon, lat: lat}
	p.ra, p.dec = astro.EclipticToEquatorial(lon, lat, f.eps)
	p.mdd = astro.SignedDiff(p.ra, f.armc)
	p.mdn = astro.SignedDiff(p.ra, f.armc+180)
	return p
}

// placeAt converts an arc from the first cusp into a house position. One
// milliarcsecond is added so that a point exactly on cusp n reports n.
func placeAt(arc float64) Placement {
	return Placement{Value: astro.Normalize(arc+astro.MilliArcsec)/30 + 1}
}

// eastAscendant is the ascendant forced onto the rising side when the MC
// declination puts it behind the meridian inside the polar circle.
func (f *frame) eastAscendant() float64 {
	asc := f.ascendant(f.armc+90, f.lat)
	demc := atand(sind(f.armc) * f.tanEps)
	if f.lat >= 0 && 90-f.lat+demc < 0 || f.lat < 0 && -90-f.lat+demc > 0 {
		asc = astro.Normalize(asc + 180)
	}
	return asc
}

func equalPosition(offset float64) positionFunc {
	return func(f *frame, p point) Placement {
		return placeAt(astro.Normalize(p.lon - f.eastAscendant() - offset))
	}
}

func porphyryPosition(f *frame, p point) Placement {
	asc := f.eastAscendant()
	acmc := astro.SignedDiff(asc, f.mc)

	x := astro.Normalize(astro.Normalize(p.lon-asc) + astro.MilliArcsec)
	h := 1.0
	if x >= 180 {
		h = 7
		x -= 180
	}
	if x < 180-acmc {
		h += x * 3 / (180 - acmc)
	} else {
		h += 3 + (x-180+acmc)*3/acmc
	}
	return Placement{Value: h}
}

func axialPosition(f *frame, p point) Placement {
	return placeAt(p.mdd - 90)
}

func kochPosition(f *frame, p point) Placement {
	demc := atand(sind(f.armc) * f.tanEps)
	if astro.IsCircumpolar(p.dec, f.lat) {
		return Placement{Diagnostic: DiagKochCircumpolarPoint}
	}
	if astro.IsCircumpolar(demc, f.lat) {
		return Placement{Diagnostic: DiagKochCircumpolarMC}
	}

	admc := asind(f.tanEps * f.tanLat * sind(f.armc))
	adp := astro.AscensionalDifference(p.dec, f.lat)
	samc := 90 + admc

	var x float64
	if p.mdd >= 0 {
		x = ((p.mdd-adp+admc)/samc - 1) * 90
	} else {
		x = ((p.mdd+180+adp+admc)/samc + 1) * 90
	}
	return placeAt(astro.Normalize(x))
}

func campanusPosition(f *frame, p point) Placement {
	x, _ := astro.Cotrans(p.mdd-90, p.dec, -f.lat)
	return placeAt(x)
}

// horizonPosition rotates the point into the horizon frame. Where the
// horizon pole lies inside its own polar circle (the tropics) the cusps
// were turned by 180°, so the position follows. On the equator with ARMC
// 0° or 180° the frame has no unique orientation and the value is flagged.
func horizonPosition(f *frame, p point) Placement {
	pole := clampPole(colatitudeStrict(f.lat))
	x, _ := astro.Cotrans(p.mdd-90, p.dec, pole)

	if f.inPolarCircle(pole) {
		th := astro.Normalize(f.armc + 180)
		asc := f.ascendant(th+90, pole)
		mc := f.raToLongitude(th)
		if astro.SignedDiff(asc, mc) < 0 {
			x += 180
		}
	}

	pl := placeAt(x)
	if math.Abs(f.lat) < astro.Epsilon {
		if d := math.Abs(astro.SignedDiff(f.armc, 0)); d < astro.Epsilon || 180-d < astro.Epsilon {
			pl.Diagnostic = DiagHorizonEquinoctial
		}
	}
	return pl
}

func regiomontanusPosition(f *frame, p point) Placement {
	switch {
	case math.Abs(p.mdd) < astro.Epsilon:
		return placeAt(270)
	case 180-math.Abs(p.mdd) < astro.Epsilon:
		return placeAt(90)
	}

	dec := clampPole(p.dec)
	a := f.tanLat*tand(dec) + cosd(p.mdd)
	x := astro.Normalize(atand(-a / sind(p.mdd)))
	if p.mdd < 0 {
		x += 180
	}
	return placeAt(x)
}

// alcabitiusPosition measures the point's right ascension from the meridian
// against the ascendant's semi-arcs, which the cusps trisect.
func alcabitiusPosition(f *frame, p point) Placement {
	f.ascendantOnEast()
	sda, sna := f.ascendantSemiArcs()

	u := astro.Normalize(p.ra - f.armc)
	base := 0.0
	if u >= 180 {
		u -= 180
		base = 180
	}

	var x float64
	if u < sda {
		x = 270 + u/sda*90
	} else {
		x = (u - sda) / sna * 90
	}
	return placeAt(x + base)
}

func placidusPosition(f *frame, p point) Placement {
	if astro.IsCircumpolar(p.dec, f.lat) {
		var x float64
		if p.dec*f.lat < 0 {
			x = astro.Normalize(90 + p.mdn/2)
		} else {
			x = astro.Normalize(270 + p.mdd/2)
		}
		pl := placeAt(x)
		pl.Diagnostic = DiagPlacidusCircumpolar
		return pl
	}

	ad := astro.AscensionalDifference(p.dec, f.lat)
	above := tand(p.dec)*f.tanLat+cosd(p.mdd) >= 0

	var x float64
	if above {
		x = (p.mdd/(90+ad) + 3) * 90
	} else {
		x = (p.mdn/(90-ad) + 1) * 90
	}
	return placeAt(x)
}
