package houses

import (
	"math"

	"github.com/litescript/ls-houses/internal/astro"
)

// cuspFunc fills cusps 1-3 and 10-12 of a frame (and may adjust asc/mc).
type cuspFunc func(e *Engine, f *frame, sys System) error

// positionFunc computes the house position of a point.
type positionFunc func(f *frame, p point) Placement

type strategy struct {
	cusps    cuspFunc
	position positionFunc
}

var systemTable = map[System]strategy{
	Equal:         {cusps: equalCusps(0), position: equalPosition(0)},
	Vehlow:        {cusps: equalCusps(-15), position: equalPosition(-15)},
	Campanus:      {cusps: campanusCusps, position: campanusPosition},
	Horizon:       {cusps: horizonCusps, position: horizonPosition},
	Koch:          {cusps: kochCusps, position: kochPosition},
	Porphyry:      {cusps: func(_ *Engine, f *frame, _ System) error { porphyryCusps(f); return nil }, position: porphyryPosition},
	Placidus:      {cusps: placidusCusps, position: placidusPosition},
	Regiomontanus: {cusps: poleScaledCusps(0.5, math.Sqrt(3)/2), position: regiomontanusPosition},
	Topocentric:   {cusps: poleScaledCusps(1.0/3, 2.0/3), position: topocentricPosition},
	Axial:         {cusps: axialCusps, position: axialPosition},
	Alcabitius:    {cusps: alcabitiusCusps, position: alcabitiusPosition},
}

// equalCusps spaces cusps 30° apart starting at the ascendant plus offset.
func equalCusps(offset float64) cuspFunc {
	return func(_ *Engine, f *frame, _ System) error {
		f.ascendantOnEast()
		f.cusps[1] = astro.Normalize(f.asc + offset)
		for i := 2; i <= 12; i++ {
			f.cusps[i] = astro.Normalize(f.cusps[1] + float64(i-1)*30)
		}
		return nil
	}
}

func campanusCusps(_ *Engine, f *frame, _ System) error {
	f.primeVerticalCusps(f.lat, f.armc, false)
	return nil
}

// horizonCusps is Campanus in the horizon frame: the pole of the prime
// vertical becomes the pole and the sidereal angle turns by 180°.
func horizonCusps(_ *Engine, f *frame, _ System) error {
	pole := clampPole(colatitudeStrict(f.lat))
	f.primeVerticalCusps(pole, astro.Normalize(f.armc+180), true)
	return nil
}

// colatitudeStrict is colatitude with the equator counted as southern.
func colatitudeStrict(lat float64) float64 {
	if lat > 0 {
		return 90 - lat
	}
	return -90 - lat
}

// primeVerticalCusps divides the prime vertical of a sphere with the given
// pole into twelve equal arcs and projects them onto the ecliptic.
func (f *frame) primeVerticalCusps(pole, th float64, horizon bool) {
	fh1 := asind(sind(pole) / 2)
	fh2 := asind(math.Sqrt(3) / 2 * sind(pole))

	var xh1, xh2 float64
	if cosPole := cosd(pole); cosPole == 0 {
		if pole > 0 {
			xh1, xh2 = 90, 90
		} else {
			xh1, xh2 = 270, 270
		}
	} else {
		xh1 = atand(math.Sqrt(3) / cosPole)
		xh2 = atand(1 / math.Sqrt(3) / cosPole)
	}

	f.cusps[11] = f.ascendant(th+90-xh1, fh1)
	f.cusps[12] = f.ascendant(th+90-xh2, fh2)
	if horizon {
		f.cusps[1] = f.ascendant(th+90, pole)
	}
	f.cusps[2] = f.ascendant(th+90+xh2, fh2)
	f.cusps[3] = f.ascendant(th+90+xh1, fh1)

	f.polarFlip(pole)

	if horizon {
		for _, i := range [...]int{1, 2, 3, 11, 12} {
			f.cusps[i] = astro.Normalize(f.cusps[i] + 180)
		}
	}
}

func kochCusps(_ *Engine, f *frame, sys System) error {
	if f.inPolarCircle(f.lat) {
		return f.undefined(sys)
	}
	sina := sind(f.mc) * f.sinEps / cosd(f.lat)
	cosa := math.Sqrt(1 - sina*sina)
	c := atand(f.tanLat / cosa)
	ad3 := asind(sind(c)*sina) / 3

	f.cusps[11] = f.ascendant(f.armc+30-2*ad3, f.lat)
	f.cusps[12] = f.ascendant(f.armc+60-ad3, f.lat)
	f.cusps[2] = f.ascendant(f.armc+120+ad3, f.lat)
	f.cusps[3] = f.ascendant(f.armc+150+2*ad3, f.lat)
	return nil
}

// porphyryCusps trisects the ecliptic arcs between the angles.
func porphyryCusps(f *frame) {
	f.ascendantOnEast()
	acmc := astro.SignedDiff(f.asc, f.mc)

	f.cusps[2] = astro.Normalize(f.asc + (180-acmc)/3)
	f.cusps[3] = astro.Normalize(f.asc + (180-acmc)/3*2)
	f.cusps[11] = astro.Normalize(f.mc + acmc/3)
	f.cusps[12] = astro.Normalize(f.mc + acmc/3*2)
}

// poleScaledCusps builds Regiomontanus-style systems, whose intermediate
// cusps use pole heights atan(k·tan φ).
func poleScaledCusps(k1, k2 float64) cuspFunc {
	return func(_ *Engine, f *frame, _ System) error {
		fh1 := atand(f.tanLat * k1)
		fh2 := atand(f.tanLat * k2)

		f.cusps[11] = f.ascendant(f.armc+30, fh1)
		f.cusps[12] = f.ascendant(f.armc+60, fh2)
		f.cusps[2] = f.ascendant(f.armc+120, fh2)
		f.cusps[3] = f.ascendant(f.armc+150, fh1)

		f.polarFlip(f.lat)
		return nil
	}
}

// axialCusps places cusp n at the ecliptic point of right ascension
// ARMC + 30·(n-10).
func axialCusps(_ *Engine, f *frame, _ System) error {
	ra := f.armc
	for i := 1; i <= 12; i++ {
		j := i + 10
		if j > 12 {
			j -= 12
		}
		ra = astro.Normalize(ra + 30)
		f.cusps[j] = f.raToLongitude(ra)
	}
	return nil
}

// alcabitiusCusps trisects the ascendant's diurnal and nocturnal semi-arcs
// along the equator.
func alcabitiusCusps(_ *Engine, f *frame, _ System) error {
	f.ascendantOnEast()
	sda, sna := f.ascendantSemiArcs()

	f.cusps[11] = f.ascendant(f.armc+sda/3, 0)
	f.cusps[12] = f.ascendant(f.armc+2*sda/3, 0)
	f.cusps[2] = f.ascendant(f.armc+180-2*sna/3, 0)
	f.cusps[3] = f.ascendant(f.armc+180-sna/3, 0)
	return nil
}

// ascendantSemiArcs returns the diurnal and nocturnal semi-arcs of the
// current ascendant.
func (f *frame) ascendantSemiArcs() (sda, sna float64) {
	dec := asind(sind(f.asc) * f.sinEps)
	sda = astro.SemiDiurnalArc(dec, f.lat)
	return sda, 180 - sda
}
