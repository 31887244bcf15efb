package astro

import (
	"math"
)

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/El) components.
type SkyCoord struct {
	// Equatorial coordinates (of date)
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Horizontal coordinates (observer-relative)
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation/Altitude in degrees (0=horizon, 90=zenith)
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Az/El) for an observer latitude and local sidereal angle (ARMC).
//
// The function preserves the input RA/Dec values and populates Az/El.
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Elevation: 0° = horizon, 90° = zenith
func EquatorialToHorizontal(eq SkyCoord, latDeg, armcDeg float64) SkyCoord {
	lat := DegToRad(latDeg)
	dec := DegToRad(eq.DecDeg)

	// Hour Angle = LST - RA
	ha := DegToRad(armcDeg - eq.RAdeg)

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(Clamp1(sinAlt))

	// Zenith and poles have no defined azimuth.
	var az float64
	if den := math.Cos(alt) * math.Cos(lat); math.Abs(den) > Epsilon {
		cosAz := (math.Sin(dec) - math.Sin(alt)*math.Sin(lat)) / den
		az = math.Acos(Clamp1(cosAz))

		// West of the meridian when the hour angle is positive
		if math.Sin(ha) > 0 {
			az = 2*math.Pi - az
		}
	}

	return SkyCoord{
		RAdeg:  eq.RAdeg,
		DecDeg: eq.DecDeg,
		AzDeg:  Normalize(RadToDeg(az)),
		ElDeg:  RadToDeg(alt),
	}
}
