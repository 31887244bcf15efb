package astro

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// Moment is a UT instant seen from a geographic longitude (east positive).
// Dynamical time is approximated by UT.
type Moment struct {
	Time      time.Time
	Longitude float64
}

// JulianDay returns the Julian day of the moment.
func (m Moment) JulianDay() float64 {
	return julian.TimeToJD(m.Time.UTC())
}

// GreenwichSidereal returns Greenwich apparent sidereal time as an angle in degrees.
func (m Moment) GreenwichSidereal() float64 {
	return Normalize(sidereal.Apparent(m.JulianDay()).Angle().Deg())
}

// ARMC returns the local apparent sidereal time, expressed as the right
// ascension of the meridian in degrees.
func (m Moment) ARMC() float64 {
	return Normalize(m.GreenwichSidereal() + m.Longitude)
}

// MeanObliquity returns the mean obliquity of the ecliptic in degrees.
func (m Moment) MeanObliquity() float64 {
	return nutation.MeanObliquity(m.JulianDay()).Deg()
}

// TrueObliquity returns the mean obliquity corrected for nutation in obliquity.
func (m Moment) TrueObliquity() float64 {
	jde := m.JulianDay()
	_, dEps := nutation.Nutation(jde)
	return (nutation.MeanObliquity(jde) + dEps).Deg()
}
