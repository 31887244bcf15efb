package chart

import (
	"fmt"
	"strings"

	"github.com/soniakeys/unit"
)

// Units selects the angular unit of exported values.
type Units int

const (
	Degrees Units = iota
	Radians
)

func (u Units) String() string {
	if u == Radians {
		return "radians"
	}
	return "degrees"
}

// ParseUnits parses "degrees" or "radians" (also "deg", "rad").
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deg", "degrees":
		return Degrees, nil
	case "rad", "radians":
		return Radians, nil
	default:
		return Degrees, fmt.Errorf("unknown units %q", s)
	}
}

// Angle converts a value in degrees into u.
func (u Units) Angle(deg float64) float64 {
	if u == Radians {
		return unit.AngleFromDeg(deg).Rad()
	}
	return deg
}

// In returns a copy of the chart with every angle expressed in u.
func (c *Chart) In(u Units) *Chart {
	out := *c
	if u == Degrees {
		out.Cusps = append([]float64(nil), c.Cusps...)
		return &out
	}

	out.Latitude = u.Angle(c.Latitude)
	out.Longitude = u.Angle(c.Longitude)
	out.ARMC = u.Angle(c.ARMC)
	out.Obliquity = u.Angle(c.Obliquity)
	out.Cusps = make([]float64, len(c.Cusps))
	for i, v := range c.Cusps {
		out.Cusps[i] = u.Angle(v)
	}
	a := &out.Angles
	for _, v := range []*float64{
		&a.Ascendant, &a.MC, &a.ARMC, &a.Vertex, &a.EquatorialAscendant,
		&a.CoAscendantKoch, &a.CoAscendantMunkasey, &a.PolarAscendant,
	} {
		*v = u.Angle(*v)
	}
	return &out
}

// In returns a copy of the placement with its angles expressed in u. The
// house position is unitless and unchanged.
func (p Placement) In(u Units) Placement {
	if u == Degrees {
		return p
	}
	for _, v := range []*float64{
		&p.Longitude, &p.Latitude, &p.RA, &p.Dec,
		&p.Azimuth, &p.Altitude, &p.CuspDistance,
	} {
		*v = u.Angle(*v)
	}
	return p
}
