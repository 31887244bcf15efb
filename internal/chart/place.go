package chart

import (
	"fmt"
	"math"

	"github.com/litescript/ls-houses/internal/astro"
	"github.com/litescript/ls-houses/internal/houses"
)

// Placement is an ecliptic point located in a chart.
type Placement struct {
	Longitude  float64       `json:"longitude"`
	Latitude   float64       `json:"latitude"`
	System     houses.System `json:"system"`
	Requested  houses.System `json:"requested"`
	Position   float64       `json:"position"`
	House      int           `json:"house"`
	Diagnostic string        `json:"diagnostic,omitempty"`

	RA           float64 `json:"ra"`
	Dec          float64 `json:"dec"`
	Azimuth      float64 `json:"azimuth"`
	Altitude     float64 `json:"altitude"`
	AboveHorizon bool    `json:"above_horizon"`

	// NearestCusp is the cusp closest in longitude; CuspDistance is the
	// signed ecliptic distance from it, positive when the point is past it.
	NearestCusp  int     `json:"nearest_cusp"`
	CuspDistance float64 `json:"cusp_distance"`
}

// Degenerate reports whether the house position is a best-effort value.
func (p Placement) Degenerate() bool {
	return p.Diagnostic != ""
}

// FellBack reports whether the position was measured in a substitute
// system because the requested one is undefined at the chart latitude.
func (p Placement) FellBack() bool {
	return p.System != p.Requested
}

// Place computes the house position of the ecliptic point (lon, lat) in
// the chart, using the system the chart was actually built with.
func (s *Service) Place(c *Chart, lon, lat float64) (Placement, error) {
	if c == nil {
		return Placement{}, fmt.Errorf("place: nil chart")
	}
	if lat < -90 || lat > 90 {
		return Placement{}, fmt.Errorf("%w: ecliptic latitude %v outside [-90, 90]", houses.ErrInvalidInput, lat)
	}

	in := c.Inputs()
	pl, err := s.engine.Position(in, c.System, lon, lat)
	if err != nil {
		return Placement{}, fmt.Errorf("house position: %w", err)
	}

	lon = astro.Normalize(lon)
	ra, dec := astro.EclipticToEquatorial(lon, lat, in.Obliquity)
	hz := astro.EquatorialToHorizontal(astro.SkyCoord{RAdeg: ra, DecDeg: dec}, in.Latitude, in.ARMC)

	p := Placement{
		Longitude:    lon,
		Latitude:     lat,
		System:       c.System,
		Requested:    c.Requested,
		Position:     pl.Value,
		House:        pl.House(),
		Diagnostic:   pl.Diagnostic,
		RA:           ra,
		Dec:          dec,
		Azimuth:      hz.AzDeg,
		Altitude:     hz.ElDeg,
		AboveHorizon: hz.ElDeg > 0,
	}
	if p.Requested == 0 {
		p.Requested = c.System
	}
	p.NearestCusp, p.CuspDistance = nearestCusp(c.Cusps, lon)
	if p.Degenerate() {
		s.log.Debug("degenerate %s position at %.4f: %s", c.System, lon, p.Diagnostic)
	}
	return p, nil
}

func nearestCusp(cusps []float64, lon float64) (int, float64) {
	best, dist := 0, math.Inf(1)
	for i, c := range cusps {
		d := astro.SignedDiff(lon, c)
		if math.Abs(d) < math.Abs(dist) {
			best, dist = i+1, d
		}
	}
	return best, dist
}
