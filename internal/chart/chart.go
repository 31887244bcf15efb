// Package chart turns a birth time and place (or raw sidereal inputs) into a
// house chart, places points in it and renders the result.
package chart

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/litescript/ls-houses/internal/astro"
	"github.com/litescript/ls-houses/internal/houses"
	"github.com/litescript/ls-houses/internal/logging"
)

// J2000Obliquity is the mean obliquity at J2000.0, used when neither an
// obliquity nor a time is given.
const J2000Obliquity = 23.4392911

// ErrNoTime means a request carried neither a time nor an ARMC.
var ErrNoTime = errors.New("chart: time or armc required")

// Request describes a chart to compute. ARMC and Obliquity override the
// values derived from Time.
type Request struct {
	Name      string
	Time      *time.Time
	ARMC      *float64
	Latitude  float64
	Longitude float64 // east positive
	Obliquity *float64
	System    houses.System
}

// Inputs resolves the sidereal inputs of the request.
func (r Request) Inputs() (houses.Inputs, error) {
	if r.Time == nil && r.ARMC == nil {
		return houses.Inputs{}, ErrNoTime
	}
	if math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180 {
		return houses.Inputs{}, fmt.Errorf("%w: longitude %v outside [-180, 180]", houses.ErrInvalidInput, r.Longitude)
	}

	in := houses.Inputs{Latitude: r.Latitude, Obliquity: J2000Obliquity}
	if r.Time != nil {
		m := astro.Moment{Time: *r.Time, Longitude: r.Longitude}
		in.ARMC = m.ARMC()
		in.Obliquity = m.TrueObliquity()
	}
	if r.ARMC != nil {
		in.ARMC = astro.Normalize(*r.ARMC)
	}
	if r.Obliquity != nil {
		in.Obliquity = *r.Obliquity
	}
	return in, in.Validate()
}

// Chart is a computed house chart. All angles are in degrees.
type Chart struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Time      *time.Time    `json:"time,omitempty"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	ARMC      float64       `json:"armc"`
	Obliquity float64       `json:"obliquity"`
	System    houses.System `json:"system"`
	Requested houses.System `json:"requested"`
	Cusps     []float64     `json:"cusps"`
	Angles    houses.Angles `json:"angles"`
	// Note records why the requested system was replaced.
	Note string `json:"note,omitempty"`
}

// FellBack reports whether the cusps come from a substitute system.
func (c *Chart) FellBack() bool {
	return c.System != c.Requested
}

// Inputs returns the sidereal inputs the chart was computed from.
func (c *Chart) Inputs() houses.Inputs {
	return houses.Inputs{ARMC: c.ARMC, Latitude: c.Latitude, Obliquity: c.Obliquity}
}

// Houses rebuilds the engine result the chart was made from.
func (c *Chart) Houses() houses.Houses {
	h := houses.Houses{System: c.System, Requested: c.Requested, Angles: c.Angles}
	copy(h.Cusps[1:], c.Cusps)
	return h
}

// Undefined returns the error that caused a fallback, or nil.
func (c *Chart) Undefined() error {
	if !c.FellBack() {
		return nil
	}
	return &houses.UndefinedError{System: c.Requested, Latitude: c.Latitude, Limit: 90 - c.Obliquity}
}

// Cusp returns cusp i (1..12).
func (c *Chart) Cusp(i int) float64 {
	return c.Cusps[i-1]
}

// Service computes charts with a shared engine.
type Service struct {
	engine *houses.Engine
	log    *logging.Logger
	now    func() time.Time
}

// NewService creates a chart service. A nil logger discards output.
func NewService(engine *houses.Engine, log *logging.Logger) *Service {
	if engine == nil {
		engine = houses.New()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Service{engine: engine, log: log, now: time.Now}
}

// Engine returns the engine used by the service.
func (s *Service) Engine() *houses.Engine {
	return s.engine
}

// Compute resolves the request and computes its houses. A system that is
// undefined at the latitude yields a Porphyry chart with Note set, unless
// the engine has no fallback, in which case the error is returned.
func (s *Service) Compute(req Request) (*Chart, error) {
	in, err := req.Inputs()
	if err != nil {
		return nil, err
	}

	sys := req.System
	if sys == 0 {
		sys = houses.Placidus
	}

	start := time.Now()
	h, err := s.engine.Houses(in, sys)
	if err != nil && (!errors.Is(err, houses.ErrGeometricallyUndefined) || s.engine.Fallback() == houses.FallbackNone) {
		return nil, fmt.Errorf("compute %s houses: %w", sys, err)
	}

	c := &Chart{
		ID:        uuid.New(),
		Name:      req.Name,
		CreatedAt: s.now().UTC(),
		Time:      req.Time,
		Latitude:  in.Latitude,
		Longitude: req.Longitude,
		ARMC:      in.ARMC,
		Obliquity: in.Obliquity,
		System:    h.System,
		Requested: h.Requested,
		Cusps:     h.Cusps.Slice(),
		Angles:    h.Angles,
	}
	if err != nil {
		c.Note = err.Error()
		s.log.Warn("%s undefined at latitude %.4f, using %s", sys, in.Latitude, h.System)
	}
	s.log.Debug("computed %s chart in %v", c.System, time.Since(start))
	return c, nil
}
