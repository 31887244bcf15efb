package houses

import (
	"errors"
	"fmt"
	"math"

	"github.com/litescript/ls-houses/internal/astro"
)

// DefaultRefinementIterations is the number of Placidus fixed-point passes
// applied after the initial pole-height estimate.
const DefaultRefinementIterations = 2

// Inputs are the angular inputs of one computation, in degrees.
type Inputs struct {
	ARMC      float64 // sidereal time as an angle (right ascension of the MC)
	Latitude  float64 // geographic latitude, north positive
	Obliquity float64 // obliquity of the ecliptic
}

// Validate checks that every input is finite and inside its domain.
func (in Inputs) Validate() error {
	for _, v := range [...]float64{in.ARMC, in.Latitude, in.Obliquity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidInput)
		}
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidInput, in.Latitude)
	}
	if in.Obliquity < 0 || in.Obliquity > 90 {
		return fmt.Errorf("%w: obliquity %v outside [0, 90]", ErrInvalidInput, in.Obliquity)
	}
	return nil
}

// Cusps holds the twelve house cusps at indices 1..12. Index 0 is unused.
type Cusps [13]float64

// Slice returns cusps 1..12 as a new slice.
func (c Cusps) Slice() []float64 {
	out := make([]float64, 12)
	copy(out, c[1:])
	return out
}

// Angles are the system-independent sensitive points of a chart.
type Angles struct {
	Ascendant           float64 `json:"ascendant"`
	MC                  float64 `json:"mc"`
	ARMC                float64 `json:"armc"`
	Vertex              float64 `json:"vertex"`
	EquatorialAscendant float64 `json:"equatorial_ascendant"`
	CoAscendantKoch     float64 `json:"co_ascendant_koch"`
	CoAscendantMunkasey float64 `json:"co_ascendant_munkasey"`
	PolarAscendant      float64 `json:"polar_ascendant"`
}

// Houses is the result of a cusp computation.
type Houses struct {
	// System is the construction actually used. It differs from Requested
	// when a fallback was applied.
	System    System
	Requested System
	Cusps     Cusps
	Angles    Angles
}

// FellBack reports whether the cusps come from a substitute system.
func (h Houses) FellBack() bool {
	return h.System != h.Requested
}

// TraceFunc receives diagnostic events as a message and key/value pairs.
type TraceFunc func(msg string, kv ...any)

// Option configures an Engine.
type Option func(*Engine)

// WithRefinementIterations sets the number of Placidus refinement passes.
// Negative values are treated as zero.
func WithRefinementIterations(n int) Option {
	return func(e *Engine) {
		if n < 0 {
			n = 0
		}
		e.iterations = n
	}
}

// WithFallback sets the policy applied when a system is undefined.
func WithFallback(p FallbackPolicy) Option {
	return func(e *Engine) {
		e.fallback = p
	}
}

// WithTrace installs a callback for diagnostic events.
func WithTrace(fn TraceFunc) Option {
	return func(e *Engine) {
		e.trace = fn
	}
}

// Engine computes house cusps and positions. It holds only configuration
// and is safe for concurrent use.
type Engine struct {
	iterations int
	fallback   FallbackPolicy
	trace      TraceFunc
}

// New creates an engine with the given options applied over the defaults:
// two refinement iterations and the Porphyry fallback.
func New(opts ...Option) *Engine {
	e := &Engine{
		iterations: DefaultRefinementIterations,
		fallback:   FallbackPorphyry,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RefinementIterations returns the configured Placidus iteration count.
func (e *Engine) RefinementIterations() int { return e.iterations }

// Fallback returns the configured fallback policy.
func (e *Engine) Fallback() FallbackPolicy { return e.fallback }

func (e *Engine) tracef(msg string, kv ...any) {
	if e.trace != nil {
		e.trace(msg, kv...)
	}
}

// resolve looks up a system, substituting Placidus for unknown codes.
// Codes are matched case-insensitively.
func (e *Engine) resolve(sys System) (System, strategy) {
	sys = sys.canonical()
	if st, ok := systemTable[sys]; ok {
		return sys, st
	}
	e.tracef("unknown house system, using Placidus", "system", fmt.Sprintf("%q", rune(sys)))
	return Placidus, systemTable[Placidus]
}

// Houses computes the ascendant, MC, twelve cusps and auxiliary points.
//
// When the requested system is undefined at the latitude the returned error
// wraps ErrGeometricallyUndefined. Under FallbackPorphyry the Houses value
// still carries a complete Porphyry chart with System set to Porphyry; under
// FallbackNone it is the zero value apart from Requested.
func (e *Engine) Houses(in Inputs, sys System) (Houses, error) {
	sys = sys.canonical()
	if err := in.Validate(); err != nil {
		return Houses{Requested: sys}, err
	}

	used, st := e.resolve(sys)
	f := newFrame(in)
	h := Houses{System: used, Requested: sys}

	err := st.cusps(e, f, used)
	if err != nil {
		var undefined *UndefinedError
		if !errors.As(err, &undefined) || e.fallback == FallbackNone {
			return Houses{Requested: sys}, err
		}
		e.tracef("house system undefined, using Porphyry",
			"system", used.String(), "latitude", in.Latitude, "limit", undefined.Limit)
		porphyryCusps(f)
		h.System = Porphyry
	}

	f.completeOpposites()
	h.Cusps = f.cusps
	h.Angles = f.angles()
	return h, err
}

// Position returns the house position, in [1, 13), of the ecliptic point
// (lon, lat). A value n.0 lies exactly on cusp n. Circumpolar points yield
// a best-effort value with a Diagnostic; the error is reserved for invalid
// inputs.
func (e *Engine) Position(in Inputs, sys System, lon, lat float64) (Placement, error) {
	if err := in.Validate(); err != nil {
		return Placement{}, err
	}
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return Placement{}, fmt.Errorf("%w: non-finite ecliptic point", ErrInvalidInput)
	}

	used, st := e.resolve(sys)
	f := newFrame(in)
	p := f.point(lon, lat)

	pl := st.position(f, p)
	if pl.Degenerate() {
		e.tracef("degenerate house position", "system", used.String(),
			"lon", lon, "lat", lat, "diagnostic", pl.Diagnostic)
	}
	return pl, nil
}

var defaultEngine = New()

// Compute runs Houses on a default engine.
func Compute(armc, lat, eps float64, sys System) (Houses, error) {
	return defaultEngine.Houses(Inputs{ARMC: armc, Latitude: lat, Obliquity: eps}, sys)
}

// HousePosition runs Position on a default engine.
func HousePosition(armc, geoLat, eps float64, sys System, lon, lat float64) (Placement, error) {
	return defaultEngine.Position(Inputs{ARMC: armc, Latitude: geoLat, Obliquity: eps}, sys, lon, lat)
}

// frame carries the derived quantities shared by one computation.
type frame struct {
	armc   float64
	lat    float64 // clamped off the poles
	eps    float64
	sinEps float64
	cosEps float64
	tanEps float64
	tanLat float64

	asc   float64
	mc    float64
	cusps Cusps
}

func newFrame(in Inputs) *frame {
	f := &frame{
		armc:   astro.Normalize(in.ARMC),
		lat:    clampPole(in.Latitude),
		eps:    in.Obliquity,
		sinEps: sind(in.Obliquity),
		cosEps: cosd(in.Obliquity),
		tanEps: tand(in.Obliquity),
	}
	f.tanLat = tand(f.lat)
	f.mc = astro.RAToLongitude(f.armc, f.cosEps)
	f.asc = f.ascendant(f.armc+90, f.lat)
	f.cusps[1] = f.asc
	f.cusps[10] = f.mc
	return f
}

func (f *frame) ascendant(hourAngle, pole float64) float64 {
	return Ascendant(hourAngle, pole, f.sinEps, f.cosEps)
}

// raToLongitude maps a right ascension onto the ecliptic.
func (f *frame) raToLongitude(ra float64) float64 {
	return astro.RAToLongitude(ra, f.cosEps)
}

// inPolarCircle reports whether |pole| lies at or beyond 90-eps.
func (f *frame) inPolarCircle(pole float64) bool {
	return math.Abs(pole) >= 90-f.eps
}

// undefined builds the error for a system that has no solution here.
func (f *frame) undefined(sys System) error {
	return &UndefinedError{System: sys, Latitude: f.lat, Limit: 90 - f.eps}
}

// ascendantOnEast moves the ascendant to the eastern half when it trails
// the MC and keeps cusp 1 in step.
func (f *frame) ascendantOnEast() {
	if astro.SignedDiff(f.asc, f.mc) < 0 {
		f.asc = astro.Normalize(f.asc + 180)
		f.cusps[1] = f.asc
	}
}

// polarFlip turns the whole chart by 180° when, inside the polar circle of
// pole, the ascendant has moved behind the MC.
func (f *frame) polarFlip(pole float64) {
	if !f.inPolarCircle(pole) || astro.SignedDiff(f.asc, f.mc) >= 0 {
		return
	}
	f.asc = astro.Normalize(f.asc + 180)
	f.mc = astro.Normalize(f.mc + 180)
	for i := 1; i <= 12; i++ {
		f.cusps[i] = astro.Normalize(f.cusps[i] + 180)
	}
}

// completeOpposites derives cusps 4..9 from 10..12 and 1..3.
func (f *frame) completeOpposites() {
	for i, src := range [...]int{10, 11, 12, 1, 2, 3} {
		f.cusps[4+i] = astro.Normalize(f.cusps[src] + 180)
	}
}

// angles derives the auxiliary points. They depend on ARMC and latitude
// only, never on the house system.
func (f *frame) angles() Angles {
	vertex := f.ascendant(f.armc-90, colatitude(f.lat))
	// In the tropics keep the vertex in the western hemisphere.
	if math.Abs(f.lat) <= f.eps && astro.SignedDiff(vertex, f.mc) > 0 {
		vertex = astro.Normalize(vertex + 180)
	}

	return Angles{
		Ascendant:           f.asc,
		MC:                  f.mc,
		ARMC:                f.armc,
		Vertex:              vertex,
		EquatorialAscendant: f.raToLongitude(f.armc + 90),
		CoAscendantKoch:     astro.Normalize(f.ascendant(f.armc-90, f.lat) + 180),
		CoAscendantMunkasey: f.ascendant(f.armc+90, colatitude(f.lat)),
		PolarAscendant:      f.ascendant(f.armc-90, f.lat),
	}
}
