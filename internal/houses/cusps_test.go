package houses

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/litescript/ls-houses/internal/astro"
)

// Reference chart: ARMC 10°, latitude 48°N, obliquity 23.4392911°.
var referenceCusps = map[System][12]float64{
	Placidus:      {121.398565, 139.178607, 161.289738, 190.878789, 229.308384, 269.254303, 301.398565, 319.178607, 341.289738, 10.878789, 49.308384, 89.254303},
	Koch:          {121.398565, 144.564683, 167.648327, 190.878789, 243.947761, 276.385090, 301.398565, 324.564683, 347.648327, 10.878789, 63.947761, 96.385090},
	Porphyry:      {121.398565, 144.558640, 167.718715, 190.878789, 227.718715, 264.558640, 301.398565, 324.558640, 347.718715, 10.878789, 47.718715, 84.558640},
	Regiomontanus: {121.398565, 141.767562, 162.474059, 190.878789, 233.138479, 274.186987, 301.398565, 321.767562, 342.474059, 10.878789, 53.138479, 94.186987},
	Campanus:      {121.398565, 148.836668, 169.680329, 190.878789, 219.535697, 261.058834, 301.398565, 328.836668, 349.680329, 10.878789, 39.535697, 81.058834},
	Horizon:       {78.584962, 120.624643, 163.081335, 190.878789, 211.085892, 231.183499, 258.584962, 300.624643, 343.081335, 10.878789, 31.085892, 51.183499},
	Topocentric:   {121.398565, 139.097362, 161.281987, 190.878789, 229.162535, 268.824618, 301.398565, 319.097362, 341.281987, 10.878789, 49.162535, 88.824618},
	Alcabitius:    {121.398565, 143.426849, 166.824444, 190.878789, 230.319380, 266.105333, 301.398565, 323.426849, 346.824444, 10.878789, 50.319380, 86.105333},
	Axial:         {99.189514, 127.591194, 158.361497, 190.878789, 222.445035, 251.533971, 279.189514, 307.591194, 338.361497, 10.878789, 42.445035, 71.533971},
}

// Systems whose first cusp is the ascendant and tenth the MC.
var angularSystems = []System{Campanus, Koch, Porphyry, Placidus, Regiomontanus, Topocentric, Alcabitius}

func TestHousesReferenceChart(t *testing.T) {
	for sys, want := range referenceCusps {
		t.Run(sys.String(), func(t *testing.T) {
			h, err := Compute(refARMC, refLat, refEps, sys)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			if h.System != sys || h.FellBack() {
				t.Errorf("System = %v, want %v without fallback", h.System, sys)
			}
			if diff := cmp.Diff(want[:], h.Cusps.Slice(), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
				t.Errorf("cusps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHousesReferenceAngles(t *testing.T) {
	h, err := Compute(refARMC, refLat, refEps, Placidus)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	want := Angles{
		Ascendant:           121.398565426,
		MC:                  10.878789444,
		ARMC:                10,
		Vertex:              258.584962092,
		EquatorialAscendant: 99.189513686,
		CoAscendantKoch:     73.996337970,
		CoAscendantMunkasey: 117.720228938,
		PolarAscendant:      253.996337970,
	}
	if diff := cmp.Diff(want, h.Angles, cmpopts.EquateApprox(0, 1e-8)); diff != "" {
		t.Errorf("angles mismatch (-want +got):\n%s", diff)
	}
}

func TestAnglesSouthernHemisphere(t *testing.T) {
	h, err := Compute(200, -33, refEps, Regiomontanus)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	want := Angles{
		Ascendant:           h.Angles.Ascendant,
		MC:                  h.Angles.MC,
		ARMC:                200,
		Vertex:              72.364679359,
		EquatorialAscendant: 288.466028737,
		CoAscendantKoch:     273.378722686,
		CoAscendantMunkasey: 314.589415672,
		PolarAscendant:      93.378722686,
	}
	if diff := cmp.Diff(want, h.Angles, cmpopts.EquateApprox(0, 1e-8)); diff != "" {
		t.Errorf("angles mismatch (-want +got):\n%s", diff)
	}
}

func TestAnglesAreSystemIndependent(t *testing.T) {
	base, err := Compute(123, 41, refEps, Placidus)
	if err != nil {
		t.Fatal(err)
	}
	for _, sys := range Systems {
		h, err := Compute(123, 41, refEps, sys)
		if err != nil {
			t.Fatalf("%v: %v", sys, err)
		}
		if diff := cmp.Diff(base.Angles, h.Angles); diff != "" {
			t.Errorf("%v angles differ from Placidus (-placidus +%v):\n%s", sys, sys, diff)
		}
	}
}

func TestEqualHouses(t *testing.T) {
	for armc := 0.0; armc < 360; armc += 30 {
		h, err := Compute(armc, refLat, refEps, Equal)
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i <= 12; i++ {
			want := astro.Normalize(h.Angles.Ascendant + 30*float64(i-1))
			if math.Abs(astro.SignedDiff(h.Cusps[i], want)) > 1e-9 {
				t.Errorf("ARMC %v cusp %d = %v, want %v", armc, i, h.Cusps[i], want)
			}
		}
	}
}

func TestVehlowOffset(t *testing.T) {
	eq, _ := Compute(refARMC, refLat, refEps, Equal)
	v, _ := Compute(refARMC, refLat, refEps, Vehlow)

	if math.Abs(v.Cusps[1]-106.398565) > 1e-6 {
		t.Errorf("Vehlow cusp 1 = %v, want 106.398565", v.Cusps[1])
	}
	for i := 1; i <= 12; i++ {
		if d := astro.SignedDiff(eq.Cusps[i], v.Cusps[i]); math.Abs(d-15) > 1e-9 {
			t.Errorf("cusp %d: Equal - Vehlow = %v, want 15", i, d)
		}
	}
}

func TestCuspInvariants(t *testing.T) {
	for _, sys := range Systems {
		t.Run(sys.String(), func(t *testing.T) {
			for armc := 0.0; armc < 360; armc += 15 {
				for _, lat := range []float64{-89.99, -60, -40, -5, 0, 5, 40, 60, 80, 90} {
					h, err := Compute(armc, lat, refEps, sys)
					if err != nil && !errors.Is(err, ErrGeometricallyUndefined) {
						t.Fatalf("armc=%v lat=%v: %v", armc, lat, err)
					}
					for i := 1; i <= 12; i++ {
						if c := h.Cusps[i]; c < 0 || c >= 360 || math.IsNaN(c) {
							t.Fatalf("armc=%v lat=%v cusp %d = %v out of range", armc, lat, i, c)
						}
					}
					for i := 1; i <= 6; i++ {
						want := astro.Normalize(h.Cusps[i] + 180)
						if math.Abs(astro.SignedDiff(h.Cusps[i+6], want)) > 1e-9 {
							t.Errorf("armc=%v lat=%v: cusp %d = %v, want opposite of cusp %d (%v)",
								armc, lat, i+6, h.Cusps[i+6], i, want)
						}
					}
				}
			}
		})
	}
}

func TestAngularSystemsStartAtAscendantAndMC(t *testing.T) {
	for _, sys := range angularSystems {
		for armc := 0.0; armc < 360; armc += 20 {
			for _, lat := range []float64{-55, -20, 0, 20, 55} {
				h, err := Compute(armc, lat, refEps, sys)
				if err != nil {
					t.Fatalf("%v armc=%v lat=%v: %v", sys, armc, lat, err)
				}
				if h.Cusps[1] != h.Angles.Ascendant {
					t.Errorf("%v armc=%v lat=%v: cusp 1 = %v, ascendant %v", sys, armc, lat, h.Cusps[1], h.Angles.Ascendant)
				}
				if h.Cusps[10] != h.Angles.MC {
					t.Errorf("%v armc=%v lat=%v: cusp 10 = %v, MC %v", sys, armc, lat, h.Cusps[10], h.Angles.MC)
				}
			}
		}
	}
}

func TestPlacidusCuspsIncreaseEastward(t *testing.T) {
	h, err := Compute(refARMC, refLat, refEps, Placidus)
	if err != nil {
		t.Fatal(err)
	}
	order := []int{10, 11, 12, 1, 2, 3, 4}
	for k := 1; k < len(order); k++ {
		a, b := h.Cusps[order[k-1]], h.Cusps[order[k]]
		if d := astro.SignedDiff(b, a); d <= 0 {
			t.Errorf("cusp %d (%v) does not follow cusp %d (%v)", order[k], b, order[k-1], a)
		}
	}
}

func TestUndefinedInPolarCircle(t *testing.T) {
	wantFallback := []float64{141.817031, 158.170970, 174.524908, 190.878846, 234.524908, 278.170970, 321.817031, 338.170970, 354.524908, 10.878846, 54.524908, 98.170970}

	for _, sys := range []System{Placidus, Koch} {
		t.Run(sys.String(), func(t *testing.T) {
			h, err := Compute(10, 70, 23.44, sys)
			if !errors.Is(err, ErrGeometricallyUndefined) {
				t.Fatalf("error = %v, want ErrGeometricallyUndefined", err)
			}

			var undefined *UndefinedError
			if !errors.As(err, &undefined) {
				t.Fatalf("error %T is not *UndefinedError", err)
			}
			if undefined.System != sys || math.Abs(undefined.Limit-66.56) > 1e-9 {
				t.Errorf("UndefinedError = %+v", undefined)
			}

			if h.System != Porphyry || h.Requested != sys || !h.FellBack() {
				t.Errorf("System = %v, Requested = %v; want Porphyry fallback for %v", h.System, h.Requested, sys)
			}
			if diff := cmp.Diff(wantFallback, h.Cusps.Slice(), cmpopts.EquateApprox(0, 1e-6)); diff != "" {
				t.Errorf("fallback cusps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUndefinedWithoutFallback(t *testing.T) {
	e := New(WithFallback(FallbackNone))

	h, err := e.Houses(Inputs{ARMC: 10, Latitude: -70, Obliquity: 23.44}, Placidus)
	if !errors.Is(err, ErrGeometricallyUndefined) {
		t.Fatalf("error = %v, want ErrGeometricallyUndefined", err)
	}
	if h.System != 0 || h.Cusps != (Cusps{}) {
		t.Errorf("expected empty houses, got %+v", h)
	}
	if h.Requested != Placidus {
		t.Errorf("Requested = %v, want Placidus", h.Requested)
	}
}

func TestPolarLatitudeDefinedSystems(t *testing.T) {
	for _, sys := range []System{Porphyry, Regiomontanus, Campanus, Equal, Axial, Topocentric, Alcabitius, Horizon, Vehlow} {
		if _, err := Compute(10, 70, 23.44, sys); err != nil {
			t.Errorf("%v at 70°: unexpected error %v", sys, err)
		}
	}
}

func TestPlacidusRefinementIterations(t *testing.T) {
	in := Inputs{ARMC: refARMC, Latitude: refLat, Obliquity: refEps}

	rough, err := New(WithRefinementIterations(0)).Houses(in, Placidus)
	if err != nil {
		t.Fatal(err)
	}
	def, _ := New().Houses(in, Placidus)
	fine, _ := New(WithRefinementIterations(30)).Houses(in, Placidus)

	if rough.Cusps == def.Cusps {
		t.Error("zero iterations should differ from the default")
	}
	for _, i := range []int{2, 3, 11, 12} {
		if d := math.Abs(astro.SignedDiff(def.Cusps[i], fine.Cusps[i])); d > 1e-4 {
			t.Errorf("cusp %d: default %v, converged %v", i, def.Cusps[i], fine.Cusps[i])
		}
	}
	if New(WithRefinementIterations(-3)).RefinementIterations() != 0 {
		t.Error("negative iterations should clamp to zero")
	}
}

func TestPlacidusWithoutObliquity(t *testing.T) {
	h, err := Compute(refARMC, refLat, 0, Placidus)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]float64{10: 10, 11: 40, 12: 70, 1: 100, 2: 130, 3: 160}
	for i, w := range want {
		if math.Abs(astro.SignedDiff(h.Cusps[i], w)) > 1e-9 {
			t.Errorf("cusp %d = %v, want %v", i, h.Cusps[i], w)
		}
	}
}

func TestUnknownSystemUsesPlacidus(t *testing.T) {
	var traced []string
	e := New(WithTrace(func(msg string, kv ...any) { traced = append(traced, msg) }))
	in := Inputs{ARMC: refARMC, Latitude: refLat, Obliquity: refEps}

	h, err := e.Houses(in, System('Z'))
	if err != nil {
		t.Fatal(err)
	}
	p, _ := e.Houses(in, Placidus)

	if h.System != Placidus || h.Requested != System('Z') {
		t.Errorf("System = %v, Requested = %v", h.System, h.Requested)
	}
	if h.Cusps != p.Cusps {
		t.Error("unknown system should produce Placidus cusps")
	}
	if len(traced) != 1 {
		t.Errorf("trace events = %v, want one", traced)
	}
}

func TestFallbackTraced(t *testing.T) {
	var events []string
	e := New(WithTrace(func(msg string, kv ...any) { events = append(events, msg) }))

	if _, err := e.Houses(Inputs{ARMC: 10, Latitude: 75, Obliquity: 23.44}, Koch); err == nil {
		t.Fatal("expected error")
	}
	if len(events) != 1 || events[0] != "house system undefined, using Porphyry" {
		t.Errorf("events = %v", events)
	}
}

func TestInvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
	}{
		{"latitude above pole", Inputs{ARMC: 0, Latitude: 91, Obliquity: 23}},
		{"negative obliquity", Inputs{ARMC: 0, Latitude: 10, Obliquity: -1}},
		{"NaN sidereal time", Inputs{ARMC: math.NaN(), Latitude: 10, Obliquity: 23}},
		{"infinite latitude", Inputs{ARMC: 0, Latitude: math.Inf(1), Obliquity: 23}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New().Houses(tt.in, Placidus); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Houses error = %v, want ErrInvalidInput", err)
			}
			if _, err := New().Position(tt.in, Placidus, 0, 0); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Position error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestLowerCaseSystemCodes(t *testing.T) {
	tests := []struct {
		code System
		want System
	}{
		{System('k'), Koch},
		{System('p'), Placidus},
		{System('r'), Regiomontanus},
		{System('a'), Equal},
		{System('A'), Equal},
	}

	for _, tt := range tests {
		t.Run(tt.code.Code(), func(t *testing.T) {
			got, err := Compute(refARMC, refLat, refEps, tt.code)
			if err != nil {
				t.Fatal(err)
			}
			want, _ := Compute(refARMC, refLat, refEps, tt.want)
			if got.System != tt.want || got.Requested != tt.want {
				t.Errorf("System = %v, Requested = %v, want %v", got.System, got.Requested, tt.want)
			}
			if got.Cusps != want.Cusps {
				t.Errorf("cusps = %v, want %v", got.Cusps, want.Cusps)
			}

			pl, err := HousePosition(refARMC, refLat, refEps, tt.code, 40, 0)
			if err != nil {
				t.Fatal(err)
			}
			wantPl, _ := HousePosition(refARMC, refLat, refEps, tt.want, 40, 0)
			if pl != wantPl {
				t.Errorf("position = %.9f, want %.9f", pl.Value, wantPl.Value)
			}
		})
	}
}

func TestPolarFlipTurnsWholeChart(t *testing.T) {
	const lat = 75.0
	cosEps := math.Cos(refEps * math.Pi / 180)
	sinEps := math.Sin(refEps * math.Pi / 180)

	for _, sys := range []System{Campanus, Regiomontanus, Topocentric} {
		t.Run(sys.String(), func(t *testing.T) {
			flipped := 0
			for armc := 0.0; armc < 360; armc += 5 {
				h, err := Compute(armc, lat, refEps, sys)
				if err != nil {
					t.Fatalf("armc=%v: %v", armc, err)
				}
				rawMC := astro.RAToLongitude(armc, cosEps)
				rawAsc := Ascendant(armc+90, lat, sinEps, cosEps)

				wantMC, wantAsc := rawMC, rawAsc
				if astro.SignedDiff(rawAsc, rawMC) < 0 {
					flipped++
					wantMC = astro.Normalize(rawMC + 180)
					wantAsc = astro.Normalize(rawAsc + 180)
				}
				if math.Abs(astro.SignedDiff(h.Angles.MC, wantMC)) > 1e-9 {
					t.Errorf("armc=%v: MC = %v, want %v", armc, h.Angles.MC, wantMC)
				}
				if math.Abs(astro.SignedDiff(h.Angles.Ascendant, wantAsc)) > 1e-9 {
					t.Errorf("armc=%v: ascendant = %v, want %v", armc, h.Angles.Ascendant, wantAsc)
				}
				if h.Cusps[10] != h.Angles.MC || h.Cusps[1] != h.Angles.Ascendant {
					t.Errorf("armc=%v: cusps 1/10 = %v/%v, angles %v/%v",
						armc, h.Cusps[1], h.Cusps[10], h.Angles.Ascendant, h.Angles.MC)
				}
				if astro.SignedDiff(h.Angles.Ascendant, h.Angles.MC) < 0 {
					t.Errorf("armc=%v: ascendant %v trails MC %v", armc, h.Angles.Ascendant, h.Angles.MC)
				}
				for i := 1; i <= 6; i++ {
					want := astro.Normalize(h.Cusps[i] + 180)
					if math.Abs(astro.SignedDiff(h.Cusps[i+6], want)) > 1e-9 {
						t.Errorf("armc=%v: cusp %d = %v, want %v", armc, i+6, h.Cusps[i+6], want)
					}
				}
			}
			if flipped == 0 {
				t.Error("no ARMC turned the chart; sweep does not reach the polar case")
			}
		})
	}
}

func TestTropicalVertexStaysWest(t *testing.T) {
	for _, lat := range []float64{-10, 0.5, 10, 23} {
		for armc := 0.0; armc < 360; armc += 5 {
			h, err := Compute(armc, lat, refEps, Placidus)
			if err != nil {
				t.Fatalf("armc=%v lat=%v: %v", armc, lat, err)
			}
			if d := astro.SignedDiff(h.Angles.Vertex, h.Angles.MC); d > 1e-9 {
				t.Errorf("armc=%v lat=%v: vertex %v is %.6f° east of MC %v",
					armc, lat, h.Angles.Vertex, d, h.Angles.MC)
			}
		}
	}
}
