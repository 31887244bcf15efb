package houses

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// houseDiff returns got-want on the 12-house circle, in [-6, 6).
func houseDiff(got, want float64) float64 {
	d := math.Mod(got-want, 12)
	if d >= 6 {
		d -= 12
	}
	if d < -6 {
		d += 12
	}
	return d
}

func TestPositionReference(t *testing.T) {
	points := [3][2]float64{{123.4, 0}, {123.4, 5.2}, {300, -3}}

	tests := []struct {
		sys  System
		want [3]float64
	}{
		{Placidus, [3]float64{1.120347170, 12.917779333, 6.863620577}},
		{Koch, [3]float64{1.085037139, 12.895636149, 6.829882542}},
		{Campanus, [3]float64{1.060567410, 12.927600300, 6.882796927}},
		{Regiomontanus, [3]float64{1.090479176, 12.891864185, 6.825113007}},
		{Topocentric, [3]float64{1.122609138, 12.919804990, 6.866269976}},
		{Alcabitius, [3]float64{1.093560723, 1.153426343, 6.979867499}},
		{Porphyry, [3]float64{1.086417461, 1.086417461, 6.962036700}},
		{Equal, [3]float64{1.066714495, 1.066714495, 6.953381162}},
		{Vehlow, [3]float64{1.566714495, 1.566714495, 7.453381162}},
		{Axial, [3]float64{1.856805002, 1.900949636, 7.762394360}},
		{Horizon, [3]float64{2.058811729, 2.192583852, 8.064045928}},
	}

	for _, tt := range tests {
		t.Run(tt.sys.String(), func(t *testing.T) {
			for i, pt := range points {
				got, err := HousePosition(refARMC, refLat, refEps, tt.sys, pt[0], pt[1])
				if err != nil {
					t.Fatalf("HousePosition() error: %v", err)
				}
				if math.Abs(got.Value-tt.want[i]) > 1e-6 {
					t.Errorf("point %v: position = %.9f, want %.9f", pt, got.Value, tt.want[i])
				}
				if got.Degenerate() {
					t.Errorf("point %v: unexpected diagnostic %q", pt, got.Diagnostic)
				}
			}
		})
	}
}

func TestHorizonPositionSouthern(t *testing.T) {
	got, err := HousePosition(200, -33, refEps, Horizon, 300, -3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.Value-1.871797380) > 1e-6 {
		t.Errorf("position = %.9f, want 1.871797380", got.Value)
	}
}

func TestPositionRoundTrip(t *testing.T) {
	lats := []float64{-55, -40, -20, -5, 5, 20, 40, 55}

	for _, sys := range Systems {
		t.Run(sys.String(), func(t *testing.T) {
			for armc := 0.0; armc < 360; armc += 15 {
				for _, lat := range lats {
					in := Inputs{ARMC: armc, Latitude: lat, Obliquity: refEps}
					h, err := New().Houses(in, sys)
					if err != nil {
						t.Fatalf("armc=%v lat=%v: %v", armc, lat, err)
					}
					for i := 1; i <= 12; i++ {
						pl, err := New().Position(in, sys, h.Cusps[i], 0)
						if err != nil {
							t.Fatal(err)
						}
						if d := houseDiff(pl.Value, float64(i)); math.Abs(d) > 1e-5 {
							t.Errorf("armc=%v lat=%v: position of cusp %d (%.6f) = %.9f",
								armc, lat, i, h.Cusps[i], pl.Value)
						}
					}
				}
			}
		})
	}
}

func TestPositionOnCuspBelongsToThatHouse(t *testing.T) {
	in := Inputs{ARMC: refARMC, Latitude: refLat, Obliquity: refEps}
	for _, sys := range []System{Equal, Vehlow, Porphyry, Axial} {
		h, err := New().Houses(in, sys)
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i <= 12; i++ {
			pl, _ := New().Position(in, sys, h.Cusps[i], 0)
			if pl.House() != i {
				t.Errorf("%v: cusp %d placed in house %d (%.12f)", sys, i, pl.House(), pl.Value)
			}
		}
	}
}

func TestPositionRange(t *testing.T) {
	for _, sys := range Systems {
		for lon := 0.0; lon < 360; lon += 13 {
			for _, lat := range []float64{-5, 0, 5} {
				pl, err := HousePosition(77, 35, refEps, sys, lon, lat)
				if err != nil {
					t.Fatal(err)
				}
				if pl.Value < 1 || pl.Value >= 13 || math.IsNaN(pl.Value) {
					t.Errorf("%v lon=%v lat=%v: position %v out of [1,13)", sys, lon, lat, pl.Value)
				}
			}
		}
	}
}

func TestPlacidusPosition(t *testing.T) {
	got, err := HousePosition(10, 48, 23.44, Placidus, 90, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.Value-12.020455427809727) > 1e-6 {
		t.Errorf("position = %v, want 12.0204554", got.Value)
	}
}

func TestPlacidusCircumpolarPosition(t *testing.T) {
	got, err := HousePosition(10, 70, 23.44, Placidus, 90, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.Value-34.0/3) > 1e-6 {
		t.Errorf("position = %v, want 11.3333333", got.Value)
	}
	if got.Diagnostic != DiagPlacidusCircumpolar {
		t.Errorf("Diagnostic = %q", got.Diagnostic)
	}
	if !errors.Is(got.Err(), ErrDegeneratePosition) {
		t.Errorf("Err() = %v, want ErrDegeneratePosition", got.Err())
	}
}

func TestKochCircumpolar(t *testing.T) {
	var traced []any
	e := New(WithTrace(func(msg string, kv ...any) { traced = append(traced, kv...) }))

	tests := []struct {
		name string
		in   Inputs
		lon  float64
		diag string
	}{
		{"circumpolar point", Inputs{ARMC: 10, Latitude: 70, Obliquity: 23.44}, 90, DiagKochCircumpolarPoint},
		{"circumpolar mc", Inputs{ARMC: 90, Latitude: 67, Obliquity: 23.44}, 0, DiagKochCircumpolarMC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl, err := e.Position(tt.in, Koch, tt.lon, 0)
			if err != nil {
				t.Fatal(err)
			}
			if pl.Value != 0 || pl.House() != 0 {
				t.Errorf("Value = %v, want 0", pl.Value)
			}
			if pl.Diagnostic != tt.diag {
				t.Errorf("Diagnostic = %q, want %q", pl.Diagnostic, tt.diag)
			}
			if !strings.Contains(pl.Err().Error(), "circumpolar") {
				t.Errorf("Err() = %v", pl.Err())
			}
		})
	}
	if len(traced) == 0 {
		t.Error("degenerate positions should be traced")
	}
}

func TestRegiomontanusOnMeridian(t *testing.T) {
	h, _ := Compute(refARMC, refLat, refEps, Regiomontanus)
	// The MC has right ascension ARMC, so it sits exactly on the meridian.
	pl, err := HousePosition(refARMC, refLat, refEps, Regiomontanus, h.Angles.MC, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pl.Value-10) > 1e-6 {
		t.Errorf("MC position = %v, want 10", pl.Value)
	}
}

func TestTopocentricBelowHorizonAndWest(t *testing.T) {
	// Points in all four quadrants must land in the matching house range.
	h, err := Compute(refARMC, refLat, refEps, Topocentric)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 12; i++ {
		mid := h.Cusps[i] + 0.5*houseArc(h.Cusps, i)
		pl, err := HousePosition(refARMC, refLat, refEps, Topocentric, mid, 0)
		if err != nil {
			t.Fatal(err)
		}
		if pl.House() != i {
			t.Errorf("midpoint of house %d placed in house %d (%.6f)", i, pl.House(), pl.Value)
		}
	}
}

// houseArc is the ecliptic length of house i.
func houseArc(c Cusps, i int) float64 {
	next := i%12 + 1
	return math.Mod(c[next]-c[i]+360, 360)
}

func TestPlacementHouse(t *testing.T) {
	tests := []struct {
		value float64
		want  int
	}{
		{0, 0},
		{1, 1},
		{1.999, 1},
		{12.5, 12},
	}
	for _, tt := range tests {
		if got := (Placement{Value: tt.value}).House(); got != tt.want {
			t.Errorf("House(%v) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestHorizonEquinoctialEquator(t *testing.T) {
	for _, armc := range []float64{0, 180, 360} {
		for lon := 0.0; lon < 360; lon += 30 {
			pl, err := HousePosition(armc, 0, refEps, Horizon, lon, 0)
			if err != nil {
				t.Fatal(err)
			}
			if pl.Diagnostic != DiagHorizonEquinoctial {
				t.Errorf("armc=%v lon=%v: diagnostic = %q", armc, lon, pl.Diagnostic)
			}
			if !errors.Is(pl.Err(), ErrDegeneratePosition) {
				t.Errorf("armc=%v lon=%v: Err() = %v", armc, lon, pl.Err())
			}
			if pl.Value < 1 || pl.Value >= 13 || math.IsNaN(pl.Value) {
				t.Errorf("armc=%v lon=%v: position %v out of [1,13)", armc, lon, pl.Value)
			}
		}
	}

	for _, tt := range []struct{ armc, lat float64 }{{90, 0}, {0, 5}, {180, -5}} {
		pl, err := HousePosition(tt.armc, tt.lat, refEps, Horizon, 45, 0)
		if err != nil {
			t.Fatal(err)
		}
		if pl.Degenerate() {
			t.Errorf("armc=%v lat=%v: unexpected diagnostic %q", tt.armc, tt.lat, pl.Diagnostic)
		}
	}
}
