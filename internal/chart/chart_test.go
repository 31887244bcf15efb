package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-houses/internal/houses"
)

func ptr[T any](v T) *T { return &v }

func referenceRequest() Request {
	return Request{
		Name:      "reference",
		ARMC:      ptr(10.0),
		Latitude:  48,
		Obliquity: ptr(23.4392911),
		System:    houses.Placidus,
	}
}

func fixedService(opts ...houses.Option) *Service {
	s := NewService(houses.New(opts...), nil)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestComputeReference(t *testing.T) {
	c, err := fixedService().Compute(referenceRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, houses.Placidus, c.System)
	assert.False(t, c.FellBack())
	assert.Empty(t, c.Note)
	require.Len(t, c.Cusps, 12)
	assert.InDelta(t, 121.398565426, c.Cusp(1), 1e-6)
	assert.InDelta(t, c.Angles.MC, c.Cusp(10), 1e-12)
	assert.InDelta(t, 10.0, c.ARMC, 1e-12)

	h, err := houses.Compute(10, 48, 23.4392911, houses.Placidus)
	require.NoError(t, err)
	want := &Chart{
		Name:      "reference",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Latitude:  48,
		ARMC:      10,
		Obliquity: 23.4392911,
		System:    houses.Placidus,
		Requested: houses.Placidus,
		Cusps:     h.Cusps.Slice(),
		Angles:    h.Angles,
	}
	if diff := cmp.Diff(want, c, cmpopts.IgnoreFields(Chart{}, "ID")); diff != "" {
		t.Errorf("Compute() mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeFromTime(t *testing.T) {
	// Meeus, example 12.b: apparent sidereal time 8h34m57.0896s.
	when := time.Date(1987, 4, 10, 19, 21, 0, 0, time.UTC)
	c, err := fixedService().Compute(Request{
		Time:      &when,
		Latitude:  40,
		Longitude: -10,
		System:    houses.Koch,
	})
	require.NoError(t, err)

	gast := (8 + 34.0/60 + 57.0896/3600) * 15
	assert.InDelta(t, gast-10, c.ARMC, 1e-4)
	// True obliquity on that date is about 23°26'37".
	assert.InDelta(t, 23.4436, c.Obliquity, 1e-3)
	assert.Equal(t, houses.Koch, c.System)
}

func TestComputeOverridesWinOverTime(t *testing.T) {
	when := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	req := referenceRequest()
	req.Time = &when

	c, err := fixedService().Compute(req)
	require.NoError(t, err)
	assert.Equal(t, 10.0, c.ARMC)
	assert.Equal(t, 23.4392911, c.Obliquity)
}

func TestComputeRequiresTimeOrARMC(t *testing.T) {
	_, err := fixedService().Compute(Request{Latitude: 10})
	assert.ErrorIs(t, err, ErrNoTime)
}

func TestComputeInvalidInput(t *testing.T) {
	req := referenceRequest()
	req.Latitude = 91
	_, err := fixedService().Compute(req)
	assert.ErrorIs(t, err, houses.ErrInvalidInput)

	req = referenceRequest()
	req.Longitude = 200
	_, err = fixedService().Compute(req)
	assert.ErrorIs(t, err, houses.ErrInvalidInput)
}

func TestComputeDefaultsToPlacidus(t *testing.T) {
	req := referenceRequest()
	req.System = 0
	c, err := fixedService().Compute(req)
	require.NoError(t, err)
	assert.Equal(t, houses.Placidus, c.System)
}

func TestComputeFallback(t *testing.T) {
	req := Request{ARMC: ptr(10.0), Latitude: 70, Obliquity: ptr(23.44), System: houses.Koch}

	c, err := fixedService().Compute(req)
	require.NoError(t, err)
	assert.True(t, c.FellBack())
	assert.Equal(t, houses.Porphyry, c.System)
	assert.Equal(t, houses.Koch, c.Requested)
	assert.Contains(t, c.Note, "undefined")

	_, err = fixedService(houses.WithFallback(houses.FallbackNone)).Compute(req)
	assert.True(t, errors.Is(err, houses.ErrGeometricallyUndefined), "err = %v", err)
}

func TestPlace(t *testing.T) {
	s := fixedService()
	c, err := s.Compute(referenceRequest())
	require.NoError(t, err)

	t.Run("reference point", func(t *testing.T) {
		p, err := s.Place(c, 123.4, 0)
		require.NoError(t, err)
		assert.InDelta(t, 1.120347170, p.Position, 1e-6)
		assert.Equal(t, 1, p.House)
		assert.Equal(t, 1, p.NearestCusp)
		assert.False(t, p.Degenerate())
	})

	t.Run("ascendant rises in the east", func(t *testing.T) {
		p, err := s.Place(c, c.Angles.Ascendant, 0)
		require.NoError(t, err)
		assert.InDelta(t, 0, p.Altitude, 1e-6)
		assert.Greater(t, p.Azimuth, 0.0)
		assert.Less(t, p.Azimuth, 180.0)
		assert.Equal(t, 1, p.NearestCusp)
		assert.InDelta(t, 0, p.CuspDistance, 1e-9)
	})

	t.Run("mc culminates in the south", func(t *testing.T) {
		p, err := s.Place(c, c.Angles.MC, 0)
		require.NoError(t, err)
		assert.InDelta(t, 180, p.Azimuth, 1e-4)
		assert.True(t, p.AboveHorizon)
		assert.Equal(t, 10, p.NearestCusp)
	})

	t.Run("descendant side is below the horizon", func(t *testing.T) {
		p, err := s.Place(c, c.Angles.MC+180, 0)
		require.NoError(t, err)
		assert.False(t, p.AboveHorizon)
		assert.Equal(t, 4, p.NearestCusp)
	})

	t.Run("invalid latitude", func(t *testing.T) {
		_, err := s.Place(c, 10, 95)
		assert.ErrorIs(t, err, houses.ErrInvalidInput)
	})
}

func TestPlaceCircumpolar(t *testing.T) {
	s := fixedService()
	c, err := s.Compute(Request{ARMC: ptr(10.0), Latitude: 70, Obliquity: ptr(23.44), System: houses.Regiomontanus})
	require.NoError(t, err)
	c.System = houses.Placidus

	p, err := s.Place(c, 90, 0)
	require.NoError(t, err)
	assert.True(t, p.Degenerate())
	assert.Equal(t, houses.DiagPlacidusCircumpolar, p.Diagnostic)
	assert.InDelta(t, 34.0/3, p.Position, 1e-6)
}

func TestPlaceAfterFallback(t *testing.T) {
	s := fixedService()
	c, err := s.Compute(Request{ARMC: ptr(10.0), Latitude: 70, Obliquity: ptr(23.44), System: houses.Koch})
	require.NoError(t, err)
	require.True(t, c.FellBack())

	p, err := s.Place(c, 90, 0)
	require.NoError(t, err)
	assert.Equal(t, houses.Porphyry, p.System)
	assert.Equal(t, houses.Koch, p.Requested)
	assert.True(t, p.FellBack())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"system":"O"`)
	assert.Contains(t, string(data), `"requested":"K"`)

	var buf bytes.Buffer
	WritePlacement(&buf, p, Degrees)
	assert.True(t, strings.HasPrefix(buf.String(), "Porphyry (Koch undefined) at "), "got %q", buf.String())

	ref, err := s.Compute(referenceRequest())
	require.NoError(t, err)
	p, err = s.Place(ref, 123.4, 0)
	require.NoError(t, err)
	assert.False(t, p.FellBack())
	assert.Equal(t, ref.System, p.Requested)
}

func TestUnits(t *testing.T) {
	u, err := ParseUnits("rad")
	require.NoError(t, err)
	assert.Equal(t, Radians, u)
	_, err = ParseUnits("grad")
	assert.Error(t, err)

	c, err := fixedService().Compute(referenceRequest())
	require.NoError(t, err)

	r := c.In(Radians)
	assert.InDelta(t, 121.398565426*math.Pi/180, r.Cusps[0], 1e-9)
	assert.InDelta(t, c.Angles.MC*math.Pi/180, r.Angles.MC, 1e-12)
	assert.InDelta(t, 48*math.Pi/180, r.Latitude, 1e-12)
	assert.InDelta(t, 121.398565426, c.Cusps[0], 1e-6, "source chart must not change")

	d := c.In(Degrees)
	d.Cusps[0] = 0
	assert.NotEqual(t, 0.0, c.Cusps[0])
}

func TestFormatZodiac(t *testing.T) {
	tests := []struct {
		lon  float64
		want string
	}{
		{0, `00°00'00" Ari`},
		{121.398565426, `01°23'55" Leo`},
		{359.9999999, `00°00'00" Ari`},
		{-30, `00°00'00" Psc`},
		{275.5, `05°30'00" Cap`},
	}
	for _, tt := range tests {
		if got := FormatZodiac(tt.lon); got != tt.want {
			t.Errorf("FormatZodiac(%v) = %q, want %q", tt.lon, got, tt.want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	c, err := fixedService().Compute(referenceRequest())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.WriteJSON(&buf, Degrees))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "P", decoded["system"])
	assert.Equal(t, c.ID.String(), decoded["id"])
	assert.Len(t, decoded["cusps"], 12)

	var back Chart
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	if diff := cmp.Diff(c, &back); diff != "" {
		t.Errorf("JSON round trip (-want +got):\n%s", diff)
	}
}

func TestWriteTable(t *testing.T) {
	c, err := fixedService().Compute(referenceRequest())
	require.NoError(t, err)

	var buf bytes.Buffer
	c.WriteTable(&buf, Degrees)
	out := buf.String()

	for _, want := range []string{"reference · Placidus houses", "ARMC only", "Ascendant", `01°23'55" Leo`} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 25, strings.Count(out, "\n"))
}

func TestWriteSystems(t *testing.T) {
	var buf bytes.Buffer
	WriteSystems(&buf)
	out := buf.String()
	for _, sys := range houses.Systems {
		assert.Contains(t, out, sys.Code()+"    ")
	}
	assert.Contains(t, out, "Regiomontanus")
}

func TestWriteList(t *testing.T) {
	var buf bytes.Buffer
	WriteList(&buf, nil)
	assert.Equal(t, "No saved charts\n", buf.String())

	c, err := fixedService().Compute(referenceRequest())
	require.NoError(t, err)
	buf.Reset()
	WriteList(&buf, []*Chart{c})
	assert.Contains(t, buf.String(), c.ID.String())
	assert.Contains(t, buf.String(), "Total: 1 charts")
}

func TestChartHouses(t *testing.T) {
	c, err := fixedService().Compute(referenceRequest())
	require.NoError(t, err)

	h, err := houses.Compute(10, 48, 23.4392911, houses.Placidus)
	require.NoError(t, err)
	if diff := cmp.Diff(h, c.Houses()); diff != "" {
		t.Errorf("Houses() mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, c.Undefined())

	fb, err := fixedService().Compute(Request{ARMC: ptr(10.0), Latitude: 70, Obliquity: ptr(23.44), System: houses.Koch})
	require.NoError(t, err)
	var undefined *houses.UndefinedError
	require.ErrorAs(t, fb.Undefined(), &undefined)
	assert.Equal(t, houses.Koch, undefined.System)
	assert.InDelta(t, 66.56, undefined.Limit, 1e-9)
}
