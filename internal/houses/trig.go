package houses

import (
	"math"

	"github.com/litescript/ls-houses/internal/astro"
)

// Degree-based trigonometry. Inverse functions clamp their argument.

func sind(x float64) float64 { return math.Sin(astro.DegToRad(x)) }
func cosd(x float64) float64 { return math.Cos(astro.DegToRad(x)) }
func tand(x float64) float64 { return math.Tan(astro.DegToRad(x)) }

func asind(x float64) float64 { return astro.RadToDeg(math.Asin(astro.Clamp1(x))) }
func acosd(x float64) float64 { return astro.RadToDeg(math.Acos(astro.Clamp1(x))) }
func atand(x float64) float64 { return astro.RadToDeg(math.Atan(x)) }

// clampPole keeps a latitude-like angle off the exact poles.
func clampPole(lat float64) float64 {
	if math.Abs(math.Abs(lat)-90) < astro.Epsilon {
		if lat < 0 {
			return -90 + astro.Epsilon
		}
		return 90 - astro.Epsilon
	}
	return lat
}

// colatitude returns the pole of the prime vertical for a latitude,
// 90-lat in the north and -90-lat in the south.
func colatitude(lat float64) float64 {
	if lat >= 0 {
		return 90 - lat
	}
	return -90 - lat
}
