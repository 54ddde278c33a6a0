package statemachine

import "math"

// Curve is a deterministic easing function mapping transition progress in
// [0,1] to an interpolation weight. Every curve in this package satisfies
// Curve(0) == 0 and Curve(1) == 1 so interpolation is exact at the endpoints.
type Curve func(t float64) float64

// Linear maps progress straight through.
func Linear(t float64) float64 { return t }

// EaseIn starts slow and accelerates (cubic).
func EaseIn(t float64) float64 { return t * t * t }

// EaseOut starts fast and decelerates (cubic).
func EaseOut(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// EaseInOut accelerates through the first half and decelerates through the
// second.
func EaseInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// Elastic overshoots with a damped oscillation toward the target.
func Elastic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	const c4 = (2 * math.Pi) / 3
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
}

// Bounce settles into the target like a dropped ball.
func Bounce(t float64) float64 {
	const n1, d1 = 7.5625, 2.75
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

var curves = map[string]Curve{
	"linear":      Linear,
	"ease-in":     EaseIn,
	"ease-out":    EaseOut,
	"ease-in-out": EaseInOut,
	"elastic":     Elastic,
	"bounce":      Bounce,
}

// CurveByName resolves a curve from its configuration name.
func CurveByName(name string) (Curve, bool) {
	c, ok := curves[name]
	return c, ok
}

// CurveNames returns the set of known curve names (unordered).
func CurveNames() []string {
	names := make([]string, 0, len(curves))
	for name := range curves {
		names = append(names, name)
	}
	return names
}
