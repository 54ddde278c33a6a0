package core

import "math"

// Perception is one snapshot of the signal space an agent observes: bounded
// numeric signals (activity, energy), discrete tags (zone, era) and timing
// counters. Values are float64, string, int or bool; anything else is carried
// opaquely and ignored by the learning subsystem's context hashing.
type Perception map[string]any

// Clone returns a shallow copy of the perception.
func (p Perception) Clone() Perception {
	if p == nil {
		return nil
	}
	out := make(Perception, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Diff returns the set of keys whose values changed relative to prev,
// including keys that appeared or disappeared. Numeric values are compared
// with a small epsilon so jitter below perceptual resolution does not count
// as change.
func (p Perception) Diff(prev Perception) map[string]any {
	changed := map[string]any{}
	for k, v := range p {
		pv, ok := prev[k]
		if !ok || !sameValue(v, pv) {
			changed[k] = v
		}
	}
	for k := range prev {
		if _, ok := p[k]; !ok {
			changed[k] = nil
		}
	}
	return changed
}

func sameValue(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return math.Abs(af-bf) < 1e-9
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
