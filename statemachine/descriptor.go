package statemachine

import (
	"errors"
	"fmt"
)

// State describes one named state in a descriptor: a characteristic numeric
// vector presented to the rest of the system, per-mind intensity values, the
// legal successor set, and the dwell window gating transition eligibility.
type State struct {
	// Name identifies the state within its descriptor.
	Name string `yaml:"name"`
	// Level is the state's abstract intensity on an arbitrary scale; the
	// level distance between source and target scales transition duration.
	Level float64 `yaml:"level"`
	// Characteristics is the numeric vector interpolated during transitions.
	Characteristics map[string]float64 `yaml:"characteristics"`
	// Intensities holds per-mind-kind intensity values, interpolated the
	// same way as Characteristics.
	Intensities map[string]float64 `yaml:"intensities"`
	// Successors lists the states a transition may legally target.
	Successors []string `yaml:"successors"`
	// Weight is the base preference for this state as a transition target.
	// Zero means the default weight of 1.
	Weight float64 `yaml:"weight"`
	// DwellMin and DwellMax bound the dwell window in seconds: below
	// DwellMin no transition is eligible; the trigger probability saturates
	// at DwellMax.
	DwellMin float64 `yaml:"dwell_min"`
	DwellMax float64 `yaml:"dwell_max"`
	// Curve names the easing curve used for transitions leaving this state.
	// Empty means "ease-in-out".
	Curve string `yaml:"curve"`
}

// Descriptor is the static configuration of one probabilistic state machine:
// a set of named states and the initial state. Descriptors are validated at
// load time; the controller assumes a valid descriptor.
type Descriptor struct {
	// Name labels the machine (e.g. "mood:organic", "section").
	Name string `yaml:"name"`
	// Initial names the configured default state.
	Initial string `yaml:"initial"`
	// States maps state name to definition.
	States map[string]State `yaml:"states"`
}

// ErrEmptyDescriptor is returned when a descriptor defines no states.
var ErrEmptyDescriptor = errors.New("statemachine: descriptor has no states")

// Validate checks structural invariants: the initial state exists, every
// successor references a defined state, dwell windows are ordered and
// non-negative, weights are non-negative and curve names resolve.
func (d *Descriptor) Validate() error {
	if len(d.States) == 0 {
		return ErrEmptyDescriptor
	}
	if _, ok := d.States[d.Initial]; !ok {
		return fmt.Errorf("statemachine: initial state %q not defined in %q", d.Initial, d.Name)
	}
	for name, st := range d.States {
		if st.DwellMin < 0 || st.DwellMax < st.DwellMin {
			return fmt.Errorf("statemachine: state %q has invalid dwell window [%v, %v]", name, st.DwellMin, st.DwellMax)
		}
		if st.Weight < 0 {
			return fmt.Errorf("statemachine: state %q has negative weight", name)
		}
		if st.Curve != "" {
			if _, ok := CurveByName(st.Curve); !ok {
				return fmt.Errorf("statemachine: state %q names unknown curve %q", name, st.Curve)
			}
		}
		for _, succ := range st.Successors {
			if _, ok := d.States[succ]; !ok {
				return fmt.Errorf("statemachine: state %q lists undefined successor %q", name, succ)
			}
		}
	}
	return nil
}

// State returns the named state definition.
func (d *Descriptor) State(name string) (State, bool) {
	st, ok := d.States[name]
	return st, ok
}

// weight returns the effective base weight of a state.
func (s State) weight() float64 {
	if s.Weight <= 0 {
		return 1
	}
	return s.Weight
}

// curve resolves the state's easing curve, defaulting to EaseInOut.
func (s State) curve() Curve {
	if s.Curve == "" {
		return EaseInOut
	}
	if c, ok := CurveByName(s.Curve); ok {
		return c
	}
	return EaseInOut
}
