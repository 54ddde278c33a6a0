package testutil

import "github.com/hupe1980/mindmesh/statemachine"

// TwoStateDescriptor builds a minimal low/high machine with the given dwell
// window on both states, starting in "low".
func TwoStateDescriptor(dwellMin, dwellMax float64) *statemachine.Descriptor {
	return &statemachine.Descriptor{
		Name:    "test",
		Initial: "low",
		States: map[string]statemachine.State{
			"low": {
				Name:            "low",
				Level:           0.2,
				Characteristics: map[string]float64{"dynamics": 0.2, "tension": 0.1},
				Successors:      []string{"high"},
				DwellMin:        dwellMin,
				DwellMax:        dwellMax,
			},
			"high": {
				Name:            "high",
				Level:           0.8,
				Characteristics: map[string]float64{"dynamics": 0.9, "tension": 0.7},
				Successors:      []string{"low"},
				DwellMin:        dwellMin,
				DwellMax:        dwellMax,
			},
		},
	}
}
