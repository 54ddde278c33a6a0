package orchestrator

import "github.com/hupe1980/mindmesh/statemachine"

// DefaultSectionDescriptor returns the built-in musical-section machine:
// intro → build → peak → release, cycling.
func DefaultSectionDescriptor() *statemachine.Descriptor {
	return &statemachine.Descriptor{
		Name:    "section",
		Initial: "intro",
		States: map[string]statemachine.State{
			"intro": {
				Name:  "intro",
				Level: 0.2,
				Characteristics: map[string]float64{
					"dynamics": 0.3,
					"tension":  0.1,
					"density":  0.2,
				},
				Successors: []string{"build"},
				DwellMin:   8,
				DwellMax:   20,
				Curve:      "ease-in-out",
			},
			"build": {
				Name:  "build",
				Level: 0.5,
				Characteristics: map[string]float64{
					"dynamics": 0.5,
					"tension":  0.5,
					"density":  0.5,
				},
				Successors: []string{"peak", "release"},
				DwellMin:   10,
				DwellMax:   30,
				Curve:      "ease-in",
			},
			"peak": {
				Name:  "peak",
				Level: 0.9,
				Characteristics: map[string]float64{
					"dynamics": 0.9,
					"tension":  0.8,
					"density":  0.9,
				},
				Successors: []string{"release"},
				DwellMin:   6,
				DwellMax:   15,
				Curve:      "elastic",
			},
			"release": {
				Name:  "release",
				Level: 0.3,
				Characteristics: map[string]float64{
					"dynamics": 0.4,
					"tension":  0.2,
					"density":  0.3,
				},
				Successors: []string{"intro", "build"},
				DwellMin:   8,
				DwellMax:   25,
				Curve:      "ease-out",
			},
		},
	}
}

// DefaultMoodDescriptors returns the built-in per-era mood machines. The
// state names and characteristic keys are opaque vocabulary consumed by the
// synthesis layer.
func DefaultMoodDescriptors() map[string]*statemachine.Descriptor {
	return map[string]*statemachine.Descriptor{
		"organic": {
			Name:    "mood:organic",
			Initial: "calm",
			States: map[string]statemachine.State{
				"calm": {
					Name:  "calm",
					Level: 0.2,
					Characteristics: map[string]float64{
						"dynamics": 0.3,
						"tension":  0.1,
					},
					Intensities: map[string]float64{
						"pad":     0.8,
						"drone":   0.6,
						"plucks":  0.2,
						"percuss": 0.1,
					},
					Successors: []string{"flowing", "tense"},
					DwellMin:   10,
					DwellMax:   30,
				},
				"flowing": {
					Name:  "flowing",
					Level: 0.5,
					Characteristics: map[string]float64{
						"dynamics": 0.6,
						"tension":  0.3,
					},
					Intensities: map[string]float64{
						"pad":     0.5,
						"drone":   0.3,
						"plucks":  0.7,
						"percuss": 0.5,
					},
					Successors: []string{"calm", "tense"},
					DwellMin:   8,
					DwellMax:   25,
				},
				"tense": {
					Name:  "tense",
					Level: 0.8,
					Characteristics: map[string]float64{
						"dynamics": 0.8,
						"tension":  0.9,
					},
					Intensities: map[string]float64{
						"pad":     0.2,
						"drone":   0.7,
						"plucks":  0.4,
						"percuss": 0.9,
					},
					Successors: []string{"flowing", "calm"},
					Weight:     0.7,
					DwellMin:   5,
					DwellMax:   15,
				},
			},
		},
		"electronic": {
			Name:    "mood:electronic",
			Initial: "pulse",
			States: map[string]statemachine.State{
				"pulse": {
					Name:  "pulse",
					Level: 0.4,
					Characteristics: map[string]float64{
						"dynamics": 0.5,
						"tension":  0.3,
					},
					Intensities: map[string]float64{
						"bass":    0.8,
						"lead":    0.3,
						"glitch":  0.2,
						"ambient": 0.4,
					},
					Successors: []string{"drive", "drift"},
					DwellMin:   8,
					DwellMax:   20,
				},
				"drive": {
					Name:  "drive",
					Level: 0.9,
					Characteristics: map[string]float64{
						"dynamics": 0.9,
						"tension":  0.7,
					},
					Intensities: map[string]float64{
						"bass":    0.9,
						"lead":    0.8,
						"glitch":  0.6,
						"ambient": 0.1,
					},
					Successors: []string{"pulse", "drift"},
					DwellMin:   6,
					DwellMax:   18,
				},
				"drift": {
					Name:  "drift",
					Level: 0.2,
					Characteristics: map[string]float64{
						"dynamics": 0.3,
						"tension":  0.2,
					},
					Intensities: map[string]float64{
						"bass":    0.2,
						"lead":    0.1,
						"glitch":  0.3,
						"ambient": 0.9,
					},
					Successors: []string{"pulse"},
					DwellMin:   10,
					DwellMax:   30,
					Curve:      "ease-out",
				},
			},
		},
	}
}

// DefaultEnergyDescriptor returns the built-in low/medium/high energy machine
// used by DynamicsMind.
func DefaultEnergyDescriptor() *statemachine.Descriptor {
	return &statemachine.Descriptor{
		Name:    "energy",
		Initial: "low",
		States: map[string]statemachine.State{
			"low": {
				Name:  "low",
				Level: 0.2,
				Characteristics: map[string]float64{
					"dynamics": 0.2,
					"tension":  0.1,
				},
				Successors: []string{"medium"},
				DwellMin:   4,
				DwellMax:   12,
			},
			"medium": {
				Name:  "medium",
				Level: 0.5,
				Characteristics: map[string]float64{
					"dynamics": 0.5,
					"tension":  0.4,
				},
				Successors: []string{"low", "high"},
				DwellMin:   4,
				DwellMax:   12,
			},
			"high": {
				Name:  "high",
				Level: 0.9,
				Characteristics: map[string]float64{
					"dynamics": 0.9,
					"tension":  0.8,
				},
				Successors: []string{"medium"},
				DwellMin:   3,
				DwellMax:   10,
			},
		},
	}
}
