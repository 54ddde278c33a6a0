package orchestrator

import (
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/mindmesh/core"
	"github.com/hupe1980/mindmesh/statemachine"
)

// DynamicsMind is the satellite energy controller: a small state machine over
// energy levels whose characteristics drive the global dynamics and tension
// directives. A mood change carrying an explicit energy hint forces the
// machine, which is the external-override path.
type DynamicsMind struct {
	machine *statemachine.Controller

	conductorID  string
	lastDynamics float64
	lastTension  float64
}

// NewDynamicsMind builds a DynamicsMind. A nil descriptor selects the default
// low/medium/high energy machine. conductorID names the agent to notify of
// energy shifts; empty disables feedback.
func NewDynamicsMind(desc *statemachine.Descriptor, conductorID string, ctrlOpts ...func(o *statemachine.Options)) (*DynamicsMind, error) {
	if desc == nil {
		desc = DefaultEnergyDescriptor()
	}

	machine, err := statemachine.New(desc, ctrlOpts...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: energy descriptor: %w", err)
	}

	return &DynamicsMind{
		machine:      machine,
		conductorID:  conductorID,
		lastDynamics: -1,
		lastTension:  -1,
	}, nil
}

// Kind returns "dynamics".
func (d *DynamicsMind) Kind() string { return "dynamics" }

// Machine returns the energy state machine.
func (d *DynamicsMind) Machine() *statemachine.Controller { return d.machine }

// Perceive snapshots activity and the machine's current state and targets.
func (d *DynamicsMind) Perceive(h core.AgentHandle) (core.Perception, error) {
	chars := d.machine.Characteristics()
	return core.Perception{
		"activity":     h.Signals().Activity(),
		"energy_state": d.machine.Current(),
		"dynamics":     chars["dynamics"],
		"tension":      chars["tension"],
	}, nil
}

// OnMessage forces the energy machine when a mood change carries an explicit
// energy state hint.
func (d *DynamicsMind) OnMessage(h core.AgentHandle, m core.Message) {
	if m.Type != core.MsgMoodChange {
		return
	}
	hint, ok := m.Payload["energy"].(string)
	if !ok || hint == d.machine.Current() {
		return
	}
	if err := d.machine.Force(hint); err != nil {
		h.Logger().Warn("dynamics mind ignoring unknown energy hint", "hint", hint, "error", err)
	}
}

// Propose offers dynamics and tension corrections toward the machine's
// current characteristic targets.
func (d *DynamicsMind) Propose(h core.AgentHandle, p core.Perception) []core.CandidateAction {
	chars := d.machine.Characteristics()

	var candidates []core.CandidateAction
	if target, ok := chars["dynamics"]; ok {
		priority := 1.0
		if d.lastDynamics >= 0 {
			priority = core.Clamp01(math.Abs(target-d.lastDynamics) * 2)
		}
		candidates = append(candidates, core.CandidateAction{
			Type:     "set_dynamics",
			Priority: priority,
			Params:   map[string]any{"value": target},
		})
	}
	if target, ok := chars["tension"]; ok {
		priority := 1.0
		if d.lastTension >= 0 {
			priority = core.Clamp01(math.Abs(target-d.lastTension) * 2)
		}
		candidates = append(candidates, core.CandidateAction{
			Type:     "set_tension",
			Priority: priority,
			Params:   map[string]any{"value": target},
		})
	}
	return candidates
}

// Execute publishes the directive and notifies the conductor of the shift.
func (d *DynamicsMind) Execute(h core.AgentHandle, a core.CandidateAction) (any, error) {
	value, ok := a.Params["value"].(float64)
	if !ok {
		return nil, fmt.Errorf("orchestrator: action %q missing numeric value", a.Type)
	}

	switch a.Type {
	case "set_dynamics":
		h.Publish(core.DirectiveSetDynamics, map[string]any{"value": value})
		if d.conductorID != "" && d.lastDynamics >= 0 {
			h.Send(d.conductorID, core.MsgEnergyShift, map[string]any{"delta": value - d.lastDynamics})
		}
		d.lastDynamics = value
	case "set_tension":
		h.Publish(core.DirectiveSetTension, map[string]any{"value": value})
		d.lastTension = value
	default:
		return nil, fmt.Errorf("orchestrator: unknown action type %q", a.Type)
	}
	return value, nil
}

// Reward scores how closely the published value tracks the machine's current
// characteristic target.
func (d *DynamicsMind) Reward(h core.AgentHandle, a core.CandidateAction, result any, p core.Perception) float64 {
	chars := d.machine.Characteristics()
	value, _ := result.(float64)

	var target float64
	switch a.Type {
	case "set_dynamics":
		target = chars["dynamics"]
	case "set_tension":
		target = chars["tension"]
	default:
		return 0.5
	}
	return core.Clamp01(1 - math.Abs(value-target))
}

// Tick steps the energy machine with the external activity input.
func (d *DynamicsMind) Tick(h core.AgentHandle, dt time.Duration) {
	d.machine.Step(dt.Seconds(), h.Signals().Activity())
}

// MachineState exposes the energy machine for persistence.
func (d *DynamicsMind) MachineState() (string, float64) {
	return d.machine.Current(), d.machine.Dwell()
}

// RestoreMachineState rehydrates the energy machine.
func (d *DynamicsMind) RestoreMachineState(state string, dwell float64) error {
	return d.machine.Restore(state, dwell)
}
