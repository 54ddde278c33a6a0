// Package persist captures and restores the learning state that survives a
// session: per agent, the preference map, the pattern table and, for
// behaviors carrying a state machine, the current state and dwell time.
// Snapshots are opaque key/value data; no binary layout is owned here.
package persist

import (
	"github.com/hupe1980/mindmesh/learning"
	"github.com/hupe1980/mindmesh/runtime"
)

// Snapshot is the persisted shape of one agent.
type Snapshot struct {
	AgentID      string                          `json:"agent_id"`
	Kind         string                          `json:"kind"`
	Preferences  map[string]float64              `json:"preferences"`
	Patterns     map[string]learning.PatternStat `json:"patterns"`
	CurrentState string                          `json:"current_state,omitempty"`
	DwellSeconds float64                         `json:"dwell_seconds,omitempty"`
}

// Store persists agent snapshots between sessions.
type Store interface {
	Save(snapshots []Snapshot) error
	Load() ([]Snapshot, error)
}

// MachineStateCarrier is implemented by behaviors that own a state machine
// whose position should survive a session.
type MachineStateCarrier interface {
	MachineState() (state string, dwell float64)
	RestoreMachineState(state string, dwell float64) error
}

// Capture snapshots every registered agent's learning state, plus machine
// state for behaviors that carry one.
func Capture(rt *runtime.Runtime) []Snapshot {
	agents := rt.Agents()
	snapshots := make([]Snapshot, 0, len(agents))

	for _, a := range agents {
		state := a.Learner().Snapshot()
		snap := Snapshot{
			AgentID:     a.ID(),
			Kind:        a.Kind(),
			Preferences: state.Preferences,
			Patterns:    state.Patterns,
		}
		if carrier, ok := a.Behavior().(MachineStateCarrier); ok {
			snap.CurrentState, snap.DwellSeconds = carrier.MachineState()
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// Restore rehydrates agents from snapshots, matched by identifier. Snapshots
// for unknown agents are ignored; a snapshot whose machine state no longer
// exists in the current descriptor leaves the machine at its initial state.
func Restore(rt *runtime.Runtime, snapshots []Snapshot) {
	for _, snap := range snapshots {
		a, ok := rt.Agent(snap.AgentID)
		if !ok {
			continue
		}
		a.Learner().Restore(learning.State{
			Preferences: snap.Preferences,
			Patterns:    snap.Patterns,
		})
		if snap.CurrentState == "" {
			continue
		}
		if carrier, ok := a.Behavior().(MachineStateCarrier); ok {
			if err := carrier.RestoreMachineState(snap.CurrentState, snap.DwellSeconds); err != nil {
				a.Logger().Warn("snapshot machine state dropped", "agent_id", snap.AgentID, "state", snap.CurrentState, "error", err)
			}
		}
	}
}
