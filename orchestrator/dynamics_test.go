package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mindmesh/core"
)

func TestDynamicsMindDefaults(t *testing.T) {
	d, err := NewDynamicsMind(nil, "conductor")
	require.NoError(t, err)

	assert.Equal(t, "dynamics", d.Kind())
	assert.Equal(t, "low", d.Machine().Current())
}

func TestDynamicsMindRejectsBadDescriptor(t *testing.T) {
	bad := DefaultEnergyDescriptor()
	bad.Initial = "turbo"
	_, err := NewDynamicsMind(bad, "conductor")
	assert.Error(t, err)
}

func TestDynamicsMindEnergyHintForcesMachine(t *testing.T) {
	d, err := NewDynamicsMind(nil, "conductor")
	require.NoError(t, err)
	h := newFakeHandle("dynamics")

	d.OnMessage(h, core.NewMessage("conductor", "dynamics", core.MsgMoodChange, map[string]any{
		"mood":   "tense",
		"energy": "high",
	}))
	assert.Equal(t, "high", d.Machine().Current())

	// Hints naming unknown states are logged and ignored.
	d.OnMessage(h, core.NewMessage("conductor", "dynamics", core.MsgMoodChange, map[string]any{
		"energy": "turbo",
	}))
	assert.Equal(t, "high", d.Machine().Current())

	// Unrelated message types never touch the machine.
	d.OnMessage(h, core.NewMessage("x", "dynamics", core.MsgPing, map[string]any{"energy": "low"}))
	assert.Equal(t, "high", d.Machine().Current())
}

func TestDynamicsMindProposeAndExecute(t *testing.T) {
	d, err := NewDynamicsMind(nil, "conductor")
	require.NoError(t, err)
	h := newFakeHandle("dynamics")

	candidates := d.Propose(h, core.Perception{})
	require.Len(t, candidates, 2)
	for _, c := range candidates {
		assert.Equal(t, 1.0, c.Priority)
	}

	for _, c := range candidates {
		_, err := d.Execute(h, c)
		require.NoError(t, err)
	}
	require.Len(t, h.directivesOfKind(core.DirectiveSetDynamics), 1)
	require.Len(t, h.directivesOfKind(core.DirectiveSetTension), 1)

	// Settled on the low-state targets: nothing urgent remains.
	for _, c := range d.Propose(h, core.Perception{}) {
		assert.Zero(t, c.Priority)
	}
}

func TestDynamicsMindEnergyShiftFeedback(t *testing.T) {
	d, err := NewDynamicsMind(nil, "conductor")
	require.NoError(t, err)
	h := newFakeHandle("dynamics")

	// The first publication has no previous value to diff against.
	_, err = d.Execute(h, core.CandidateAction{Type: "set_dynamics", Params: map[string]any{"value": 0.2}})
	require.NoError(t, err)
	assert.Empty(t, h.sentOfType(core.MsgEnergyShift))

	require.NoError(t, d.Machine().Force("high"))
	_, err = d.Execute(h, core.CandidateAction{Type: "set_dynamics", Params: map[string]any{"value": 0.9}})
	require.NoError(t, err)

	shifts := h.sentOfType(core.MsgEnergyShift)
	require.Len(t, shifts, 1)
	assert.Equal(t, "conductor", shifts[0].To)
	assert.InDelta(t, 0.7, shifts[0].Payload["delta"].(float64), 1e-9)
}

func TestDynamicsMindReward(t *testing.T) {
	d, err := NewDynamicsMind(nil, "conductor")
	require.NoError(t, err)
	h := newFakeHandle("dynamics")

	target := d.Machine().Characteristics()["dynamics"]
	a := core.CandidateAction{Type: "set_dynamics"}

	assert.InDelta(t, 1.0, d.Reward(h, a, target, core.Perception{}), 1e-9)
	assert.InDelta(t, 0.5, d.Reward(h, a, target+0.5, core.Perception{}), 1e-9)
}

func TestDynamicsMindTickStepsMachine(t *testing.T) {
	d, err := NewDynamicsMind(nil, "conductor")
	require.NoError(t, err)
	h := newFakeHandle("dynamics")
	h.signals.SetActivity(0.5)

	d.Tick(h, 2*time.Second)
	assert.InDelta(t, 2.0, d.Machine().Dwell(), 1e-9)
}

func TestDynamicsMindPerceive(t *testing.T) {
	d, err := NewDynamicsMind(nil, "conductor")
	require.NoError(t, err)
	h := newFakeHandle("dynamics")
	h.signals.SetActivity(0.4)

	p, err := d.Perceive(h)
	require.NoError(t, err)
	assert.Equal(t, 0.4, p["activity"])
	assert.Equal(t, "low", p["energy_state"])
	assert.Equal(t, 0.2, p["dynamics"])
	assert.Equal(t, 0.1, p["tension"])
}
