package mindmesh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mindmesh/config"
	"github.com/hupe1980/mindmesh/core"
	"github.com/hupe1980/mindmesh/internal/testutil"
	"github.com/hupe1980/mindmesh/persist"
)

func TestNewWiresEnsemble(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	for _, id := range []string{ConductorID, TextureID, DynamicsID} {
		a, ok := m.Runtime().Agent(id)
		require.True(t, ok, "agent %q must be registered", id)
		assert.Equal(t, id, a.Kind())
		assert.True(t, m.Mesh().Has(id))
	}
	assert.NotNil(t, m.Conductor())
}

func TestDirectivesFlowUnderVirtualTime(t *testing.T) {
	clock := testutil.NewManualClock()
	signals := core.NewSimulatedSignals("organic")
	signals.SetActivity(0.8)
	sink := core.NewChannelSink(256)

	m, err := New(func(o *Options) {
		o.Seed = 42
		o.Clock = clock
		o.Signals = signals
		o.Sink = sink
	})
	require.NoError(t, err)

	// Drive ticks directly with virtual time instead of starting the timer.
	for i := 0; i < 100; i++ {
		clock.Advance(50 * time.Millisecond)
		m.Runtime().Tick()
	}

	var kinds []core.DirectiveKind
	for {
		select {
		case d := <-sink.C():
			kinds = append(kinds, d.Kind)
			continue
		default:
		}
		break
	}

	require.NotEmpty(t, kinds, "the ensemble must publish directives within 5 simulated seconds")
	assert.Contains(t, kinds, core.DirectiveSetDynamics)
	assert.Contains(t, kinds, core.DirectiveSetTension)
}

func TestSeededSessionsAreReproducible(t *testing.T) {
	run := func() []core.Directive {
		clock := testutil.NewManualClock()
		signals := core.NewSimulatedSignals("organic")
		signals.SetActivity(0.7)
		sink := core.NewChannelSink(4096)

		m, err := New(func(o *Options) {
			o.Seed = 7
			o.Clock = clock
			o.Signals = signals
			o.Sink = sink
		})
		require.NoError(t, err)

		for i := 0; i < 200; i++ {
			clock.Advance(50 * time.Millisecond)
			m.Runtime().Tick()
		}

		var out []core.Directive
		for {
			select {
			case d := <-sink.C():
				d.Timestamp = time.Time{} // directives carry wall-clock stamps
				out = append(out, d)
				continue
			default:
			}
			break
		}
		return out
	}

	first := run()
	second := run()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Kind, second[i].Kind)
		assert.Equal(t, first[i].Source, second[i].Source)
	}
}

func TestSubscribeFansOut(t *testing.T) {
	var a, b []core.Directive
	m, err := New(func(o *Options) {
		o.Clock = testutil.NewManualClock()
	})
	require.NoError(t, err)

	m.Subscribe(core.SinkFunc(func(d core.Directive) { a = append(a, d) }))
	m.Subscribe(core.SinkFunc(func(d core.Directive) { b = append(b, d) }))

	agent, ok := m.Runtime().Agent(ConductorID)
	require.True(t, ok)
	agent.Publish(core.DirectiveSectionChange, map[string]any{"section": "build"})

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].Kind, b[0].Kind)
}

func TestRegisterMindJoinsManagedSet(t *testing.T) {
	m, err := New(func(o *Options) {
		o.Clock = testutil.NewManualClock()
	})
	require.NoError(t, err)

	stub := &testutil.StubBehavior{KindTag: "harmony"}
	a, err := m.RegisterMind("harmony", stub)
	require.NoError(t, err)
	assert.Equal(t, "harmony", a.ID())
	assert.True(t, m.Mesh().Has("harmony"))

	// A forced section change now reaches the new mind too.
	require.NoError(t, m.Conductor().Section().Force("build"))
	m.Runtime().Tick()
	m.Runtime().Tick()

	require.NotEmpty(t, stub.Messages)
	assert.Equal(t, core.MsgSectionChange, stub.Messages[0].Type)
}

func TestStartStopWithSnapshotStore(t *testing.T) {
	store := persist.NewMemoryStore()

	m, err := New(func(o *Options) {
		o.Seed = 3
		o.SnapshotStore = store
		o.Interval = time.Millisecond
	})
	require.NoError(t, err)

	require.NoError(t, m.Start())
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, m.Stop())

	snapshots, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, snapshots, 3, "one snapshot per built-in mind")

	// A fresh session restores from the same store without error.
	fresh, err := New(func(o *Options) {
		o.SnapshotStore = store
		o.Interval = time.Millisecond
	})
	require.NoError(t, err)
	require.NoError(t, fresh.Start())
	require.NoError(t, fresh.Stop())
}

func TestSessionRebuildAppliesNewDescriptors(t *testing.T) {
	store := persist.NewMemoryStore()

	first, err := New(func(o *Options) {
		o.Seed = 3
		o.Interval = time.Millisecond
		o.SnapshotStore = store
	})
	require.NoError(t, err)
	require.NoError(t, first.Start())
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, first.Stop())

	snapshots, err := store.Load()
	require.NoError(t, err)
	learned := snapshotFor(t, snapshots, DynamicsID).Preferences

	// An edited config replaces the energy states entirely. The rebuilt
	// session runs the new machine; the persisted position no longer exists
	// there, so the machine stays at the new initial state.
	cfg, err := config.Parse([]byte(`
runtime:
  interval_ms: 1
energy:
  initial: cruise
  states:
    cruise:
      level: 0.5
      characteristics: {dynamics: 0.5, tension: 0.3}
      successors: [cruise]
      dwell_min: 1
      dwell_max: 4
`))
	require.NoError(t, err)

	rebuilt, err := NewFromConfig(cfg, func(o *Options) {
		o.Seed = 3
		o.SnapshotStore = store
	})
	require.NoError(t, err)
	require.NoError(t, rebuilt.Start())
	require.NoError(t, rebuilt.Stop())

	snapshots, err = store.Load()
	require.NoError(t, err)
	dyn := snapshotFor(t, snapshots, DynamicsID)
	assert.Equal(t, "cruise", dyn.CurrentState, "rebuilt session must run the edited descriptor")
	for actionType := range learned {
		assert.Contains(t, dyn.Preferences, actionType, "learned preferences must survive the rebuild")
	}
}

func snapshotFor(t *testing.T, snapshots []persist.Snapshot, id string) persist.Snapshot {
	t.Helper()
	for _, s := range snapshots {
		if s.AgentID == id {
			return s
		}
	}
	t.Fatalf("no snapshot for %q", id)
	return persist.Snapshot{}
}

func TestNewFromConfigAppliesOverrides(t *testing.T) {
	cfgYAML := []byte(`
runtime:
  interval_ms: 25
  exploration_rate: 0.1
  max_actions_per_tick: 1
  volatility: 0.2
palette: [bass, lead]
`)

	cfg, err := config.Parse(cfgYAML)
	require.NoError(t, err)

	m, err := NewFromConfig(cfg, func(o *Options) {
		o.Clock = testutil.NewManualClock()
	})
	require.NoError(t, err)

	_, ok := m.Runtime().Agent(TextureID)
	assert.True(t, ok)
}
