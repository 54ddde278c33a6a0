package persist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mindmesh/internal/testutil"
	"github.com/hupe1980/mindmesh/mesh"
	"github.com/hupe1980/mindmesh/runtime"
	"github.com/hupe1980/mindmesh/statemachine"
)

// machineBehavior is a stub behavior carrying a state machine, exercising the
// MachineStateCarrier path.
type machineBehavior struct {
	testutil.StubBehavior
	machine *statemachine.Controller
}

func newMachineBehavior(t *testing.T) *machineBehavior {
	t.Helper()
	ctrl, err := statemachine.New(testutil.TwoStateDescriptor(1, 2))
	require.NoError(t, err)
	return &machineBehavior{machine: ctrl}
}

func (m *machineBehavior) MachineState() (string, float64) {
	return m.machine.Current(), m.machine.Dwell()
}

func (m *machineBehavior) RestoreMachineState(state string, dwell float64) error {
	return m.machine.Restore(state, dwell)
}

func TestCaptureRestoreRoundtrip(t *testing.T) {
	rt := runtime.New(mesh.New())
	plain, err := rt.Register("plain", &testutil.StubBehavior{KindTag: "plain"})
	require.NoError(t, err)
	carrier := newMachineBehavior(t)
	_, err = rt.Register("carrier", carrier)
	require.NoError(t, err)

	plain.Learner().Record("ctx", "pulse", 0.9, time.Now())
	require.NoError(t, carrier.machine.Restore("high", 1.5))

	snapshots := Capture(rt)
	require.Len(t, snapshots, 2)

	byID := map[string]Snapshot{}
	for _, s := range snapshots {
		byID[s.AgentID] = s
	}
	assert.Equal(t, "plain", byID["plain"].Kind)
	assert.InDelta(t, 0.9, byID["plain"].Preferences["pulse"], 1e-9)
	assert.Empty(t, byID["plain"].CurrentState)
	assert.Equal(t, "high", byID["carrier"].CurrentState)
	assert.Equal(t, 1.5, byID["carrier"].DwellSeconds)

	// Rehydrate a fresh runtime under the same identifiers.
	fresh := runtime.New(mesh.New())
	freshPlain, err := fresh.Register("plain", &testutil.StubBehavior{KindTag: "plain"})
	require.NoError(t, err)
	freshCarrier := newMachineBehavior(t)
	_, err = fresh.Register("carrier", freshCarrier)
	require.NoError(t, err)

	Restore(fresh, snapshots)
	assert.InDelta(t, 0.9, freshPlain.Learner().Preference("pulse"), 1e-9)
	assert.Equal(t, "high", freshCarrier.machine.Current())
	assert.Equal(t, 1.5, freshCarrier.machine.Dwell())
}

func TestRestoreIgnoresUnknownAgents(t *testing.T) {
	rt := runtime.New(mesh.New())
	assert.NotPanics(t, func() {
		Restore(rt, []Snapshot{{AgentID: "ghost", Preferences: map[string]float64{"x": 1}}})
	})
}

func TestRestoreDropsUnknownMachineState(t *testing.T) {
	rt := runtime.New(mesh.New())
	carrier := newMachineBehavior(t)
	_, err := rt.Register("carrier", carrier)
	require.NoError(t, err)

	Restore(rt, []Snapshot{{AgentID: "carrier", CurrentState: "vanished"}})
	assert.Equal(t, "low", carrier.machine.Current(), "machine stays at its initial state")
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	in := []Snapshot{{AgentID: "a", Preferences: map[string]float64{"x": 0.5}}}
	require.NoError(t, store.Save(in))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "a", loaded[0].AgentID)

	// The store holds its own copy.
	in[0].AgentID = "mutated"
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "a", loaded[0].AgentID)
}

func TestFileStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	store := NewFileStore(path)

	in := []Snapshot{{
		AgentID:      "conductor",
		Kind:         "conductor",
		Preferences:  map[string]float64{"set_dynamics": 0.72},
		CurrentState: "build",
		DwellSeconds: 4.5,
	}}
	require.NoError(t, store.Save(in))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, in[0], loaded[0])

	// No stray temp files survive the save.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "snapshot.json", entries[0].Name())
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}
