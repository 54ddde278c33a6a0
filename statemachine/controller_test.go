package statemachine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mindmesh/logging"
)

func twoState(dwellMin, dwellMax float64) *Descriptor {
	return &Descriptor{
		Name:    "test",
		Initial: "low",
		States: map[string]State{
			"low": {
				Name:            "low",
				Level:           0.2,
				Characteristics: map[string]float64{"dynamics": 0.2, "tension": 0.1},
				Successors:      []string{"high"},
				DwellMin:        dwellMin,
				DwellMax:        dwellMax,
				Curve:           "linear",
			},
			"high": {
				Name:            "high",
				Level:           0.8,
				Characteristics: map[string]float64{"dynamics": 0.9, "tension": 0.7},
				Successors:      []string{"low"},
				DwellMin:        dwellMin,
				DwellMax:        dwellMax,
				Curve:           "linear",
			},
		},
	}
}

func newController(t *testing.T, desc *Descriptor, optFns ...func(o *Options)) *Controller {
	t.Helper()
	c, err := New(desc, optFns...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsInvalidDescriptor(t *testing.T) {
	_, err := New(&Descriptor{Name: "bad"})
	assert.ErrorIs(t, err, ErrEmptyDescriptor)
}

func TestNoTransitionBelowMinDwell(t *testing.T) {
	c := newController(t, twoState(1, 2), func(o *Options) {
		o.Rand = rand.New(rand.NewSource(1))
		o.Volatility = 1
	})

	// Full activity cannot override the dwell gate.
	assert.Zero(t, c.TriggerProbability(0.05, 1.0))
	for i := 0; i < 10; i++ { // 0.5s total
		c.Step(0.05, 1.0)
	}
	assert.Equal(t, "low", c.Current())
	assert.Zero(t, c.TransitionsBegun())
	assert.InDelta(t, 0.5, c.Dwell(), 1e-9)
}

func TestTriggerProbabilityRampsAfterMinDwell(t *testing.T) {
	c := newController(t, twoState(1, 2))
	require.NoError(t, c.Restore("low", 1.5))

	p := c.TriggerProbability(0.05, 0.5)
	assert.Greater(t, p, 0.0)

	// Saturated dwell yields a strictly larger probability.
	require.NoError(t, c.Restore("low", 5))
	assert.Greater(t, c.TriggerProbability(0.05, 0.5), p)
}

func TestActivityRaisesTriggerProbability(t *testing.T) {
	c := newController(t, twoState(1, 2))
	require.NoError(t, c.Restore("low", 1.5))

	assert.Greater(t, c.TriggerProbability(0.05, 1.0), c.TriggerProbability(0.05, 0.0))
}

func TestEventualTransitionAndCommit(t *testing.T) {
	var changes int
	c := newController(t, twoState(0.2, 0.5), func(o *Options) {
		o.Rand = rand.New(rand.NewSource(3))
		o.Volatility = 1
		o.BaseDuration = 0.2
		o.OnChange = func(from, to string, forced bool) {
			changes++
			assert.Equal(t, "low", from)
			assert.Equal(t, "high", to)
			assert.False(t, forced)
		}
	})

	for i := 0; i < 400 && c.TransitionsCommitted() == 0; i++ {
		c.Step(0.05, 0.8)
	}

	require.Equal(t, 1, changes, "machine must leave low within 20 simulated seconds")
	assert.Equal(t, "high", c.Current())
	assert.Zero(t, c.Dwell(), "commit resets dwell")
	assert.False(t, c.InTransition())
}

func TestInterpolationEndpointsExact(t *testing.T) {
	c := newController(t, twoState(0, 0.1), func(o *Options) {
		o.Rand = rand.New(rand.NewSource(1))
		o.Volatility = 5
		o.BaseDuration = 10
	})

	// Drive until a transition begins.
	for i := 0; i < 1000 && !c.InTransition(); i++ {
		c.Step(0.05, 1.0)
	}
	require.True(t, c.InTransition())

	tr, ok := c.ActiveTransition()
	require.True(t, ok)
	assert.Equal(t, "low", tr.From)
	assert.Equal(t, "high", tr.To)

	// Progress 0: exactly the source vector.
	ch := c.Characteristics()
	assert.Equal(t, 0.2, ch["dynamics"])
	assert.Equal(t, 0.1, ch["tension"])

	// Mid-transition: strictly between the endpoints.
	c.Step(tr.Duration/2, 0.5)
	ch = c.Characteristics()
	assert.Greater(t, ch["dynamics"], 0.2)
	assert.Less(t, ch["dynamics"], 0.9)

	// Past the end: the commit makes the target vector exact.
	c.Step(tr.Duration, 0.5)
	require.Equal(t, "high", c.Current())
	ch = c.Characteristics()
	assert.Equal(t, 0.9, ch["dynamics"])
	assert.Equal(t, 0.7, ch["tension"])
}

func TestForce(t *testing.T) {
	var forced bool
	c := newController(t, twoState(100, 200), func(o *Options) {
		o.OnChange = func(from, to string, f bool) { forced = f }
	})

	// Force ignores dwell gating entirely.
	require.NoError(t, c.Force("high"))
	assert.Equal(t, "high", c.Current())
	assert.True(t, forced)
	assert.Equal(t, 1, c.TransitionsCommitted())
	assert.Equal(t, 0.9, c.Characteristics()["dynamics"])

	assert.Error(t, c.Force("ghost"))
	assert.Equal(t, "high", c.Current())
}

func TestForceCancelsActiveTransition(t *testing.T) {
	c := newController(t, twoState(0, 0.1), func(o *Options) {
		o.Rand = rand.New(rand.NewSource(1))
		o.Volatility = 5
		o.BaseDuration = 10
	})
	for i := 0; i < 1000 && !c.InTransition(); i++ {
		c.Step(0.05, 1.0)
	}
	require.True(t, c.InTransition())

	require.NoError(t, c.Force("low"))
	assert.False(t, c.InTransition())
	assert.Equal(t, "low", c.Current())
}

func TestRestoreSilently(t *testing.T) {
	notified := false
	c := newController(t, twoState(1, 2), func(o *Options) {
		o.OnChange = func(string, string, bool) { notified = true }
	})

	require.NoError(t, c.Restore("high", 3.5))
	assert.Equal(t, "high", c.Current())
	assert.Equal(t, 3.5, c.Dwell())
	assert.False(t, notified, "restore must not fire the change notification")

	assert.Error(t, c.Restore("ghost", 0))
}

func TestRecencyPenaltyDampsReturns(t *testing.T) {
	// Three-state ring where "b" was just visited: the draw out of "a" should
	// strongly favor "c".
	desc := &Descriptor{
		Name:    "ring",
		Initial: "a",
		States: map[string]State{
			"a": {Name: "a", Successors: []string{"b", "c"}},
			"b": {Name: "b", Successors: []string{"a"}},
			"c": {Name: "c", Successors: []string{"a"}},
		},
	}

	countC := 0
	const trials = 500
	for i := 0; i < trials; i++ {
		c := newController(t, desc, func(o *Options) {
			o.Rand = rand.New(rand.NewSource(int64(i)))
			o.RecencyPenalty = 0.1
		})
		require.NoError(t, c.Force("b"))
		require.NoError(t, c.Force("a"))
		c.beginTransition(0.5)
		tr, ok := c.ActiveTransition()
		require.True(t, ok)
		if tr.To == "c" {
			countC++
		}
	}

	// Expected split is roughly 1/(1+0.1) ≈ 91% toward "c".
	assert.Greater(t, countC, trials*4/5)
}

type stateChangeRecorder struct {
	logging.NoOpLogger
	changes   []string
	durations []time.Duration
}

func (l *stateChangeRecorder) LogStateChange(machine, from, to string, dur time.Duration) {
	l.changes = append(l.changes, machine+":"+from+">"+to)
	l.durations = append(l.durations, dur)
}

func TestCommitUpgradesToStateChangeLogger(t *testing.T) {
	rec := &stateChangeRecorder{}
	c := newController(t, twoState(0.2, 0.5), func(o *Options) {
		o.Rand = rand.New(rand.NewSource(3))
		o.Volatility = 1
		o.BaseDuration = 0.2
		o.Logger = rec
	})

	for i := 0; i < 400 && c.TransitionsCommitted() == 0; i++ {
		c.Step(0.05, 0.8)
	}
	require.Equal(t, 1, c.TransitionsCommitted())

	require.Len(t, rec.changes, 1)
	assert.Equal(t, "test:low>high", rec.changes[0])
	assert.Greater(t, rec.durations[0], time.Duration(0))

	require.NoError(t, c.Force("low"))
	require.Len(t, rec.changes, 2)
	assert.Equal(t, "test:high>low", rec.changes[1])
	assert.Zero(t, rec.durations[1], "forced commits carry no transition window")
}

func TestStepZeroDtIsNoOp(t *testing.T) {
	c := newController(t, twoState(0, 0.1))
	c.Step(0, 1.0)
	assert.Zero(t, c.Dwell())
}
