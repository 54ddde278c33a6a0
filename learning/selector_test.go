package learning

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mindmesh/core"
)

func candidates(types ...string) []core.CandidateAction {
	out := make([]core.CandidateAction, len(types))
	for i, typ := range types {
		out[i] = core.CandidateAction{Type: typ}
	}
	return out
}

func TestSelectEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	sel := Select(rng, nil, nil, 0.5, 0.7, 3)
	assert.False(t, sel.Explored)
	assert.Empty(t, sel.Actions)
}

func TestSelectPanicsOnLengthMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Panics(t, func() {
		Select(rng, candidates("a", "b"), []float64{0.5}, 0, 0.7, 3)
	})
}

func TestSelectExploreAlways(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cands := candidates("a", "b", "c")
	scores := []float64{0.9, 0.1, 0.1}

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		sel := Select(rng, cands, scores, 1.0, 0.7, 3)
		require.True(t, sel.Explored)
		require.Len(t, sel.Actions, 1)
		seen[sel.Actions[0].Type] = true
	}
	// Uniform draw ignores scores entirely.
	assert.True(t, seen["a"] && seen["b"] && seen["c"])
}

func TestSelectExploitKeepsNearTop(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cands := candidates("best", "close", "far")
	scores := []float64{0.8, 0.6, 0.3}

	sel := Select(rng, cands, scores, 0, 0.7, 3)
	require.False(t, sel.Explored)
	// Threshold is 0.8×0.7 = 0.56: "far" is cut.
	require.Len(t, sel.Actions, 2)
	assert.Equal(t, "best", sel.Actions[0].Type)
	assert.Equal(t, "close", sel.Actions[1].Type)
}

func TestSelectExploitCapsBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cands := candidates("a", "b", "c", "d", "e")
	scores := []float64{0.9, 0.9, 0.9, 0.9, 0.9}

	sel := Select(rng, cands, scores, 0, 0.7, 3)
	assert.Len(t, sel.Actions, 3)
}

func TestSelectExploitStableOrderOnTies(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cands := candidates("first", "second", "third")
	scores := []float64{0.5, 0.5, 0.5}

	sel := Select(rng, cands, scores, 0, 0.7, 0)
	require.Len(t, sel.Actions, 3)
	assert.Equal(t, "first", sel.Actions[0].Type)
	assert.Equal(t, "second", sel.Actions[1].Type)
	assert.Equal(t, "third", sel.Actions[2].Type)
}

func TestSelectClampNegativeExploreProb(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cands := candidates("a")
	for i := 0; i < 50; i++ {
		sel := Select(rng, cands, []float64{0.5}, -3, 0.7, 3)
		assert.False(t, sel.Explored)
	}
}

func TestSelectDeterministicUnderSeed(t *testing.T) {
	cands := candidates("a", "b", "c", "d")
	scores := []float64{0.2, 0.9, 0.4, 0.7}

	run := func() []Selection {
		rng := rand.New(rand.NewSource(42))
		out := make([]Selection, 0, 30)
		for i := 0; i < 30; i++ {
			out = append(out, Select(rng, cands, scores, 0.4, 0.7, 2))
		}
		return out
	}

	assert.Equal(t, run(), run())
}
