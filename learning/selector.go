package learning

import (
	"math/rand"
	"sort"

	"github.com/hupe1980/mindmesh/core"
)

// Selection is the outcome of one explore/exploit draw.
type Selection struct {
	// Explored reports whether the draw was a uniform random exploration
	// rather than a score-ranked exploitation.
	Explored bool
	// Actions holds the selected candidates, best score first when
	// exploiting.
	Actions []core.CandidateAction
}

// Select performs the explore/exploit draw for one tick. It is a pure
// function of its inputs and the injected rng, so decision behavior is
// reproducible under a fixed seed without running the full tick pipeline.
//
// With probability exploreProb (clamped to [0,1]) one candidate is picked
// uniformly at random. Otherwise every candidate scoring at least
// keepRatio × top score is kept, best first, capped at maxBatch.
//
// scores must be parallel to candidates; the call panics otherwise since that
// is a programming error, not a runtime condition.
func Select(rng *rand.Rand, candidates []core.CandidateAction, scores []float64, exploreProb, keepRatio float64, maxBatch int) Selection {
	if len(candidates) != len(scores) {
		panic("learning: candidates and scores length mismatch")
	}
	if len(candidates) == 0 {
		return Selection{}
	}

	exploreProb = core.Clamp01(exploreProb)
	if rng.Float64() < exploreProb {
		return Selection{
			Explored: true,
			Actions:  []core.CandidateAction{candidates[rng.Intn(len(candidates))]},
		}
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	top := scores[order[0]]
	threshold := top * keepRatio

	var selected []core.CandidateAction
	for _, idx := range order {
		if scores[idx] < threshold {
			break
		}
		selected = append(selected, candidates[idx])
		if maxBatch > 0 && len(selected) >= maxBatch {
			break
		}
	}

	return Selection{Actions: selected}
}
