package core

import "time"

// CandidateAction is an ephemeral value produced by a behavior's decision
// step. It exists only within one tick: the runtime scores candidates against
// learned preferences, selects a subset and executes them.
type CandidateAction struct {
	// Type categorizes the action for preference learning (e.g.
	// "activate_source", "set_dynamics"). Actions of the same type share one
	// preference score.
	Type string
	// Priority is the behavior's own [0,1] urgency estimate, combined with
	// the learned preference and pattern score during selection.
	Priority float64
	// Params carries type-specific fields interpreted by Execute.
	Params map[string]any
}

// ActionRecord captures one executed action and its outcome for the agent's
// bounded action history. A failed execution is recorded with a nil Result
// and the error message, so the learning step sees a below-average reward for
// that action/context.
type ActionRecord struct {
	Action    CandidateAction
	Result    any
	Err       string
	Reward    float64
	Timestamp time.Time
}

// Succeeded reports whether the action executed without error.
func (r ActionRecord) Succeeded() bool { return r.Err == "" }
