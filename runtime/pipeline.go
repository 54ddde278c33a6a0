package runtime

import (
	"fmt"
	"time"

	"github.com/hupe1980/mindmesh/core"
	"github.com/hupe1980/mindmesh/learning"
	"github.com/hupe1980/mindmesh/logging"
)

// tickAgent runs the full pipeline for one agent. Every step is individually
// guarded: a failing or panicking behavior degrades to "do nothing this
// step", never to a halted timer.
func (r *Runtime) tickAgent(a *Agent, now time.Time, dt time.Duration) {
	if !a.active.Load() || a.paused.Load() {
		return
	}

	// 1. Perceive. On failure the previous snapshot is reused.
	perception := r.perceive(a, now)

	// 2. Drain mailbox to empty, in arrival order.
	r.drain(a)

	// 3. Decide: enumerate candidates, score against learned preferences,
	// then explore or exploit.
	ctxKey := learning.ContextKey(perception)
	selection := r.decide(a, perception, ctxKey)

	// 4. Act: execute every selected candidate.
	records := r.act(a, selection.Actions, now)

	// 5. Learn from the recorded outcomes.
	if len(records) > 0 {
		r.learn(a, ctxKey, perception, records, now)
	}

	// 6. Decay energy and focus proportionally to elapsed time.
	seconds := dt.Seconds()
	a.drives.Energy -= r.energyDecayRate * seconds
	a.drives.Focus -= r.focusDecayRate * seconds
	a.drives.Clamp()

	// 7. Behavior-specific hook.
	r.guard(a, "tick", func() error {
		a.behavior.Tick(a, dt)
		return nil
	})
}

func (r *Runtime) perceive(a *Agent, now time.Time) core.Perception {
	var perception core.Perception
	r.guard(a, "perceive", func() error {
		p, err := a.behavior.Perceive(a)
		if err != nil {
			return err
		}
		perception = p
		return nil
	})

	if perception == nil {
		return a.lastPerception
	}

	changes := perception.Diff(a.lastPerception)
	a.pushPerception(PerceptionSnapshot{
		Perception: perception.Clone(),
		Changes:    changes,
		Timestamp:  now,
	}, r.perceptionHistorySize)
	a.lastPerception = perception

	return perception
}

func (r *Runtime) drain(a *Agent) {
	for _, msg := range r.mesh.Drain(a.id) {
		m := msg
		r.guard(a, "message", func() error {
			a.behavior.OnMessage(a, m)
			return nil
		})
	}
}

func (r *Runtime) decide(a *Agent, perception core.Perception, ctxKey string) learning.Selection {
	var candidates []core.CandidateAction
	r.guard(a, "propose", func() error {
		candidates = a.behavior.Propose(a, perception)
		return nil
	})
	if len(candidates) == 0 {
		return learning.Selection{}
	}

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = a.learner.Score(ctxKey, c)
	}

	exploreProb := core.Clamp01(r.explorationRate * (1 - a.drives.Confidence))
	return learning.Select(r.rand, candidates, scores, exploreProb, r.exploitKeepRatio, r.maxActionsPerTick)
}

func (r *Runtime) act(a *Agent, actions []core.CandidateAction, now time.Time) []core.ActionRecord {
	records := make([]core.ActionRecord, 0, len(actions))
	for _, action := range actions {
		rec := core.ActionRecord{Action: action, Timestamp: now}

		r.guard(a, "act", func() error {
			result, execErr := a.behavior.Execute(a, action)
			if execErr != nil {
				return fmt.Errorf("action %q: %w", action.Type, execErr)
			}
			rec.Result = result
			return nil
		}, func(err error) {
			rec.Err = err.Error()
		})

		records = append(records, rec)
		r.logger.Debug("action executed", "agent_id", a.id, "action_type", action.Type, "success", rec.Succeeded())
	}
	return records
}

func (r *Runtime) learn(a *Agent, ctxKey string, perception core.Perception, records []core.ActionRecord, now time.Time) {
	for i := range records {
		rec := &records[i]

		reward := r.actionFailureReward
		if rec.Succeeded() {
			r.guard(a, "learn", func() error {
				reward = core.Clamp01(a.behavior.Reward(a, rec.Action, rec.Result, perception))
				return nil
			})
		}
		rec.Reward = reward

		a.learner.Record(ctxKey, rec.Action.Type, reward, now)
		a.pushAction(*rec, r.actionHistorySize)
	}

	// Confidence follows the recent average reward: up when decisions keep
	// paying off, down when they keep disappointing.
	avg := a.learner.RecentAverageReward()
	switch {
	case avg > 0.6:
		a.drives.Confidence += 0.02
	case avg < 0.4:
		a.drives.Confidence -= 0.02
	}
	a.drives.Clamp()
}

// guard runs fn with panic recovery. A panic or returned error is logged
// under the step name and, when an onErr callback is supplied, handed to it;
// the pipeline then continues with the following step.
func (r *Runtime) guard(a *Agent, step string, fn func() error, onErr ...func(error)) {
	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%s panicked: %v", step, p)
			}
		}()
		return fn()
	}()

	if err != nil {
		if sfl, ok := r.logger.(logging.StepFailureLogger); ok {
			sfl.LogStepFailure(a.id, step, err)
		} else {
			r.logger.Warn("pipeline step failed", "agent_id", a.id, "step", step, "error", err)
		}
		for _, cb := range onErr {
			cb(err)
		}
	}
}
