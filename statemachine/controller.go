package statemachine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/hupe1980/mindmesh/logging"
)

// Transition is an in-flight move between two states. It is consumed
// incrementally each step, interpolating characteristics, until progress
// reaches 1 and the controller commits the target.
type Transition struct {
	From     string
	To       string
	Elapsed  float64 // seconds since the transition began
	Duration float64 // seconds
	curve    Curve
}

// Progress returns min(1, Elapsed/Duration).
func (t *Transition) Progress() float64 {
	if t.Duration <= 0 {
		return 1
	}
	p := t.Elapsed / t.Duration
	if p > 1 {
		return 1
	}
	return p
}

// Options holds configuration overrides passed to New().
type Options struct {
	// Volatility scales the per-second trigger probability; higher values
	// make the machine restless.
	Volatility float64
	// ActivityGain scales how strongly the external activity input raises
	// the trigger probability.
	ActivityGain float64
	// BaseRate is the per-second trigger probability at full dwell ramp,
	// unit activity gain and volatility 1.
	BaseRate float64
	// BaseDuration is the transition duration in seconds before level
	// distance scaling.
	BaseDuration float64
	// RecencyPenalty damps the draw weight of recently visited targets.
	RecencyPenalty float64
	// RecencyWindow is how many past states count as recently visited.
	RecencyWindow int
	// Rand supplies the probability draws. Defaults to a time-seeded
	// source; inject a fixed seed for deterministic tests.
	Rand *rand.Rand
	// OnChange fires after a state commit (interpolated or forced).
	OnChange func(from, to string, forced bool)
	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger
}

// Controller moves a subject between the descriptor's named states while
// presenting smoothly interpolated characteristics. Transition eligibility is
// gated by minimum dwell time, transition choice is a weighted random draw
// among legal successors, and target characteristics ease in over a
// curve-shaped window.
//
// Not goroutine-safe: a controller is owned by one agent and stepped from the
// runtime's tick goroutine.
type Controller struct {
	desc *Descriptor

	current    string
	dwell      float64 // seconds in current state
	transition *Transition
	recent     []string

	begun     int
	committed int

	volatility     float64
	activityGain   float64
	baseRate       float64
	baseDuration   float64
	recencyPenalty float64
	recencyWindow  int

	rand     *rand.Rand
	onChange func(from, to string, forced bool)
	logger   logging.Logger
}

// New creates a Controller for the descriptor, validating it first.
func New(desc *Descriptor, optFns ...func(o *Options)) (*Controller, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	opts := Options{
		Volatility:     0.5,
		ActivityGain:   1.0,
		BaseRate:       0.8,
		BaseDuration:   2.0,
		RecencyPenalty: 0.4,
		RecencyWindow:  2,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(rand.Int63()))
	}

	return &Controller{
		desc:           desc,
		current:        desc.Initial,
		volatility:     opts.Volatility,
		activityGain:   opts.ActivityGain,
		baseRate:       opts.BaseRate,
		baseDuration:   opts.BaseDuration,
		recencyPenalty: opts.RecencyPenalty,
		recencyWindow:  opts.RecencyWindow,
		rand:           opts.Rand,
		onChange:       opts.OnChange,
		logger:         opts.Logger,
	}, nil
}

// Current returns the committed state name. During a transition this is still
// the source state; the target becomes current only on commit.
func (c *Controller) Current() string { return c.current }

// Dwell returns the seconds spent in the current state since the last commit.
func (c *Controller) Dwell() float64 { return c.dwell }

// InTransition reports whether a transition is being consumed.
func (c *Controller) InTransition() bool { return c.transition != nil }

// ActiveTransition returns a copy of the in-flight transition, if any.
func (c *Controller) ActiveTransition() (Transition, bool) {
	if c.transition == nil {
		return Transition{}, false
	}
	return *c.transition, true
}

// TransitionsBegun returns how many probabilistic transitions have been
// started by the dwell-gated draw.
func (c *Controller) TransitionsBegun() int { return c.begun }

// TransitionsCommitted returns how many transitions (probabilistic or forced)
// have committed a new current state.
func (c *Controller) TransitionsCommitted() int { return c.committed }

// Step advances the machine by dt seconds under the given external activity
// input in [0,1]. Mid-transition it only consumes the transition; otherwise
// it accumulates dwell time and, once past the state's minimum dwell, draws
// against the trigger probability.
func (c *Controller) Step(dt, activity float64) {
	if dt <= 0 {
		return
	}

	if c.transition != nil {
		c.advanceTransition(dt)
		return
	}

	c.dwell += dt

	p := c.triggerProbability(dt, activity)
	if p <= 0 {
		return
	}
	if c.rand.Float64() < p {
		c.beginTransition(activity)
	}
}

// TriggerProbability exposes the per-step trigger probability for the current
// dwell and activity, without drawing. Mid-transition it is always 0.
func (c *Controller) TriggerProbability(dt, activity float64) float64 {
	if c.transition != nil {
		return 0
	}
	return c.triggerProbability(dt, activity)
}

// triggerProbability ramps from 0 at the state's minimum dwell to the full
// rate at its maximum, scaled by activity and volatility.
func (c *Controller) triggerProbability(dt, activity float64) float64 {
	st := c.desc.States[c.current]

	if c.dwell <= st.DwellMin {
		return 0
	}

	ramp := 1.0
	if st.DwellMax > st.DwellMin {
		ramp = (c.dwell - st.DwellMin) / (st.DwellMax - st.DwellMin)
		if ramp > 1 {
			ramp = 1
		}
	}

	perSecond := c.baseRate * ramp * (1 + c.activityGain*activity) * c.volatility
	p := perSecond * dt
	if p > 1 {
		p = 1
	}
	return p
}

// beginTransition picks a target among the current state's legal successors
// via weighted draw and starts the transition. With no legal successors the
// machine stays put and re-arms on a later step.
func (c *Controller) beginTransition(activity float64) {
	src := c.desc.States[c.current]

	type weighted struct {
		name   string
		weight float64
	}
	var targets []weighted
	total := 0.0
	for _, succ := range src.Successors {
		dst, ok := c.desc.States[succ]
		if !ok {
			continue
		}
		w := dst.weight()
		if c.recentlyVisited(succ) {
			w *= c.recencyPenalty
		}
		// High activity favors targets above the current level, low
		// activity favors targets below it.
		w *= 1 + (activity-0.5)*(dst.Level-src.Level)
		if w < 0.05 {
			w = 0.05
		}
		targets = append(targets, weighted{succ, w})
		total += w
	}
	if len(targets) == 0 {
		return
	}

	draw := c.rand.Float64() * total
	choice := targets[len(targets)-1].name
	for _, t := range targets {
		draw -= t.weight
		if draw < 0 {
			choice = t.name
			break
		}
	}

	dst := c.desc.States[choice]
	duration := c.baseDuration * (0.5 + math.Abs(dst.Level-src.Level))

	c.transition = &Transition{
		From:     c.current,
		To:       choice,
		Duration: duration,
		curve:    src.curve(),
	}
	c.begun++
	c.logger.Debug("state transition begun", "machine", c.desc.Name, "from", c.current, "to", choice, "duration_s", duration)
}

// advanceTransition consumes dt of the active transition and commits the
// target once progress reaches 1.
func (c *Controller) advanceTransition(dt float64) {
	t := c.transition
	t.Elapsed += dt
	if t.Progress() < 1 {
		return
	}

	from := c.current
	c.commit(t.To)
	c.logCommit(from, c.current, t.Duration)
	if c.onChange != nil {
		c.onChange(from, c.current, false)
	}
}

// Force commits the target immediately, bypassing dwell gating, the
// probability draw and the successor check. The target's characteristics
// apply with no interpolation. The target must still be a member of the
// descriptor's state set.
func (c *Controller) Force(target string) error {
	if _, ok := c.desc.States[target]; !ok {
		return fmt.Errorf("statemachine: unknown state %q in %q", target, c.desc.Name)
	}

	from := c.current
	c.commit(target)
	c.logCommit(from, target, 0)
	if c.onChange != nil {
		c.onChange(from, target, true)
	}
	return nil
}

// Restore sets the current state and dwell time without firing the change
// notification, used when rehydrating persisted controller state.
func (c *Controller) Restore(state string, dwell float64) error {
	if _, ok := c.desc.States[state]; !ok {
		return fmt.Errorf("statemachine: unknown state %q in %q", state, c.desc.Name)
	}
	c.current = state
	c.dwell = dwell
	c.transition = nil
	return nil
}

func (c *Controller) commit(target string) {
	c.recent = append(c.recent, c.current)
	if n := len(c.recent) - c.recencyWindow; n > 0 {
		c.recent = c.recent[n:]
	}
	c.current = target
	c.dwell = 0
	c.transition = nil
	c.committed++
}

// logCommit emits the commit trace, upgrading to the structured state change
// record when the logger supports it. duration is the transition window in
// seconds, 0 for forced commits.
func (c *Controller) logCommit(from, to string, duration float64) {
	if scl, ok := c.logger.(logging.StateChangeLogger); ok {
		scl.LogStateChange(c.desc.Name, from, to, time.Duration(duration*float64(time.Second)))
		return
	}
	c.logger.Debug("state changed", "machine", c.desc.Name, "from", from, "to", to, "duration_s", duration)
}

func (c *Controller) recentlyVisited(name string) bool {
	for _, r := range c.recent {
		if r == name {
			return true
		}
	}
	return false
}

// Characteristics returns the numeric vector currently presented to the rest
// of the system: the current state's vector, or mid-transition the eased
// interpolation between source and target vectors.
func (c *Controller) Characteristics() map[string]float64 {
	return c.interpolated(func(s State) map[string]float64 { return s.Characteristics })
}

// Intensities returns the per-mind intensity vector, interpolated the same
// way as Characteristics.
func (c *Controller) Intensities() map[string]float64 {
	return c.interpolated(func(s State) map[string]float64 { return s.Intensities })
}

func (c *Controller) interpolated(pick func(State) map[string]float64) map[string]float64 {
	src := pick(c.desc.States[c.current])

	if c.transition == nil {
		out := make(map[string]float64, len(src))
		for k, v := range src {
			out[k] = v
		}
		return out
	}

	dst := pick(c.desc.States[c.transition.To])

	// Endpoints bypass the blend so progress 0 yields exactly the source
	// vector and progress 1 exactly the target vector.
	prog := c.transition.Progress()
	if prog <= 0 {
		out := make(map[string]float64, len(src))
		for k, v := range src {
			out[k] = v
		}
		return out
	}
	if prog >= 1 {
		out := make(map[string]float64, len(dst))
		for k, v := range dst {
			out[k] = v
		}
		return out
	}

	eased := c.transition.curve(prog)

	out := make(map[string]float64, len(src)+len(dst))
	for k, v := range src {
		out[k] = v + (dst[k]-v)*eased
	}
	for k, v := range dst {
		if _, ok := src[k]; !ok {
			out[k] = v * eased
		}
	}
	return out
}
