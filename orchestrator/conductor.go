package orchestrator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hupe1980/mindmesh/core"
	"github.com/hupe1980/mindmesh/statemachine"
)

// ConductorOptions holds configuration passed to NewConductor().
type ConductorOptions struct {
	// Section is the musical-section descriptor.
	Section *statemachine.Descriptor
	// Moods maps era tags to mood descriptors; the conductor switches the
	// active mood machine when the perceived era changes.
	Moods map[string]*statemachine.Descriptor
	// Managed lists the agent identifiers the conductor directs.
	Managed []string
	// ControllerOptions are applied to every state-machine controller.
	ControllerOptions []func(o *statemachine.Options)
}

type stateChange struct {
	machine string
	from    string
	to      string
	forced  bool
}

// Conductor is the orchestrator behavior. Each tick it steps its own section
// and mood state machines; whenever either commits a new state it pushes a
// change message into every managed mind's mailbox and publishes the
// corresponding directive. Its candidate actions keep the global dynamics and
// tension aligned with the active mood's characteristics.
type Conductor struct {
	section *statemachine.Controller
	moods   map[string]*statemachine.Controller
	era     string

	managed []string
	pending []stateChange

	lastDynamics float64
	lastTension  float64
}

// NewConductor builds a Conductor, validating every descriptor.
func NewConductor(optFns ...func(o *ConductorOptions)) (*Conductor, error) {
	opts := ConductorOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Section == nil {
		opts.Section = DefaultSectionDescriptor()
	}
	if len(opts.Moods) == 0 {
		opts.Moods = DefaultMoodDescriptors()
	}

	c := &Conductor{
		moods:        make(map[string]*statemachine.Controller, len(opts.Moods)),
		managed:      append([]string(nil), opts.Managed...),
		lastDynamics: -1,
		lastTension:  -1,
	}

	section, err := statemachine.New(opts.Section, append(opts.ControllerOptions, func(o *statemachine.Options) {
		o.OnChange = func(from, to string, forced bool) {
			c.pending = append(c.pending, stateChange{machine: "section", from: from, to: to, forced: forced})
		}
	})...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: section descriptor: %w", err)
	}
	c.section = section

	eras := make([]string, 0, len(opts.Moods))
	for era := range opts.Moods {
		eras = append(eras, era)
	}
	sort.Strings(eras)

	for _, era := range eras {
		ctrl, err := statemachine.New(opts.Moods[era], append(opts.ControllerOptions, func(o *statemachine.Options) {
			o.OnChange = func(from, to string, forced bool) {
				c.pending = append(c.pending, stateChange{machine: "mood", from: from, to: to, forced: forced})
			}
		})...)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: mood descriptor for era %q: %w", era, err)
		}
		c.moods[era] = ctrl
		if c.era == "" {
			c.era = era
		}
	}

	return c, nil
}

// Kind returns "conductor".
func (c *Conductor) Kind() string { return "conductor" }

// Manage adds an agent identifier to the managed set.
func (c *Conductor) Manage(ids ...string) {
	c.managed = append(c.managed, ids...)
}

// Section returns the section controller.
func (c *Conductor) Section() *statemachine.Controller { return c.section }

// Mood returns the active mood controller.
func (c *Conductor) Mood() *statemachine.Controller { return c.moods[c.era] }

// Perceive snapshots the shared signals plus the conductor's own structural
// state.
func (c *Conductor) Perceive(h core.AgentHandle) (core.Perception, error) {
	sig := h.Signals()
	beat, measure := sig.Beat()

	p := core.Perception{
		"activity": sig.Activity(),
		"zone":     sig.Zone(),
		"era":      sig.Era(),
		"beat":     beat,
		"measure":  measure,
		"section":  c.section.Current(),
	}
	if mood := c.Mood(); mood != nil {
		p["mood"] = mood.Current()
	}
	return p, nil
}

// OnMessage handles feedback from managed minds. An energy shift nudges the
// conductor's own energy drive; unknown types are ignored.
func (c *Conductor) OnMessage(h core.AgentHandle, m core.Message) {
	switch m.Type {
	case core.MsgEnergyShift:
		if v, ok := m.Payload["delta"].(float64); ok {
			h.Drives().Energy = core.Clamp01(h.Drives().Energy + v)
		}
	default:
		h.Logger().Debug("conductor ignoring message", "type", m.Type, "from", m.From)
	}
}

// Propose offers dynamics and tension corrections toward the active mood's
// characteristic targets. Priority grows with the distance between the target
// and the last published value, so a settled conductor proposes little.
func (c *Conductor) Propose(h core.AgentHandle, p core.Perception) []core.CandidateAction {
	mood := c.Mood()
	if mood == nil {
		return nil
	}
	chars := mood.Characteristics()

	var candidates []core.CandidateAction
	if target, ok := chars["dynamics"]; ok {
		priority := 1.0
		if c.lastDynamics >= 0 {
			priority = core.Clamp01(math.Abs(target-c.lastDynamics) * 2)
		}
		candidates = append(candidates, core.CandidateAction{
			Type:     "set_dynamics",
			Priority: priority,
			Params:   map[string]any{"value": target},
		})
	}
	if target, ok := chars["tension"]; ok {
		priority := 1.0
		if c.lastTension >= 0 {
			priority = core.Clamp01(math.Abs(target-c.lastTension) * 2)
		}
		candidates = append(candidates, core.CandidateAction{
			Type:     "set_tension",
			Priority: priority,
			Params:   map[string]any{"value": target},
		})
	}
	return candidates
}

// Execute publishes the directive for one selected action.
func (c *Conductor) Execute(h core.AgentHandle, a core.CandidateAction) (any, error) {
	value, ok := a.Params["value"].(float64)
	if !ok {
		return nil, fmt.Errorf("orchestrator: action %q missing numeric value", a.Type)
	}

	switch a.Type {
	case "set_dynamics":
		h.Publish(core.DirectiveSetDynamics, map[string]any{"value": value})
		c.lastDynamics = value
	case "set_tension":
		h.Publish(core.DirectiveSetTension, map[string]any{"value": value})
		c.lastTension = value
	default:
		return nil, fmt.Errorf("orchestrator: unknown action type %q", a.Type)
	}
	return value, nil
}

// Reward scores an executed action by its alignment with the active mood's
// characteristics, with a stability bonus when the recent action history is
// not thrashing between types.
func (c *Conductor) Reward(h core.AgentHandle, a core.CandidateAction, result any, p core.Perception) float64 {
	mood := c.Mood()
	if mood == nil {
		return 0.5
	}
	chars := mood.Characteristics()

	value, _ := result.(float64)
	var target float64
	switch a.Type {
	case "set_dynamics":
		target = chars["dynamics"]
	case "set_tension":
		target = chars["tension"]
	default:
		return 0.5
	}
	alignment := 1 - math.Abs(value-target)

	stability := 0.0
	history := h.ActionHistory()
	if n := len(history); n >= 2 {
		same := 0
		for _, rec := range history[maxInt(0, n-5):] {
			if rec.Action.Type == a.Type {
				same++
			}
		}
		// A few repetitions mean a settled target; constant flip-flop
		// between types earns nothing.
		if same >= 2 {
			stability = 0.2
		}
	}

	return core.Clamp01(0.8*alignment + stability)
}

// Tick follows the perceived era, steps both machines and flushes any state
// changes to the managed minds and the directive sinks.
func (c *Conductor) Tick(h core.AgentHandle, dt time.Duration) {
	era := h.Signals().Era()
	if era != c.era {
		if _, ok := c.moods[era]; ok {
			c.era = era
			h.Logger().Debug("conductor switched era", "era", era)
		}
	}

	activity := h.Signals().Activity()
	seconds := dt.Seconds()

	c.section.Step(seconds, activity)
	if mood := c.Mood(); mood != nil {
		mood.Step(seconds, activity)
	}

	c.flush(h)
}

// flush delivers pending state changes: a mailbox message per managed mind
// and a directive per change.
func (c *Conductor) flush(h core.AgentHandle) {
	for _, change := range c.pending {
		payload := map[string]any{
			"from":   change.from,
			"to":     change.to,
			"forced": change.forced,
		}

		var msgType string
		var directive core.DirectiveKind
		switch change.machine {
		case "section":
			msgType = core.MsgSectionChange
			directive = core.DirectiveSectionChange
			payload["section"] = change.to
		default:
			msgType = core.MsgMoodChange
			directive = core.DirectiveMoodChange
			payload["mood"] = change.to
			if mood := c.Mood(); mood != nil {
				payload["intensities"] = mood.Intensities()
				payload["characteristics"] = mood.Characteristics()
			}
		}

		for _, id := range c.managed {
			h.Send(id, msgType, payload)
		}
		h.Publish(directive, payload)
	}
	c.pending = c.pending[:0]
}

// MachineState exposes the section machine for persistence.
func (c *Conductor) MachineState() (string, float64) {
	return c.section.Current(), c.section.Dwell()
}

// RestoreMachineState rehydrates the section machine.
func (c *Conductor) RestoreMachineState(state string, dwell float64) error {
	return c.section.Restore(state, dwell)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
