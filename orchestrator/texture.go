package orchestrator

import (
	"fmt"
	"time"

	"github.com/hupe1980/mindmesh/core"
)

// TextureMind selects which sound-source kinds should be active. The kinds
// themselves are opaque palette entries; the mind only compares the per-kind
// intensity values pushed by the conductor's mood changes against what it has
// currently activated.
type TextureMind struct {
	core.BaseBehavior

	palette     []string
	active      map[string]bool
	intensities map[string]float64
	mood        string
}

// NewTextureMind creates a TextureMind over the given source-kind palette.
func NewTextureMind(palette []string) *TextureMind {
	return &TextureMind{
		palette:     append([]string(nil), palette...),
		active:      make(map[string]bool),
		intensities: make(map[string]float64),
	}
}

// Kind returns "texture".
func (t *TextureMind) Kind() string { return "texture" }

// Active reports whether the source kind is currently activated.
func (t *TextureMind) Active(kind string) bool { return t.active[kind] }

// Perceive snapshots activity, zone, the current mood and how many sources
// are active.
func (t *TextureMind) Perceive(h core.AgentHandle) (core.Perception, error) {
	sig := h.Signals()
	return core.Perception{
		"activity":     sig.Activity(),
		"zone":         sig.Zone(),
		"mood":         t.mood,
		"active_count": len(activeKinds(t.active)),
	}, nil
}

// OnMessage tracks mood changes from the conductor, adopting the per-kind
// intensity vector carried in the payload.
func (t *TextureMind) OnMessage(h core.AgentHandle, m core.Message) {
	switch m.Type {
	case core.MsgMoodChange:
		if mood, ok := m.Payload["mood"].(string); ok {
			t.mood = mood
		}
		if raw, ok := m.Payload["intensities"].(map[string]float64); ok {
			t.intensities = raw
		}
	case core.MsgSectionChange:
		// Section boundaries are a natural point to thin the texture.
		h.Drives().Focus = core.Clamp01(h.Drives().Focus + 0.1)
	}
}

// Propose offers activations for palette kinds whose mood intensity is high
// and deactivations for active kinds whose intensity has fallen away.
func (t *TextureMind) Propose(h core.AgentHandle, p core.Perception) []core.CandidateAction {
	var candidates []core.CandidateAction
	for _, kind := range t.palette {
		intensity := t.intensities[kind]
		switch {
		case !t.active[kind] && intensity > 0.3:
			candidates = append(candidates, core.CandidateAction{
				Type:     "activate_source",
				Priority: intensity,
				Params:   map[string]any{"kind": kind},
			})
		case t.active[kind] && intensity < 0.2:
			candidates = append(candidates, core.CandidateAction{
				Type:     "deactivate_source",
				Priority: 1 - intensity,
				Params:   map[string]any{"kind": kind},
			})
		}
	}
	return candidates
}

// Execute publishes the activation directive and updates the active set.
func (t *TextureMind) Execute(h core.AgentHandle, a core.CandidateAction) (any, error) {
	kind, ok := a.Params["kind"].(string)
	if !ok {
		return nil, fmt.Errorf("orchestrator: action %q missing source kind", a.Type)
	}

	switch a.Type {
	case "activate_source":
		t.active[kind] = true
		h.Publish(core.DirectiveActivateSource, map[string]any{"kind": kind})
	case "deactivate_source":
		delete(t.active, kind)
		h.Publish(core.DirectiveDeactivateSource, map[string]any{"kind": kind})
	default:
		return nil, fmt.Errorf("orchestrator: unknown action type %q", a.Type)
	}
	return kind, nil
}

// Reward scores activation against the mood intensity of the touched kind:
// activating a strongly wanted kind (or silencing an unwanted one) pays well.
func (t *TextureMind) Reward(h core.AgentHandle, a core.CandidateAction, result any, p core.Perception) float64 {
	kind, _ := result.(string)
	intensity := t.intensities[kind]

	switch a.Type {
	case "activate_source":
		return core.Clamp01(intensity)
	case "deactivate_source":
		return core.Clamp01(1 - intensity)
	default:
		return 0.5
	}
}

// Tick is unused; state only moves with messages and actions.
func (t *TextureMind) Tick(core.AgentHandle, time.Duration) {}

func activeKinds(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	return out
}
