package core

import (
	"time"

	"github.com/hupe1980/mindmesh/logging"
)

// Drives holds the bounded [0,1] scalars describing an agent's internal
// disposition. Energy and focus decay over time; confidence moves with the
// recent average reward; creativity biases exploration.
type Drives struct {
	Energy     float64 `json:"energy"`
	Focus      float64 `json:"focus"`
	Creativity float64 `json:"creativity"`
	Confidence float64 `json:"confidence"`
}

// DefaultDrives returns the baseline disposition for a fresh agent.
func DefaultDrives() Drives {
	return Drives{Energy: 1.0, Focus: 1.0, Creativity: 0.5, Confidence: 0.5}
}

// Clamp bounds every scalar to [0,1].
func (d *Drives) Clamp() {
	d.Energy = Clamp01(d.Energy)
	d.Focus = Clamp01(d.Focus)
	d.Creativity = Clamp01(d.Creativity)
	d.Confidence = Clamp01(d.Confidence)
}

// AgentHandle is the runtime-owned view a Behavior receives of its hosting
// agent. It exposes identity, mutable drives, messaging through the mesh and
// directive publication. Handles are only valid while the agent is
// registered; sends after deregistration are silent no-ops.
type AgentHandle interface {
	// ID returns the agent's stable identifier.
	ID() string
	// Kind returns the behavior-kind tag the agent was registered with.
	Kind() string
	// Drives returns the agent's mutable drive scalars.
	Drives() *Drives
	// Signals returns the shared signal source the agent perceives.
	Signals() SignalSource
	// Send delivers a message to another agent's mailbox (best effort).
	Send(to, msgType string, payload map[string]any)
	// Broadcast delivers a message to every other registered agent.
	Broadcast(msgType string, payload map[string]any)
	// Publish emits a directive to the attached sinks.
	Publish(kind DirectiveKind, params map[string]any)
	// ActionHistory returns a copy of the agent's bounded action history,
	// oldest first. The buffer is allocated at registration and never nil.
	ActionHistory() []ActionRecord
	// Logger returns a logger scoped to this agent.
	Logger() logging.Logger
}

// Behavior is the unit of agent-specific logic driven by the runtime's fixed
// pipeline. The runtime owns all bookkeeping (histories, learning tables,
// drives); a Behavior only supplies the domain steps.
//
// All methods are invoked from the runtime's single tick goroutine, never
// concurrently for the same agent. Implementations must not retain the
// handle beyond the call.
type Behavior interface {
	// Kind returns the behavior-kind tag (e.g. "conductor", "texture").
	Kind() string

	// Perceive reads the signals this behavior cares about into a snapshot.
	// Returning an error makes the runtime reuse the previous snapshot.
	Perceive(h AgentHandle) (Perception, error)

	// OnMessage handles one mailbox message. Called once per message during
	// the drain step, in arrival order.
	OnMessage(h AgentHandle, m Message)

	// Propose enumerates candidate actions for the current perception. An
	// empty slice means the agent does nothing this tick.
	Propose(h AgentHandle, p Perception) []CandidateAction

	// Execute carries out one selected action and returns its result.
	Execute(h AgentHandle, a CandidateAction) (any, error)

	// Reward computes the self-supervised [0,1] reward for an executed
	// action given its result and the perception it was chosen under.
	Reward(h AgentHandle, a CandidateAction, result any, p Perception) float64

	// Tick is the agent-specific hook invoked at the end of every pipeline
	// pass with the elapsed time since the previous pass.
	Tick(h AgentHandle, dt time.Duration)
}

// BaseBehavior provides no-op implementations of the optional Behavior hooks.
// Embed it to implement only the methods a behavior actually needs.
type BaseBehavior struct{}

// OnMessage ignores the message.
func (BaseBehavior) OnMessage(AgentHandle, Message) {}

// Propose returns no candidates.
func (BaseBehavior) Propose(AgentHandle, Perception) []CandidateAction { return nil }

// Execute returns a nil result.
func (BaseBehavior) Execute(AgentHandle, CandidateAction) (any, error) { return nil, nil }

// Reward returns a neutral reward.
func (BaseBehavior) Reward(AgentHandle, CandidateAction, any, Perception) float64 { return 0.5 }

// Tick does nothing.
func (BaseBehavior) Tick(AgentHandle, time.Duration) {}
