package runtime

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/mindmesh/core"
	"github.com/hupe1980/mindmesh/learning"
	"github.com/hupe1980/mindmesh/logging"
)

// PerceptionSnapshot is one entry of an agent's bounded perception history:
// the full snapshot plus the diff against the previous one.
type PerceptionSnapshot struct {
	Perception core.Perception
	Changes    map[string]any
	Timestamp  time.Time
}

// Agent is the runtime-owned record of one registered behavior: identity,
// drive scalars, bounded histories, the learner and pause state. Agents are
// created by Runtime.Register and destroyed only by explicit deregistration.
//
// Agent implements core.AgentHandle so behaviors can message peers and
// publish directives without seeing runtime internals.
type Agent struct {
	id       string
	kind     string
	rt       *Runtime
	behavior core.Behavior
	learner  *learning.Learner
	logger   logging.Logger

	drives core.Drives
	// active and paused are written from caller goroutines while the ticker
	// goroutine reads them, so they are atomic. All other agent state is
	// touched only by the tick loop.
	active atomic.Bool
	paused atomic.Bool

	lastPerception    core.Perception
	perceptionHistory []PerceptionSnapshot
	actionHistory     []core.ActionRecord

	lastTick time.Time
}

// ID returns the agent's stable identifier.
func (a *Agent) ID() string { return a.id }

// Kind returns the behavior-kind tag.
func (a *Agent) Kind() string { return a.kind }

// Drives returns the agent's mutable drive scalars.
func (a *Agent) Drives() *core.Drives { return &a.drives }

// Signals returns the shared signal source.
func (a *Agent) Signals() core.SignalSource { return a.rt.signals }

// Send delivers a message to another agent's mailbox, best effort.
func (a *Agent) Send(to, msgType string, payload map[string]any) {
	a.rt.mesh.Send(a.id, to, msgType, payload)
}

// Broadcast delivers a message to every other registered agent.
func (a *Agent) Broadcast(msgType string, payload map[string]any) {
	a.rt.mesh.Broadcast(a.id, msgType, payload)
}

// Publish emits a directive authored by this agent to the attached sink.
func (a *Agent) Publish(kind core.DirectiveKind, params map[string]any) {
	a.rt.sink.Publish(core.NewDirective(kind, a.id, params))
}

// Logger returns a logger scoped to this agent.
func (a *Agent) Logger() logging.Logger { return a.logger }

// Behavior returns the behavior driving this agent.
func (a *Agent) Behavior() core.Behavior { return a.behavior }

// Learner returns the agent's learning state.
func (a *Agent) Learner() *learning.Learner { return a.learner }

// Paused reports whether the agent's pipeline is halted. A paused agent keeps
// its registration and mailbox; messages continue to queue until resumed or
// deregistered.
func (a *Agent) Paused() bool { return a.paused.Load() }

// LastPerception returns the most recent perception snapshot (possibly nil
// before the first successful perceive).
func (a *Agent) LastPerception() core.Perception { return a.lastPerception.Clone() }

// PerceptionHistory returns a copy of the bounded perception history, oldest
// first.
func (a *Agent) PerceptionHistory() []PerceptionSnapshot {
	out := make([]PerceptionSnapshot, len(a.perceptionHistory))
	copy(out, a.perceptionHistory)
	return out
}

// ActionHistory returns a copy of the bounded action history, oldest first.
// The buffer is allocated at registration, so it is never nil.
func (a *Agent) ActionHistory() []core.ActionRecord {
	out := make([]core.ActionRecord, len(a.actionHistory))
	copy(out, a.actionHistory)
	return out
}

func (a *Agent) pushPerception(s PerceptionSnapshot, limit int) {
	a.perceptionHistory = append(a.perceptionHistory, s)
	if n := len(a.perceptionHistory) - limit; n > 0 {
		a.perceptionHistory = a.perceptionHistory[n:]
	}
}

func (a *Agent) pushAction(rec core.ActionRecord, limit int) {
	a.actionHistory = append(a.actionHistory, rec)
	if n := len(a.actionHistory) - limit; n > 0 {
		a.actionHistory = a.actionHistory[n:]
	}
}
