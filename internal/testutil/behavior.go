package testutil

import (
	"time"

	"github.com/hupe1980/mindmesh/core"
)

// StubBehavior is a scriptable core.Behavior for runtime tests. Unset
// function fields fall back to harmless defaults; received messages are
// recorded for assertions.
type StubBehavior struct {
	KindTag    string
	PerceiveFn func(h core.AgentHandle) (core.Perception, error)
	ProposeFn  func(h core.AgentHandle, p core.Perception) []core.CandidateAction
	ExecuteFn  func(h core.AgentHandle, a core.CandidateAction) (any, error)
	RewardFn   func(h core.AgentHandle, a core.CandidateAction, result any, p core.Perception) float64
	TickFn     func(h core.AgentHandle, dt time.Duration)

	Messages []core.Message
}

// Kind returns the configured tag, defaulting to "stub".
func (s *StubBehavior) Kind() string {
	if s.KindTag == "" {
		return "stub"
	}
	return s.KindTag
}

// Perceive runs the scripted perception, defaulting to an empty snapshot.
func (s *StubBehavior) Perceive(h core.AgentHandle) (core.Perception, error) {
	if s.PerceiveFn != nil {
		return s.PerceiveFn(h)
	}
	return core.Perception{}, nil
}

// OnMessage records the message.
func (s *StubBehavior) OnMessage(_ core.AgentHandle, m core.Message) {
	s.Messages = append(s.Messages, m)
}

// Propose runs the scripted proposal, defaulting to none.
func (s *StubBehavior) Propose(h core.AgentHandle, p core.Perception) []core.CandidateAction {
	if s.ProposeFn != nil {
		return s.ProposeFn(h, p)
	}
	return nil
}

// Execute runs the scripted execution, defaulting to a nil result.
func (s *StubBehavior) Execute(h core.AgentHandle, a core.CandidateAction) (any, error) {
	if s.ExecuteFn != nil {
		return s.ExecuteFn(h, a)
	}
	return nil, nil
}

// Reward runs the scripted reward, defaulting to neutral.
func (s *StubBehavior) Reward(h core.AgentHandle, a core.CandidateAction, result any, p core.Perception) float64 {
	if s.RewardFn != nil {
		return s.RewardFn(h, a, result, p)
	}
	return 0.5
}

// Tick runs the scripted hook, defaulting to nothing.
func (s *StubBehavior) Tick(h core.AgentHandle, dt time.Duration) {
	if s.TickFn != nil {
		s.TickFn(h, dt)
	}
}
