package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerceptionClone(t *testing.T) {
	p := Perception{"zone": "center", "activity": 0.5}
	c := p.Clone()
	c["activity"] = 0.9

	assert.Equal(t, 0.5, p["activity"])
	assert.Nil(t, Perception(nil).Clone())
}

func TestPerceptionDiff(t *testing.T) {
	prev := Perception{"zone": "center", "activity": 0.5, "beat": 3}
	next := Perception{"zone": "edge", "activity": 0.5000000001, "mood": "calm"}

	diff := next.Diff(prev)

	assert.Equal(t, "edge", diff["zone"], "changed value")
	assert.Equal(t, "calm", diff["mood"], "appeared key")
	require.Contains(t, diff, "beat")
	assert.Nil(t, diff["beat"], "disappeared keys map to nil")
	assert.NotContains(t, diff, "activity", "sub-epsilon jitter is not change")
}

func TestPerceptionDiffAgainstNil(t *testing.T) {
	p := Perception{"zone": "center"}
	diff := p.Diff(nil)
	assert.Equal(t, "center", diff["zone"])
}

func TestNewMessage(t *testing.T) {
	m := NewMessage("a", "b", MsgPing, map[string]any{"n": 1})

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "a", m.From)
	assert.Equal(t, "b", m.To)
	assert.Equal(t, MsgPing, m.Type)
	assert.False(t, m.Timestamp.IsZero())

	assert.NotEqual(t, m.ID, NewMessage("a", "b", MsgPing, nil).ID)
}

func TestDrivesClamp(t *testing.T) {
	d := Drives{Energy: 1.4, Focus: -0.2, Creativity: 0.5, Confidence: 2}
	d.Clamp()
	assert.Equal(t, Drives{Energy: 1, Focus: 0, Creativity: 0.5, Confidence: 1}, d)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-3))
	assert.Equal(t, 0.3, Clamp01(0.3))
	assert.Equal(t, 1.0, Clamp01(7))
}

func TestSimulatedSignalsAdvance(t *testing.T) {
	s := NewSimulatedSignals("organic")
	assert.Equal(t, "organic", s.Era())

	s.Advance(3, 4)
	beat, measure := s.Beat()
	assert.Equal(t, 3, beat)
	assert.Equal(t, 0, measure)

	s.Advance(6, 4)
	beat, measure = s.Beat()
	assert.Equal(t, 1, beat)
	assert.Equal(t, 2, measure)

	s.SetActivity(1.7)
	assert.Equal(t, 1.0, s.Activity(), "activity is clamped")
}

func TestSinkMuxFansOut(t *testing.T) {
	var a, b int
	mux := NewSinkMux(SinkFunc(func(Directive) { a++ }))
	mux.Attach(SinkFunc(func(Directive) { b++ }))

	mux.Publish(NewDirective(DirectiveSetDynamics, "test", nil))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestChannelSinkDropsWhenFull(t *testing.T) {
	sink := NewChannelSink(1)
	sink.Publish(NewDirective(DirectiveSetDynamics, "test", map[string]any{"value": 0.1}))
	sink.Publish(NewDirective(DirectiveSetDynamics, "test", map[string]any{"value": 0.2}))

	d := <-sink.C()
	assert.Equal(t, 0.1, d.Params["value"])

	select {
	case <-sink.C():
		t.Fatal("overflow directive must be dropped, not queued")
	default:
	}
}

func TestActionRecordSucceeded(t *testing.T) {
	assert.True(t, ActionRecord{}.Succeeded())
	assert.False(t, ActionRecord{Err: "boom"}.Succeeded())
}
