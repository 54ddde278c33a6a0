package mesh

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndUnregister(t *testing.T) {
	m := New()

	require.NoError(t, m.Register("a"))
	assert.True(t, m.Has("a"))

	err := m.Register("a")
	assert.Error(t, err, "duplicate registration must fail")

	m.Unregister("a")
	assert.False(t, m.Has("a"))

	// Unknown identifiers are ignored.
	m.Unregister("ghost")
}

func TestSendFIFOPerSenderReceiverPair(t *testing.T) {
	m := New()
	require.NoError(t, m.Register("a"))
	require.NoError(t, m.Register("b"))

	for i := 1; i <= 3; i++ {
		m.Send("a", "b", fmt.Sprintf("m%d", i), nil)
	}

	msgs := m.Drain("b")
	require.Len(t, msgs, 3)
	assert.Equal(t, "m1", msgs[0].Type)
	assert.Equal(t, "m2", msgs[1].Type)
	assert.Equal(t, "m3", msgs[2].Type)
	for _, msg := range msgs {
		assert.Equal(t, "a", msg.From)
		assert.Equal(t, "b", msg.To)
	}

	assert.Empty(t, m.Drain("b"), "drain must leave the mailbox empty")
}

func TestSendToUnknownTargetIsSilentNoOp(t *testing.T) {
	m := New()
	require.NoError(t, m.Register("a"))

	assert.NotPanics(t, func() {
		delivered := m.Send("a", "gone", "ping", nil)
		assert.False(t, delivered)
	})
}

func TestUnregisterWithPendingSender(t *testing.T) {
	m := New()
	require.NoError(t, m.Register("a"))
	require.NoError(t, m.Register("b"))

	m.Send("b", "a", "ping", nil)
	m.Unregister("a")

	// The queued message died with the mailbox; further sends are dropped.
	assert.NotPanics(t, func() {
		assert.False(t, m.Send("b", "a", "ping", nil))
	})
	assert.Zero(t, m.Pending("a"))
}

func TestBroadcastExcludesSender(t *testing.T) {
	m := New()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.Register(id))
	}

	delivered := m.Broadcast("a", "tick", map[string]any{"n": 1})
	assert.Equal(t, 2, delivered)

	assert.Zero(t, m.Pending("a"))
	assert.Equal(t, 1, m.Pending("b"))
	assert.Equal(t, 1, m.Pending("c"))
}

func TestOutboundLogIsBounded(t *testing.T) {
	m := New(func(o *Options) { o.OutboundLogSize = 3 })
	require.NoError(t, m.Register("a"))
	require.NoError(t, m.Register("b"))

	for i := 0; i < 5; i++ {
		m.Send("a", "b", fmt.Sprintf("m%d", i), nil)
	}

	out := m.Outbound("a")
	require.Len(t, out, 3)
	assert.Equal(t, "m2", out[0].Type, "oldest entries are evicted first")
	assert.Equal(t, "m4", out[2].Type)
}

func TestSubscriptions(t *testing.T) {
	m := New()
	require.NoError(t, m.Register("a"))

	m.Subscribe("a", "mood")
	assert.True(t, m.IsSubscribed("a", "mood"))
	assert.False(t, m.IsSubscribed("a", "section"))

	m.Unsubscribe("a", "mood")
	assert.False(t, m.IsSubscribed("a", "mood"))

	// Subscriptions on unknown agents are silently ignored.
	m.Subscribe("ghost", "mood")
	assert.False(t, m.IsSubscribed("ghost", "mood"))
}

func TestDrainUnknownReturnsNil(t *testing.T) {
	m := New()
	assert.Nil(t, m.Drain("ghost"))
}
