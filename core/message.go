package core

import (
	"time"

	"github.com/google/uuid"
)

// Message is the unit of communication between agents. After creation it
// should be treated as immutable: the mesh appends it to exactly one mailbox
// and the receiving agent consumes it exactly once during its drain step.
//
// Ordering: for two messages sent by the same source to the same target,
// mailbox order equals send order. No ordering guarantee exists across
// different sources.
type Message struct {
	ID        string         `json:"id"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewMessage creates a message from 'from' to 'to' with the given type and
// payload. The payload map is referenced, not copied; senders must not mutate
// it after the call.
func NewMessage(from, to, msgType string, payload map[string]any) Message {
	return Message{
		ID:        NewID(),
		From:      from,
		To:        to,
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for messages and agents.
func NewID() string { return uuid.NewString() }

// Well-known message types exchanged between the conductor and its managed
// minds. Receivers are free to ignore types they do not understand.
const (
	MsgSectionChange = "section.change"
	MsgMoodChange    = "mood.change"
	MsgEnergyShift   = "energy.shift"
	MsgPing          = "ping"
)
