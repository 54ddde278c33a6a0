package mesh

import (
	"fmt"
	"sync"

	"github.com/hupe1980/mindmesh/core"
	"github.com/hupe1980/mindmesh/logging"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// OutboundLogSize bounds the per-agent outbound log (most recent N).
	OutboundLogSize int
	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger
}

// Mesh is the process-wide directory mapping agent identifiers to records,
// each holding an inbound mailbox, topic subscriptions and a bounded outbound
// log. It provides direct send, broadcast and topic bookkeeping.
//
// Delivery semantics: name-addressed, at-most-once, best effort. A send to an
// unregistered identifier is a silent no-op (logged at debug level), never an
// error. Per (sender, receiver) pair, mailbox order equals send order.
//
// Concurrency: the identifier→record mapping is guarded by an RWMutex; each
// mailbox is guarded by its record's own mutex so an in-progress drain is
// atomic with respect to register/unregister/send.
type Mesh struct {
	mu      sync.RWMutex
	records map[string]*record

	outboundLogSize int
	logger          logging.Logger
}

type record struct {
	mu       sync.Mutex
	mailbox  []core.Message
	outbound []core.Message
	topics   map[string]struct{}
}

// New creates an empty Mesh with optional overrides.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{
		OutboundLogSize: 50,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Mesh{
		records:         make(map[string]*record),
		outboundLogSize: opts.OutboundLogSize,
		logger:          opts.Logger,
	}
}

// Register inserts an identifier into the directory, creating an empty
// mailbox. Registering an already-present identifier is an error.
func (m *Mesh) Register(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[id]; exists {
		return fmt.Errorf("agent %q already registered", id)
	}

	m.records[id] = &record{topics: make(map[string]struct{})}
	m.logger.Debug("mesh registered agent", "agent_id", id)

	return nil
}

// Unregister removes an identifier and releases its mailbox. Unknown
// identifiers are ignored. In-flight sends to the removed identifier become
// silent no-ops.
func (m *Mesh) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[id]; exists {
		delete(m.records, id)
		m.logger.Debug("mesh unregistered agent", "agent_id", id)
	}
}

// Has reports whether the identifier is registered.
func (m *Mesh) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[id]
	return ok
}

// IDs returns a snapshot of all registered identifiers (unordered).
func (m *Mesh) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	return ids
}

// Send appends a message to the target's mailbox and logs it on the sender's
// outbound log. It reports whether the target existed; a missing target is
// not an error.
func (m *Mesh) Send(from, to, msgType string, payload map[string]any) bool {
	msg := core.NewMessage(from, to, msgType, payload)

	m.mu.RLock()
	target, ok := m.records[to]
	sender := m.records[from]
	m.mu.RUnlock()

	if !ok {
		m.logger.Debug("mesh dropped message for unknown target", "from", from, "to", to, "type", msgType)
		return false
	}

	target.mu.Lock()
	target.mailbox = append(target.mailbox, msg)
	target.mu.Unlock()

	if sender != nil {
		sender.mu.Lock()
		sender.outbound = append(sender.outbound, msg)
		if n := len(sender.outbound) - m.outboundLogSize; n > 0 {
			sender.outbound = sender.outbound[n:]
		}
		sender.mu.Unlock()
	}

	return true
}

// Broadcast sends individually to every registered agent except the sender.
// It returns the number of mailboxes reached.
func (m *Mesh) Broadcast(from, msgType string, payload map[string]any) int {
	m.mu.RLock()
	targets := make([]string, 0, len(m.records))
	for id := range m.records {
		if id != from {
			targets = append(targets, id)
		}
	}
	m.mu.RUnlock()

	delivered := 0
	for _, id := range targets {
		if m.Send(from, id, msgType, payload) {
			delivered++
		}
	}
	return delivered
}

// Drain pops every message currently queued for the identifier, in arrival
// order, leaving the mailbox empty. Draining an unknown identifier returns
// nil.
func (m *Mesh) Drain(id string) []core.Message {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return nil
	}

	rec.mu.Lock()
	msgs := rec.mailbox
	rec.mailbox = nil
	rec.mu.Unlock()

	return msgs
}

// Pending returns the number of messages queued for the identifier.
func (m *Mesh) Pending(id string) int {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return 0
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.mailbox)
}

// Outbound returns a copy of the identifier's bounded outbound log, oldest
// first.
func (m *Mesh) Outbound(id string) []core.Message {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]core.Message, len(rec.outbound))
	copy(out, rec.outbound)
	return out
}

// Subscribe records topic interest on the agent. Subscriptions do not filter
// delivery; topic filtering is the receiving agent's responsibility when
// handling a message.
func (m *Mesh) Subscribe(id, topic string) {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return
	}

	rec.mu.Lock()
	rec.topics[topic] = struct{}{}
	rec.mu.Unlock()
}

// Unsubscribe removes topic interest from the agent.
func (m *Mesh) Unsubscribe(id, topic string) {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return
	}

	rec.mu.Lock()
	delete(rec.topics, topic)
	rec.mu.Unlock()
}

// IsSubscribed reports whether the agent has recorded interest in the topic.
func (m *Mesh) IsSubscribed(id, topic string) bool {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return false
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	_, subscribed := rec.topics[topic]
	return subscribed
}
