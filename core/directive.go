package core

import (
	"sync"
	"time"
)

// DirectiveKind enumerates the typed notifications the core pushes to the
// synthesis and rendering layers. The core has no knowledge of how they are
// realized.
type DirectiveKind string

const (
	// DirectiveActivateSource asks the synthesis layer to activate a sound
	// source of the kind named in Params["kind"].
	DirectiveActivateSource DirectiveKind = "source.activate"
	// DirectiveDeactivateSource asks the synthesis layer to deactivate a
	// sound source of the kind named in Params["kind"].
	DirectiveDeactivateSource DirectiveKind = "source.deactivate"
	// DirectiveSetDynamics sets the global dynamics level Params["value"].
	DirectiveSetDynamics DirectiveKind = "dynamics.set"
	// DirectiveSetTension sets the global tension level Params["value"].
	DirectiveSetTension DirectiveKind = "tension.set"
	// DirectiveSectionChange announces a musical section transition to
	// Params["section"].
	DirectiveSectionChange DirectiveKind = "section.change"
	// DirectiveMoodChange announces a mood transition to Params["mood"].
	DirectiveMoodChange DirectiveKind = "mood.change"
)

// Directive is a fire-and-forget notification emitted by an agent. External
// subsystems subscribe through a DirectiveSink; delivery failures are not
// surfaced to the emitting agent.
type Directive struct {
	Kind      DirectiveKind  `json:"kind"`
	Source    string         `json:"source"`
	Params    map[string]any `json:"params,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewDirective creates a directive authored by source.
func NewDirective(kind DirectiveKind, source string, params map[string]any) Directive {
	return Directive{Kind: kind, Source: source, Params: params, Timestamp: time.Now().UTC()}
}

// DirectiveSink receives directives emitted by agents. Implementations must
// not block; slow consumers should buffer internally.
type DirectiveSink interface {
	Publish(d Directive)
}

// SinkFunc adapts a function to the DirectiveSink interface.
type SinkFunc func(d Directive)

// Publish invokes the wrapped function.
func (f SinkFunc) Publish(d Directive) { f(d) }

// NoOpSink discards all directives. Used as the default when no synthesis or
// rendering layer is attached.
type NoOpSink struct{}

// Publish discards the directive.
func (NoOpSink) Publish(Directive) {}

// SinkMux fans a directive out to every attached sink. Safe for concurrent
// Attach/Publish.
type SinkMux struct {
	mu    sync.RWMutex
	sinks []DirectiveSink
}

// NewSinkMux creates an empty fan-out sink.
func NewSinkMux(sinks ...DirectiveSink) *SinkMux {
	return &SinkMux{sinks: sinks}
}

// Attach adds a sink to the fan-out set.
func (m *SinkMux) Attach(s DirectiveSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, s)
}

// Publish delivers d to every attached sink in attach order.
func (m *SinkMux) Publish(d Directive) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sinks {
		s.Publish(d)
	}
}

// ChannelSink delivers directives to a channel, dropping when the buffer is
// full so a stalled consumer can never block an agent tick.
type ChannelSink struct {
	ch chan Directive
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan Directive, buffer)}
}

// C returns the receive side of the sink.
func (s *ChannelSink) C() <-chan Directive { return s.ch }

// Publish enqueues d, dropping it if the buffer is full.
func (s *ChannelSink) Publish(d Directive) {
	select {
	case s.ch <- d:
	default:
	}
}
