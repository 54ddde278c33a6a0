package runtime

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/hupe1980/mindmesh/core"
	"github.com/hupe1980/mindmesh/learning"
	"github.com/hupe1980/mindmesh/logging"
	"github.com/hupe1980/mindmesh/mesh"
)

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Interval is the shared tick period. Default 50ms.
	Interval time.Duration
	// ExplorationRate scales the explore probability
	// (rate × (1 − confidence), clamped to [0,1]).
	ExplorationRate float64
	// ExploitKeepRatio keeps every candidate scoring at least this fraction
	// of the top score when exploiting.
	ExploitKeepRatio float64
	// MaxActionsPerTick caps the exploit batch size.
	MaxActionsPerTick int
	// PerceptionHistorySize bounds the per-agent perception history.
	PerceptionHistorySize int
	// ActionHistorySize bounds the per-agent action history.
	ActionHistorySize int
	// EnergyDecayRate and FocusDecayRate drain the respective drives per
	// second of elapsed tick time.
	EnergyDecayRate float64
	FocusDecayRate  float64
	// ActionFailureReward is recorded for actions whose execution failed,
	// discouraging repetition through the normal learning path.
	ActionFailureReward float64
	// Clock supplies tick timestamps. Defaults to the system clock; tests
	// inject a manual clock.
	Clock core.Clock
	// Rand supplies the explore/exploit draws. Defaults to a time-seeded
	// source; inject a fixed seed for reproducible decisions.
	Rand *rand.Rand
	// Signals is the shared signal source agents perceive.
	Signals core.SignalSource
	// Sink receives directives published by agents.
	Sink core.DirectiveSink
	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger
	// LearnerOptions are applied to every agent's learner at registration.
	LearnerOptions []func(o *learning.Options)
}

// Runtime drives the fixed life-cycle pipeline for every registered agent on
// one shared periodic timer: perceive → drain mailbox → decide → act → learn
// → decay → behavior hook. A single goroutine serializes all agent ticks, so
// per-agent state needs no locking; the mesh is the only cross-agent state.
//
// Failure semantics: a panic or error inside any step of one agent's pipeline
// is caught and logged at that step; the remaining steps and the other agents
// still run, and the next tick proceeds normally.
type Runtime struct {
	mesh *mesh.Mesh

	mu     sync.RWMutex
	agents map[string]*Agent
	order  []string // registration order, keeps ticking deterministic

	interval              time.Duration
	explorationRate       float64
	exploitKeepRatio      float64
	maxActionsPerTick     int
	perceptionHistorySize int
	actionHistorySize     int
	energyDecayRate       float64
	focusDecayRate        float64
	actionFailureReward   float64

	clock          core.Clock
	rand           *rand.Rand
	signals        core.SignalSource
	sink           core.DirectiveSink
	logger         logging.Logger
	learnerOptions []func(o *learning.Options)

	lastTick time.Time

	runMu  sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// New constructs a Runtime bound to the given mesh with optional overrides.
func New(m *mesh.Mesh, optFns ...func(o *Options)) *Runtime {
	opts := Options{
		Interval:              50 * time.Millisecond,
		ExplorationRate:       0.3,
		ExploitKeepRatio:      0.7,
		MaxActionsPerTick:     3,
		PerceptionHistorySize: 20,
		ActionHistorySize:     50,
		EnergyDecayRate:       0.02,
		FocusDecayRate:        0.015,
		ActionFailureReward:   0.1,
		Clock:                 core.SystemClock{},
		Signals:               core.StaticSignals{EraTag: "default"},
		Sink:                  core.NoOpSink{},
		Logger:                logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Runtime{
		mesh:                  m,
		agents:                make(map[string]*Agent),
		interval:              opts.Interval,
		explorationRate:       opts.ExplorationRate,
		exploitKeepRatio:      opts.ExploitKeepRatio,
		maxActionsPerTick:     opts.MaxActionsPerTick,
		perceptionHistorySize: opts.PerceptionHistorySize,
		actionHistorySize:     opts.ActionHistorySize,
		energyDecayRate:       opts.EnergyDecayRate,
		focusDecayRate:        opts.FocusDecayRate,
		actionFailureReward:   opts.ActionFailureReward,
		clock:                 opts.Clock,
		rand:                  opts.Rand,
		signals:               opts.Signals,
		sink:                  opts.Sink,
		logger:                opts.Logger,
		learnerOptions:        opts.LearnerOptions,
	}
}

// Mesh returns the mesh this runtime routes through.
func (r *Runtime) Mesh() *mesh.Mesh { return r.mesh }

// Register creates an agent for the behavior under the given identifier,
// inserts it into the mesh and includes it in the tick loop from the next
// tick on. The action history buffer is allocated here so it is never nil.
func (r *Runtime) Register(id string, b core.Behavior) (*Agent, error) {
	if err := r.mesh.Register(id); err != nil {
		return nil, fmt.Errorf("runtime: %w", err)
	}

	a := &Agent{
		id:            id,
		kind:          b.Kind(),
		rt:            r,
		behavior:      b,
		learner:       learning.New(r.learnerOptions...),
		logger:        r.logger,
		drives:        core.DefaultDrives(),
		actionHistory: make([]core.ActionRecord, 0, r.actionHistorySize),
	}
	a.active.Store(true)

	r.mu.Lock()
	r.agents[id] = a
	r.order = append(r.order, id)
	r.mu.Unlock()

	r.logger.Debug("agent registered", "agent_id", id, "kind", a.kind)
	return a, nil
}

// Deregister removes the agent from the tick loop and the mesh, releasing
// its mailbox. Pending sends from other agents to this identifier become
// silent no-ops. Unknown identifiers are ignored.
func (r *Runtime) Deregister(id string) {
	r.mu.Lock()
	if a, ok := r.agents[id]; ok {
		a.active.Store(false)
		delete(r.agents, id)
		for i, oid := range r.order {
			if oid == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	r.mesh.Unregister(id)
	r.logger.Debug("agent deregistered", "agent_id", id)
}

// Agent returns the registered agent for the identifier.
func (r *Runtime) Agent(id string) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// Agents returns all registered agents in registration order.
func (r *Runtime) Agents() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Agent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.agents[id])
	}
	return out
}

// Pause halts the agent's pipeline while retaining its registration and
// mailbox; messages continue to queue until Resume or Deregister.
func (r *Runtime) Pause(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.agents[id]; ok {
		a.paused.Store(true)
	}
}

// Resume reactivates a paused agent from the next tick on.
func (r *Runtime) Resume(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.agents[id]; ok {
		a.paused.Store(false)
	}
}

// Start launches the shared ticker goroutine. It is an error to start a
// running runtime.
func (r *Runtime) Start() error {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.stopCh != nil {
		return fmt.Errorf("runtime: already running")
	}

	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.Tick()
			}
		}
	}(r.stopCh, r.doneCh)

	r.logger.Info("runtime started", "interval", r.interval)
	return nil
}

// Stop halts the shared ticker and waits for the in-flight tick to finish.
// Stopping a stopped runtime is a no-op.
func (r *Runtime) Stop() {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.stopCh == nil {
		return
	}

	close(r.stopCh)
	<-r.doneCh
	r.stopCh = nil
	r.doneCh = nil

	r.logger.Info("runtime stopped")
}

// Tick runs one pipeline pass for every registered agent in registration
// order. It is invoked by the ticker goroutine and may also be called
// directly for deterministic, virtual-time tests.
func (r *Runtime) Tick() {
	now := r.clock.Now()
	dt := r.interval
	if !r.lastTick.IsZero() {
		dt = now.Sub(r.lastTick)
	}
	r.lastTick = now

	r.mu.RLock()
	agents := make([]*Agent, 0, len(r.order))
	for _, id := range r.order {
		agents = append(agents, r.agents[id])
	}
	r.mu.RUnlock()

	for _, a := range agents {
		r.tickAgent(a, now, dt)
	}
}
