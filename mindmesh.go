// Package mindmesh provides a high-level façade over the agent runtime and
// its coordination substrate (mesh, learning, state machines) enabling rapid
// construction of the instrument's mind ensemble. Most applications interact
// with this package by:
//  1. Creating a MindMesh via New() (optionally overriding descriptors,
//     signals, sinks and the snapshot store)
//  2. Attaching a DirectiveSink for the synthesis/rendering layers
//  3. Calling Start() and letting the shared timer drive the minds
//
// The façade wires a Conductor plus the TextureMind and DynamicsMind
// satellites; additional minds can be registered and placed under the
// conductor's management. All defaults are safe for local development and
// testing; production deployments typically supply a durable snapshot store
// and a structured logger.
package mindmesh

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/hupe1980/mindmesh/config"
	"github.com/hupe1980/mindmesh/core"
	"github.com/hupe1980/mindmesh/logging"
	"github.com/hupe1980/mindmesh/mesh"
	"github.com/hupe1980/mindmesh/orchestrator"
	"github.com/hupe1980/mindmesh/persist"
	"github.com/hupe1980/mindmesh/runtime"
	"github.com/hupe1980/mindmesh/statemachine"
)

// Default agent identifiers for the built-in ensemble.
const (
	ConductorID = "conductor"
	TextureID   = "texture"
	DynamicsID  = "dynamics"
)

// Options configures the MindMesh instance.
type Options struct {
	// Interval is the shared tick period.
	Interval time.Duration
	// ExplorationRate scales the runtime's explore probability.
	ExplorationRate float64
	// MaxActionsPerTick caps the exploit batch size.
	MaxActionsPerTick int
	// Volatility scales every state machine's trigger probability.
	Volatility float64
	// Seed fixes the random source for reproducible sessions. Zero seeds
	// from the wall clock.
	Seed int64

	// Section, Moods and Energy override the built-in descriptors.
	Section *statemachine.Descriptor
	Moods   map[string]*statemachine.Descriptor
	Energy  *statemachine.Descriptor
	// Palette lists the opaque sound-source kinds the TextureMind manages.
	Palette []string

	// Signals is the shared signal source (defaults to a static "organic"
	// era with zero activity).
	Signals core.SignalSource
	// Sink receives emitted directives (defaults to a fan-out mux so
	// subscribers can be attached later).
	Sink core.DirectiveSink
	// SnapshotStore persists learning state across sessions. Nil disables
	// persistence.
	SnapshotStore persist.Store
	// Clock supplies tick timestamps; tests inject a manual clock.
	Clock core.Clock
	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger
}

// MindMesh is the high-level façade aggregating the mesh, the runtime and the
// built-in mind ensemble.
type MindMesh struct {
	mesh      *mesh.Mesh
	runtime   *runtime.Runtime
	conductor *orchestrator.Conductor
	mux       *core.SinkMux
	store     persist.Store
	logger    logging.Logger
}

// New creates a MindMesh with the built-in ensemble wired and registered.
func New(optFns ...func(o *Options)) (*MindMesh, error) {
	opts := Options{
		Interval:          50 * time.Millisecond,
		ExplorationRate:   0.3,
		MaxActionsPerTick: 3,
		Volatility:        0.5,
		Palette:           []string{"pad", "drone", "plucks", "percuss"},
		Signals:           core.StaticSignals{EraTag: "organic"},
		Logger:            logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	mux := core.NewSinkMux()
	if opts.Sink != nil {
		mux.Attach(opts.Sink)
	}

	bus := mesh.New(func(o *mesh.Options) {
		o.Logger = opts.Logger
	})

	rt := runtime.New(bus, func(o *runtime.Options) {
		o.Interval = opts.Interval
		o.ExplorationRate = opts.ExplorationRate
		o.MaxActionsPerTick = opts.MaxActionsPerTick
		o.Rand = rng
		o.Signals = opts.Signals
		o.Sink = mux
		o.Logger = opts.Logger
		if opts.Clock != nil {
			o.Clock = opts.Clock
		}
	})

	ctrlOpts := func(o *statemachine.Options) {
		o.Volatility = opts.Volatility
		o.Rand = rng
		o.Logger = opts.Logger
	}

	conductor, err := orchestrator.NewConductor(func(o *orchestrator.ConductorOptions) {
		o.Section = opts.Section
		o.Moods = opts.Moods
		o.Managed = []string{TextureID, DynamicsID}
		o.ControllerOptions = []func(o *statemachine.Options){ctrlOpts}
	})
	if err != nil {
		return nil, err
	}

	texture := orchestrator.NewTextureMind(opts.Palette)

	dynamics, err := orchestrator.NewDynamicsMind(opts.Energy, ConductorID, ctrlOpts)
	if err != nil {
		return nil, err
	}

	for _, reg := range []struct {
		id       string
		behavior core.Behavior
	}{
		{ConductorID, conductor},
		{TextureID, texture},
		{DynamicsID, dynamics},
	} {
		if _, err := rt.Register(reg.id, reg.behavior); err != nil {
			return nil, err
		}
	}

	return &MindMesh{
		mesh:      bus,
		runtime:   rt,
		conductor: conductor,
		mux:       mux,
		store:     opts.SnapshotStore,
		logger:    opts.Logger,
	}, nil
}

// NewFromConfig creates a MindMesh from a validated config document.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*MindMesh, error) {
	base := func(o *Options) {
		o.Interval = cfg.Runtime.Interval()
		o.ExplorationRate = cfg.Runtime.ExplorationRate
		o.MaxActionsPerTick = cfg.Runtime.MaxActionsPerTick
		o.Volatility = cfg.Runtime.Volatility
		if cfg.Section != nil {
			o.Section = cfg.Section
		}
		if len(cfg.Moods) > 0 {
			o.Moods = cfg.Moods
		}
		if cfg.Energy != nil {
			o.Energy = cfg.Energy
		}
		if len(cfg.Palette) > 0 {
			o.Palette = cfg.Palette
		}
	}
	return New(append([]func(o *Options){base}, optFns...)...)
}

// Start restores persisted learning state (if a store is configured) and
// launches the shared timer.
func (m *MindMesh) Start() error {
	if m.store != nil {
		snapshots, err := m.store.Load()
		if err != nil {
			return fmt.Errorf("mindmesh: load snapshots: %w", err)
		}
		persist.Restore(m.runtime, snapshots)
	}
	return m.runtime.Start()
}

// Stop halts the shared timer and, when a store is configured, persists the
// current learning state.
func (m *MindMesh) Stop() error {
	m.runtime.Stop()
	if m.store != nil {
		if err := m.store.Save(persist.Capture(m.runtime)); err != nil {
			return fmt.Errorf("mindmesh: save snapshots: %w", err)
		}
	}
	return nil
}

// Subscribe attaches a directive sink; synthesis and rendering layers each
// attach their own.
func (m *MindMesh) Subscribe(sink core.DirectiveSink) { m.mux.Attach(sink) }

// RegisterMind registers an additional behavior and places it under the
// conductor's management.
func (m *MindMesh) RegisterMind(id string, b core.Behavior) (*runtime.Agent, error) {
	a, err := m.runtime.Register(id, b)
	if err != nil {
		return nil, err
	}
	m.conductor.Manage(id)
	return a, nil
}

// Runtime returns the underlying agent runtime.
func (m *MindMesh) Runtime() *runtime.Runtime { return m.runtime }

// Mesh returns the underlying message mesh.
func (m *MindMesh) Mesh() *mesh.Mesh { return m.mesh }

// Conductor returns the orchestrating behavior.
func (m *MindMesh) Conductor() *orchestrator.Conductor { return m.conductor }
