// Package config loads and validates the instrument's runtime tuning and
// state-machine descriptors from YAML, and hot-reloads descriptor files with
// an fsnotify watcher.
//
// Descriptors are validated at load time; consumers never see a config whose
// invariants do not hold. Duck-typed, defensively accessed configuration is
// deliberately avoided.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/mindmesh/statemachine"
)

// RuntimeConfig tunes the agent runtime.
type RuntimeConfig struct {
	// IntervalMS is the shared tick period in milliseconds.
	IntervalMS int `yaml:"interval_ms"`
	// ExplorationRate scales the runtime's explore probability.
	ExplorationRate float64 `yaml:"exploration_rate"`
	// MaxActionsPerTick caps the exploit batch size.
	MaxActionsPerTick int `yaml:"max_actions_per_tick"`
	// Volatility scales every state machine's trigger probability.
	Volatility float64 `yaml:"volatility"`
}

// Interval returns the tick period as a duration.
func (r RuntimeConfig) Interval() time.Duration {
	return time.Duration(r.IntervalMS) * time.Millisecond
}

// SignalsConfig seeds the simulated signal source used by the CLI. Editing
// these values in a watched config file steers a running session.
type SignalsConfig struct {
	// Era selects which mood descriptor applies.
	Era string `yaml:"era"`
	// Activity is the baseline [0,1] activity level.
	Activity float64 `yaml:"activity"`
	// Zone is the simulated input-zone identifier.
	Zone string `yaml:"zone"`
}

// Config is the root configuration document.
type Config struct {
	Runtime RuntimeConfig                       `yaml:"runtime"`
	Signals SignalsConfig                       `yaml:"signals"`
	Section *statemachine.Descriptor            `yaml:"section"`
	Moods   map[string]*statemachine.Descriptor `yaml:"moods"`
	Energy  *statemachine.Descriptor            `yaml:"energy"`
	Palette []string                            `yaml:"palette"`
}

// Default returns the baseline configuration used when a field is absent.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			IntervalMS:        50,
			ExplorationRate:   0.3,
			MaxActionsPerTick: 3,
			Volatility:        0.5,
		},
		Signals: SignalsConfig{
			Era:      "organic",
			Activity: 0.5,
		},
	}
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML config bytes. Absent fields keep their
// defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes and checks the configuration: state names are filled
// from their map keys and every descriptor must satisfy its structural
// invariants.
func (c *Config) Validate() error {
	if c.Runtime.IntervalMS <= 0 {
		return fmt.Errorf("config: runtime.interval_ms must be positive, got %d", c.Runtime.IntervalMS)
	}
	if c.Runtime.ExplorationRate < 0 || c.Runtime.ExplorationRate > 1 {
		return fmt.Errorf("config: runtime.exploration_rate must be in [0,1], got %v", c.Runtime.ExplorationRate)
	}
	if c.Runtime.MaxActionsPerTick <= 0 {
		return fmt.Errorf("config: runtime.max_actions_per_tick must be positive, got %d", c.Runtime.MaxActionsPerTick)
	}
	if c.Signals.Activity < 0 || c.Signals.Activity > 1 {
		return fmt.Errorf("config: signals.activity must be in [0,1], got %v", c.Signals.Activity)
	}

	if c.Section != nil {
		if err := normalize(c.Section, "section"); err != nil {
			return err
		}
	}
	if c.Energy != nil {
		if err := normalize(c.Energy, "energy"); err != nil {
			return err
		}
	}
	for era, desc := range c.Moods {
		if desc == nil {
			return fmt.Errorf("config: mood %q is empty", era)
		}
		if err := normalize(desc, "mood:"+era); err != nil {
			return err
		}
	}
	return nil
}

func normalize(desc *statemachine.Descriptor, fallbackName string) error {
	if desc.Name == "" {
		desc.Name = fallbackName
	}
	for key, st := range desc.States {
		if st.Name == "" {
			st.Name = key
			desc.States[key] = st
		}
	}
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
