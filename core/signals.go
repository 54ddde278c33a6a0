package core

import "sync"

// SignalSource exposes the abstract inbound signals the core reads each tick:
// the discretized input zone, a continuous [0,1] activity value, the current
// era tag (selects which state-machine descriptor applies) and raw timing
// counters from an external clock. Implementations are provided by the input
// and timing layers; tests and the CLI use SimulatedSignals.
type SignalSource interface {
	// Zone returns the current discretized input-zone identifier.
	Zone() string
	// Activity returns the continuous [0,1] activity/energy value.
	Activity() float64
	// Era returns the current era/mode tag.
	Era() string
	// Beat returns the current beat and measure counters.
	Beat() (beat, measure int)
}

// StaticSignals is an immutable SignalSource, handy for defaults.
type StaticSignals struct {
	ZoneID      string
	ActivityVal float64
	EraTag      string
	BeatCount   int
	MeasureNum  int
}

// Zone returns the configured zone.
func (s StaticSignals) Zone() string { return s.ZoneID }

// Activity returns the configured activity value.
func (s StaticSignals) Activity() float64 { return s.ActivityVal }

// Era returns the configured era tag.
func (s StaticSignals) Era() string { return s.EraTag }

// Beat returns the configured beat and measure counters.
func (s StaticSignals) Beat() (int, int) { return s.BeatCount, s.MeasureNum }

// SimulatedSignals is a mutable, goroutine-safe SignalSource used by the CLI
// and by tests to drive agents without real gesture input.
type SimulatedSignals struct {
	mu       sync.RWMutex
	zone     string
	activity float64
	era      string
	beat     int
	measure  int
}

// NewSimulatedSignals creates a SimulatedSignals with the given era tag.
func NewSimulatedSignals(era string) *SimulatedSignals {
	return &SimulatedSignals{era: era}
}

// Zone returns the current zone.
func (s *SimulatedSignals) Zone() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zone
}

// Activity returns the current activity value.
func (s *SimulatedSignals) Activity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activity
}

// Era returns the current era tag.
func (s *SimulatedSignals) Era() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.era
}

// Beat returns the current beat and measure counters.
func (s *SimulatedSignals) Beat() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.beat, s.measure
}

// SetZone updates the zone identifier.
func (s *SimulatedSignals) SetZone(zone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zone = zone
}

// SetActivity updates the activity value. Values outside [0,1] are clamped.
func (s *SimulatedSignals) SetActivity(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = Clamp01(v)
}

// SetEra updates the era tag.
func (s *SimulatedSignals) SetEra(era string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.era = era
}

// Advance moves the beat counter forward, rolling into measures of the given
// length.
func (s *SimulatedSignals) Advance(beats, beatsPerMeasure int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beat += beats
	if beatsPerMeasure > 0 {
		s.measure += s.beat / beatsPerMeasure
		s.beat %= beatsPerMeasure
	}
}

// Clamp01 clamps v to the closed interval [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
