package learning

import (
	"time"

	"github.com/hupe1980/mindmesh/core"
)

// Experience is one recorded (context, action, reward) triple.
type Experience struct {
	Context    string    `json:"context"`
	ActionType string    `json:"action_type"`
	Reward     float64   `json:"reward"`
	Timestamp  time.Time `json:"timestamp"`
}

// PatternStat tracks how often an action type was taken in a hashed context
// and the running average reward observed there. Only high-reward experiences
// are folded in, so a hit means "this exact situation previously worked with
// this action".
type PatternStat struct {
	Count     int     `json:"count"`
	AvgReward float64 `json:"avg_reward"`
}

// State is the serializable snapshot of a learner's long-lived structures,
// exposed for the persist package.
type State struct {
	Preferences map[string]float64     `json:"preferences"`
	Patterns    map[string]PatternStat `json:"patterns"`
}

// Options holds configuration overrides passed to New().
type Options struct {
	// Capacity bounds the experience buffer; oldest entries are evicted.
	Capacity int
	// HighRewardThreshold gates pattern-table folding.
	HighRewardThreshold float64
	// RecentWindow is the experience-tail length used for the recent average
	// reward that drives confidence adjustment.
	RecentWindow int
}

// Learner converts (perception, action, outcome) triples into future decision
// bias. Both long-lived structures grow unbounded in key count but are capped
// by the bounded experience buffer that feeds them.
//
// Not goroutine-safe: a learner is owned by exactly one agent and touched
// only from the runtime's tick goroutine.
type Learner struct {
	prefs       map[string]float64
	patterns    map[string]PatternStat
	experiences []Experience

	capacity            int
	highRewardThreshold float64
	recentWindow        int
}

// New creates a Learner with optional overrides.
func New(optFns ...func(o *Options)) *Learner {
	opts := Options{
		Capacity:            200,
		HighRewardThreshold: 0.7,
		RecentWindow:        20,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Learner{
		prefs:               make(map[string]float64),
		patterns:            make(map[string]PatternStat),
		capacity:            opts.Capacity,
		highRewardThreshold: opts.HighRewardThreshold,
		recentWindow:        opts.RecentWindow,
	}
}

func patternKey(ctxKey, actionType string) string { return ctxKey + "|" + actionType }

// Record folds one experience into the learner. Every experience updates the
// per-action-type preference with an exponential moving average
// (new = old×0.8 + reward×0.2); only experiences above the high-reward
// threshold reach the pattern table.
func (l *Learner) Record(ctxKey, actionType string, reward float64, ts time.Time) {
	reward = core.Clamp01(reward)

	l.experiences = append(l.experiences, Experience{
		Context:    ctxKey,
		ActionType: actionType,
		Reward:     reward,
		Timestamp:  ts,
	})
	if n := len(l.experiences) - l.capacity; n > 0 {
		l.experiences = l.experiences[n:]
	}

	if old, ok := l.prefs[actionType]; ok {
		l.prefs[actionType] = old*0.8 + reward*0.2
	} else {
		l.prefs[actionType] = reward
	}

	if reward >= l.highRewardThreshold {
		key := patternKey(ctxKey, actionType)
		stat := l.patterns[key]
		stat.AvgReward = (stat.AvgReward*float64(stat.Count) + reward) / float64(stat.Count+1)
		stat.Count++
		l.patterns[key] = stat
	}
}

// Preference returns the smoothed average reward for an action type, or a
// neutral 0.5 for never-seen types.
func (l *Learner) Preference(actionType string) float64 {
	if v, ok := l.prefs[actionType]; ok {
		return v
	}
	return 0.5
}

// Pattern looks up the pattern table for a hashed context and action type.
func (l *Learner) Pattern(ctxKey, actionType string) (PatternStat, bool) {
	stat, ok := l.patterns[patternKey(ctxKey, actionType)]
	return stat, ok
}

// Score combines the behavior's own priority with the learned preference and
// any pattern-table hit for the hashed context. All inputs and the result are
// in [0,1].
func (l *Learner) Score(ctxKey string, a core.CandidateAction) float64 {
	pattern := 0.5
	if stat, ok := l.Pattern(ctxKey, a.Type); ok {
		pattern = stat.AvgReward
	}
	score := 0.5*core.Clamp01(a.Priority) + 0.3*l.Preference(a.Type) + 0.2*pattern
	return core.Clamp01(score)
}

// RecentAverageReward returns the mean reward over the experience-buffer
// tail, or a neutral 0.5 when no experience has been recorded yet.
func (l *Learner) RecentAverageReward() float64 {
	n := len(l.experiences)
	if n == 0 {
		return 0.5
	}
	window := l.recentWindow
	if window > n {
		window = n
	}
	sum := 0.0
	for _, e := range l.experiences[n-window:] {
		sum += e.Reward
	}
	return sum / float64(window)
}

// ExperienceCount returns the number of buffered experiences.
func (l *Learner) ExperienceCount() int { return len(l.experiences) }

// Snapshot returns a deep copy of the learner's long-lived structures.
func (l *Learner) Snapshot() State {
	s := State{
		Preferences: make(map[string]float64, len(l.prefs)),
		Patterns:    make(map[string]PatternStat, len(l.patterns)),
	}
	for k, v := range l.prefs {
		s.Preferences[k] = v
	}
	for k, v := range l.patterns {
		s.Patterns[k] = v
	}
	return s
}

// Restore replaces the learner's long-lived structures with the snapshot.
// The experience buffer is not part of the persisted shape and is left
// untouched.
func (l *Learner) Restore(s State) {
	l.prefs = make(map[string]float64, len(s.Preferences))
	for k, v := range s.Preferences {
		l.prefs[k] = core.Clamp01(v)
	}
	l.patterns = make(map[string]PatternStat, len(s.Patterns))
	for k, v := range s.Patterns {
		l.patterns[k] = v
	}
}
