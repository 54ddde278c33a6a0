package core

import "time"

// Clock abstracts wall-clock access so the runtime and state machines can be
// driven by virtual time in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
