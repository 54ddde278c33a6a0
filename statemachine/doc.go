// Package statemachine implements the probabilistic, dwell-gated state
// machines the mind agents use to move between discrete musical states with
// smooth numeric interpolation.
//
// A Descriptor is static configuration: named states with characteristic
// vectors, legal successor lists, base weights and a dwell window. A
// Controller owns the runtime side: it accumulates dwell time, draws against
// a trigger probability that grows with dwell, external activity and a
// configured volatility, picks a successor by weighted draw, and consumes the
// resulting Transition step by step, easing the presented characteristics
// from source to target. Forced changes bypass the gating entirely and apply
// the target immediately.
//
// The machine runs indefinitely; there is no terminal state.
package statemachine
