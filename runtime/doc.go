// Package runtime implements the generic per-agent life cycle: a shared
// periodic timer invokes a fixed pipeline (perceive, drain mailbox, decide,
// act, learn, decay, behavior hook) for every registered agent, independent
// of what that agent's behavior actually is.
//
// A single goroutine serializes all agent ticks, so each agent's internals
// (histories, learner, drives) are owned exclusively by the runtime and never
// need locking; the mesh is the only state touched across agents. Failures
// inside one agent's steps are caught and logged without disturbing the
// shared timer or the other agents.
//
// Tick() is public so tests can drive the pipeline with a manual clock
// instead of the real ticker.
package runtime
