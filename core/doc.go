// Package core provides the foundational domain types and interfaces used by
// MindMesh. It defines the core abstractions for:
//
//   - Behaviors (units of autonomous decision making driven by the runtime)
//   - Messages (immutable mailbox records exchanged between agents)
//   - Perceptions (snapshots of the shared numeric signal space)
//   - Candidate actions and recorded outcomes
//   - Directives (typed fire-and-forget notifications to synthesis/rendering)
//   - Pluggable signal sources and clocks
//
// The package intentionally keeps implementation concerns (mesh routing,
// runtime scheduling, learning) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core
