// Package mesh implements the message mesh: a process-wide directory mapping
// agent identifiers to mailbox records with direct send, broadcast and topic
// bookkeeping.
//
// The mesh is intentionally dumb plumbing. It guarantees at-most-once,
// per-sender-ordered delivery into a mailbox and nothing more: no retries, no
// acknowledgements, no topic filtering. A send to an unknown identifier is a
// silent no-op so agents can be unregistered mid-tick without poisoning their
// peers.
//
// The mesh is constructed explicitly and dependency-injected into the runtime
// and every agent rather than living as ambient global state, keeping
// lifetime and test isolation explicit.
package mesh
