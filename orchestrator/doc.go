// Package orchestrator provides the built-in mind behaviors: the Conductor,
// a distinguished agent owning the musical-structure state machines (section
// and per-era mood) and a set of managed minds it directs through their
// mailboxes, plus the satellite TextureMind (sound-source selection) and
// DynamicsMind (energy/dynamics control).
//
// The musical vocabulary itself (state names, characteristic keys, source
// kinds) is opaque configuration data; behaviors only move numbers between
// descriptors, directives and messages.
package orchestrator
