// Package testutil provides shared test helpers: a manual clock for
// virtual-time pipeline tests, a scriptable stub behavior and small
// descriptor builders.
package testutil
