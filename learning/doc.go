// Package learning implements the per-agent memory of perception→action
// outcomes: a preference map biasing future action selection, a pattern table
// recognizing previously rewarding situations, and the seedable
// explore/exploit selector used by the runtime's decide step.
//
// There is no external supervision signal; behaviors compute their own [0,1]
// reward and the learner folds it into both structures. The learner is owned
// exclusively by its agent and accessed only from the runtime's tick
// goroutine: read-only during the decide step, written only during the learn
// step of the same tick.
package learning
