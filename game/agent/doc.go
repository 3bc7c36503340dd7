// Package agent defines the decision-provider contract consumed by the tick
// loop, plus a tabular Q-learning implementation and a checkpoint store for
// model files.
//
// A Provider turns an Observation of the game into a Decision each tick.
// Optional capabilities are expressed as separate interfaces checked once at
// the call boundary with a type assertion:
//
//   - Persister: the provider can save/restore its model to a file path
//   - Trainer: the provider learns online from step transitions
//
// A provider that implements neither is still a valid Provider; the loop and
// the command handlers degrade gracefully when a capability is absent.
package agent
