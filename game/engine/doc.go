// Package engine implements the snake simulation state machine.
//
// The engine package owns everything about a single game: the grid, the
// snake body, food placement, scoring, and the rules that advance the game
// one discrete step at a time. It knows nothing about connections, tick
// scheduling, or agents; those layers drive an Engine through its small
// surface of Step, Reset, QueueChange, and Snapshot.
//
// Core Types:
//
// Engine is the mutable state machine. GameState is the serializable
// snapshot emitted to clients after each step. Config captures the
// parameters a game is constructed with (grid dimensions and tick interval).
//
// Concurrency:
//
// An Engine is safe for concurrent use. Command handlers queue direction
// changes, adjust the tick interval, and force scores while a background
// loop calls Step; an internal mutex serializes every mutation so each step
// observes a consistent state.
//
// Usage:
//
//	eng, err := engine.New(engine.Config{GridWidth: 20, GridHeight: 20, TickSeconds: 0.15})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.QueueChange("UP")
//	eng.Step()
//	state := eng.Snapshot()
//
// Game Rules:
//
// The snake advances one cell per step in its current heading. Eating food
// grows the body by one segment and increments the score; hitting a wall or
// the snake's own body stops the run. Queued direction changes that would
// reverse the snake onto itself are ignored.
package engine
