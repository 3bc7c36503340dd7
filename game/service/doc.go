// Package service implements the game command surface shared by every
// transport.
//
// GameService owns the tick loop body and the session lifecycle commands:
// connect/disconnect, starting and replaying games, live direction and
// speed changes, the admin overrides (invulnerability, score edits), and
// agent model persistence. Transports translate their wire formats into
// these calls; snapshots and acks travel back to the owning connection
// through the Notifier the service was constructed with.
//
// # Tick Loop
//
// Each running game is driven by one loop.Controller whose iteration body
// lives here: re-fetch the session, bail on terminal conditions, apply the
// agent's decision, advance the simulation one step, apply the
// invulnerability transform, feed the trainer, and emit a snapshot. The
// interval is re-read from the engine every iteration, so delay changes
// land on the very next tick. Commands that replace a game (start, replay,
// disconnect) always cancel the previous loop and wait for it to finish
// before touching the simulation.
package service
