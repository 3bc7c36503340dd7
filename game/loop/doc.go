// Package loop provides the cancellable tick controller that schedules a
// session's background game loop.
//
// A Controller owns one goroutine that repeatedly runs an iteration
// callback, sleeps for the interval the callback returns, and exits when the
// callback reports completion or cancellation is requested. The controller
// exposes the lifecycle as an observable state machine:
//
//	Idle -> Running -> Stopping -> Terminated
//
// Idle is the absence of a controller; Start returns one already Running.
// Cancel moves a Running controller to Stopping; Terminated is reached when
// the in-flight iteration finishes, or when the callback stops the loop on
// its own (Running -> Terminated).
//
// The critical contract is cancel-then-await: callers that replace a loop
// must call Stop (Cancel followed by Wait) before spawning a successor, so
// two loops never drive the same simulation concurrently. Cancellation is
// cooperative and is observed at loop entry and during the inter-tick sleep.
package loop
