package loop

import (
	"context"
	"sync/atomic"
	"time"
)

// State is the lifecycle phase of a Controller.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// IterateFunc runs one tick. It returns the sleep to apply before the next
// iteration and whether the loop should continue. Returning false terminates
// the loop without sleeping. The interval is requested fresh every
// iteration, so mid-flight changes take effect on the very next tick.
type IterateFunc func(ctx context.Context) (next time.Duration, cont bool)

// Controller drives one background loop goroutine. The zero value is not
// usable; obtain a Controller from Start. All methods are safe on a nil
// receiver, which behaves like an already-terminated loop.
type Controller struct {
	cancel context.CancelFunc
	done   chan struct{}
	state  atomic.Int32
}

// Start spawns a loop goroutine in the Running state. The loop stops when
// iterate returns false, when the parent context is cancelled, or when
// Cancel is called.
func Start(parent context.Context, iterate IterateFunc) *Controller {
	ctx, cancel := context.WithCancel(parent)
	c := &Controller{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.state.Store(int32(Running))
	go c.run(ctx, iterate)
	return c
}

func (c *Controller) run(ctx context.Context, iterate IterateFunc) {
	defer func() {
		c.state.Store(int32(Terminated))
		close(c.done)
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		wait, cont := iterate(ctx)
		if !cont {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	if c == nil {
		return Terminated
	}
	return State(c.state.Load())
}

// Alive reports whether the loop goroutine has not yet terminated.
func (c *Controller) Alive() bool {
	if c == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Cancel requests cooperative termination and returns immediately. The
// in-flight iteration, if any, runs to completion.
func (c *Controller) Cancel() {
	if c == nil {
		return
	}
	c.state.CompareAndSwap(int32(Running), int32(Stopping))
	c.cancel()
}

// Wait blocks until the loop goroutine has terminated.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// Stop is Cancel followed by Wait: the cancel-then-await step required
// before replacing a loop or mutating the simulation it drives.
func (c *Controller) Stop() {
	c.Cancel()
	c.Wait()
}

// Done exposes the termination signal for select-based callers.
func (c *Controller) Done() <-chan struct{} {
	if c == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.done
}
