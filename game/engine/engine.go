package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var (
	ErrInvalidGridSize = errors.New("grid dimensions must be positive")
	ErrInvalidTick     = errors.New("tick interval must be positive")
)

// Engine is the snake state machine. All exported methods are safe for
// concurrent use; the command path and the tick loop share one Engine.
type Engine struct {
	mu      sync.Mutex
	state   GameState
	pending Direction // queued change, applied at the next Step
	rng     *rand.Rand
}

// New constructs a game from the given configuration. Zero-value dimensions
// and tick fall back to the package defaults; negative values are rejected.
func New(cfg Config) (*Engine, error) {
	if cfg.GridWidth == 0 {
		cfg.GridWidth = DefaultGridWidth
	}
	if cfg.GridHeight == 0 {
		cfg.GridHeight = DefaultGridHeight
	}
	if cfg.TickSeconds == 0 {
		cfg.TickSeconds = DefaultTickSeconds
	}
	if cfg.GridWidth < 0 || cfg.GridHeight < 0 {
		return nil, ErrInvalidGridSize
	}
	if cfg.TickSeconds < 0 {
		return nil, ErrInvalidTick
	}

	e := &Engine{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.state = GameState{
		GridWidth:   cfg.GridWidth,
		GridHeight:  cfg.GridHeight,
		TickSeconds: cfg.TickSeconds,
	}
	e.resetLocked()
	return e, nil
}

// Config returns the current construction parameters, used to carry grid
// size and tick interval forward into a replacement game.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Config{
		GridWidth:   e.state.GridWidth,
		GridHeight:  e.state.GridHeight,
		TickSeconds: e.state.TickSeconds,
	}
}

// Reset re-seeds the snake at the grid center, respawns food, zeroes the
// score, and marks the game running again.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	cx, cy := e.state.GridWidth/2, e.state.GridHeight/2
	e.state.Snake = []Position{{X: cx, Y: cy}}
	e.state.Direction = DirRight
	e.state.Score = 0
	e.state.Running = true
	e.pending = ""
	e.spawnFoodLocked()
}

// QueueChange records a pending direction change applied at the next Step.
// Unknown labels and direct reversals are ignored.
func (e *Engine) QueueChange(label string) {
	dir, ok := ParseDirection(label)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.state.Snake) > 1 && dir == e.state.Direction.Opposite() {
		return
	}
	e.pending = dir
}

// Step advances the simulation exactly once: applies any queued direction
// change, moves the head, resolves food and collisions. A fatal move is
// still committed before the game stops, so the out-of-bounds or
// overlapping head is visible to ForgiveCollisions. A step on a stopped
// game is a no-op.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Running || len(e.state.Snake) == 0 {
		return
	}

	if e.pending != "" {
		if !(len(e.state.Snake) > 1 && e.pending == e.state.Direction.Opposite()) {
			e.state.Direction = e.pending
		}
		e.pending = ""
	}

	dx, dy := e.state.Direction.delta()
	head := e.state.Snake[0]
	next := Position{X: head.X + dx, Y: head.Y + dy}

	fatal := next.X < 0 || next.X >= e.state.GridWidth || next.Y < 0 || next.Y >= e.state.GridHeight
	ate := !fatal && next == e.state.Food

	// The tail cell vacates this step unless the snake grows, so exclude it
	// from the collision scan when not eating.
	if !fatal {
		body := e.state.Snake
		if !ate {
			body = body[:len(body)-1]
		}
		for _, seg := range body {
			if seg == next {
				fatal = true
				break
			}
		}
	}

	// The move commits even when fatal: the out-of-bounds or overlapping
	// head stays in place so collision forgiveness can wrap or truncate it.
	e.state.Snake = append([]Position{next}, e.state.Snake...)
	if ate {
		e.state.Score++
		e.spawnFoodLocked()
	} else {
		e.state.Snake = e.state.Snake[:len(e.state.Snake)-1]
	}
	if fatal {
		e.state.Running = false
	}
}

// spawnFoodLocked places food on a uniformly random free cell. When the
// board is full it leaves the food where it was.
func (e *Engine) spawnFoodLocked() {
	w, h := e.state.GridWidth, e.state.GridHeight
	if w <= 0 || h <= 0 {
		return
	}
	occupied := make(map[Position]bool, len(e.state.Snake))
	for _, seg := range e.state.Snake {
		occupied[seg] = true
	}
	free := w*h - len(occupied)
	if free <= 0 {
		return
	}
	n := e.rng.Intn(free)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := Position{X: x, Y: y}
			if occupied[p] {
				continue
			}
			if n == 0 {
				e.state.Food = p
				return
			}
			n--
		}
	}
}

// Snapshot returns a deep copy of the current state for emission.
func (e *Engine) Snapshot() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Running reports whether the game has reached its terminal condition.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Running
}

// Score returns the current score.
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Score
}

// TickInterval returns the current per-step sleep. Callers re-read this
// every iteration so interval changes take effect on the very next tick.
func (e *Engine) TickInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(e.state.TickSeconds * float64(time.Second))
}

// SetTickSeconds mutates the active tick interval. Non-positive values are
// rejected.
func (e *Engine) SetTickSeconds(sec float64) error {
	if sec <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTick, sec)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.TickSeconds = sec
	return nil
}
