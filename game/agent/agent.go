package agent

import (
	"errors"

	"github.com/snakearcade/backend/game/engine"
)

var (
	ErrNotPersistable = errors.New("provider has no persistence capability")
)

// Turn is the 3-way relative move encoding: keep the current heading, or
// rotate it one quarter turn.
type Turn int

const (
	TurnStraight Turn = iota
	TurnRight
	TurnLeft
)

func (t Turn) String() string {
	switch t {
	case TurnRight:
		return "right"
	case TurnLeft:
		return "left"
	default:
		return "straight"
	}
}

// Decision is a move choice. A non-empty Direction is an absolute heading
// request; otherwise Turn is interpreted relative to the snake's current
// heading. The zero value means continue straight.
type Decision struct {
	Direction engine.Direction
	Turn      Turn
}

// Observation is the per-tick view handed to a provider: the numeric vector
// is the preferred representation, the structural snapshot the fallback for
// providers that want raw state.
type Observation struct {
	Vector []float64
	State  *engine.GameState
}

// Provider produces one move decision per tick. Implementations must treat
// Decide as hot-path: it runs inside the tick loop with no deadline.
type Provider interface {
	Decide(obs Observation) (Decision, error)
}

// Persister is the optional save/restore capability. Paths are absolute or
// relative file paths resolved by the caller.
type Persister interface {
	SaveModel(path string) error
	LoadModel(path string) error
}

// Transition is one learning sample: the observation before the move, the
// move taken, the reward observed, and the resulting observation.
type Transition struct {
	Before Observation
	Action Turn
	Reward float64
	After  Observation
	Done   bool
}

// Trainer is the optional online-learning capability. Observe is called
// after every stepped tick in which the provider decided; FinishEpisode is
// called once when the game reaches its terminal condition.
type Trainer interface {
	Observe(tr Transition)
	FinishEpisode(finalScore int)
}
