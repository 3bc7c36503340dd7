package engine

import "strings"

// Direction is a cardinal heading on the grid.
type Direction string

const (
	DirUp    Direction = "UP"
	DirDown  Direction = "DOWN"
	DirLeft  Direction = "LEFT"
	DirRight Direction = "RIGHT"
)

const (
	// Defaults applied when a game is started without explicit parameters.
	DefaultGridWidth   = 20
	DefaultGridHeight  = 20
	DefaultTickSeconds = 0.15

	// Validation bounds for preset files. Engine construction itself only
	// requires positive values.
	MinGridSize   = 5
	MaxGridSize   = 100
	MinTickMillis = 10
	MaxTickMillis = 10000
)

// ParseDirection normalizes a client-supplied direction label. The second
// return value reports whether the label named a known direction.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case DirUp:
		return DirUp, true
	case DirDown:
		return DirDown, true
	case DirLeft:
		return DirLeft, true
	case DirRight:
		return DirRight, true
	}
	return "", false
}

// Opposite returns the reversing heading.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return d
}

// TurnRight returns the heading rotated 90 degrees clockwise. Grid rows grow
// downward, so clockwise from UP is RIGHT.
func (d Direction) TurnRight() Direction {
	switch d {
	case DirUp:
		return DirRight
	case DirRight:
		return DirDown
	case DirDown:
		return DirLeft
	case DirLeft:
		return DirUp
	}
	return d
}

// TurnLeft returns the heading rotated 90 degrees counterclockwise.
func (d Direction) TurnLeft() Direction {
	return d.TurnRight().Opposite()
}

// delta returns the per-step coordinate offset for the heading.
func (d Direction) delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Position is an x,y cell coordinate. Y grows downward.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Config holds the parameters a game is constructed with.
type Config struct {
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	GridWidth   int     `json:"grid_width"`
	GridHeight  int     `json:"grid_height"`
	TickSeconds float64 `json:"game_tick"`
}

// GameState is the serializable snapshot of a game, emitted to clients after
// every step and on demand. Snake is head-first.
type GameState struct {
	GridWidth    int        `json:"grid_width"`
	GridHeight   int        `json:"grid_height"`
	Snake        []Position `json:"snake"`
	Direction    Direction  `json:"direction"`
	Food         Position   `json:"food"`
	Score        int        `json:"score"`
	Running      bool       `json:"running"`
	TickSeconds  float64    `json:"game_tick"`
	Invulnerable bool       `json:"invulnerable"`
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Snake = make([]Position, len(s.Snake))
	copy(out.Snake, s.Snake)
	return &out
}

// Head returns the head segment and whether the body is non-empty.
func (s *GameState) Head() (Position, bool) {
	if len(s.Snake) == 0 {
		return Position{}, false
	}
	return s.Snake[0], true
}
