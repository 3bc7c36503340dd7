package engine

// VectorSize is the length of the numeric observation produced by Vector.
const VectorSize = 11

// Vector returns a compact numeric view of the game for decision providers:
//
//	[0..2]  danger straight / right / left of the current heading
//	[3..6]  heading one-hot: left, right, up, down
//	[7..10] food relative to head: left, right, up, down
//
// All features are 0 or 1. A stopped or empty game yields the zero vector.
func (e *Engine) Vector() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := make([]float64, VectorSize)
	head, ok := e.state.Head()
	if !ok {
		return v
	}

	dir := e.state.Direction
	if e.dangerLocked(dir) {
		v[0] = 1
	}
	if e.dangerLocked(dir.TurnRight()) {
		v[1] = 1
	}
	if e.dangerLocked(dir.TurnLeft()) {
		v[2] = 1
	}

	switch dir {
	case DirLeft:
		v[3] = 1
	case DirRight:
		v[4] = 1
	case DirUp:
		v[5] = 1
	case DirDown:
		v[6] = 1
	}

	if e.state.Food.X < head.X {
		v[7] = 1
	}
	if e.state.Food.X > head.X {
		v[8] = 1
	}
	if e.state.Food.Y < head.Y {
		v[9] = 1
	}
	if e.state.Food.Y > head.Y {
		v[10] = 1
	}
	return v
}

// dangerLocked reports whether moving the head one cell in dir would end the
// run. The vacating tail cell is not counted as a collision.
func (e *Engine) dangerLocked(dir Direction) bool {
	head, ok := e.state.Head()
	if !ok {
		return false
	}
	dx, dy := dir.delta()
	next := Position{X: head.X + dx, Y: head.Y + dy}
	if next.X < 0 || next.X >= e.state.GridWidth || next.Y < 0 || next.Y >= e.state.GridHeight {
		return true
	}
	body := e.state.Snake
	if len(body) > 0 {
		body = body[:len(body)-1]
	}
	for _, seg := range body {
		if seg == next {
			return true
		}
	}
	return false
}
