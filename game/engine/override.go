package engine

// Administrative overrides applied outside the normal game rules: collision
// forgiveness for invulnerable sessions and body-length resynchronization
// after a forced score change. Both transforms are idempotent and best
// effort; they no-op on states they cannot sensibly rewrite.

// ForgiveCollisions rewrites an otherwise-fatal outcome in place. The head
// is wrapped back into the grid with an axis-wise modulo (an axis with a
// non-positive bound passes through unchanged), the body is truncated just
// before the first segment that repeats the wrapped head position, and the
// running flag is forced true. The body never grows and segments are never
// reordered. An empty body only has its running flag forced.
func ForgiveCollisions(s *GameState) {
	if s == nil {
		return
	}
	if len(s.Snake) > 0 {
		head := s.Snake[0]
		if s.GridWidth > 0 {
			head.X = mod(head.X, s.GridWidth)
		}
		if s.GridHeight > 0 {
			head.Y = mod(head.Y, s.GridHeight)
		}
		s.Snake[0] = head

		for i := 1; i < len(s.Snake); i++ {
			if s.Snake[i] == head {
				s.Snake = s.Snake[:i]
				break
			}
		}
	}
	s.Running = true
}

// SyncLengthWithScore resynchronizes the body length to max(1, score+1) by
// repeating the tail segment or truncating from the end. Used after a score
// is forced administratively, so the rendered body matches the score rather
// than the food actually eaten. An empty body is left alone.
func SyncLengthWithScore(s *GameState) {
	if s == nil || len(s.Snake) == 0 {
		return
	}
	target := s.Score + 1
	if target < 1 {
		target = 1
	}
	if len(s.Snake) < target {
		tail := s.Snake[len(s.Snake)-1]
		for len(s.Snake) < target {
			s.Snake = append(s.Snake, tail)
		}
	} else if len(s.Snake) > target {
		s.Snake = s.Snake[:target]
	}
}

// mod is a floored modulo: the result is always in [0, m) for m > 0.
func mod(v, m int) int {
	r := v % m
	if r < 0 {
		r += m
	}
	return r
}

// Forgive applies ForgiveCollisions to the live state.
func (e *Engine) Forgive() {
	e.mu.Lock()
	defer e.mu.Unlock()
	ForgiveCollisions(&e.state)
}

// SetScore forces the score to the given value, clamped at zero, and
// resynchronizes the body length.
func (e *Engine) SetScore(score int) {
	if score < 0 {
		score = 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Score = score
	SyncLengthWithScore(&e.state)
}

// AddScore shifts the score by delta with the same clamping and length
// resynchronization as SetScore.
func (e *Engine) AddScore(delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Score += delta
	if e.state.Score < 0 {
		e.state.Score = 0
	}
	SyncLengthWithScore(&e.state)
}
