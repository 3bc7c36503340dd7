package session

import (
	"sync"
	"time"

	"github.com/snakearcade/backend/game/agent"
	"github.com/snakearcade/backend/game/engine"
	"github.com/snakearcade/backend/game/loop"
)

// Stats accumulates play results across a session's lifetime.
type Stats struct {
	Games      int     `json:"games"`
	BestScore  int     `json:"best_score"`
	TotalScore int     `json:"total_score"`
	AvgScore   float64 `json:"avg_score"`
}

// Session is the per-connection record: one simulation, one optional agent,
// one loop. All accessors are safe for concurrent use; the loop goroutine
// and the command handlers both touch it.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	sim          *engine.Engine
	agent        agent.Provider
	invulnerable bool
	stats        Stats
	loop         *loop.Controller
}

// New returns an empty session for a freshly connected client. The
// simulation and agent arrive later, when the client starts a game.
func New(id string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
	}
}

// Sim returns the session's current simulation, or nil before the first
// game starts.
func (s *Session) Sim() *engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim
}

// SetSim installs a new simulation.
func (s *Session) SetSim(sim *engine.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim = sim
}

// Agent returns the session's decision provider, or nil for manual play.
func (s *Session) Agent() agent.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent
}

// SetAgent installs or clears the decision provider.
func (s *Session) SetAgent(p agent.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agent = p
}

// Invulnerable reports whether the admin override is active.
func (s *Session) Invulnerable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invulnerable
}

// ToggleInvulnerable flips the override and returns the new value.
func (s *Session) ToggleInvulnerable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invulnerable = !s.invulnerable
	return s.invulnerable
}

// Stats returns a copy of the accumulated statistics.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// RecordGameEnd folds one finished game into the statistics.
func (s *Session) RecordGameEnd(score int) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Games++
	s.stats.TotalScore += score
	if score > s.stats.BestScore {
		s.stats.BestScore = score
	}
	s.stats.AvgScore = float64(s.stats.TotalScore) / float64(s.stats.Games)
	return s.stats
}

// Loop returns the controller currently driving the simulation, which may
// be nil or already terminated.
func (s *Session) Loop() *loop.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop
}

// SetLoop replaces the loop controller reference. The caller is responsible
// for stopping the previous loop first.
func (s *Session) SetLoop(c *loop.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loop = c
}
