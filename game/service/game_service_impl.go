package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/snakearcade/backend/game/agent"
	"github.com/snakearcade/backend/game/config"
	"github.com/snakearcade/backend/game/engine"
	"github.com/snakearcade/backend/game/loop"
	"github.com/snakearcade/backend/game/session"
)

// Rewards fed to training agents per tick.
const (
	rewardFood  = 10
	rewardDeath = -10
)

// gameServiceImpl implements the GameService interface.
type gameServiceImpl struct {
	registry    *session.Registry
	presets     *config.Manager
	checkpoints *agent.CheckpointStore
	notifier    Notifier

	// Parent context for loop goroutines; cancelling it stops every loop
	// on shutdown.
	baseCtx context.Context
}

// NewGameService creates a game service. The notifier may be nil, in which
// case snapshots and acks are dropped (useful in tests and one-shot CLI
// paths).
func NewGameService(baseCtx context.Context, registry *session.Registry, presets *config.Manager, checkpoints *agent.CheckpointStore, notifier Notifier) GameService {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &gameServiceImpl{
		registry:    registry,
		presets:     presets,
		checkpoints: checkpoints,
		notifier:    notifier,
		baseCtx:     baseCtx,
	}
}

func (s *gameServiceImpl) notify(connID, event string, payload any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(connID, event, payload)
}

// emitState sends the session's current snapshot, stamped with the
// invulnerability flag, to its owning connection.
func (s *gameServiceImpl) emitState(sess *session.Session, eng *engine.Engine) {
	state := eng.Snapshot()
	state.Invulnerable = sess.Invulnerable()
	s.notify(sess.ID, "game_state", state)
}

// Connect registers a session for a new connection.
func (s *gameServiceImpl) Connect(ctx context.Context, connID string) (*SessionInfo, error) {
	sess, err := s.registry.Create(connID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Printf("[session] connected: %s (%d total)", connID, s.registry.Count())

	info := s.sessionInfo(sess)
	s.notify(connID, "connected", info)
	return info, nil
}

// Disconnect tears the session down. The registry cancels and awaits the
// session's loop before removing it, so nothing is emitted afterwards.
func (s *gameServiceImpl) Disconnect(ctx context.Context, connID string) error {
	if _, err := s.registry.Get(connID); err != nil {
		return err
	}
	s.registry.Remove(connID)
	log.Printf("[session] disconnected: %s (%d total)", connID, s.registry.Count())
	return nil
}

// StartGame replaces the session's game. Any previous loop is cancelled and
// awaited first, an immediate snapshot is emitted, then a fresh loop spawns.
func (s *gameServiceImpl) StartGame(ctx context.Context, connID string, params StartParams) error {
	sess, err := s.registry.Get(connID)
	if err != nil {
		return err
	}

	sess.Loop().Stop()

	cfg, err := s.resolveConfig(params)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	sess.SetSim(eng)

	if params.Agent {
		if sess.Agent() == nil {
			sess.SetAgent(agent.NewQAgent())
		}
	} else {
		sess.SetAgent(nil)
	}

	log.Printf("[game] start: session=%s grid=%dx%d tick=%.0fms agent=%t",
		connID, cfg.GridWidth, cfg.GridHeight, cfg.TickSeconds*1000, params.Agent)

	s.emitState(sess, eng)
	s.spawnLoop(sess)
	return nil
}

// Replay restarts the current game with its grid size and tick interval
// carried forward, or constructs a fresh default game when the session has
// none yet. The old loop is always stopped before the simulation is reset,
// so exactly one loop drives the session afterwards.
func (s *gameServiceImpl) Replay(ctx context.Context, connID string) error {
	sess, err := s.registry.Get(connID)
	if err != nil {
		return err
	}

	sess.Loop().Stop()

	eng := sess.Sim()
	if eng == nil {
		eng, err = engine.New(*s.presets.GetDefault())
		if err != nil {
			return fmt.Errorf("failed to create game: %w", err)
		}
		sess.SetSim(eng)
	} else {
		eng.Reset()
	}

	log.Printf("[game] replay: session=%s", connID)

	s.emitState(sess, eng)
	s.spawnLoop(sess)
	return nil
}

// resolveConfig merges the request parameters over the named (or default)
// preset.
func (s *gameServiceImpl) resolveConfig(params StartParams) (engine.Config, error) {
	var base *engine.Config
	if params.Preset != "" {
		preset, err := s.presets.LoadPreset(params.Preset)
		if err != nil {
			return engine.Config{}, fmt.Errorf("failed to load preset %q: %w", params.Preset, err)
		}
		base = preset
	} else {
		base = s.presets.GetDefault()
	}

	cfg := *base
	if params.GridWidth > 0 {
		cfg.GridWidth = params.GridWidth
	}
	if params.GridHeight > 0 {
		cfg.GridHeight = params.GridHeight
	}
	switch {
	case params.TickSeconds > 0:
		cfg.TickSeconds = params.TickSeconds
	case params.TickMillis > 0:
		cfg.TickSeconds = params.TickMillis / 1000
	}
	return cfg, nil
}

// spawnLoop starts the tick loop for a session, replacing the controller
// reference. Callers must have stopped the previous loop already.
func (s *gameServiceImpl) spawnLoop(sess *session.Session) {
	sess.SetLoop(loop.Start(s.baseCtx, s.tickFunc(sess.ID)))
}

// tickFunc builds the loop iteration body for one session. Every iteration
// re-fetches the session so a concurrent disconnect terminates the loop on
// its next pass.
func (s *gameServiceImpl) tickFunc(connID string) loop.IterateFunc {
	return func(ctx context.Context) (time.Duration, bool) {
		sess, err := s.registry.Get(connID)
		if err != nil {
			return 0, false
		}
		eng := sess.Sim()
		if eng == nil || !eng.Running() {
			return 0, false
		}

		provider := sess.Agent()
		trainer, training := provider.(agent.Trainer)

		var before agent.Observation
		if training {
			before = agent.Observation{Vector: eng.Vector(), State: eng.Snapshot()}
		}

		action := s.applyDecision(sess, eng, provider)

		prevScore := eng.Score()
		eng.Step()
		newScore := eng.Score()

		if scoreRegressed(prevScore, newScore) {
			log.Printf("[game] fresh life: session=%s score reset %d -> %d",
				connID, prevScore, newScore)
		}

		if sess.Invulnerable() {
			eng.Forgive()
		}

		died := !eng.Running()

		if training {
			reward := 0.0
			switch {
			case died:
				reward = rewardDeath
			case newScore > prevScore:
				reward = rewardFood
			}
			trainer.Observe(agent.Transition{
				Before: before,
				Action: action,
				Reward: reward,
				After:  agent.Observation{Vector: eng.Vector(), State: eng.Snapshot()},
				Done:   died,
			})
		}

		if died {
			stats := sess.RecordGameEnd(newScore)
			if training {
				trainer.FinishEpisode(newScore)
			}
			log.Printf("[game] over: session=%s score=%d games=%d best=%d",
				connID, newScore, stats.Games, stats.BestScore)
			s.notify(connID, "stats", stats)
		}

		s.emitState(sess, eng)

		// Re-read so a ChangeDelay issued mid-step applies to this sleep.
		return eng.TickInterval(), true
	}
}

// scoreRegressed reports a score falling back to zero across one step,
// which signals a fresh life in simulations that reset themselves.
func scoreRegressed(prev, cur int) bool {
	return prev > 0 && cur == 0
}

// applyDecision queues the provider's move on the engine. Provider errors
// are logged and swallowed so one bad decision never kills the loop.
func (s *gameServiceImpl) applyDecision(sess *session.Session, eng *engine.Engine, provider agent.Provider) agent.Turn {
	if provider == nil {
		return agent.TurnStraight
	}

	decision, err := provider.Decide(agent.Observation{Vector: eng.Vector(), State: eng.Snapshot()})
	if err != nil {
		log.Printf("[agent] decide failed for session %s: %v", sess.ID, err)
		return agent.TurnStraight
	}

	if decision.Direction != "" {
		eng.QueueChange(string(decision.Direction))
		return agent.TurnStraight
	}

	heading := eng.Snapshot().Direction
	switch decision.Turn {
	case agent.TurnRight:
		eng.QueueChange(string(heading.TurnRight()))
	case agent.TurnLeft:
		eng.QueueChange(string(heading.TurnLeft()))
	}
	return decision.Turn
}

// ChangeDirection queues a direction change for the next tick. Unknown
// labels are ignored rather than rejected; a stale or garbled frame should
// not error out the connection.
func (s *gameServiceImpl) ChangeDirection(ctx context.Context, connID, direction string) error {
	sess, err := s.registry.Get(connID)
	if err != nil {
		return err
	}
	eng := sess.Sim()
	if eng == nil {
		return ErrNoActiveGame
	}
	eng.QueueChange(direction)
	return nil
}

// ChangeDelay sets the tick interval. The loop re-reads it before every
// sleep, so the change lands on the next tick without a restart.
func (s *gameServiceImpl) ChangeDelay(ctx context.Context, connID string, seconds float64) error {
	sess, err := s.registry.Get(connID)
	if err != nil {
		return err
	}
	eng := sess.Sim()
	if eng == nil {
		return ErrNoActiveGame
	}
	if seconds <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, seconds)
	}
	if err := eng.SetTickSeconds(seconds); err != nil {
		return err
	}
	s.notify(connID, "delay_changed", map[string]float64{"game_tick": seconds})
	return nil
}

// SetScore force-sets the score, resyncing body length, and emits an
// immediate snapshot so admin tools see the effect without waiting a tick.
func (s *gameServiceImpl) SetScore(ctx context.Context, connID string, score int) error {
	sess, err := s.registry.Get(connID)
	if err != nil {
		return err
	}
	eng := sess.Sim()
	if eng == nil {
		return ErrNoActiveGame
	}
	eng.SetScore(score)
	s.emitState(sess, eng)
	return nil
}

// AdjustScore applies a relative score change, clamped at zero.
func (s *gameServiceImpl) AdjustScore(ctx context.Context, connID string, delta int) error {
	sess, err := s.registry.Get(connID)
	if err != nil {
		return err
	}
	eng := sess.Sim()
	if eng == nil {
		return ErrNoActiveGame
	}
	eng.AddScore(delta)
	s.emitState(sess, eng)
	return nil
}

// ToggleInvulnerability flips the session's override and returns the new
// value. While enabled, every tick forgives collisions after the step.
func (s *gameServiceImpl) ToggleInvulnerability(ctx context.Context, connID string) (bool, error) {
	sess, err := s.registry.Get(connID)
	if err != nil {
		return false, err
	}
	enabled := sess.ToggleInvulnerable()

	log.Printf("[game] invulnerability: session=%s enabled=%t", connID, enabled)
	s.notify(connID, "invulnerability_changed", map[string]bool{"enabled": enabled})

	if eng := sess.Sim(); eng != nil {
		if enabled && !eng.Running() {
			// Revive a stopped game on the spot instead of waiting a tick.
			// Its loop already terminated on the death, so spawn a fresh one
			// or the revived game would sit frozen until a replay.
			eng.Forgive()
			sess.Loop().Stop()
			s.spawnLoop(sess)
		}
		s.emitState(sess, eng)
	}
	return enabled, nil
}

// SaveModel persists the session agent's model into the checkpoint store.
func (s *gameServiceImpl) SaveModel(ctx context.Context, connID string, params ModelParams) error {
	sess, err := s.registry.Get(connID)
	if err != nil {
		return err
	}
	persister, ok := sess.Agent().(agent.Persister)
	if !ok {
		return agent.ErrNotPersistable
	}

	path := s.checkpoints.Resolve(params.Filename, params.Tag)
	if err := persister.SaveModel(path); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}

	log.Printf("[agent] model saved: session=%s path=%s", connID, path)
	s.notify(connID, "model_saved", map[string]string{"path": path})
	return nil
}

// LoadModel restores an agent model from a checkpoint. A session without an
// agent gets one, so a loaded model can drive the next started game.
func (s *gameServiceImpl) LoadModel(ctx context.Context, connID string, params ModelParams) error {
	sess, err := s.registry.Get(connID)
	if err != nil {
		return err
	}

	provider := sess.Agent()
	if provider == nil {
		provider = agent.NewQAgent()
	}
	persister, ok := provider.(agent.Persister)
	if !ok {
		return agent.ErrNotPersistable
	}

	path, err := s.checkpoints.Locate(params.Filename)
	if err != nil {
		return err
	}
	if err := persister.LoadModel(path); err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	sess.SetAgent(provider)

	log.Printf("[agent] model loaded: session=%s path=%s", connID, path)
	s.notify(connID, "model_loaded", map[string]string{"path": path})
	return nil
}

// GetSession returns the session's info view.
func (s *gameServiceImpl) GetSession(ctx context.Context, connID string) (*SessionInfo, error) {
	sess, err := s.registry.Get(connID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns every live session.
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.registry.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, s.sessionInfo(sess))
	}
	return infos, nil
}

// GetGameState returns the current snapshot for a session.
func (s *gameServiceImpl) GetGameState(ctx context.Context, connID string) (*engine.GameState, error) {
	sess, err := s.registry.Get(connID)
	if err != nil {
		return nil, err
	}
	eng := sess.Sim()
	if eng == nil {
		return nil, ErrNoActiveGame
	}
	state := eng.Snapshot()
	state.Invulnerable = sess.Invulnerable()
	return state, nil
}

// ListPresets returns the available grid presets.
func (s *gameServiceImpl) ListPresets(ctx context.Context) ([]*config.PresetInfo, error) {
	return s.presets.ListPresets()
}

func (s *gameServiceImpl) sessionInfo(sess *session.Session) *SessionInfo {
	info := &SessionInfo{
		ID:           sess.ID,
		ConnectedAt:  sess.CreatedAt,
		Invulnerable: sess.Invulnerable(),
		AgentEnabled: sess.Agent() != nil,
		Statistics:   sess.Stats(),
	}
	if eng := sess.Sim(); eng != nil {
		info.GameState = eng.Snapshot()
		info.GameState.Invulnerable = info.Invulnerable
	}
	return info
}
