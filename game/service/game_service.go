package service

import (
	"context"
	"errors"
	"time"

	"github.com/snakearcade/backend/game/config"
	"github.com/snakearcade/backend/game/engine"
	"github.com/snakearcade/backend/game/session"
)

var (
	ErrNoActiveGame    = errors.New("no active game for session")
	ErrInvalidInterval = errors.New("tick interval must be positive")
)

// Notifier delivers an event to the connection that owns a session.
// Transports implement it; the websocket hub maps it onto socket emits.
type Notifier interface {
	Notify(connID, event string, payload any)
}

// StartParams configures a new game. Zero values mean "use the preset's
// (or the default's) setting".
type StartParams struct {
	Preset      string  `json:"preset,omitempty"`
	GridWidth   int     `json:"grid_width,omitempty"`
	GridHeight  int     `json:"grid_height,omitempty"`
	TickSeconds float64 `json:"game_tick,omitempty"`
	TickMillis  float64 `json:"starting_tick_ms,omitempty"`
	Agent       bool    `json:"agent,omitempty"`
}

// ModelParams names a checkpoint for save and load operations. All fields
// are optional on save; Filename is required on load.
type ModelParams struct {
	Filename string `json:"filename,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// SessionInfo is the externally visible view of a session.
type SessionInfo struct {
	ID           string            `json:"id"`
	ConnectedAt  time.Time         `json:"connected_at"`
	Invulnerable bool              `json:"invulnerable"`
	AgentEnabled bool              `json:"agent_enabled"`
	Statistics   session.Stats     `json:"statistics"`
	GameState    *engine.GameState `json:"game_state,omitempty"`
}

// GameService defines every operation a transport can invoke.
type GameService interface {
	// Connection lifecycle
	Connect(ctx context.Context, connID string) (*SessionInfo, error)
	Disconnect(ctx context.Context, connID string) error

	// Game lifecycle
	StartGame(ctx context.Context, connID string, params StartParams) error
	Replay(ctx context.Context, connID string) error

	// Live controls
	ChangeDirection(ctx context.Context, connID, direction string) error
	ChangeDelay(ctx context.Context, connID string, seconds float64) error

	// Admin overrides
	SetScore(ctx context.Context, connID string, score int) error
	AdjustScore(ctx context.Context, connID string, delta int) error
	ToggleInvulnerability(ctx context.Context, connID string) (bool, error)

	// Agent model persistence
	SaveModel(ctx context.Context, connID string, params ModelParams) error
	LoadModel(ctx context.Context, connID string, params ModelParams) error

	// Inspection
	GetSession(ctx context.Context, connID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	GetGameState(ctx context.Context, connID string) (*engine.GameState, error)
	ListPresets(ctx context.Context) ([]*config.PresetInfo, error)
}
