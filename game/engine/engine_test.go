package engine

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	state := e.Snapshot()
	if state.GridWidth != DefaultGridWidth || state.GridHeight != DefaultGridHeight {
		t.Errorf("expected default grid %dx%d, got %dx%d",
			DefaultGridWidth, DefaultGridHeight, state.GridWidth, state.GridHeight)
	}
	if state.TickSeconds != DefaultTickSeconds {
		t.Errorf("expected default tick %v, got %v", DefaultTickSeconds, state.TickSeconds)
	}
	if !state.Running {
		t.Error("new game should be running")
	}
	if len(state.Snake) != 1 {
		t.Errorf("expected single-segment snake, got %d", len(state.Snake))
	}
	if state.Score != 0 {
		t.Errorf("expected score 0, got %d", state.Score)
	}
}

func TestNewRejectsNegativeConfig(t *testing.T) {
	if _, err := New(Config{GridWidth: -1, GridHeight: 10}); err == nil {
		t.Error("expected error for negative grid width")
	}
	if _, err := New(Config{TickSeconds: -0.1}); err == nil {
		t.Error("expected error for negative tick")
	}
}

func TestStepMovesHead(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	e.state.Snake = []Position{{X: 5, Y: 5}}
	e.state.Food = Position{X: 0, Y: 0}
	e.state.Direction = DirRight

	e.Step()

	head, _ := e.Snapshot().Head()
	if head != (Position{X: 6, Y: 5}) {
		t.Errorf("expected head at (6,5), got (%d,%d)", head.X, head.Y)
	}
}

func TestStepAppliesQueuedChange(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	e.state.Snake = []Position{{X: 5, Y: 5}}
	e.state.Food = Position{X: 0, Y: 0}
	e.state.Direction = DirRight

	e.QueueChange("up")
	e.Step()

	state := e.Snapshot()
	if state.Direction != DirUp {
		t.Errorf("expected heading UP, got %s", state.Direction)
	}
	head, _ := state.Head()
	if head != (Position{X: 5, Y: 4}) {
		t.Errorf("expected head at (5,4), got (%d,%d)", head.X, head.Y)
	}
}

func TestQueueChangeIgnoresReversalAndGarbage(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	e.state.Snake = []Position{{X: 5, Y: 5}, {X: 4, Y: 5}}
	e.state.Food = Position{X: 0, Y: 0}
	e.state.Direction = DirRight

	e.QueueChange("LEFT") // direct reversal with a body behind the head
	e.QueueChange("diagonal")
	e.Step()

	state := e.Snapshot()
	if state.Direction != DirRight {
		t.Errorf("expected heading to stay RIGHT, got %s", state.Direction)
	}
	if !state.Running {
		t.Error("reversal should have been ignored, not fatal")
	}
}

func TestStepEatsFoodAndGrows(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	e.state.Snake = []Position{{X: 5, Y: 5}}
	e.state.Direction = DirRight
	e.state.Food = Position{X: 6, Y: 5}

	e.Step()

	state := e.Snapshot()
	if state.Score != 1 {
		t.Errorf("expected score 1 after eating, got %d", state.Score)
	}
	if len(state.Snake) != 2 {
		t.Errorf("expected body length 2 after eating, got %d", len(state.Snake))
	}
	if state.Food == (Position{X: 6, Y: 5}) {
		t.Error("food should have respawned elsewhere")
	}
	for _, seg := range state.Snake {
		if seg == state.Food {
			t.Error("food respawned on the snake body")
		}
	}
}

func TestStepWallCollisionStopsGame(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	e.state.Snake = []Position{{X: 9, Y: 5}}
	e.state.Food = Position{X: 0, Y: 0}
	e.state.Direction = DirRight

	e.Step()

	state := e.Snapshot()
	if state.Running {
		t.Error("expected game to stop at the wall")
	}
	// The fatal move commits: the head sits out of bounds, ready for
	// collision forgiveness to wrap it.
	head, _ := state.Head()
	if head != (Position{X: 10, Y: 5}) {
		t.Errorf("fatal move should commit the head at (10,5), got (%d,%d)", head.X, head.Y)
	}
}

func TestStepCommitsOverlappingHeadOnSelfCollision(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	e.state.Snake = []Position{
		{X: 5, Y: 5}, {X: 4, Y: 5}, {X: 4, Y: 4}, {X: 5, Y: 4}, {X: 6, Y: 4},
	}
	e.state.Food = Position{X: 0, Y: 0}
	e.state.Direction = DirUp

	e.Step()

	state := e.Snapshot()
	if state.Running {
		t.Error("expected self collision to stop the game")
	}
	head, _ := state.Head()
	if head != (Position{X: 5, Y: 4}) {
		t.Fatalf("fatal move should commit the head at (5,4), got (%d,%d)", head.X, head.Y)
	}
	// The overlap survives the commit so forgiveness can truncate at it.
	overlap := false
	for _, seg := range state.Snake[1:] {
		if seg == head {
			overlap = true
		}
	}
	if !overlap {
		t.Error("committed body should still contain the overlapped segment")
	}
}

func TestStepSelfCollisionStopsGame(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	// Heading up into the snake's own second segment.
	e.state.Snake = []Position{
		{X: 5, Y: 5}, {X: 4, Y: 5}, {X: 4, Y: 4}, {X: 5, Y: 4}, {X: 6, Y: 4},
	}
	e.state.Food = Position{X: 0, Y: 0}
	e.state.Direction = DirUp

	e.Step()

	if e.Running() {
		t.Error("expected self collision to stop the game")
	}
}

func TestStepIntoVacatingTailSurvives(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	// 2x2 ring: the head moves into the cell the tail vacates this step.
	e.state.Snake = []Position{
		{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}, {X: 5, Y: 6},
	}
	e.state.Food = Position{X: 0, Y: 0}
	e.state.Direction = DirDown

	e.Step()

	if !e.Running() {
		t.Error("moving into the vacating tail cell should not be fatal")
	}
}

func TestStepOnStoppedGameIsNoOp(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	e.state.Running = false
	before := e.Snapshot()

	e.Step()

	after := e.Snapshot()
	if len(after.Snake) != len(before.Snake) || after.Snake[0] != before.Snake[0] {
		t.Error("Step() on a stopped game must not move the snake")
	}
}

func TestResetRestoresRunningState(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	e.state.Running = false
	e.state.Score = 7
	e.state.Snake = []Position{{X: 1, Y: 1}, {X: 0, Y: 1}}

	e.Reset()

	state := e.Snapshot()
	if !state.Running {
		t.Error("Reset() should mark the game running")
	}
	if state.Score != 0 {
		t.Errorf("Reset() should zero the score, got %d", state.Score)
	}
	if len(state.Snake) != 1 {
		t.Errorf("Reset() should re-seed a single segment, got %d", len(state.Snake))
	}
	head, _ := state.Head()
	if head != (Position{X: 5, Y: 5}) {
		t.Errorf("expected head re-seeded at center (5,5), got (%d,%d)", head.X, head.Y)
	}
}

func TestSetTickSeconds(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := e.SetTickSeconds(0.05); err != nil {
		t.Fatalf("SetTickSeconds(0.05) failed: %v", err)
	}
	if got := e.TickInterval(); got != 50*time.Millisecond {
		t.Errorf("expected 50ms interval, got %v", got)
	}

	if err := e.SetTickSeconds(0); err == nil {
		t.Error("expected error for zero tick")
	}
	if err := e.SetTickSeconds(-1); err == nil {
		t.Error("expected error for negative tick")
	}
	if got := e.TickInterval(); got != 50*time.Millisecond {
		t.Errorf("rejected tick should not change the interval, got %v", got)
	}
}

func TestConfigCarriesCurrentSettings(t *testing.T) {
	e, err := New(Config{GridWidth: 12, GridHeight: 8, TickSeconds: 0.2})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := e.SetTickSeconds(0.5); err != nil {
		t.Fatalf("SetTickSeconds failed: %v", err)
	}

	cfg := e.Config()
	if cfg.GridWidth != 12 || cfg.GridHeight != 8 {
		t.Errorf("expected 12x8, got %dx%d", cfg.GridWidth, cfg.GridHeight)
	}
	if cfg.TickSeconds != 0.5 {
		t.Errorf("expected carried tick 0.5, got %v", cfg.TickSeconds)
	}
}

func TestVectorFeatures(t *testing.T) {
	e, err := New(Config{GridWidth: 10, GridHeight: 10, TickSeconds: 0.1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	// Head against the right wall heading right, food up-left of the head.
	e.state.Snake = []Position{{X: 9, Y: 5}}
	e.state.Direction = DirRight
	e.state.Food = Position{X: 2, Y: 2}

	v := e.Vector()
	if len(v) != VectorSize {
		t.Fatalf("expected %d features, got %d", VectorSize, len(v))
	}
	if v[0] != 1 {
		t.Error("expected danger straight at the right wall")
	}
	if v[1] != 0 || v[2] != 0 {
		t.Error("expected no danger turning right or left")
	}
	if v[4] != 1 {
		t.Error("expected heading-right feature set")
	}
	if v[7] != 1 || v[9] != 1 {
		t.Error("expected food flagged left and up of the head")
	}
	if v[8] != 0 || v[10] != 0 {
		t.Error("expected food right/down features unset")
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in    string
		want  Direction
		valid bool
	}{
		{"up", DirUp, true},
		{"UP", DirUp, true},
		{" Down ", DirDown, true},
		{"left", DirLeft, true},
		{"RIGHT", DirRight, true},
		{"", "", false},
		{"north", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		if ok != tt.valid || got != tt.want {
			t.Errorf("ParseDirection(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.valid)
		}
	}
}

func TestTurnHelpers(t *testing.T) {
	if DirUp.TurnRight() != DirRight {
		t.Error("UP.TurnRight() should be RIGHT")
	}
	if DirUp.TurnLeft() != DirLeft {
		t.Error("UP.TurnLeft() should be LEFT")
	}
	if DirLeft.TurnRight() != DirUp {
		t.Error("LEFT.TurnRight() should be UP")
	}
	if DirDown.Opposite() != DirUp {
		t.Error("DOWN.Opposite() should be UP")
	}
}
