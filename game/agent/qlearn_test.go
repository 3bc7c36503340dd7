package agent

import (
	"path/filepath"
	"testing"

	"github.com/snakearcade/backend/game/engine"
)

func TestQAgentImplementsCapabilities(t *testing.T) {
	var p Provider = NewQAgent()

	if _, ok := p.(Persister); !ok {
		t.Error("QAgent should implement Persister")
	}
	if _, ok := p.(Trainer); !ok {
		t.Error("QAgent should implement Trainer")
	}
}

func TestQAgentDecideReturnsValidTurn(t *testing.T) {
	a := NewQAgent()
	obs := Observation{Vector: make([]float64, engine.VectorSize)}

	for i := 0; i < 50; i++ {
		d, err := a.Decide(obs)
		if err != nil {
			t.Fatalf("Decide() failed: %v", err)
		}
		if d.Direction != "" {
			t.Fatalf("QAgent should emit relative decisions, got direction %q", d.Direction)
		}
		if d.Turn != TurnStraight && d.Turn != TurnRight && d.Turn != TurnLeft {
			t.Fatalf("invalid turn %d", d.Turn)
		}
	}
}

func TestQAgentObserveShiftsPreference(t *testing.T) {
	a := NewQAgent()

	before := Observation{Vector: []float64{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0}}
	after := Observation{Vector: []float64{0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0}}

	for i := 0; i < 20; i++ {
		a.Observe(Transition{Before: before, Action: TurnRight, Reward: 10, After: after})
		a.Observe(Transition{Before: before, Action: TurnStraight, Reward: -10, After: after, Done: true})
	}

	row := a.table[stateKey(before.Vector)]
	if row[TurnRight] <= row[TurnStraight] || row[TurnRight] <= row[TurnLeft] {
		t.Errorf("expected trained preference for TurnRight, table row %v", row)
	}
}

func TestQAgentFinishEpisodeDecaysEpsilon(t *testing.T) {
	a := NewQAgent()
	start := a.epsilonLocked()

	for i := 0; i < 10; i++ {
		a.FinishEpisode(i)
	}
	if a.Games() != 10 {
		t.Errorf("expected 10 games, got %d", a.Games())
	}
	if got := a.epsilonLocked(); got >= start {
		t.Errorf("epsilon should decay: %v -> %v", start, got)
	}

	for i := 0; i < 1000; i++ {
		a.FinishEpisode(0)
	}
	if got := a.epsilonLocked(); got != qEpsilonFloor {
		t.Errorf("epsilon should bottom out at %v, got %v", qEpsilonFloor, got)
	}
}

func TestQAgentSaveLoadModel(t *testing.T) {
	a := NewQAgent()
	a.games = 42
	a.table["some-state"] = [3]float64{0.5, -0.25, 1.5}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := a.SaveModel(path); err != nil {
		t.Fatalf("SaveModel() failed: %v", err)
	}

	b := NewQAgent()
	if err := b.LoadModel(path); err != nil {
		t.Fatalf("LoadModel() failed: %v", err)
	}
	if b.Games() != 42 {
		t.Errorf("expected 42 games after load, got %d", b.Games())
	}
	if got := b.table["some-state"]; got != [3]float64{0.5, -0.25, 1.5} {
		t.Errorf("table row mismatch after load: %v", got)
	}
}

func TestQAgentLoadModelErrors(t *testing.T) {
	a := NewQAgent()

	if err := a.LoadModel(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCheckpointStoreResolve(t *testing.T) {
	store, err := NewCheckpointStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCheckpointStore() failed: %v", err)
	}

	path := store.Resolve("explicit.json", "")
	if filepath.Base(path) != "explicit.json" {
		t.Errorf("explicit filename not honored: %s", path)
	}

	path = store.Resolve("", "best")
	base := filepath.Base(path)
	if base == "" || filepath.Ext(base) != ".json" {
		t.Errorf("default filename should end in .json: %s", base)
	}
	if want := "snake_agent_best_"; len(base) < len(want) || base[:len(want)] != want {
		t.Errorf("tagged default should start with %q: %s", want, base)
	}
}

func TestCheckpointStoreLocateAndList(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCheckpointStore(dir)
	if err != nil {
		t.Fatalf("NewCheckpointStore() failed: %v", err)
	}

	a := NewQAgent()
	saved := store.Resolve("model.json", "")
	if err := a.SaveModel(saved); err != nil {
		t.Fatalf("SaveModel() failed: %v", err)
	}

	// Bare filename resolves inside the store.
	found, err := store.Locate("model.json")
	if err != nil {
		t.Fatalf("Locate() failed: %v", err)
	}
	if found != saved {
		t.Errorf("Locate() = %s, want %s", found, saved)
	}

	// Full path resolves as-is.
	found, err = store.Locate(saved)
	if err != nil {
		t.Fatalf("Locate(full path) failed: %v", err)
	}
	if found != saved {
		t.Errorf("Locate(full path) = %s, want %s", found, saved)
	}

	if _, err := store.Locate("nope.json"); err == nil {
		t.Error("expected error for unknown checkpoint")
	}
	if _, err := store.Locate(""); err == nil {
		t.Error("expected error for empty path")
	}

	names, err := store.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(names) != 1 || names[0] != "model.json" {
		t.Errorf("List() = %v, want [model.json]", names)
	}
}
