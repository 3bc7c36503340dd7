package agent

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Q-learning hyperparameters. Epsilon decays linearly with finished games so
// early play explores and later play exploits.
const (
	qAlpha        = 0.1
	qGamma        = 0.9
	qEpsilonStart = 0.4
	qEpsilonFloor = 0.01
	qEpsilonDecay = 0.005
)

// QAgent is a tabular Q-learning provider over the engine's numeric
// observation vector. It implements Provider, Trainer, and Persister.
type QAgent struct {
	mu    sync.Mutex
	table map[string][3]float64
	games int
	rng   *rand.Rand
}

// NewQAgent returns an untrained agent.
func NewQAgent() *QAgent {
	return &QAgent{
		table: make(map[string][3]float64),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Decide picks a relative move epsilon-greedily from the Q-table.
func (a *QAgent) Decide(obs Observation) (Decision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.rng.Float64() < a.epsilonLocked() {
		return Decision{Turn: Turn(a.rng.Intn(3))}, nil
	}

	values := a.table[stateKey(obs.Vector)]
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return Decision{Turn: Turn(best)}, nil
}

// Observe applies one temporal-difference update for a step transition.
func (a *QAgent) Observe(tr Transition) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := stateKey(tr.Before.Vector)
	values := a.table[key]

	target := tr.Reward
	if !tr.Done {
		next := a.table[stateKey(tr.After.Vector)]
		maxNext := next[0]
		for _, v := range next[1:] {
			if v > maxNext {
				maxNext = v
			}
		}
		target += qGamma * maxNext
	}

	i := int(tr.Action)
	if i < 0 || i >= len(values) {
		return
	}
	values[i] += qAlpha * (target - values[i])
	a.table[key] = values
}

// FinishEpisode advances the game counter that drives epsilon decay.
func (a *QAgent) FinishEpisode(finalScore int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.games++
}

// Games returns the number of finished episodes.
func (a *QAgent) Games() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.games
}

func (a *QAgent) epsilonLocked() float64 {
	eps := qEpsilonStart - float64(a.games)*qEpsilonDecay
	if eps < qEpsilonFloor {
		eps = qEpsilonFloor
	}
	return eps
}

// qModel is the on-disk checkpoint format.
type qModel struct {
	Games int                   `json:"games"`
	Table map[string][3]float64 `json:"table"`
}

// SaveModel writes the Q-table and episode counter as JSON.
func (a *QAgent) SaveModel(path string) error {
	a.mu.Lock()
	model := qModel{Games: a.games, Table: make(map[string][3]float64, len(a.table))}
	for k, v := range a.table {
		model.Table[k] = v
	}
	a.mu.Unlock()

	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// LoadModel replaces the agent's table and counter from a checkpoint file.
func (a *QAgent) LoadModel(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model file: %w", err)
	}
	var model qModel
	if err := json.Unmarshal(data, &model); err != nil {
		return fmt.Errorf("failed to parse model file: %w", err)
	}
	if model.Table == nil {
		model.Table = make(map[string][3]float64)
	}

	a.mu.Lock()
	a.table = model.Table
	a.games = model.Games
	a.mu.Unlock()
	return nil
}

// stateKey collapses a feature vector into a stable table key.
func stateKey(vec []float64) string {
	if len(vec) == 0 {
		return "empty"
	}
	var b strings.Builder
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}
