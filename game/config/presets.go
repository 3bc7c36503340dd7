package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/snakearcade/backend/game/engine"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrInvalidPreset  = errors.New("invalid preset")
)

// PresetInfo summarizes one loadable preset for listing endpoints.
type PresetInfo struct {
	Filename    string  `json:"filename"`
	PresetID    string  `json:"preset_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	GridWidth   int     `json:"grid_width"`
	GridHeight  int     `json:"grid_height"`
	TickSeconds float64 `json:"tick_seconds"`
}

// Manager loads and caches grid presets from a directory of JSON files. A
// missing or empty directory is tolerated; the built-in classic preset is
// always available as the default.
type Manager struct {
	presetDir     string
	defaultPreset *engine.Config
	presets       map[string]*engine.Config
	mu            sync.RWMutex
}

// NewManager creates a preset manager over a directory. The directory does
// not need to exist.
func NewManager(presetDir string) *Manager {
	m := &Manager{
		presetDir: presetDir,
		presets:   make(map[string]*engine.Config),
	}
	m.loadDefaultPreset()
	return m
}

// LoadPreset loads a preset by name, consulting the cache first.
func (m *Manager) LoadPreset(name string) (*engine.Config, error) {
	m.mu.RLock()
	if preset, exists := m.presets[name]; exists {
		m.mu.RUnlock()
		return preset, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if preset, exists := m.presets[name]; exists {
		return preset, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.presetDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			if name == "classic" {
				preset := classicPreset()
				m.presets[name] = preset
				return preset, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var preset engine.Config
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse preset: %w", err)
	}

	if err := ValidatePreset(&preset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}

	m.presets[name] = &preset
	return &preset, nil
}

// ListPresets returns information about every valid preset on disk, plus
// the built-in classic preset when no file shadows it.
func (m *Manager) ListPresets() ([]*PresetInfo, error) {
	infos := []*PresetInfo{}
	seen := make(map[string]bool)

	entries, err := os.ReadDir(m.presetDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		preset, err := m.LoadPreset(name)
		if err != nil {
			// Skip invalid presets
			continue
		}
		seen[name] = true
		infos = append(infos, presetInfo(entry.Name(), name, preset))
	}

	if !seen["classic"] {
		infos = append(infos, presetInfo("classic.json", "classic", classicPreset()))
	}

	return infos, nil
}

// GetDefault returns the default preset.
func (m *Manager) GetDefault() *engine.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPreset
}

// RefreshCache drops cached presets and re-resolves the default.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.presets = make(map[string]*engine.Config)
	m.mu.Unlock()
	m.loadDefaultPreset()
}

func (m *Manager) loadDefaultPreset() {
	preset, err := m.LoadPreset("classic")
	if err != nil {
		preset = classicPreset()
	}
	m.mu.Lock()
	m.defaultPreset = preset
	m.mu.Unlock()
}

// ValidatePreset checks a preset against the engine's accepted ranges.
func ValidatePreset(preset *engine.Config) error {
	if preset == nil {
		return errors.New("preset is nil")
	}
	if preset.GridWidth < engine.MinGridSize || preset.GridWidth > engine.MaxGridSize {
		return fmt.Errorf("grid width %d out of range [%d,%d]",
			preset.GridWidth, engine.MinGridSize, engine.MaxGridSize)
	}
	if preset.GridHeight < engine.MinGridSize || preset.GridHeight > engine.MaxGridSize {
		return fmt.Errorf("grid height %d out of range [%d,%d]",
			preset.GridHeight, engine.MinGridSize, engine.MaxGridSize)
	}
	tickMillis := preset.TickSeconds * 1000
	if tickMillis < engine.MinTickMillis || tickMillis > engine.MaxTickMillis {
		return fmt.Errorf("tick %.0fms out of range [%dms,%dms]",
			tickMillis, engine.MinTickMillis, engine.MaxTickMillis)
	}
	return nil
}

func classicPreset() *engine.Config {
	return &engine.Config{
		Name:        "classic",
		Description: "Classic 20x20 grid",
		GridWidth:   engine.DefaultGridWidth,
		GridHeight:  engine.DefaultGridHeight,
		TickSeconds: engine.DefaultTickSeconds,
	}
}

func presetInfo(filename, id string, preset *engine.Config) *PresetInfo {
	return &PresetInfo{
		Filename:    filename,
		PresetID:    id,
		Name:        preset.Name,
		Description: preset.Description,
		GridWidth:   preset.GridWidth,
		GridHeight:  preset.GridHeight,
		TickSeconds: preset.TickSeconds,
	}
}
