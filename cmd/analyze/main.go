// Command analyze prints quick, human-readable heuristics about preset files
// in the presets directory. It summarizes grid dimensions and tick rate,
// validates each preset against the engine's bounds, and estimates pacing
// (ticks to cross the grid, maximum possible score).
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/snakearcade/backend/game/config"
	"github.com/snakearcade/backend/game/engine"
)

func main() {
	dir := "presets"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No preset files found in %s\n", dir)
		return
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzePreset(file)
	}
}

func analyzePreset(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var preset engine.Config
	if err := json.Unmarshal(data, &preset); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", preset.Name)
	if preset.Description != "" {
		fmt.Printf("Description: %s\n", preset.Description)
	}
	fmt.Printf("Grid: %d x %d (%d cells)\n",
		preset.GridWidth, preset.GridHeight, preset.GridWidth*preset.GridHeight)
	fmt.Printf("Tick: %.0fms (%.1f steps/s)\n",
		preset.TickSeconds*1000, stepsPerSecond(preset.TickSeconds))

	if err := config.ValidatePreset(&preset); err != nil {
		fmt.Printf("INVALID: %v\n", err)
		return
	}

	// Pacing heuristics. The snake starts at the grid center with length 1,
	// so the longest straight run is half the larger dimension.
	crossTicks := maxInt(preset.GridWidth, preset.GridHeight)
	maxScore := preset.GridWidth*preset.GridHeight - 1
	fmt.Printf("Ticks to cross the grid: %d (%.1fs)\n",
		crossTicks, float64(crossTicks)*preset.TickSeconds)
	fmt.Printf("Maximum possible score: %d\n", maxScore)

	if preset.TickSeconds < 0.05 {
		fmt.Println("Note: sub-50ms ticks are hard for human players")
	}
	fmt.Println("Preset is valid")
}

func stepsPerSecond(tickSeconds float64) float64 {
	if tickSeconds <= 0 {
		return 0
	}
	return 1 / tickSeconds
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
