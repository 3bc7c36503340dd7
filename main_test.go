package main

import (
	"path/filepath"
	"testing"

	"github.com/snakearcade/backend/game/config"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedVersion := "1.0.0"
	if Version != expectedVersion {
		t.Errorf("Expected version %s, got %s", expectedVersion, Version)
	}

	expectedAppName := "Snake Arcade Backend"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	origHost, origPort := *host, *port
	*host = "127.0.0.1"
	*port = "9191"
	defer func() { *host, *port = origHost, origPort }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}

	if cfg.Host != "127.0.0.1" || cfg.Port != "9191" {
		t.Errorf("flag overrides not applied: %s:%s", cfg.Host, cfg.Port)
	}
	if cfg.Addr() != "127.0.0.1:9191" {
		t.Errorf("Addr() = %s", cfg.Addr())
	}
}

func TestInitializeServices(t *testing.T) {
	cfg := &config.ServerConfig{
		PresetDir:     filepath.Join(t.TempDir(), "presets"),
		CheckpointDir: filepath.Join(t.TempDir(), "checkpoints"),
	}

	deps, err := initializeServices(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	if deps.service == nil {
		t.Fatal("Expected game service to be initialized")
	}
	if deps.hub == nil {
		t.Fatal("Expected websocket hub to be initialized")
	}
	if deps.registry == nil {
		t.Fatal("Expected session registry to be initialized")
	}
	if deps.registry.Count() != 0 {
		t.Errorf("fresh registry should be empty, has %d", deps.registry.Count())
	}
}

// Note: We can't easily test main(), runHTTPServer(), and
// runStdioMCPWithInternalServer() without significant mocking, as they start
// servers and block. Those paths are covered by integration tests against a
// running server.
