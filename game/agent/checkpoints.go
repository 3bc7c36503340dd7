package agent

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CheckpointStore manages the directory model files are saved into. It only
// deals in paths; reading and writing the model content is the Persister's
// job.
type CheckpointStore struct {
	dir string
}

// NewCheckpointStore creates the checkpoint directory if needed.
func NewCheckpointStore(dir string) (*CheckpointStore, error) {
	if dir == "" {
		dir = "checkpoints"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &CheckpointStore{dir: dir}, nil
}

// Dir returns the store's directory.
func (cs *CheckpointStore) Dir() string {
	return cs.dir
}

// Resolve builds the target path for a save. An empty filename produces a
// timestamped default, optionally tagged:
//
//	snake_agent_20260823-104500.json
//	snake_agent_best_20260823-104500.json
func (cs *CheckpointStore) Resolve(filename, tag string) string {
	if filename == "" {
		base := "snake_agent"
		if tag != "" {
			base += "_" + tag
		}
		filename = fmt.Sprintf("%s_%s.json", base, time.Now().Format("20060102-150405"))
	}
	return filepath.Join(cs.dir, filename)
}

// Locate returns the path for a load request. A bare filename is looked up
// inside the store; anything with a path separator is used as-is. Returns
// ErrCheckpointNotFound when the file does not exist.
func (cs *CheckpointStore) Locate(path string) (string, error) {
	if path == "" {
		return "", ErrCheckpointNotFound
	}
	if !strings.ContainsRune(path, os.PathSeparator) && !strings.ContainsRune(path, '/') {
		inStore := filepath.Join(cs.dir, path)
		if fileExists(inStore) {
			return inStore, nil
		}
	}
	if fileExists(path) {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrCheckpointNotFound, path)
}

// List returns the checkpoint filenames currently in the store.
func (cs *CheckpointStore) List() ([]string, error) {
	entries, err := os.ReadDir(cs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
