// Package config supplies the two configuration surfaces of the backend.
//
// ServerConfig is process-level configuration read from environment
// variables (with .env support handled by the caller). Preset management
// loads named grid presets from JSON files on disk, caches them, and falls
// back to a built-in classic preset when the directory has nothing usable.
package config
