package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ServerConfig is the process configuration, populated from the
// environment.
type ServerConfig struct {
	Host          string `env:"HOST" envDefault:"0.0.0.0"`
	Port          string `env:"PORT" envDefault:"8080"`
	PresetDir     string `env:"PRESET_DIR" envDefault:"presets"`
	CheckpointDir string `env:"CHECKPOINT_DIR" envDefault:"checkpoints"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED" envDefault:"false"`
	NgrokAuthtoken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// FromEnv parses the server configuration out of the environment.
func FromEnv() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment config: %w", err)
	}
	return &cfg, nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}
