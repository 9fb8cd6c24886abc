package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const (
	defaultServerURL = "http://localhost:8080"
	envVarServerURL  = "QUORE_SERVER_URL"
	envVarWorkspace  = "QUORE_WORKSPACE"
	configFileName   = ".quore/config.yml"
)

// Config holds the quorectl configuration
type Config struct {
	ServerURL string `yaml:"server"`
	Workspace string `yaml:"workspace"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := &Config{}

	// Try to load from config file
	if err := loadFromFile(cfg); err != nil {
		// Ignore file not found errors, use defaults
	}

	return cfg, nil
}

// GetServerURL returns the server URL with priority: env var > config file > default
func (c *Config) GetServerURL() string {
	if url := os.Getenv(envVarServerURL); url != "" {
		return url
	}
	if c.ServerURL != "" {
		return c.ServerURL
	}
	return defaultServerURL
}

// GetWorkspace returns the default workspace id, if any
func (c *Config) GetWorkspace() string {
	if ws := os.Getenv(envVarWorkspace); ws != "" {
		return ws
	}
	return c.Workspace
}

// loadFromFile loads configuration from ~/.quore/config.yml
func loadFromFile(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, configFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}
