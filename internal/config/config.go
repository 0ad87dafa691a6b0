package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the client settings: where the local database lives and
// how to reach the sync service.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
	Email   string `yaml:"email"`
	Token   string `yaml:"token"`
	UID     string `yaml:"uid"`
}

// DefaultConfigPath returns ~/.config/golftrack/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "golftrack", "config.yaml"), nil
}

// DefaultDataPath returns ~/.local/share/golftrack/golftrack.db.
func DefaultDataPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "golftrack", "golftrack.db"), nil
}

// Load reads the config file, writing a default one on first run.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg, err := defaultConfig()
		if err != nil {
			return nil, err
		}
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Database.Path == "" {
		dbPath, err := DefaultDataPath()
		if err != nil {
			return nil, err
		}
		cfg.Database.Path = dbPath
	}
	return &cfg, nil
}

// Save writes the config, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func defaultConfig() (*Config, error) {
	dbPath, err := DefaultDataPath()
	if err != nil {
		return nil, err
	}
	return &Config{
		Database: DatabaseConfig{Path: dbPath},
		Server:   ServerConfig{Enabled: false},
	}, nil
}
