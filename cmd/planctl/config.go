package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is read from a YAML file and then overlaid by the environment.
type Config struct {
	APIURL    string `yaml:"api_url" env:"PLANCTL_API_URL"`
	Token     string `yaml:"token" env:"PLANCTL_TOKEN"`
	StatePath string `yaml:"state_path" env:"PLANCTL_STATE_PATH"`
	UserID    string `yaml:"user_id" env:"PLANCTL_USER_ID"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "planctl.yaml"
	}
	return filepath.Join(dir, "planctl", "config.yaml")
}

func defaultStatePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "planctl.db"
	}
	return filepath.Join(dir, "planctl", "state.db")
}

// loadConfig reads path if it exists. A missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := Config{
		APIURL:    "http://localhost:8080",
		StatePath: defaultStatePath(),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.APIURL == "" {
		return Config{}, errors.New("api_url is required")
	}
	return cfg, nil
}
