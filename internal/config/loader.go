package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".stakewatch"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
	// envPrefix namespaces every environment override.
	envPrefix = "STAKEWATCH"
)

// ConfigPath returns the path to the config file. STAKEWATCH_CONFIG overrides
// the default of ~/.stakewatch/config.json.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("STAKEWATCH_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load reads the config file (if present), applies environment overrides,
// and fills in defaults. A missing file is not an error.
func Load() (Config, error) {
	cfg := Defaults()

	path, err := ConfigPath()
	if err != nil {
		return cfg, fmt.Errorf("failed to resolve config path: %w", err)
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults apply.
	default:
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	applyFallbacks(&cfg, filepath.Dir(path))
	return cfg, nil
}

func applyFallbacks(cfg *Config, configDir string) {
	if cfg.Registry.Mode != "strict" {
		cfg.Registry.Mode = "sandbox"
	}
	if cfg.Registry.StorePath == "" {
		cfg.Registry.StorePath = filepath.Join(configDir, "profiles.db")
	}
	if cfg.Analysis.MaxNetworkNodes <= 0 {
		cfg.Analysis.MaxNetworkNodes = 500
	}
	if cfg.Analysis.MaxWorkers <= 0 {
		cfg.Analysis.MaxWorkers = 8
	}
	if cfg.Server.Name == "" {
		cfg.Server.Name = "stakewatch"
	}
}

// Save writes the configuration to the config path, creating the directory
// if needed.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
