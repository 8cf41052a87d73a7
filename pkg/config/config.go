// Package config loads and saves the tool configuration. The config file
// is plain YAML in the hc directory; it never holds secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"hc/pkg/store"
)

// Defaults.
const (
	DefaultSessionTimeoutMinutes = 60
	DefaultClipboardClearSeconds = 30
)

// Config is the persisted tool configuration.
type Config struct {
	SessionTimeoutMinutes uint `yaml:"session_timeout_minutes"`
	ClipboardClearSeconds uint `yaml:"clipboard_clear_seconds"`
	EnableBiometric       bool `yaml:"enable_biometric"`
}

// Default returns the configuration used on first run.
func Default() Config {
	return Config{
		SessionTimeoutMinutes: DefaultSessionTimeoutMinutes,
		ClipboardClearSeconds: DefaultClipboardClearSeconds,
		EnableBiometric:       false,
	}
}

func path(configDir string) string {
	return filepath.Join(configDir, "config.yaml")
}

// Load reads the configuration, writing the defaults to disk on first
// run so the file is there for the user to edit.
func Load(configDir string) (Config, error) {
	data, err := os.ReadFile(path(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := cfg.Save(configDir); err != nil {
				return Config{}, err
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: failed to read config.yaml: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse config.yaml: %w", err)
	}
	if cfg.SessionTimeoutMinutes == 0 {
		cfg.SessionTimeoutMinutes = DefaultSessionTimeoutMinutes
	}
	return cfg, nil
}

// Save writes the configuration.
func (c Config) Save(configDir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: failed to serialize: %w", err)
	}
	return store.WriteFileAtomic(path(configDir), data)
}

// Dir returns the hc configuration directory, creating it if needed.
// HC_CONFIG_DIR overrides the default for tests and sandboxes.
func Dir() (string, error) {
	if dir := os.Getenv("HC_CONFIG_DIR"); dir != "" {
		if err := os.MkdirAll(dir, store.DirMode); err != nil {
			return "", fmt.Errorf("config: failed to create config directory: %w", err)
		}
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".hc")
	if err := os.MkdirAll(dir, store.DirMode); err != nil {
		return "", fmt.Errorf("config: failed to create config directory: %w", err)
	}
	return dir, nil
}
