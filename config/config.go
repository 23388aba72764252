// Package config owns reading, validating, and persisting the omnirun
// configuration file. The rest of the program consumes the validated
// entities.Settings value and never touches yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

// Config is the on-disk configuration shape. Durations are expressed in
// seconds to keep hand-edited files simple.
type Config struct {
	AutoFix           bool              `yaml:"auto_fix"`
	EnableBackup      *bool             `yaml:"enable_backup"`
	AutoRollback      *bool             `yaml:"auto_rollback"`
	ConfirmEachAction bool              `yaml:"confirm_each_command"`
	MaxDepth          int               `yaml:"max_depth"`
	TimeoutSeconds    int               `yaml:"timeout"`
	ExcludeDirs       []string          `yaml:"exclude_dirs"`
	PreferredCommands map[string]string `yaml:"preferred_commands"`
}

// Load reads and parses a configuration file, filling defaults for every
// field the file omits.
func Load(path string) (*entities.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings, err := toSettings(&cfg)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadOrDefault loads the first config file found in standard locations,
// falling back to defaults when none exists. A file that exists but cannot
// be parsed is an error, never silently ignored.
func LoadOrDefault() (*entities.Settings, error) {
	path, err := FindConfigFile()
	if err != nil {
		defaults := entities.DefaultSettings()
		return &defaults, nil
	}
	return Load(path)
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{"."}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".omnirun.yaml",
		".omnirun.yml",
		"omnirun.yaml",
		"omnirun.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// SavePreferredCommand records the command last used for a program key,
// rewriting the config file in place. A missing file is created at the
// default location.
func SavePreferredCommand(key, command string) error {
	path, err := FindConfigFile()
	if err != nil {
		path = ".omnirun.yaml"
	}

	var cfg Config
	if data, readErr := os.ReadFile(path); readErr == nil {
		if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
			return fmt.Errorf("failed to parse config file: %w", unmarshalErr)
		}
	}

	if cfg.PreferredCommands == nil {
		cfg.PreferredCommands = make(map[string]string)
	}
	cfg.PreferredCommands[key] = command

	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if writeErr := os.WriteFile(path, out, 0o644); writeErr != nil {
		return fmt.Errorf("failed to write config file %q: %w", path, writeErr)
	}
	return nil
}

// toSettings validates the raw shape and converts it into the core's value
// object, defaulting omitted fields.
func toSettings(cfg *Config) (*entities.Settings, error) {
	settings := entities.DefaultSettings()

	settings.AutoFix = cfg.AutoFix
	settings.ConfirmEachAction = cfg.ConfirmEachAction

	if cfg.EnableBackup != nil {
		settings.EnableBackup = *cfg.EnableBackup
	}
	if cfg.AutoRollback != nil {
		settings.AutoRollback = *cfg.AutoRollback
	}

	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("max_depth must be non-negative, got %d", cfg.MaxDepth)
	}
	if cfg.MaxDepth > 0 {
		settings.MaxDepth = cfg.MaxDepth
	}

	if cfg.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", cfg.TimeoutSeconds)
	}
	if cfg.TimeoutSeconds > 0 {
		settings.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	settings.ExcludeDirs = cfg.ExcludeDirs
	if cfg.PreferredCommands != nil {
		settings.PreferredCommands = cfg.PreferredCommands
	}

	return &settings, nil
}
