package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/pstuifzand/treestate/internal/model"
)

const appName = "treestate"

// Config holds application configuration
type Config struct {
	SelectionMode    model.SelectionMode `toml:"selection_mode"`
	AllowsExpansion  bool                `toml:"allows_expansion"`
	AllowsVisibility bool                `toml:"allows_visibility"`
	GroupID          string              `toml:"group_id"`
	AcceptedTypes    []string            `toml:"accepted_types"`
	DataDir          string              `toml:"data_dir"` // Backups and history; empty means ~/.local/share/treestate
	Settings         map[string]string   `toml:"settings"`

	// Session settings (not persisted to TOML, overrides persisted settings)
	sessionSettings map[string]string
	path            string
}

// Load loads the config file from the standard location
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return defaultConfig(), nil // Return default if can't find config path
	}

	return LoadFromFile(configPath)
}

// LoadFromFile loads config from a specific file
func LoadFromFile(filePath string) (*Config, error) {
	// If file doesn't exist, return default config
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		config := defaultConfig()
		config.path = filePath
		return config, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file fileConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults if not specified
	config := defaultConfig()
	if file.SelectionMode != nil {
		config.SelectionMode = *file.SelectionMode
	}
	if file.AllowsExpansion != nil {
		config.AllowsExpansion = *file.AllowsExpansion
	}
	if file.AllowsVisibility != nil {
		config.AllowsVisibility = *file.AllowsVisibility
	}
	if file.GroupID != "" {
		config.GroupID = file.GroupID
	}
	if len(file.AcceptedTypes) > 0 {
		config.AcceptedTypes = file.AcceptedTypes
	}
	config.DataDir = file.DataDir
	if file.Settings != nil {
		config.Settings = file.Settings
	}
	config.path = filePath

	return config, nil
}

// fileConfig mirrors Config with optional fields, so absent keys keep their defaults
type fileConfig struct {
	SelectionMode    *model.SelectionMode `toml:"selection_mode"`
	AllowsExpansion  *bool                `toml:"allows_expansion"`
	AllowsVisibility *bool                `toml:"allows_visibility"`
	GroupID          string               `toml:"group_id"`
	AcceptedTypes    []string             `toml:"accepted_types"`
	DataDir          string               `toml:"data_dir"`
	Settings         map[string]string    `toml:"settings"`
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// defaultConfig returns the default configuration
func defaultConfig() *Config {
	return &Config{
		SelectionMode:    model.SelectionMultiple,
		AllowsExpansion:  true,
		AllowsVisibility: true,
		GroupID:          "tree",
		AcceptedTypes:    []string{"all"},
		Settings:         make(map[string]string),
		sessionSettings:  make(map[string]string),
	}
}

// GetConfigDir returns the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", appName), nil
}

// DataPath returns name inside the data directory, or an empty string when
// no data directory is configured
func (c *Config) DataPath(name string) string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, name)
}

// Set sets a session configuration value
func (c *Config) Set(key, value string) {
	if c.sessionSettings == nil {
		c.sessionSettings = make(map[string]string)
	}
	c.sessionSettings[key] = value
}

// Get retrieves a configuration value, checking session settings first (which override persisted settings)
// Returns empty string if not found in either source
func (c *Config) Get(key string) string {
	if c.sessionSettings != nil {
		if val, ok := c.sessionSettings[key]; ok {
			return val
		}
	}

	if c.Settings != nil {
		if val, ok := c.Settings[key]; ok {
			return val
		}
	}

	return ""
}

// GetBool reads a setting as a bool, falling back to def when unset or invalid
func (c *Config) GetBool(key string, def bool) bool {
	b, err := strconv.ParseBool(c.Get(key))
	if err != nil {
		return def
	}
	return b
}

// GetAll returns all configuration values (both persisted and session)
// Session settings override persisted settings with the same key
func (c *Config) GetAll() map[string]string {
	result := make(map[string]string)

	for k, v := range c.Settings {
		result[k] = v
	}
	for k, v := range c.sessionSettings {
		result[k] = v
	}

	return result
}

// Save persists the configuration to the TOML file it was loaded from,
// or to the standard location.
// Note: This only persists the Settings map, not session settings
func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		p, err := getConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		configPath = p
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
