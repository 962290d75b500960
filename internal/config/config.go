package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/pstuifzand/chunkview/internal/diff"
	"github.com/pstuifzand/chunkview/internal/scrollsync"
)

const appName = "chunkview"

// SyncConfig tunes scroll synchronization between panes
type SyncConfig struct {
	QuietWindowMs   int     `toml:"quiet_window_ms"`
	MaxResolveDepth int     `toml:"max_resolve_depth"`
	Epsilon         float64 `toml:"epsilon"`
}

// DiffConfig tunes the structural diff
type DiffConfig struct {
	Granularity         string  `toml:"granularity"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	MaxDepth            int     `toml:"max_depth"`
}

// ReportConfig controls the chunkdiff report header
type ReportConfig struct {
	// TimestampFormat is a strftime pattern
	TimestampFormat string `toml:"timestamp_format"`
}

// Config holds application configuration
type Config struct {
	Theme    string            `toml:"theme"`
	Sync     SyncConfig        `toml:"sync"`
	Diff     DiffConfig        `toml:"diff"`
	Report   ReportConfig      `toml:"report"`
	Settings map[string]string `toml:"settings"`

	// Session settings (not persisted to TOML, overrides persisted settings)
	sessionSettings map[string]string
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
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := defaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Theme == "" {
		config.Theme = "tokyo-night"
	}
	if config.Settings == nil {
		config.Settings = make(map[string]string)
	}
	config.sessionSettings = make(map[string]string)

	return config, nil
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
	syncDefaults := scrollsync.DefaultOptions()
	diffDefaults := diff.DefaultOptions()
	return &Config{
		Theme: "tokyo-night",
		Sync: SyncConfig{
			QuietWindowMs:   int(syncDefaults.QuietWindow / time.Millisecond),
			MaxResolveDepth: syncDefaults.MaxResolveDepth,
			Epsilon:         syncDefaults.Epsilon,
		},
		Diff: DiffConfig{
			Granularity:         string(diffDefaults.Granularity),
			SimilarityThreshold: diffDefaults.SimilarityThreshold,
			MaxDepth:            diffDefaults.MaxDepth,
		},
		Report: ReportConfig{
			TimestampFormat: "%Y-%m-%d %H:%M:%S",
		},
		Settings:        make(map[string]string),
		sessionSettings: make(map[string]string),
	}
}

// GetConfigDir returns the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(home, ".config", appName)
	return configDir, nil
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	return os.MkdirAll(configDir, 0755)
}

// SyncOptions converts the [sync] section. Session settings named
// "sync.quiet_window_ms", "sync.max_resolve_depth" and "sync.epsilon"
// override the file values.
func (c *Config) SyncOptions() scrollsync.Options {
	s := c.Sync
	if v, ok := c.intSetting("sync.quiet_window_ms"); ok {
		s.QuietWindowMs = v
	}
	if v, ok := c.intSetting("sync.max_resolve_depth"); ok {
		s.MaxResolveDepth = v
	}
	if v, ok := c.floatSetting("sync.epsilon"); ok {
		s.Epsilon = v
	}
	return scrollsync.Options{
		QuietWindow:     time.Duration(s.QuietWindowMs) * time.Millisecond,
		MaxResolveDepth: s.MaxResolveDepth,
		Epsilon:         s.Epsilon,
	}
}

// DiffOptions converts the [diff] section. The session setting
// "diff.granularity" overrides the file value.
func (c *Config) DiffOptions() diff.Options {
	d := c.Diff
	if v := c.Get("diff.granularity"); v != "" {
		d.Granularity = v
	}
	if v, ok := c.floatSetting("diff.similarity_threshold"); ok {
		d.SimilarityThreshold = v
	}
	return diff.Options{
		Granularity:         diff.Granularity(d.Granularity),
		SimilarityThreshold: d.SimilarityThreshold,
		MaxDepth:            d.MaxDepth,
	}
}

func (c *Config) intSetting(key string) (int, bool) {
	v := c.Get(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *Config) floatSetting(key string) (float64, bool) {
	v := c.Get(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
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

// Save persists the configuration to the TOML file
// Note: session settings are not written
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return c.SaveToFile(configPath)
}

// SaveToFile writes the persisted configuration to filePath
func (c *Config) SaveToFile(filePath string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
