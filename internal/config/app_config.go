// Package config provides YAML-based process settings and resolves the
// per-user configuration directory shared with the command-line tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AppName is the directory name under the user config root.
const AppName = "slide-scroller"

// FileName is the process settings file inside the config directory.
const FileName = "overlay.yaml"

// AppConfig represents the root YAML configuration structure
type AppConfig struct {
	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Rotation and animation timing
	Rotation RotationConfig `yaml:"rotation"`

	// Local control server
	Control ControlConfig `yaml:"control"`

	// Logging
	Log LogConfig `yaml:"log"`

	dir string
}

// StorageConfig names the files kept in the config directory
type StorageConfig struct {
	Document string `yaml:"document"`
	PIDFile  string `yaml:"pid_file"`
	LogFile  string `yaml:"log_file"`
}

// RotationConfig contains timing settings
type RotationConfig struct {
	TickInterval        time.Duration `yaml:"tick_interval"`
	FrameInterval       time.Duration `yaml:"frame_interval"`
	TransitionDuration  time.Duration `yaml:"transition_duration"`
	KeepOnTopInterval   time.Duration `yaml:"keep_on_top_interval"`
	PlaceholderDuration int           `yaml:"placeholder_duration_seconds"`
}

// ControlConfig contains HTTP control server settings
type ControlConfig struct {
	Enabled              bool   `yaml:"enabled"`
	BindAddress          string `yaml:"bind_address"`
	Port                 int    `yaml:"port"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Document: "slides.json",
			PIDFile:  "app.pid",
			LogFile:  "app.log",
		},
		Rotation: RotationConfig{
			TickInterval:        time.Second,
			FrameInterval:       16 * time.Millisecond,
			TransitionDuration:  500 * time.Millisecond,
			KeepOnTopInterval:   500 * time.Millisecond,
			PlaceholderDuration: 5,
		},
		Control: ControlConfig{
			Enabled:              true,
			BindAddress:          "127.0.0.1",
			Port:                 8765,
			EnableRequestLogging: false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the per-user configuration directory. SLIDE_SCROLLER_CONFIG_DIR
// wins, then XDG_CONFIG_HOME, then ~/.config, then %APPDATA%.
func Dir() (string, error) {
	if dir := os.Getenv("SLIDE_SCROLLER_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", AppName), nil
	}
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, AppName), nil
	}
	return "", errors.New("no user configuration directory")
}

// Load reads overlay.yaml from the per-user configuration directory.
func Load() (*AppConfig, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadConfig(filepath.Join(dir, FileName))
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// If file doesn't exist, create default
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()
	config.dir = filepath.Dir(configPath)

	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Slide scroller overlay settings\n# This file is auto-generated on first run\n\n")
	if err := os.WriteFile(configPath, append(header, output...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("SLIDE_SCROLLER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Control.Port = p
		}
	}

	if level := os.Getenv("SLIDE_SCROLLER_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// resolve joins a relative file name onto the config directory.
func (c *AppConfig) resolve(name string) string {
	if filepath.IsAbs(name) || c.dir == "" {
		return name
	}
	return filepath.Join(c.dir, name)
}

// ConfigDir returns the directory the settings were loaded from.
func (c *AppConfig) ConfigDir() string { return c.dir }

// DocumentPath returns the absolute path of the shared JSON document.
func (c *AppConfig) DocumentPath() string { return c.resolve(c.Storage.Document) }

// PIDPath returns the absolute path of the PID marker.
func (c *AppConfig) PIDPath() string { return c.resolve(c.Storage.PIDFile) }

// LogPath returns the absolute path of the daemon log.
func (c *AppConfig) LogPath() string { return c.resolve(c.Storage.LogFile) }

// GetServerAddr returns the control server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Control.BindAddress, c.Control.Port)
}

// BaseURL returns the control server URL for clients.
func (c *AppConfig) BaseURL() string {
	return "http://" + c.GetServerAddr()
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	for _, path := range []string{c.DocumentPath(), c.PIDPath(), c.LogPath()} {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
