// Package config loads the application configuration: identity, default
// window attributes and updater endpoints.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"shoji/window"
)

// WindowConfig declares the attributes the first application window opens
// with. Optional values are pointers so an omitted key keeps the built-in
// default instead of zeroing it.
type WindowConfig struct {
	Title       string   `yaml:"title"`
	URL         string   `yaml:"url"`
	Width       float64  `yaml:"width"`
	Height      float64  `yaml:"height"`
	MinWidth    *float64 `yaml:"min_width"`
	MinHeight   *float64 `yaml:"min_height"`
	MaxWidth    *float64 `yaml:"max_width"`
	MaxHeight   *float64 `yaml:"max_height"`
	X           *float64 `yaml:"x"`
	Y           *float64 `yaml:"y"`
	Resizable   *bool    `yaml:"resizable"`
	Fullscreen  bool     `yaml:"fullscreen"`
	Focus       bool     `yaml:"focus"`
	Maximized   bool     `yaml:"maximized"`
	Visible     *bool    `yaml:"visible"`
	Transparent bool     `yaml:"transparent"`
	Decorations *bool    `yaml:"decorations"`
	AlwaysOnTop bool     `yaml:"always_on_top"`
	SkipTaskbar bool     `yaml:"skip_taskbar"`
	Icon        string   `yaml:"icon"`
}

// UpdaterConfig configures the update check. Endpoints may embed
// {{target}} and {{current_version}} template variables.
type UpdaterConfig struct {
	Active    bool     `yaml:"active"`
	Endpoints []string `yaml:"endpoints"`
	PublicKey string   `yaml:"pubkey"`
}

// Config is the root application configuration.
type Config struct {
	Name    string        `yaml:"name"`
	Version string        `yaml:"version"`
	Window  WindowConfig  `yaml:"window"`
	Updater UpdaterConfig `yaml:"updater"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Name:    "shoji-app",
		Version: "0.1.0",
		Window: WindowConfig{
			Width:  800,
			Height: 600,
		},
	}
}

// DefaultConfigPath returns the standard configuration file location
// under the user's config directory.
func DefaultConfigPath(appName string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(base, appName, "config.yaml"), nil
}

// Load reads the configuration at path. A missing file yields the
// defaults; a present but invalid file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can act on.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %gx%g",
			c.Window.Width, c.Window.Height)
	}
	if c.Updater.Active && len(c.Updater.Endpoints) == 0 {
		return fmt.Errorf("updater is active but has no endpoints")
	}
	return nil
}

// Attributes maps the window configuration onto window attributes,
// starting from the library defaults so unset keys keep them.
func (w WindowConfig) Attributes() window.Attributes {
	attrs := window.DefaultAttributes()
	attrs.Title = w.Title
	attrs.Size = window.LogicalSize{Width: w.Width, Height: w.Height}
	if w.MinWidth != nil && w.MinHeight != nil {
		attrs.MinSize = &window.LogicalSize{Width: *w.MinWidth, Height: *w.MinHeight}
	}
	if w.MaxWidth != nil && w.MaxHeight != nil {
		attrs.MaxSize = &window.LogicalSize{Width: *w.MaxWidth, Height: *w.MaxHeight}
	}
	if w.X != nil && w.Y != nil {
		attrs.Position = &window.LogicalPosition{X: *w.X, Y: *w.Y}
	}
	if w.Resizable != nil {
		attrs.Resizable = *w.Resizable
	}
	if w.Visible != nil {
		attrs.Visible = *w.Visible
	}
	if w.Decorations != nil {
		attrs.Decorations = *w.Decorations
	}
	attrs.Fullscreen = w.Fullscreen
	attrs.Focus = w.Focus
	attrs.Maximized = w.Maximized
	attrs.Transparent = w.Transparent
	attrs.AlwaysOnTop = w.AlwaysOnTop
	attrs.SkipTaskbar = w.SkipTaskbar
	if w.Icon != "" {
		attrs.Icon = &window.Icon{Path: w.Icon}
	}
	return attrs
}
