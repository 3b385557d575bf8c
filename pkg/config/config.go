// Package config handles loading and saving procmap configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/procmap/config.yaml
//   - Data:    ~/.local/share/procmap/ (map library)
//   - State:   ~/.local/state/procmap/ (log file)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/procmap/pkg/anim"
	"github.com/vanderheijden86/procmap/pkg/layout"
	"github.com/vanderheijden86/procmap/pkg/session"
)

const appName = "procmap"

// AnimationConfig holds the animation driver constants.
type AnimationConfig struct {
	Speed         float64 `yaml:"speed"`          // smoothing rate per second
	GrowthStep    float64 `yaml:"growth_step"`    // radius growth per frame for new stages
	SettleEpsilon float64 `yaml:"settle_epsilon"` // distance that ends a transition
}

// InteractionConfig holds pointer and camera behavior.
type InteractionConfig struct {
	DeleteThreshold float64 `yaml:"delete_threshold"` // drag distance that deletes
	FitDelayMS      int     `yaml:"fit_delay_ms"`     // debounce before auto-fit
	FitDurationMS   int     `yaml:"fit_duration_ms"`  // auto-fit transition length
	DoubleClickMS   int     `yaml:"double_click_ms"`  // max gap between clicks
	FPS             int     `yaml:"fps"`              // animation frame rate
}

// StoreConfig locates the map library.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Config is the top-level configuration for procmap.
type Config struct {
	Layout      layout.Config     `yaml:"layout"`
	Animation   AnimationConfig   `yaml:"animation"`
	Radii       anim.Radii        `yaml:"radii"`
	Interaction InteractionConfig `yaml:"interaction"`
	Store       StoreConfig       `yaml:"store,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Animation: AnimationConfig{
			Speed:         5,
			GrowthStep:    0.05,
			SettleEpsilon: 0.5,
		},
		Radii: anim.DefaultRadii(),
		Interaction: InteractionConfig{
			DeleteThreshold: 100,
			FitDelayMS:      50,
			FitDurationMS:   500,
			DoubleClickMS:   400,
			FPS:             30,
		},
	}
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	return validation.Errors{
		"layout.stage_spacing":         validation.Validate(c.Layout.StageSpacing, validation.Required, validation.Min(1.0)),
		"layout.depth_offset":          validation.Validate(c.Layout.DepthOffset, validation.Required, validation.Min(1.0)),
		"layout.node_height":           validation.Validate(c.Layout.NodeHeight, validation.Required, validation.Min(1.0)),
		"layout.sibling_spacing":       validation.Validate(c.Layout.SiblingSpacing, validation.Min(0.0)),
		"animation.speed":              validation.Validate(c.Animation.Speed, validation.Required, validation.Min(0.1)),
		"animation.growth_step":        validation.Validate(c.Animation.GrowthStep, validation.Required, validation.Min(0.001), validation.Max(1.0)),
		"animation.settle_epsilon":     validation.Validate(c.Animation.SettleEpsilon, validation.Min(0.0)),
		"radii.min":                    validation.Validate(c.Radii.Min, validation.Min(0.0)),
		"interaction.delete_threshold": validation.Validate(c.Interaction.DeleteThreshold, validation.Required, validation.Min(1.0)),
		"interaction.fit_delay_ms":     validation.Validate(c.Interaction.FitDelayMS, validation.Min(0)),
		"interaction.fit_duration_ms":  validation.Validate(c.Interaction.FitDurationMS, validation.Min(0)),
		"interaction.double_click_ms":  validation.Validate(c.Interaction.DoubleClickMS, validation.Required, validation.Min(50)),
		"interaction.fps":              validation.Validate(c.Interaction.FPS, validation.Required, validation.Min(1), validation.Max(240)),
	}.Filter()
}

// SessionOptions converts the configuration into session options.
func (c Config) SessionOptions() session.Options {
	driver := anim.NewDriver()
	driver.Speed = c.Animation.Speed
	driver.GrowthStep = c.Animation.GrowthStep
	driver.SettleEpsilon = c.Animation.SettleEpsilon
	driver.Radii = c.Radii

	return session.Options{
		Layout:          c.Layout,
		Driver:          driver,
		DeleteThreshold: c.Interaction.DeleteThreshold,
		FitDelay:        time.Duration(c.Interaction.FitDelayMS) * time.Millisecond,
		FitDuration:     time.Duration(c.Interaction.FitDurationMS) * time.Millisecond,
	}
}

// FrameInterval is the time between animation ticks.
func (c Config) FrameInterval() time.Duration {
	fps := c.Interaction.FPS
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}

// DoubleClick is the maximum gap between two clicks of a double click.
func (c Config) DoubleClick() time.Duration {
	return time.Duration(c.Interaction.DoubleClickMS) * time.Millisecond
}

// StorePath returns the library path, defaulting to the XDG data dir.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	dir := DataDir()
	if dir == "" {
		return "maps.db"
	}
	return filepath.Join(dir, "maps.db")
}

// ConfigDir returns the XDG config directory for procmap.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the XDG data directory for procmap.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", appName)
}

// StateDir returns the XDG state directory for procmap.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// LogPath returns the file the TUI writes its log to.
func LogPath() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, appName+".log")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist. Keys missing from the
// file keep their defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}

	cfg.Store.Path = expandHome(cfg.Store.Path)
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
