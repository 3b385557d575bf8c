package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Layout.StartX != 100 || cfg.Layout.StageSpacing != 300 || cfg.Layout.DepthOffset != 400 {
		t.Errorf("unexpected layout defaults: %+v", cfg.Layout)
	}
	if cfg.Layout.NodeHeight != 40 || cfg.Layout.SiblingSpacing != 10 {
		t.Errorf("unexpected spacing defaults: %+v", cfg.Layout)
	}
	if cfg.Animation.Speed != 5 {
		t.Errorf("expected speed 5, got %v", cfg.Animation.Speed)
	}
	if cfg.Radii.Stage != 50 || cfg.Radii.Sub != 20 || cfg.Radii.SubSub != 10 {
		t.Errorf("unexpected radii: %+v", cfg.Radii)
	}
	if cfg.Interaction.DeleteThreshold != 100 {
		t.Errorf("expected delete threshold 100, got %v", cfg.Interaction.DeleteThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Layout.StageSpacing != 300 {
		t.Errorf("expected default config, got spacing %v", cfg.Layout.StageSpacing)
	}
}

func TestLoadFrom_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
layout:
  stage_spacing: 500
  relax: true
animation:
  speed: 8
interaction:
  fps: 60
store:
  path: ~/maps/procmap.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Layout.StageSpacing != 500 || !cfg.Layout.Relax {
		t.Errorf("layout not loaded: %+v", cfg.Layout)
	}
	if cfg.Layout.DepthOffset != 400 {
		t.Errorf("missing key lost its default: %v", cfg.Layout.DepthOffset)
	}
	if cfg.Animation.Speed != 8 || cfg.Animation.GrowthStep != 0.05 {
		t.Errorf("animation = %+v", cfg.Animation)
	}
	if got := cfg.FrameInterval(); got != time.Second/60 {
		t.Errorf("frame interval = %v", got)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "maps/procmap.db"); cfg.StorePath() != want {
		t.Errorf("store path = %q, want %q", cfg.StorePath(), want)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "interaction:\n  fps: 500\n  delete_threshold: -5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"interaction.fps", "interaction.delete_threshold"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
	if cfg.Interaction.FPS != 30 {
		t.Errorf("invalid config should fall back to defaults, fps = %d", cfg.Interaction.FPS)
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Layout.DepthOffset = 250
	cfg.Interaction.DoubleClickMS = 300

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Layout.DepthOffset != 250 {
		t.Errorf("depth offset = %v", loaded.Layout.DepthOffset)
	}
	if loaded.DoubleClick() != 300*time.Millisecond {
		t.Errorf("double click = %v", loaded.DoubleClick())
	}
}

func TestSessionOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Animation.Speed = 7
	cfg.Radii.Stage = 60
	cfg.Interaction.FitDelayMS = 80

	opts := cfg.SessionOptions()
	if opts.Driver.Speed != 7 || opts.Driver.Radii.Stage != 60 {
		t.Errorf("driver = %+v", opts.Driver)
	}
	if opts.FitDelay != 80*time.Millisecond || opts.FitDuration != 500*time.Millisecond {
		t.Errorf("fit timing = %v / %v", opts.FitDelay, opts.FitDuration)
	}
	if opts.DeleteThreshold != 100 {
		t.Errorf("threshold = %v", opts.DeleteThreshold)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	if got := ConfigPath(); got != "/tmp/xdg-config/procmap/config.yaml" {
		t.Errorf("ConfigPath = %q", got)
	}
	if got := DefaultConfig().StorePath(); got != "/tmp/xdg-data/procmap/maps.db" {
		t.Errorf("StorePath = %q", got)
	}
	if got := LogPath(); got != "/tmp/xdg-state/procmap/procmap.log" {
		t.Errorf("LogPath = %q", got)
	}
}
