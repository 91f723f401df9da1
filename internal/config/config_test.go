package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/pflag"

	"github.com/Faultbox/terracore/pkg/cull"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Contour.Interval != 1 {
		t.Errorf("expected contour interval 1, got %g", cfg.Contour.Interval)
	}
	if cfg.Contour.MaxLevels != 5000 {
		t.Errorf("expected max levels 5000, got %d", cfg.Contour.MaxLevels)
	}
	if cfg.Shroud.Gravity != 9.81 {
		t.Errorf("expected gravity 9.81, got %g", cfg.Shroud.Gravity)
	}
	if cfg.Shroud.MaxCells != 250000 {
		t.Errorf("expected max cells 250000, got %d", cfg.Shroud.MaxCells)
	}
	if cfg.Tolerances.Chain != 1e-6 {
		t.Errorf("expected chain tolerance 1e-6, got %g", cfg.Tolerances.Chain)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
tolerances:
  chain: 0.001
contour:
  interval: 2.5
  spacing: 0.5
  closed: false
triangulate:
  max_edge: 40
  min_angle: 5
  use_3d: true
shroud:
  iterations: 60
  end_angle_deg: 80
logging:
  level: "debug"
  log_file: "terracore.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Tolerances.Chain != 0.001 {
		t.Errorf("expected chain tolerance 0.001, got %g", cfg.Tolerances.Chain)
	}
	if cfg.Tolerances.Plane != 1e-9 {
		t.Errorf("expected plane tolerance to keep its default, got %g", cfg.Tolerances.Plane)
	}
	if cfg.Contour.Interval != 2.5 {
		t.Errorf("expected interval 2.5, got %g", cfg.Contour.Interval)
	}
	if cfg.Contour.Closed {
		t.Error("expected closed to be false")
	}
	if cfg.Shroud.Iterations != 60 {
		t.Errorf("expected 60 iterations, got %d", cfg.Shroud.Iterations)
	}
	if cfg.Shroud.Gravity != 9.81 {
		t.Errorf("expected gravity to keep its default, got %g", cfg.Shroud.Gravity)
	}
	if cfg.Logging.LogFile != "terracore.log" {
		t.Errorf("expected log file 'terracore.log', got %s", cfg.Logging.LogFile)
	}

	opts := cfg.TriangulateOptions()
	if len(opts.Filters) != 2 {
		t.Fatalf("expected 2 cull filters, got %d", len(opts.Filters))
	}
	if f, ok := opts.Filters[0].(cull.MaxEdge); !ok || f.Length != 40 || !f.Use3D {
		t.Errorf("unexpected max edge filter %+v", opts.Filters[0])
	}
	if got := cfg.ContourOptions().Tolerances.Chain; got != 0.001 {
		t.Errorf("expected contour options to carry tolerances, got %g", got)
	}
	if got := cfg.ShroudParams().EndAngleDeg; got != 80 {
		t.Errorf("expected end angle 80, got %g", got)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
contour:
  interval: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Contour.Interval = 0
	cfg.Shroud.Gravity = -1

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
	if runtime.GOOS != "darwin" && runtime.GOOS != "windows" && dir != filepath.Join(xdg, "terracore") {
		t.Errorf("expected config dir under XDG_CONFIG_HOME, got %s", dir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	if err := os.WriteFile(LocalConfigName, []byte("contour:\n  interval: 5\n"), 0644); err != nil {
		t.Fatalf("failed to write local config: %v", err)
	}
	envPath := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(envPath, []byte("contour:\n  interval: 7\n"), 0644); err != nil {
		t.Fatalf("failed to write env config: %v", err)
	}

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Contour.Interval != 5 {
		t.Errorf("expected interval 5 from ./terracore.yaml, got %g", cfg.Contour.Interval)
	}

	t.Setenv(EnvConfig, envPath)
	cfg, err = Load(Overrides{})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Contour.Interval != 7 {
		t.Errorf("expected interval 7 from $%s, got %g", EnvConfig, cfg.Contour.Interval)
	}

	// The flag still wins over the environment.
	cfg, err = Load(Overrides{ConfigPath: LocalConfigName})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Contour.Interval != 5 {
		t.Errorf("expected interval 5 from --config, got %g", cfg.Contour.Interval)
	}

	t.Setenv(EnvConfig, filepath.Join(tmpDir, "missing.yaml"))
	if _, err := Load(Overrides{}); err == nil {
		t.Error("expected error for a missing $TERRACORE_CONFIG file, got nil")
	}
}

func TestLoadValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("shroud:\n  iterations: 1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFile(path)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "terracore.yaml")
	if err := os.WriteFile(configPath, []byte("contour:\n  interval: 5\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find terracore.yaml in current directory")
	}
}

func TestBindFlags(t *testing.T) {
	var o Overrides
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.BindFlags(fs)

	if err := fs.Parse([]string{"--debug", "--queue-size", "4", "--log-file", "x.log"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg := Default()
	o.apply(cfg)
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Tasks.QueueSize != 4 {
		t.Errorf("expected queue size 4, got %d", cfg.Tasks.QueueSize)
	}
	if cfg.Logging.LogFile != "x.log" {
		t.Errorf("expected log file x.log, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
logging:
  level: warn
tasks:
  queue_size: 8
contour:
  interval: 10
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(Overrides{ConfigPath: configPath, Debug: true})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Level comes from the flag, not the file.
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug from flag, got %s", cfg.Logging.Level)
	}
	if cfg.Tasks.QueueSize != 8 {
		t.Errorf("expected queue size 8 from file, got %d", cfg.Tasks.QueueSize)
	}
	if cfg.Contour.Interval != 10 {
		t.Errorf("expected interval 10 from file, got %g", cfg.Contour.Interval)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Contour.Interval = 0.25
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Contour.Interval != 0.25 {
		t.Errorf("expected interval 0.25, got %g", loaded.Contour.Interval)
	}
	if loaded.Tolerances != cfg.Tolerances {
		t.Errorf("expected tolerances %+v, got %+v", cfg.Tolerances, loaded.Tolerances)
	}
}
