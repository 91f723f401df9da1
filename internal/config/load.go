package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable holding an explicit config
// file path. It is consulted when no --config flag is given.
const EnvConfig = "TERRACORE_CONFIG"

// LocalConfigName is the per-project config file looked up in the working
// directory.
const LocalConfigName = "terracore.yaml"

// Load merges defaults, the config file and flag overrides, in that
// order, and validates the result. The file is the --config path, else
// $TERRACORE_CONFIG, else the first of ./terracore.yaml and
// ConfigDir()/config.yaml that exists. An explicit path that does not
// exist is an error; a missing search location is not.
func Load(o Overrides) (*Config, error) {
	cfg := Default()

	path := o.ConfigPath
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	o.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads defaults merged with a single YAML file.
func LoadFile(path string) (*Config, error) {
	return Load(Overrides{ConfigPath: path})
}

// findConfigFile returns the first search location holding a regular
// file, or "".
func findConfigFile() string {
	candidates := []string{LocalConfigName}
	if dir := ConfigDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "config.yaml"))
	}

	for _, path := range candidates {
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user terracore config directory, built on
// os.UserConfigDir so XDG_CONFIG_HOME, Application Support and APPDATA
// are honoured. It falls back to ~/.terracore when the platform has no
// config directory.
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "terracore")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".terracore")
	}
	return ""
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
