package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ConfigDir returns the config directory. R3X_CONFIG_DIR wins over
// ~/.config/r3x.
func ConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "r3x")
}

// ConfigExists returns true if the config file exists at the default path.
func ConfigExists() bool {
	return ConfigExistsAt(DefaultConfigPath())
}

// ConfigExistsAt returns true if a config file exists at the specified path.
func ConfigExistsAt(path string) bool {
	_, err := os.Stat(expandHome(path))
	return err == nil
}
