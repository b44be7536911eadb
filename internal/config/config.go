package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "R3X"

// ConfigDirEnv names the environment variable that overrides the config
// directory.
const ConfigDirEnv = "R3X_CONFIG_DIR"

// configFilePath stores the path to the loaded config file
var configFilePath string

// Init initializes the global configuration.
// It searches for configuration files in priority order:
//  1. Directory specified by R3X_CONFIG_DIR environment variable
//  2. ~/.config/r3x/
//  3. Current working directory (.)
//
// If no config file is found, defaults are used.
// If a config file exists but is invalid or unreadable, Init returns an error.
func Init() error {
	configureViper(viper.GetViper())
	setDefaults()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			configFilePath = ""
			return nil
		}
		return fmt.Errorf("failed to read config; %w", err)
	}

	configFilePath = viper.ConfigFileUsed()
	slog.Debug("config initialized", "file", configFilePath)

	return nil
}

// configureViper applies the file name, env binding and search paths shared
// by Init and Load.
func configureViper(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if envPath := os.Getenv(ConfigDirEnv); envPath != "" {
		v.AddConfigPath(envPath)
	}
	if home := os.Getenv("HOME"); home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", "r3x"))
	}
	v.AddConfigPath(".")
}

// ConfigFilePath returns the path to the loaded config file,
// or empty string if using defaults only.
func ConfigFilePath() string {
	return configFilePath
}

// Reset clears the configuration state for testing purposes.
func Reset() {
	viper.Reset()
	configFilePath = ""
}

// GetString returns the string value for the given key.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns the integer value for the given key.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns the boolean value for the given key.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Set sets a value for the given key, overriding defaults and config file values.
// Primarily used for testing.
func Set(key string, value any) {
	viper.Set(key, value)
}

// GetPath returns the string value for the given key with ~ expanded to $HOME.
func GetPath(key string) string {
	return expandHome(viper.GetString(key))
}

// Current returns the typed form of the global configuration. Init must
// have been called.
func Current() (*Config, error) {
	return unmarshalConfig(viper.GetViper())
}

// expandHome expands a leading ~ in path to the user's home directory.
// Only "~" alone and "~/..." are expanded.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) > 1 && path[1] != '/' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if len(path) == 1 {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ExpandHome is the exported form of expandHome for command packages.
func ExpandHome(path string) string {
	return expandHome(path)
}

// GetConfigPath returns the path where the config file should be located.
// If a config file is loaded, returns its path. Otherwise returns the default path.
func GetConfigPath() string {
	if configFilePath != "" {
		return configFilePath
	}
	return DefaultConfigPath()
}

// GetAllSettings returns all configuration settings as a map.
func GetAllSettings() map[string]any {
	return viper.AllSettings()
}
