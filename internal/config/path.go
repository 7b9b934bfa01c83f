// Package config loads billwell settings from viper, the environment and
// defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR references in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return os.ExpandEnv(path)
}

// DataDir is where billwell keeps its local database.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "billwell")
	}
	return ExpandPath("~/.local/share/billwell")
}

// ConfigDir is searched for config.yaml.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "billwell")
	}
	return ExpandPath("~/.config/billwell")
}

// DefaultDatabasePath is the status overlay and session database.
func DefaultDatabasePath() string {
	return filepath.Join(DataDir(), "billwell.db")
}
