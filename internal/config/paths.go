package config

import (
	"os"
	"path/filepath"
)

// Dir returns the configuration directory path (~/.config/gistfav).
// It can be overridden with the GISTFAV_CONFIG_DIR environment variable.
func Dir() string {
	if d := os.Getenv(EnvConfigDir); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "gistfav")
	}
	return filepath.Join(home, ".config", "gistfav")
}

// ConfigFile returns the path to the config.yaml file.
func ConfigFile() string {
	return filepath.Join(Dir(), "config.yaml")
}

// TokenFile returns the path to the file holding the access token.
func TokenFile() string {
	return filepath.Join(Dir(), "token")
}

// LogFile resolves the configured log file against Dir().
func (c Config) LogFile() string {
	if c.Log.File == "" {
		return ""
	}
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(Dir(), c.Log.File)
}
