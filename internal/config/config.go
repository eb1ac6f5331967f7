package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Gist   GistConfig   `yaml:"gist"`
	Search SearchConfig `yaml:"search"`
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`
}

// GistConfig locates the gist file that stores the favorites.
type GistConfig struct {
	Owner    string `yaml:"owner"`
	ID       string `yaml:"id"`
	Filename string `yaml:"filename"`
	RawURL   string `yaml:"raw_url"`
	APIURL   string `yaml:"api_url"`
}

// SearchConfig holds search settings.
type SearchConfig struct {
	Mode          string `yaml:"mode"`         // "exact" or "fuzzy"
	FuzzyEngine   string `yaml:"fuzzy_engine"` // "sahilm" or "none"
	FuzzyMinScore int    `yaml:"fuzzy_min_score"`
}

// HTTPConfig holds HTTP client settings.
type HTTPConfig struct {
	Timeout string `yaml:"timeout"` // e.g., "30s"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // relative paths resolve against Dir()
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Gist: GistConfig{
			Filename: "data.json",
			RawURL:   "https://gist.githubusercontent.com",
			APIURL:   "https://api.github.com",
		},
		Search: SearchConfig{
			Mode:          "exact",
			FuzzyEngine:   "sahilm",
			FuzzyMinScore: -40,
		},
		HTTP: HTTPConfig{
			Timeout: "30s",
		},
		Log: LogConfig{
			Level: "info",
			File:  "gistfav.log",
		},
	}
}

// Load reads the config from disk. If the file doesn't exist, returns defaults.
func Load() (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(ConfigFile())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), err
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigFile(), data, 0o644)
}

// IsFirstRun returns true if the config file does not exist.
func IsFirstRun() bool {
	_, err := os.Stat(ConfigFile())
	return os.IsNotExist(err)
}

// Validate reports settings that make the gist unreachable.
func (c Config) Validate() error {
	var errs []error
	if c.Gist.Owner == "" {
		errs = append(errs, errors.New("gist.owner is required"))
	}
	if c.Gist.ID == "" {
		errs = append(errs, errors.New("gist.id is required"))
	}
	if c.Gist.Filename == "" {
		errs = append(errs, errors.New("gist.filename is required"))
	}
	if _, err := c.Timeout(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Timeout parses HTTP.Timeout, falling back to 30s when unset.
func (c Config) Timeout() (time.Duration, error) {
	if c.HTTP.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil {
		return 0, fmt.Errorf("http.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("http.timeout must be positive, got %s", d)
	}
	return d, nil
}
