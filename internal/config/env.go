package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvConfigDir = "GISTFAV_CONFIG_DIR"
	EnvGistID    = "GISTFAV_GIST_ID"
	EnvGistOwner = "GISTFAV_GIST_OWNER"
	EnvGistFile  = "GISTFAV_GIST_FILE"
	EnvAPIURL    = "GISTFAV_API_URL"
	EnvRawURL    = "GISTFAV_RAW_URL"
)

// LoadDotEnv loads variables from .env files (default: ./.env) without
// overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overrides cfg with any GISTFAV_* variables that are set.
func ApplyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Gist.ID, EnvGistID)
	set(&cfg.Gist.Owner, EnvGistOwner)
	set(&cfg.Gist.Filename, EnvGistFile)
	set(&cfg.Gist.APIURL, EnvAPIURL)
	set(&cfg.Gist.RawURL, EnvRawURL)
}
