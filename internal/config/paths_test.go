package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir_Default(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	os.Unsetenv(EnvConfigDir)

	dir := Dir()
	if !strings.HasSuffix(dir, filepath.Join(".config", "gistfav")) {
		t.Errorf("Dir() = %q, want suffix .config/gistfav", dir)
	}
}

func TestDir_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/test-gistfav")

	dir := Dir()
	if dir != "/tmp/test-gistfav" {
		t.Errorf("Dir() = %q, want /tmp/test-gistfav", dir)
	}
}

func TestConfigFile(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/test-gistfav")
	if f := ConfigFile(); f != filepath.Join("/tmp/test-gistfav", "config.yaml") {
		t.Errorf("ConfigFile() = %q", f)
	}
}

func TestTokenFile(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/test-gistfav")
	if f := TokenFile(); f != filepath.Join("/tmp/test-gistfav", "token") {
		t.Errorf("TokenFile() = %q", f)
	}
}

func TestLogFile(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/test-gistfav")

	cfg := Defaults()
	if got := cfg.LogFile(); got != filepath.Join("/tmp/test-gistfav", "gistfav.log") {
		t.Errorf("LogFile() = %q", got)
	}

	cfg.Log.File = "/var/log/gistfav.log"
	if got := cfg.LogFile(); got != "/var/log/gistfav.log" {
		t.Errorf("absolute LogFile() = %q", got)
	}

	cfg.Log.File = ""
	if got := cfg.LogFile(); got != "" {
		t.Errorf("LogFile() = %q, want empty when disabled", got)
	}
}
