package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("Server.BaseURL = %q, want %q", cfg.Server.BaseURL, "http://localhost:8000")
	}
	if cfg.Server.StreamPath != "/api/session/stream" {
		t.Errorf("Server.StreamPath = %q, want %q", cfg.Server.StreamPath, "/api/session/stream")
	}
	if cfg.Stream.InactivityTimeoutSeconds != 300 {
		t.Errorf("Stream.InactivityTimeoutSeconds = %d, want 300", cfg.Stream.InactivityTimeoutSeconds)
	}
	if cfg.Stream.MaxRecordBytes != 1<<20 {
		t.Errorf("Stream.MaxRecordBytes = %d, want %d", cfg.Stream.MaxRecordBytes, 1<<20)
	}
	if cfg.Session.DefaultIterations != 3 {
		t.Errorf("Session.DefaultIterations = %d, want 3", cfg.Session.DefaultIterations)
	}
	if cfg.Session.DefaultPreset != "balanced" || cfg.Session.DefaultTemplate != "balanced" {
		t.Errorf("Session defaults = %q/%q, want balanced/balanced", cfg.Session.DefaultPreset, cfg.Session.DefaultTemplate)
	}
	if cfg.Limits.MaxPromptLength != 50000 || cfg.Limits.MaxIterations != 10 || cfg.Limits.MaxCouncilMembers != 10 {
		t.Errorf("Limits = %+v", cfg.Limits)
	}
	if cfg.Limits.MaxFileBytes != 10*1024*1024 {
		t.Errorf("Limits.MaxFileBytes = %d, want 10 MiB", cfg.Limits.MaxFileBytes)
	}
	if cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be false by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if !cfg.TUI.Enabled {
		t.Error("TUI.Enabled should be true by default")
	}
}

func TestStreamConfig_InactivityTimeout(t *testing.T) {
	tests := []struct {
		seconds int
		want    time.Duration
	}{
		{300, 5 * time.Minute},
		{1, time.Second},
		{0, 0},
	}

	for _, tt := range tests {
		cfg := StreamConfig{InactivityTimeoutSeconds: tt.seconds}
		if got := cfg.InactivityTimeout(); got != tt.want {
			t.Errorf("InactivityTimeout() with %d = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestLimitsConfig_CouncilLimits(t *testing.T) {
	cfg := LimitsConfig{MaxPromptLength: 100, MaxIterations: 2, MaxCouncilMembers: 3, MaxFileBytes: 4}
	l := cfg.CouncilLimits()
	if l.MaxPromptLength != 100 || l.MaxIterations != 2 || l.MaxMembers != 3 || l.MaxFileBytes != 4 {
		t.Errorf("CouncilLimits() = %+v", l)
	}
}

func TestLoggingConfig_LogDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	cfg := LoggingConfig{}
	if got := cfg.LogDir(); got != "/custom/config/hivecouncil" {
		t.Errorf("LogDir() = %q, want config dir", got)
	}
	cfg.Dir = "/var/log/hive"
	if got := cfg.LogDir(); got != "/var/log/hive" {
		t.Errorf("LogDir() = %q, want /var/log/hive", got)
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")

		if got := ConfigDir(); got != "/custom/config/hivecouncil" {
			t.Errorf("ConfigDir() = %q, want %q", got, "/custom/config/hivecouncil")
		}
	})

	t.Run("falls back to home directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")

		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("cannot get home directory")
		}
		want := filepath.Join(home, ".config", "hivecouncil")
		if got := ConfigDir(); got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	if got := ConfigFile(); got != "/custom/config/hivecouncil/config.yaml" {
		t.Errorf("ConfigFile() = %q", got)
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults only", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		SetDefaults()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.BaseURL != Default().Server.BaseURL {
			t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		SetDefaults()

		path := filepath.Join(t.TempDir(), "config.yaml")
		content := strings.Join([]string{
			"server:",
			"  base_url: https://council.example.com",
			"stream:",
			"  inactivity_timeout_seconds: 0",
			"session:",
			"  default_iterations: 5",
			"  default_preset: precise",
			"",
		}, "\n")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			t.Fatalf("ReadInConfig() error = %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.BaseURL != "https://council.example.com" {
			t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
		}
		if cfg.Stream.InactivityTimeout() != 0 {
			t.Errorf("InactivityTimeout() = %v, want disabled", cfg.Stream.InactivityTimeout())
		}
		if cfg.Session.DefaultIterations != 5 || cfg.Session.DefaultPreset != "precise" {
			t.Errorf("Session = %+v", cfg.Session)
		}
		if cfg.Server.StreamPath != "/api/session/stream" {
			t.Errorf("unset key lost its default: StreamPath = %q", cfg.Server.StreamPath)
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		SetDefaults()
		viper.Set("logging.level", "verbose")
		viper.Set("session.default_iterations", 0)

		_, err := Load()
		errs, ok := err.(ValidationErrors)
		if !ok {
			t.Fatalf("Load() error = %v, want ValidationErrors", err)
		}
		if len(errs) != 2 {
			t.Errorf("got %d validation errors, want 2: %v", len(errs), errs)
		}
	})
}
