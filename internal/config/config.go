package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/spf13/viper"
)

// Config represents the complete HiveCouncil configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Stream  StreamConfig  `mapstructure:"stream" yaml:"stream"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Limits  LimitsConfig  `mapstructure:"limits" yaml:"limits"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	TUI     TUIConfig     `mapstructure:"tui" yaml:"tui"`
}

// ServerConfig locates the HiveCouncil service
type ServerConfig struct {
	// BaseURL is the service address (default: "http://localhost:8000")
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// StreamPath is the endpoint that starts a session and streams its events
	StreamPath string `mapstructure:"stream_path" yaml:"stream_path"`
}

// StreamConfig controls how the event stream is consumed
type StreamConfig struct {
	// InactivityTimeoutSeconds fails a running session after this many seconds
	// without an event (0 = disabled)
	InactivityTimeoutSeconds int `mapstructure:"inactivity_timeout_seconds" yaml:"inactivity_timeout_seconds"`
	// MaxRecordBytes bounds a single reassembled stream record
	MaxRecordBytes int `mapstructure:"max_record_bytes" yaml:"max_record_bytes"`
}

// SessionConfig holds defaults for new sessions
type SessionConfig struct {
	DefaultIterations int    `mapstructure:"default_iterations" yaml:"default_iterations"`
	DefaultPreset     string `mapstructure:"default_preset" yaml:"default_preset"`
	DefaultTemplate   string `mapstructure:"default_template" yaml:"default_template"`
	// CostWarningThreshold highlights the running cost once it is reached (0 = never)
	CostWarningThreshold float64 `mapstructure:"cost_warning_threshold" yaml:"cost_warning_threshold"`
}

// LimitsConfig mirrors the limits the service enforces, checked before a
// session is started
type LimitsConfig struct {
	MaxPromptLength   int   `mapstructure:"max_prompt_length" yaml:"max_prompt_length"`
	MaxIterations     int   `mapstructure:"max_iterations" yaml:"max_iterations"`
	MaxCouncilMembers int   `mapstructure:"max_council_members" yaml:"max_council_members"`
	MaxFileBytes      int64 `mapstructure:"max_file_bytes" yaml:"max_file_bytes"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether a log file is written (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is where the log file is written. Empty means the config directory.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// Enabled shows the live viewer when stdout is a terminal (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	limits := council.DefaultLimits()
	return &Config{
		Server: ServerConfig{
			BaseURL:    "http://localhost:8000",
			StreamPath: "/api/session/stream",
		},
		Stream: StreamConfig{
			InactivityTimeoutSeconds: 300,
			MaxRecordBytes:           1 << 20,
		},
		Session: SessionConfig{
			DefaultIterations:    3,
			DefaultPreset:        council.PresetBalanced,
			DefaultTemplate:      council.TemplateBalanced,
			CostWarningThreshold: 1.00,
		},
		Limits: LimitsConfig{
			MaxPromptLength:   limits.MaxPromptLength,
			MaxIterations:     limits.MaxIterations,
			MaxCouncilMembers: limits.MaxMembers,
			MaxFileBytes:      limits.MaxFileBytes,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
		},
		TUI: TUIConfig{
			Enabled: true,
		},
	}
}

// InactivityTimeout returns the stall window as a time.Duration (0 means disabled)
func (c *StreamConfig) InactivityTimeout() time.Duration {
	return time.Duration(c.InactivityTimeoutSeconds) * time.Second
}

// CouncilLimits converts the configured limits for session validation
func (c *LimitsConfig) CouncilLimits() council.Limits {
	return council.Limits{
		MaxPromptLength: c.MaxPromptLength,
		MaxIterations:   c.MaxIterations,
		MaxMembers:      c.MaxCouncilMembers,
		MaxFileBytes:    c.MaxFileBytes,
	}
}

// LogDir returns the directory for the log file
func (c *LoggingConfig) LogDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return ConfigDir()
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Server defaults
	viper.SetDefault("server.base_url", defaults.Server.BaseURL)
	viper.SetDefault("server.stream_path", defaults.Server.StreamPath)

	// Stream defaults
	viper.SetDefault("stream.inactivity_timeout_seconds", defaults.Stream.InactivityTimeoutSeconds)
	viper.SetDefault("stream.max_record_bytes", defaults.Stream.MaxRecordBytes)

	// Session defaults
	viper.SetDefault("session.default_iterations", defaults.Session.DefaultIterations)
	viper.SetDefault("session.default_preset", defaults.Session.DefaultPreset)
	viper.SetDefault("session.default_template", defaults.Session.DefaultTemplate)
	viper.SetDefault("session.cost_warning_threshold", defaults.Session.CostWarningThreshold)

	// Limits defaults
	viper.SetDefault("limits.max_prompt_length", defaults.Limits.MaxPromptLength)
	viper.SetDefault("limits.max_iterations", defaults.Limits.MaxIterations)
	viper.SetDefault("limits.max_council_members", defaults.Limits.MaxCouncilMembers)
	viper.SetDefault("limits.max_file_bytes", defaults.Limits.MaxFileBytes)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// TUI defaults
	viper.SetDefault("tui.enabled", defaults.TUI.Enabled)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hivecouncil")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hivecouncil"
	}
	return filepath.Join(home, ".config", "hivecouncil")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
