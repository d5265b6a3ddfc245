package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/Iron-Ham/hivecouncil/internal/council"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "stream.max_record_bytes")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// minRecordBytes keeps the record limit above any sane single event.
const minRecordBytes = 1024

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateStream()...)
	errors = append(errors, c.validateLimits()...)
	errors = append(errors, c.validateSession()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateServer validates the ServerConfig
func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "server.base_url",
			Value:   c.Server.BaseURL,
			Message: "must be an http or https URL",
		})
	}

	if !strings.HasPrefix(c.Server.StreamPath, "/") {
		errors = append(errors, ValidationError{
			Field:   "server.stream_path",
			Value:   c.Server.StreamPath,
			Message: "must start with /",
		})
	}

	return errors
}

// validateStream validates the StreamConfig
func (c *Config) validateStream() []ValidationError {
	var errors []ValidationError

	if c.Stream.InactivityTimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "stream.inactivity_timeout_seconds",
			Value:   c.Stream.InactivityTimeoutSeconds,
			Message: "must be non-negative (0 disables stall detection)",
		})
	}

	if c.Stream.MaxRecordBytes < minRecordBytes {
		errors = append(errors, ValidationError{
			Field:   "stream.max_record_bytes",
			Value:   c.Stream.MaxRecordBytes,
			Message: fmt.Sprintf("must be at least %d", minRecordBytes),
		})
	}

	return errors
}

// validateLimits validates the LimitsConfig
func (c *Config) validateLimits() []ValidationError {
	var errors []ValidationError

	positive := []struct {
		field string
		value int64
	}{
		{"limits.max_prompt_length", int64(c.Limits.MaxPromptLength)},
		{"limits.max_iterations", int64(c.Limits.MaxIterations)},
		{"limits.max_council_members", int64(c.Limits.MaxCouncilMembers)},
		{"limits.max_file_bytes", c.Limits.MaxFileBytes},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errors = append(errors, ValidationError{
				Field:   p.field,
				Value:   p.value,
				Message: "must be positive",
			})
		}
	}

	return errors
}

// validateSession validates the SessionConfig
func (c *Config) validateSession() []ValidationError {
	var errors []ValidationError

	if c.Session.DefaultIterations < 1 {
		errors = append(errors, ValidationError{
			Field:   "session.default_iterations",
			Value:   c.Session.DefaultIterations,
			Message: "must be at least 1",
		})
	} else if c.Limits.MaxIterations > 0 && c.Session.DefaultIterations > c.Limits.MaxIterations {
		errors = append(errors, ValidationError{
			Field:   "session.default_iterations",
			Value:   c.Session.DefaultIterations,
			Message: fmt.Sprintf("must not exceed limits.max_iterations (%d)", c.Limits.MaxIterations),
		})
	}

	if c.Session.DefaultPreset != "" && !slices.Contains(council.Presets(), c.Session.DefaultPreset) {
		errors = append(errors, ValidationError{
			Field:   "session.default_preset",
			Value:   c.Session.DefaultPreset,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(council.Presets(), ", ")),
		})
	}

	if c.Session.DefaultTemplate != "" && !slices.Contains(council.Templates(), c.Session.DefaultTemplate) {
		errors = append(errors, ValidationError{
			Field:   "session.default_template",
			Value:   c.Session.DefaultTemplate,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(council.Templates(), ", ")),
		})
	}

	if c.Session.CostWarningThreshold < 0 {
		errors = append(errors, ValidationError{
			Field:   "session.cost_warning_threshold",
			Value:   c.Session.CostWarningThreshold,
			Message: "must be non-negative (0 disables the warning)",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
