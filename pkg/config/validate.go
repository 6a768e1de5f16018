package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "storage.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// validBackends is the closed set of storage backend names.
var validBackends = map[string]bool{
	"sqlite": true,
	"memory": true,
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All errors are collected and returned
// together rather than failing on the first.
func Validate(cfg *Config) error {
	var errs []FieldError

	if !validBackends[cfg.Facts.Backend] {
		errs = append(errs, FieldError{
			Field:   "facts.backend",
			Message: fmt.Sprintf("unknown backend %q (must be \"sqlite\" or \"memory\")", cfg.Facts.Backend),
		})
	}
	if cfg.Facts.Backend == "sqlite" && cfg.Facts.SQLitePath == "" {
		errs = append(errs, FieldError{Field: "facts.sqlite_path", Message: "path cannot be empty for the sqlite backend"})
	}
	if cfg.Facts.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "facts.busy_timeout", Message: "must not be negative"})
	}

	if !validBackends[cfg.Storage.Backend] {
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("unknown backend %q (must be \"sqlite\" or \"memory\")", cfg.Storage.Backend),
		})
	}
	if cfg.Storage.Backend == "sqlite" && cfg.Storage.SQLitePath == "" {
		errs = append(errs, FieldError{Field: "storage.sqlite_path", Message: "path cannot be empty for the sqlite backend"})
	}
	if cfg.Storage.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "storage.busy_timeout", Message: "must not be negative"})
	}
	if cfg.Storage.RetentionDays < 1 {
		errs = append(errs, FieldError{Field: "storage.retention_days", Message: "must be at least 1"})
	}

	if err := validateCronSpec(cfg.Scheduler.CycleSchedule); err != nil {
		errs = append(errs, FieldError{Field: "scheduler.cycle_schedule", Message: err.Error()})
	}
	if err := validateCronSpec(cfg.Scheduler.RetentionSchedule); err != nil {
		errs = append(errs, FieldError{Field: "scheduler.retention_schedule", Message: err.Error()})
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (must be debug, info, warn, or error)", cfg.Telemetry.Logging.Level),
		})
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (must be json, text, or console)", cfg.Telemetry.Logging.Format),
		})
	}

	if cfg.Telemetry.Metrics.Enabled {
		if cfg.Telemetry.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{Field: "telemetry.metrics.listen_address", Message: "address cannot be empty when metrics are enabled"})
		}
		if !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
			errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "path must start with /"})
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// validateCronSpec checks the structural shape of a standard 5-field cron
// expression. Full semantic validation happens when the scheduler parses
// the spec with the cron library.
func validateCronSpec(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return fmt.Errorf("cron expression cannot be empty")
	}
	if fields := strings.Fields(spec); len(fields) != 5 {
		return fmt.Errorf("cron expression must have 5 fields, got %d", len(fields))
	}
	return nil
}
