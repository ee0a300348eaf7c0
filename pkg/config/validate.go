package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "rules.dir").
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

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Rules.Dir == "" {
		errs = append(errs, FieldError{"rules.dir", "cannot be empty"})
	}
	for _, ext := range cfg.Rules.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{"rules.extensions",
				fmt.Sprintf("extension %q must start with a dot", ext)})
		}
	}
	if cfg.Rules.MaxFileSize < 0 {
		errs = append(errs, FieldError{"rules.max_file_size", "cannot be negative"})
	}
	if cfg.Rules.Workers < 1 {
		errs = append(errs, FieldError{"rules.workers", "must be at least 1"})
	}

	switch cfg.Catalog.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{"catalog.backend",
			fmt.Sprintf("unsupported backend %q (expected memory or sqlite)", cfg.Catalog.Backend)})
	}
	if cfg.Catalog.Backend == "sqlite" && cfg.Catalog.SQLitePath == "" {
		errs = append(errs, FieldError{"catalog.sqlite_path", "cannot be empty when backend is sqlite"})
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, FieldError{"watch.debounce", "cannot be negative"})
	}
	if cfg.Watch.RescanSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Watch.RescanSchedule); err != nil {
			errs = append(errs, FieldError{"watch.rescan_schedule",
				fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"logging.level",
			fmt.Sprintf("unsupported level %q (expected debug, info, warn, or error)", cfg.Logging.Level)})
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{"logging.format",
			fmt.Sprintf("unsupported format %q (expected text or json)", cfg.Logging.Format)})
	}

	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddress == "" {
		errs = append(errs, FieldError{"metrics.listen_address", "cannot be empty when metrics are enabled"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
