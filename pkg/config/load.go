package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention SATURN_SECTION_FIELD (e.g., SATURN_RULES_DIR) and always
// take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv returns a default configuration with environment variable
// overrides applied, for running without a config file.
func LoadFromEnv() (*Config, error) {
	cfg := NewDefault()
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format SATURN_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Rules overrides
	if val := os.Getenv("SATURN_RULES_DIR"); val != "" {
		cfg.Rules.Dir = val
	}
	if val := os.Getenv("SATURN_RULES_EXTENSIONS"); val != "" {
		var exts []string
		for _, ext := range strings.Split(val, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				exts = append(exts, ext)
			}
		}
		cfg.Rules.Extensions = exts
	}
	if val := os.Getenv("SATURN_RULES_MAX_FILE_SIZE"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Rules.MaxFileSize = n
		}
	}
	if val := os.Getenv("SATURN_RULES_WORKERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Rules.Workers = n
		}
	}

	// Catalog overrides
	if val := os.Getenv("SATURN_CATALOG_BACKEND"); val != "" {
		cfg.Catalog.Backend = val
	}
	if val := os.Getenv("SATURN_CATALOG_SQLITE_PATH"); val != "" {
		cfg.Catalog.SQLitePath = val
	}

	// Watch overrides
	if val := os.Getenv("SATURN_WATCH_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Watch.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.Debounce = d
		}
	}
	if val := os.Getenv("SATURN_WATCH_RESCAN_SCHEDULE"); val != "" {
		cfg.Watch.RescanSchedule = val
	}

	// Logging overrides
	if val := os.Getenv("SATURN_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SATURN_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	// Metrics overrides
	if val := os.Getenv("SATURN_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SATURN_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}
}
