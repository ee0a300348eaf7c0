package config

import "time"

// Default values for configuration fields.
const (
	// Rules defaults
	DefaultRulesDir    = "./rules"
	DefaultMaxFileSize = 1048576 // 1MB
	DefaultWorkers     = 4

	// Catalog defaults
	DefaultCatalogBackend = "memory"
	DefaultSQLitePath     = "data/catalog.db"

	// Watch defaults
	DefaultWatchDebounce  = 500 * time.Millisecond
	DefaultRescanSchedule = "@hourly"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// Metrics defaults
	DefaultMetricsListenAddress = "127.0.0.1:9090"
)

// DefaultExtensions are the file extensions treated as rule documents
// when none are configured.
func DefaultExtensions() []string {
	return []string{".yaml", ".yml"}
}

// ApplyDefaults fills in default values for any zero-valued fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Rules.Dir == "" {
		cfg.Rules.Dir = DefaultRulesDir
	}
	if len(cfg.Rules.Extensions) == 0 {
		cfg.Rules.Extensions = DefaultExtensions()
	}
	if cfg.Rules.MaxFileSize == 0 {
		cfg.Rules.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Rules.Workers == 0 {
		cfg.Rules.Workers = DefaultWorkers
	}

	if cfg.Catalog.Backend == "" {
		cfg.Catalog.Backend = DefaultCatalogBackend
	}
	if cfg.Catalog.SQLitePath == "" {
		cfg.Catalog.SQLitePath = DefaultSQLitePath
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	if cfg.Watch.RescanSchedule == "" {
		cfg.Watch.RescanSchedule = DefaultRescanSchedule
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
}

// NewDefault returns a configuration with all defaults applied.
func NewDefault() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
