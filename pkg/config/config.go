package config

import "time"

// Config is the root configuration structure for Saturn.
// It covers rule loading, the accepted-rule catalog, the filesystem
// watcher, logging, and metrics.
type Config struct {
	// Rules contains configuration for rule discovery and compilation.
	Rules RulesConfig `yaml:"rules"`

	// Catalog contains configuration for the accepted-rule catalog.
	Catalog CatalogConfig `yaml:"catalog"`

	// Watch contains configuration for the filesystem watcher and the
	// periodic rescan.
	Watch WatchConfig `yaml:"watch"`

	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics endpoint configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// RulesConfig contains configuration for rule discovery and compilation.
type RulesConfig struct {
	// Dir is the directory scanned for rule documents.
	// Default: "./rules"
	Dir string `yaml:"dir"`

	// Extensions lists the file extensions treated as rule documents.
	// Default: [".yaml", ".yml"]
	Extensions []string `yaml:"extensions"`

	// MaxFileSize is the largest rule document the loader will read,
	// in bytes. Larger files are rejected with an IO error.
	// Default: 1048576 (1MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// Workers is the number of documents compiled concurrently during
	// a directory load.
	// Default: 4
	Workers int `yaml:"workers"`
}

// CatalogConfig contains configuration for the accepted-rule catalog.
type CatalogConfig struct {
	// Backend selects the catalog store. Supported values are
	// "memory" and "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the path to the SQLite database file. Only used
	// when Backend is "sqlite".
	// Default: "data/catalog.db"
	SQLitePath string `yaml:"sqlite_path"`
}

// WatchConfig contains configuration for the filesystem watcher.
type WatchConfig struct {
	// Enabled controls whether the rules directory is watched for
	// changes.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Debounce is how long to wait after the last filesystem event
	// before reloading. Editors often produce several events per save.
	// Default: 500ms
	Debounce time.Duration `yaml:"debounce"`

	// RescanSchedule is a cron expression for periodic full rescans,
	// catching changes the watcher missed. Empty disables rescans.
	// Default: "@hourly"
	RescanSchedule string `yaml:"rescan_schedule"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format selects the log output format: "text" or "json".
	// Default: "text"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address for the metrics HTTP server.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`
}
