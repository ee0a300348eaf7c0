package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"datalens-hq/saturn/pkg/config"
	"datalens-hq/saturn/pkg/manager"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Saturn - heuristic dashboard rule compiler",
	Long: `Saturn compiles loosely-structured YAML heuristic rules into canonical
dashboard-generation rules.

A rule document names dimensions, metrics and filters, and describes the
cards of an auto-generated dashboard for a class of data tables. Saturn
expands the document's shorthand forms, validates its structure and
cross-references, and serves the accepted rule set.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig resolves the effective configuration: the --config file
// when given, otherwise defaults plus SATURN_ environment overrides.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadConfigWithEnvOverrides(cfgFile)
	}
	return config.LoadFromEnv()
}

// loaderConfigFrom maps the rules configuration onto loader settings.
func loaderConfigFrom(cfg *config.Config) *manager.LoaderConfig {
	return &manager.LoaderConfig{
		MaxFileSize:       cfg.Rules.MaxFileSize,
		AllowedExtensions: cfg.Rules.Extensions,
		SkipHidden:        true,
		FollowSymlinks:    true,
		Workers:           cfg.Rules.Workers,
	}
}

// newLogger builds the process logger from the logging configuration.
// The --verbose flag forces debug level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
