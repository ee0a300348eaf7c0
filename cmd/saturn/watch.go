package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"datalens-hq/saturn/pkg/catalog"
	"datalens-hq/saturn/pkg/config"
	"datalens-hq/saturn/pkg/manager"
	"datalens-hq/saturn/pkg/telemetry/metrics"
)

var watchFlags struct {
	dir    string
	dryRun bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Load rules and keep them in sync with the rules directory",
	Long: `Load rules and keep them in sync with the rules directory.

Watch performs an initial load of all rule documents, then watches the
directory for changes and reloads on every burst of file events. When a
rescan schedule is configured, the whole directory is additionally
rescanned on that schedule. A reload that fails keeps the last good
rule set active.

Examples:
  # Watch the configured rules directory
  saturn watch

  # Watch an explicit directory
  saturn watch --dir rules/

  # Validate the directory and exit without watching
  saturn watch --dry-run`,
	RunE: watchRules,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.dir, "dir", "d", "", "directory of rule files (defaults to rules.dir from config)")
	watchCmd.Flags().BoolVar(&watchFlags.dryRun, "dry-run", false, "load and validate once, then exit")
}

func watchRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchFlags.dir != "" {
		cfg.Rules.Dir = watchFlags.dir
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := newLogger(cfg)

	// Catalog backend
	var store catalog.Store
	switch cfg.Catalog.Backend {
	case "sqlite":
		store, err = catalog.NewSQLiteStore(cfg.Catalog.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open rule catalog: %w", err)
		}
	case "memory":
		store = catalog.NewMemoryStore()
	default:
		return fmt.Errorf("unsupported catalog backend: %s", cfg.Catalog.Backend)
	}
	defer store.Close()

	var lm *metrics.LoaderMetrics
	if cfg.Metrics.Enabled {
		lm = metrics.NewLoaderMetrics(nil)
	}

	mgr, err := manager.NewRuleManager(cfg, store, lm, logger)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if watchFlags.dryRun {
		if err := mgr.ValidateDryRun(); err != nil {
			return err
		}
		fmt.Println("✓ Rules valid")
		return nil
	}

	if err := mgr.LoadRules(); err != nil {
		return fmt.Errorf("initial rule load failed: %w", err)
	}
	fmt.Printf("✓ Loaded %d rules (version %s)\n", mgr.Registry().Count(), mgr.Version())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics endpoint
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", lm.Handler())
		metricsSrv = &http.Server{
			Addr:              cfg.Metrics.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Metrics endpoint listening", "address", cfg.Metrics.ListenAddress)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", "error", err)
			}
		}()
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Metrics.ListenAddress)
	}

	if !cfg.Watch.Enabled {
		fmt.Println("Watching disabled, press Ctrl+C to stop")
		<-ctx.Done()
	} else {
		fmt.Printf("✓ Watching %s, press Ctrl+C to stop\n", cfg.Rules.Dir)
		if err := mgr.Watch(ctx); err != nil {
			return err
		}
	}

	fmt.Println("\nShutting down...")
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", "error", err)
		}
	}
	fmt.Println("✓ Stopped")
	return nil
}
