package manager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"datalens-hq/saturn/pkg/catalog"
	"datalens-hq/saturn/pkg/config"
	"datalens-hq/saturn/pkg/srl/ast"
	"datalens-hq/saturn/pkg/srl/compiler"
	"datalens-hq/saturn/pkg/telemetry/metrics"
)

// RuleManager coordinates rule loading, validation, registration,
// catalog recording, and hot-reload.
type RuleManager struct {
	config   *config.Config
	loader   *RuleLoader
	registry *RuleRegistry
	catalog  catalog.Store
	metrics  *metrics.LoaderMetrics
	logger   *slog.Logger

	// State management
	mu            sync.RWMutex
	lastLoadTime  time.Time
	lastLoadError error
	lastGoodRules []*ast.Rule // For error recovery

	// Watch management
	watchCtx    context.Context
	watchCancel context.CancelFunc
	watchMu     sync.Mutex
}

// NewRuleManager creates a new rule manager. The catalog store and
// metrics may be nil, disabling catalog recording and instrumentation
// respectively.
func NewRuleManager(cfg *config.Config, store catalog.Store, lm *metrics.LoaderMetrics, logger *slog.Logger) (*RuleManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	loaderConfig := &LoaderConfig{
		MaxFileSize:       cfg.Rules.MaxFileSize,
		AllowedExtensions: cfg.Rules.Extensions,
		SkipHidden:        true,
		FollowSymlinks:    true,
		Workers:           cfg.Rules.Workers,
	}

	comp := compiler.New(
		compiler.WithMaxFileSize(cfg.Rules.MaxFileSize),
		compiler.WithTableTypeFallback(compiler.TableTypeFromPath),
	)

	return &RuleManager{
		config:        cfg,
		loader:        NewRuleLoader(loaderConfig, comp, logger, lm),
		registry:      NewRuleRegistry(nil),
		catalog:       store,
		metrics:       lm,
		logger:        logger,
		lastGoodRules: []*ast.Rule{},
	}, nil
}

// LoadRules loads all rules from the configured directory, registering
// them atomically. Rejected documents are logged and skipped; the load
// only fails outright when no document could be loaded at all.
func (m *RuleManager) LoadRules() error {
	return m.load(false)
}

// ReloadRules reloads all rules from the configured directory. On
// failure the previously loaded rule set is kept.
func (m *RuleManager) ReloadRules() error {
	return m.load(true)
}

func (m *RuleManager) load(isReload bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	startTime := time.Now()
	m.logger.Info("Loading rules", "dir", m.config.Rules.Dir, "reload", isReload)

	rules, err := m.loader.LoadFromDirectory(m.config.Rules.Dir)
	if err != nil && rules == nil {
		m.lastLoadError = err
		m.logger.Error("Failed to load rules",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		if isReload {
			m.logger.Warn("Keeping previous rules after failed reload",
				"count", len(m.lastGoodRules),
			)
		}
		return err
	}

	if err := m.registry.Replace(rules); err != nil {
		m.lastLoadError = err
		m.logger.Error("Failed to register rules",
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		if isReload && len(m.lastGoodRules) > 0 {
			_ = m.registry.Replace(m.lastGoodRules)
		}
		return err
	}

	m.lastLoadTime = time.Now()
	m.lastLoadError = nil
	m.lastGoodRules = rules

	m.recordCatalog(rules)
	m.recordActiveGauges(rules)

	m.logger.Info("Rules loaded successfully",
		"count", len(rules),
		"version", m.registry.Version(),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	// Partial failures surface in the log, not as a load error.
	if err != nil {
		m.logger.Warn("Some rule files were rejected", "error", err)
	}

	return nil
}

// recordCatalog records accepted rules in the catalog store.
func (m *RuleManager) recordCatalog(rules []*ast.Rule) {
	if m.catalog == nil {
		return
	}

	ctx := context.Background()
	for _, rule := range rules {
		record := &catalog.Record{
			Name:       RuleName(rule),
			TableType:  string(rule.TableType),
			SourcePath: rule.SourceFile,
			Score:      rule.Score(),
			CardCount:  len(rule.Cards),
			LoadedAt:   time.Now(),
		}
		if err := m.catalog.Put(ctx, record); err != nil {
			m.logger.Error("Failed to record rule in catalog",
				"rule", record.Name,
				"error", err,
			)
		}
	}
}

// recordActiveGauges updates the per-table-type active rule gauges.
func (m *RuleManager) recordActiveGauges(rules []*ast.Rule) {
	if m.metrics == nil {
		return
	}

	counts := make(map[string]int)
	for _, rule := range rules {
		counts[string(rule.TableType)]++
	}
	for tableType, count := range counts {
		m.metrics.SetActiveRules(tableType, count)
	}
}

// GetRule retrieves a single rule by name.
func (m *RuleManager) GetRule(name string) (*ast.Rule, error) {
	rule, ok := m.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("rule %q not found", name)
	}
	return rule, nil
}

// GetAllRules retrieves all loaded rules.
func (m *RuleManager) GetAllRules() []*ast.Rule {
	return m.registry.GetAll()
}

// Candidates returns the rules applicable to the given table type,
// best score first.
func (m *RuleManager) Candidates(tableType ast.TypeTag) []*ast.Rule {
	return m.registry.Candidates(tableType)
}

// Version returns the version of the currently loaded rule set.
func (m *RuleManager) Version() string {
	return m.registry.Version()
}

// Watch starts watching the rules directory for changes and, when
// configured, schedules periodic full rescans. This blocks until the
// context is cancelled.
func (m *RuleManager) Watch(ctx context.Context) error {
	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchMu.Unlock()
		return fmt.Errorf("watch already started")
	}

	m.watchCtx, m.watchCancel = context.WithCancel(ctx)
	m.watchMu.Unlock()

	m.logger.Info("Starting rule watcher",
		"dir", m.config.Rules.Dir,
		"debounce", m.config.Watch.Debounce,
		"rescan_schedule", m.config.Watch.RescanSchedule,
	)

	scheduler := NewRescanScheduler(m.config.Watch.RescanSchedule, m.ReloadRules, m.logger)
	if err := scheduler.Start(m.watchCtx); err != nil {
		return fmt.Errorf("failed to start rescan scheduler: %w", err)
	}

	watcher, err := NewFileWatcher(m.config.Rules.Dir, m.loader.config, m.config.Watch.Debounce, m.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	go func() {
		if err := watcher.Watch(m.watchCtx, m.ApplyChanges); err != nil {
			m.logger.Error("File watcher error", "error", err)
		}
	}()

	<-m.watchCtx.Done()

	scheduler.Stop()
	if err := watcher.Stop(); err != nil {
		m.logger.Error("Failed to stop file watcher", "error", err)
		return err
	}

	return nil
}

// ApplyChanges applies a burst of rule file changes without rescanning
// the whole directory. A changed document that fails to load keeps its
// previously registered version; a removed document is unregistered and
// dropped from the catalog. The periodic rescan reconciles anything a
// burst misses.
func (m *RuleManager) ApplyChanges(changed []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	errList := &ErrorList{}
	for _, path := range changed {
		if _, err := os.Stat(path); err != nil {
			m.removeRule(path)
			continue
		}

		rule, err := m.loader.LoadFromFile(path)
		if err != nil {
			errList.Add(err)
			m.logger.Warn("Keeping previous version of rejected rule file",
				"path", path,
				"error", err,
			)
			continue
		}
		if err := m.registry.Register(rule); err != nil {
			errList.Add(err)
			continue
		}
		m.recordCatalog([]*ast.Rule{rule})
	}

	rules := m.registry.GetAll()
	m.lastGoodRules = rules
	m.lastLoadTime = time.Now()
	m.recordActiveGauges(rules)

	return errList.ToError()
}

// removeRule unregisters the rule loaded from a deleted source file.
func (m *RuleManager) removeRule(path string) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	if err := m.registry.Unregister(name); err != nil {
		m.logger.Debug("No registered rule for removed file", "path", path)
		return
	}
	m.logger.Info("Unregistered rule for removed file", "rule", name, "path", path)

	if m.catalog != nil {
		if err := m.catalog.Delete(context.Background(), name); err != nil {
			m.logger.Error("Failed to drop rule from catalog",
				"rule", name,
				"error", err,
			)
		}
	}
}

// ValidateDryRun loads and validates rules without applying them to the
// registry.
func (m *RuleManager) ValidateDryRun() error {
	m.logger.Info("Dry-run validation", "dir", m.config.Rules.Dir)

	rules, err := m.loader.LoadFromDirectory(m.config.Rules.Dir)
	if err != nil {
		return err
	}

	m.logger.Info("Dry-run validation successful", "count", len(rules))
	return nil
}

// LastLoadTime returns the timestamp of the last successful load.
func (m *RuleManager) LastLoadTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoadTime
}

// LastLoadError returns the error from the last load attempt.
func (m *RuleManager) LastLoadError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoadError
}

// Registry returns the underlying rule registry.
// This is useful for testing and introspection.
func (m *RuleManager) Registry() *RuleRegistry {
	return m.registry
}

// Loader returns the underlying rule loader.
func (m *RuleManager) Loader() *RuleLoader {
	return m.loader
}

// Close performs cleanup and releases resources.
func (m *RuleManager) Close() error {
	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchMu.Unlock()

	m.logger.Info("Rule manager closed")
	return nil
}
