// Package manager provides rule management capabilities for loading,
// validating, and serving Saturn Rule Language (SRL) documents from the
// file system.
//
// The package supports single-file rules and directory structures,
// compilation and reference validation on load, and hot-reload for
// zero-downtime rule updates. Rejected documents never take down a load:
// they are logged, counted, and skipped.
//
// # Core Components
//
// RuleManager is the main orchestrator coordinating loading, validation,
// registration, catalog recording, and hot-reload.
//
// RuleLoader handles file system operations, compiles documents with a
// bounded worker pool, and runs reference validation.
//
// RuleRegistry provides thread-safe in-memory storage for loaded rules
// with atomic replacement for hot reloads, and taxonomy-aware candidate
// lookup by table type.
//
// FileWatcher monitors the file system for changes and triggers
// hot-reload with debouncing to prevent reload storms. RescanScheduler
// backstops the watcher with periodic cron-scheduled full rescans.
//
// # Basic Usage
//
//	cfg := config.NewDefault()
//	cfg.Rules.Dir = "rules/"
//
//	mgr, err := manager.NewRuleManager(cfg, nil, nil, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := mgr.LoadRules(); err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, rule := range mgr.Candidates("type/TransactionTable") {
//	    fmt.Println(rule.Title)
//	}
package manager
