package manager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"datalens-hq/saturn/pkg/catalog"
	"datalens-hq/saturn/pkg/config"
)

func newTestManager(t *testing.T, dir string, store catalog.Store) *RuleManager {
	t.Helper()

	cfg := config.NewDefault()
	cfg.Rules.Dir = dir

	mgr, err := NewRuleManager(cfg, store, nil, nil)
	if err != nil {
		t.Fatalf("NewRuleManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	return mgr
}

func TestManagerLoadRules(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "transactions.yaml", validDoc)

	mgr := newTestManager(t, dir, nil)
	if err := mgr.LoadRules(); err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	rule, err := mgr.GetRule("transactions")
	if err != nil {
		t.Fatalf("GetRule failed: %v", err)
	}
	if rule.TableType != "type/TransactionTable" {
		t.Errorf("TableType = %q", rule.TableType)
	}
	if mgr.Version() == "" {
		t.Error("Expected non-empty version after load")
	}
	if mgr.LastLoadTime().IsZero() {
		t.Error("Expected last load time to be set")
	}
	if mgr.LastLoadError() != nil {
		t.Errorf("Expected nil last load error, got %v", mgr.LastLoadError())
	}
}

func TestManagerLoadRules_TableTypeFromFilename(t *testing.T) {
	dir := t.TempDir()
	// No table_type key; the filename stem supplies it.
	doc := `
title: Events overview
dimensions:
  - Category: type/Category
cards:
  - ByCategory:
      title: Events per category
      visualization: bar
      dimensions: Category
`
	writeRuleFile(t, dir, "EventTable.yaml", doc)

	mgr := newTestManager(t, dir, nil)
	if err := mgr.LoadRules(); err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	rule, err := mgr.GetRule("EventTable")
	if err != nil {
		t.Fatalf("GetRule failed: %v", err)
	}
	if rule.TableType != "type/EventTable" {
		t.Errorf("TableType = %q, want type/EventTable", rule.TableType)
	}
}

func TestManagerLoadRules_SkipsRejectedDocuments(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "good.yaml", validDoc)
	writeRuleFile(t, dir, "bad.yaml", badStructureDoc)

	mgr := newTestManager(t, dir, nil)
	if err := mgr.LoadRules(); err != nil {
		t.Fatalf("Expected partial load to succeed, got %v", err)
	}

	if mgr.Registry().Count() != 1 {
		t.Errorf("Expected 1 loaded rule, got %d", mgr.Registry().Count())
	}
	if _, err := mgr.GetRule("bad"); err == nil {
		t.Error("Expected rejected document to stay out of the registry")
	}
}

func TestManagerReloadKeepsLastGood(t *testing.T) {
	dir := t.TempDir()
	path := writeRuleFile(t, dir, "transactions.yaml", validDoc)

	mgr := newTestManager(t, dir, nil)
	if err := mgr.LoadRules(); err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	// Break the only document, then reload.
	if err := os.WriteFile(path, []byte(badStructureDoc), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := mgr.ReloadRules(); err == nil {
		t.Fatal("Expected reload to report failure")
	}
	if mgr.LastLoadError() == nil {
		t.Error("Expected last load error to be set")
	}

	// The previous rule set survives the failed reload.
	if _, err := mgr.GetRule("transactions"); err != nil {
		t.Errorf("Expected previous rules to be kept, got %v", err)
	}
}

func TestManagerRecordsCatalog(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "transactions.yaml", validDoc)

	store := catalog.NewMemoryStore()
	defer store.Close()

	mgr := newTestManager(t, dir, store)
	if err := mgr.LoadRules(); err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	record, err := store.Get(context.Background(), "transactions")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record == nil {
		t.Fatal("Expected accepted rule in catalog")
	}
	if record.TableType != "type/TransactionTable" {
		t.Errorf("Record.TableType = %q", record.TableType)
	}
	if record.CardCount != 1 {
		t.Errorf("Record.CardCount = %d", record.CardCount)
	}
	if filepath.Base(record.SourcePath) != "transactions.yaml" {
		t.Errorf("Record.SourcePath = %q", record.SourcePath)
	}
}

func TestManagerCandidates(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "transactions.yaml", validDoc)

	mgr := newTestManager(t, dir, nil)
	if err := mgr.LoadRules(); err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	candidates := mgr.Candidates("type/TransactionTable")
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if got := mgr.Candidates("type/UserTable"); len(got) != 0 {
		t.Errorf("Expected no candidates for unrelated table type, got %d", len(got))
	}
}

func TestManagerValidateDryRun(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "good.yaml", validDoc)

	mgr := newTestManager(t, dir, nil)
	if err := mgr.ValidateDryRun(); err != nil {
		t.Fatalf("ValidateDryRun failed: %v", err)
	}
	// Dry-run must not touch the registry.
	if mgr.Registry().Count() != 0 {
		t.Errorf("Expected empty registry after dry run, got %d", mgr.Registry().Count())
	}

	writeRuleFile(t, dir, "bad.yaml", badStructureDoc)
	if err := mgr.ValidateDryRun(); err == nil {
		t.Error("Expected dry run to report the rejected document")
	}
}

func TestManagerApplyChanges(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "transactions.yaml", validDoc)

	store := catalog.NewMemoryStore()
	defer store.Close()

	mgr := newTestManager(t, dir, store)
	if err := mgr.LoadRules(); err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}
	version := mgr.Version()

	// A new document registers without a directory rescan.
	added := writeRuleFile(t, dir, "events.yaml", validDoc)
	if err := mgr.ApplyChanges([]string{added}); err != nil {
		t.Fatalf("ApplyChanges failed: %v", err)
	}
	if _, err := mgr.GetRule("events"); err != nil {
		t.Fatalf("Expected added rule to be registered: %v", err)
	}
	if mgr.Version() == version {
		t.Error("Expected version to change after registration")
	}
	record, err := store.Get(context.Background(), "events")
	if err != nil || record == nil {
		t.Fatalf("Expected added rule in catalog, got %v, %v", record, err)
	}

	// A rejected edit keeps the previously registered version.
	writeRuleFile(t, dir, "events.yaml", badReferenceDoc)
	if err := mgr.ApplyChanges([]string{added}); err == nil {
		t.Fatal("Expected rejection error for broken edit")
	}
	rule, err := mgr.GetRule("events")
	if err != nil {
		t.Fatalf("Expected previous version to survive: %v", err)
	}
	if rule.Title != "Transactions overview" {
		t.Errorf("Previous version lost, Title = %q", rule.Title)
	}

	// A removed document is unregistered and dropped from the catalog.
	if err := os.Remove(added); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := mgr.ApplyChanges([]string{added}); err != nil {
		t.Fatalf("ApplyChanges failed: %v", err)
	}
	if _, err := mgr.GetRule("events"); err == nil {
		t.Error("Expected removed rule to be unregistered")
	}
	record, err = store.Get(context.Background(), "events")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record != nil {
		t.Error("Expected removed rule to be dropped from the catalog")
	}
}

func TestManagerLoadRules_MissingDirectory(t *testing.T) {
	mgr := newTestManager(t, filepath.Join(t.TempDir(), "absent"), nil)

	if err := mgr.LoadRules(); err == nil {
		t.Fatal("Expected error for missing directory")
	}
	if mgr.LastLoadError() == nil {
		t.Error("Expected last load error to be set")
	}
}
