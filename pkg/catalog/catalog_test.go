package catalog

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_PutAndGet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	record := &Record{
		Name:       "transactions-by-country",
		TableType:  "type/TransactionTable",
		SourcePath: "rules/transactions.yaml",
		Score:      90,
		CardCount:  3,
	}

	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if record.ID == "" {
		t.Error("Expected Put to assign a record ID")
	}

	loaded, err := store.Get(ctx, "transactions-by-country")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected record, got nil")
	}
	if loaded.ID != record.ID {
		t.Errorf("Expected ID %s, got %s", record.ID, loaded.ID)
	}
	if loaded.TableType != "type/TransactionTable" {
		t.Errorf("Expected table type type/TransactionTable, got %s", loaded.TableType)
	}
	if loaded.Score != 90 {
		t.Errorf("Expected score 90, got %d", loaded.Score)
	}
	if loaded.LoadedAt.IsZero() {
		t.Error("Expected LoadedAt to be set")
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	loaded, err := store.Get(context.Background(), "no-such-rule")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil for missing record, got %+v", loaded)
	}
}

func TestMemoryStore_PutReplaceKeepsID(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	first := &Record{Name: "events", TableType: "type/EventTable", Score: 50}
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	second := &Record{Name: "events", TableType: "type/EventTable", Score: 80}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected replaced record to keep ID %s, got %s", first.ID, second.ID)
	}

	loaded, err := store.Get(ctx, "events")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Score != 80 {
		t.Errorf("Expected replaced score 80, got %d", loaded.Score)
	}
	if store.Size() != 1 {
		t.Errorf("Expected 1 record after replace, got %d", store.Size())
	}
}

func TestMemoryStore_PutValidation(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	if err := store.Put(ctx, nil); err == nil {
		t.Error("Expected error for nil record")
	}
	if err := store.Put(ctx, &Record{Name: ""}); err == nil {
		t.Error("Expected error for empty name")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	if err := store.Put(ctx, &Record{Name: "events", TableType: "type/EventTable"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, "events"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	loaded, err := store.Get(ctx, "events")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded != nil {
		t.Error("Expected record to be deleted")
	}

	// Deleting a missing record is a no-op.
	if err := store.Delete(ctx, "events"); err != nil {
		t.Errorf("Delete of missing record failed: %v", err)
	}
}

func TestMemoryStore_ListOrdering(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	records := []*Record{
		{Name: "low", TableType: "type/EventTable", Score: 40},
		{Name: "beta", TableType: "type/EventTable", Score: 90},
		{Name: "alpha", TableType: "type/EventTable", Score: 90},
		{Name: "other", TableType: "type/UserTable", Score: 100},
	}
	for _, record := range records {
		if err := store.Put(ctx, record); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	listed, err := store.List(ctx, "type/EventTable")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"alpha", "beta", "low"}
	if len(listed) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(listed))
	}
	for i, name := range want {
		if listed[i].Name != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, listed[i].Name)
		}
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 records for empty table type, got %d", len(all))
	}
	if all[0].Name != "other" {
		t.Errorf("Expected highest score first, got %s", all[0].Name)
	}
}

func TestMemoryStore_Prune(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	now := time.Now()

	stale := &Record{Name: "stale", TableType: "type/EventTable", LoadedAt: now.Add(-48 * time.Hour)}
	fresh := &Record{Name: "fresh", TableType: "type/EventTable", LoadedAt: now}
	for _, record := range []*Record{stale, fresh} {
		if err := store.Put(ctx, record); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	deleted, err := store.Prune(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 record pruned, got %d", deleted)
	}
	if store.Size() != 1 {
		t.Errorf("Expected 1 record remaining, got %d", store.Size())
	}
}
