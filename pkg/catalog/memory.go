package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store using in-memory storage.
// This is the default store and provides fast access with no persistence.
// All records are lost when the process exits.
type MemoryStore struct {
	// records maps rule name to catalog record.
	records map[string]*Record

	// mu protects access to the records map.
	mu sync.RWMutex
}

// NewMemoryStore creates a new in-memory catalog store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

// Put records an accepted rule, replacing any existing record with
// the same name.
func (m *MemoryStore) Put(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.Name == "" {
		return fmt.Errorf("record name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *record
	if existing, ok := m.records[record.Name]; ok {
		stored.ID = existing.ID
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.LoadedAt.IsZero() {
		stored.LoadedAt = time.Now()
	}

	m.records[record.Name] = &stored
	record.ID = stored.ID

	return nil
}

// Get retrieves the record for a rule name.
func (m *MemoryStore) Get(ctx context.Context, name string) (*Record, error) {
	if name == "" {
		return nil, fmt.Errorf("record name cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[name]
	if !ok {
		return nil, nil
	}

	copied := *record
	return &copied, nil
}

// Delete removes the record for a rule name.
func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("record name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, name)
	return nil
}

// List returns all records for a table type, ordered by score
// descending and then by name.
func (m *MemoryStore) List(ctx context.Context, tableType string) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []*Record
	for _, record := range m.records {
		if tableType != "" && record.TableType != tableType {
			continue
		}
		copied := *record
		records = append(records, &copied)
	}

	sortRecords(records)
	return records, nil
}

// Prune removes records loaded before the cutoff.
func (m *MemoryStore) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for name, record := range m.records {
		if record.LoadedAt.Before(olderThan) {
			delete(m.records, name)
			deleted++
		}
	}

	return deleted, nil
}

// Close releases any resources held by the store.
func (m *MemoryStore) Close() error {
	return nil
}

// Size returns the current number of stored records.
// This is useful for monitoring and testing.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// sortRecords orders records by score descending, then by name.
func sortRecords(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].Name < records[j].Name
	})
}
