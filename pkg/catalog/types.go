package catalog

import (
	"context"
	"time"
)

// Store defines the interface for accepted-rule catalog persistence.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// Put records an accepted rule. If a record with the same rule name
	// already exists, it is replaced and keeps its record ID.
	Put(ctx context.Context, record *Record) error

	// Get retrieves the record for a rule name.
	// Returns nil if no record exists. Returns error on system failure.
	Get(ctx context.Context, name string) (*Record, error)

	// Delete removes the record for a rule name.
	// No-op if the record doesn't exist.
	Delete(ctx context.Context, name string) error

	// List returns all records for a table type, or every record when
	// tableType is empty. Records are ordered by score descending, then
	// by rule name.
	List(ctx context.Context, tableType string) ([]*Record, error)

	// Prune removes records loaded before the cutoff.
	// Returns the number of records deleted and any error.
	Prune(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases any resources held by the store.
	// The store should not be used after calling Close.
	Close() error
}

// Record is a catalog entry for a rule that passed compilation and
// reference validation.
type Record struct {
	// ID is a unique identifier assigned when the record is first stored.
	ID string

	// Name is the rule name, unique within the catalog.
	Name string

	// TableType is the qualified table type the rule targets.
	TableType string

	// SourcePath is the file the rule was loaded from.
	SourcePath string

	// Score is the rule relevance score.
	Score int

	// CardCount is the number of cards the rule produces.
	CardCount int

	// LoadedAt is when the rule was last loaded into the catalog.
	LoadedAt time.Time
}
