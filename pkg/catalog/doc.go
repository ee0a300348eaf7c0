// Package catalog provides persistence stores for accepted rules.
//
// # Overview
//
// The catalog package defines the interface for recording rules that
// passed compilation and reference validation, and provides two
// implementations:
//
//   - Memory: Fast in-memory storage (default, no persistence)
//   - SQLite: Lightweight file-based persistence with WAL checkpoints
//
// # Usage
//
//	// Create in-memory store (default)
//	store := catalog.NewMemoryStore()
//
//	// Record an accepted rule
//	record := &catalog.Record{
//	    Name:       "transactions-by-country",
//	    TableType:  "type/TransactionTable",
//	    SourcePath: "rules/transactions.yaml",
//	    Score:      90,
//	    CardCount:  3,
//	}
//	err := store.Put(ctx, record)
//
//	// List records for a table type, best score first
//	records, err := store.List(ctx, "type/TransactionTable")
//
// # Thread Safety
//
// All stores are thread-safe and support concurrent access from
// multiple goroutines. Locking is handled internally by each store.
package catalog
