package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for persistence.
// It provides a durable catalog suitable for single-instance deployments
// where accepted rules must survive restarts.
//
// SQLiteStore uses a write-ahead log (WAL) for better concurrent
// performance and runs periodic passive checkpoints.
type SQLiteStore struct {
	db                 *sql.DB
	dbPath             string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once

	putStmt    *sql.Stmt
	getStmt    *sql.Stmt
	deleteStmt *sql.Stmt
	listStmt   *sql.Stmt
	allStmt    *sql.Stmt
	pruneStmt  *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite catalog store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore creates a new SQLite catalog store with default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{
		DBPath:             dbPath,
		CheckpointInterval: 5 * time.Minute,
		BusyTimeout:        5 * time.Second,
	})
}

// NewSQLiteStoreWithConfig creates a new SQLite store with custom configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:                 db,
		dbPath:             cfg.DBPath,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go store.checkpointLoop()

	return store, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rule_records (
		name TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		table_type TEXT NOT NULL,
		source_path TEXT NOT NULL,
		score INTEGER NOT NULL,
		card_count INTEGER NOT NULL,
		loaded_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_table_type ON rule_records(table_type);
	CREATE INDEX IF NOT EXISTS idx_loaded_at ON rule_records(loaded_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.putStmt, err = s.db.Prepare(`
		INSERT INTO rule_records (name, id, table_type, source_path, score, card_count, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			table_type = excluded.table_type,
			source_path = excluded.source_path,
			score = excluded.score,
			card_count = excluded.card_count,
			loaded_at = excluded.loaded_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare put statement: %w", err)
	}

	s.getStmt, err = s.db.Prepare(`
		SELECT name, id, table_type, source_path, score, card_count, loaded_at
		FROM rule_records
		WHERE name = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`
		DELETE FROM rule_records
		WHERE name = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT name, id, table_type, source_path, score, card_count, loaded_at
		FROM rule_records
		WHERE table_type = ?
		ORDER BY score DESC, name ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.allStmt, err = s.db.Prepare(`
		SELECT name, id, table_type, source_path, score, card_count, loaded_at
		FROM rule_records
		ORDER BY score DESC, name ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list-all statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`
		DELETE FROM rule_records
		WHERE loaded_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// Put records an accepted rule, replacing any existing record with
// the same name. The existing record ID is preserved on replace.
func (s *SQLiteStore) Put(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.Name == "" {
		return fmt.Errorf("record name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := record.ID
	if id == "" {
		var existing string
		err := s.getStmt.QueryRowContext(ctx, record.Name).Scan(
			new(string), &existing, new(string), new(string), new(int), new(int), new(int64),
		)
		switch {
		case err == sql.ErrNoRows:
			id = uuid.NewString()
		case err != nil:
			return fmt.Errorf("failed to look up record: %w", err)
		default:
			id = existing
		}
	}

	loadedAt := record.LoadedAt
	if loadedAt.IsZero() {
		loadedAt = time.Now()
	}

	_, err := s.putStmt.ExecContext(ctx,
		record.Name,
		id,
		record.TableType,
		record.SourcePath,
		record.Score,
		record.CardCount,
		loadedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}

	record.ID = id
	return nil
}

// Get retrieves the record for a rule name.
func (s *SQLiteStore) Get(ctx context.Context, name string) (*Record, error) {
	if name == "" {
		return nil, fmt.Errorf("record name cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, err := scanRecord(s.getStmt.QueryRowContext(ctx, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	return record, nil
}

// Delete removes the record for a rule name.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("record name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.deleteStmt.ExecContext(ctx, name); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	return nil
}

// List returns all records for a table type, or every record when
// tableType is empty.
func (s *SQLiteStore) List(ctx context.Context, tableType string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rows *sql.Rows
		err  error
	)
	if tableType == "" {
		rows, err = s.allStmt.QueryContext(ctx)
	} else {
		rows, err = s.listStmt.QueryContext(ctx, tableType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Prune removes records loaded before the cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.pruneStmt.ExecContext(ctx, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(deleted), nil
}

// Close releases any resources held by the store.
// Close is idempotent and safe to call multiple times.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		for _, stmt := range []*sql.Stmt{s.putStmt, s.getStmt, s.deleteStmt, s.listStmt, s.allStmt, s.pruneStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints.
func (s *SQLiteStore) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanRecord.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one catalog record from a query result.
func scanRecord(row rowScanner) (*Record, error) {
	var (
		record   Record
		loadedAt int64
	)

	err := row.Scan(
		&record.Name,
		&record.ID,
		&record.TableType,
		&record.SourcePath,
		&record.Score,
		&record.CardCount,
		&loadedAt,
	)
	if err != nil {
		return nil, err
	}

	record.LoadedAt = time.Unix(loadedAt, 0)
	return &record, nil
}
