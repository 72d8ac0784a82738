// Package sqlite persists record snapshots to a single SQLite table, one JSON
// blob per record kind.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	sqldocs "immunizetrack/docs/schema/sql"
	"immunizetrack/internal/infra/persistence/bucket"
	"immunizetrack/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

// DefaultPath is used when no path is configured.
const DefaultPath = "immunizetrack.db"

// Store is a SQLite-backed snapshot store.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating when needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqldocs.SQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Load implements domain.PersistentStore.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var entries []bucket.Entry
	for rows.Next() {
		var e bucket.Entry
		if err := rows.Scan(&e.Name, &e.Payload); err != nil {
			return domain.Snapshot{}, fmt.Errorf("scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return bucket.Decode(entries)
}

// Save implements domain.PersistentStore. All buckets are written in one
// transaction.
func (s *Store) Save(ctx context.Context, snap domain.Snapshot) (retErr error) {
	entries, err := bucket.Encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, e.Name, e.Payload); err != nil {
			return fmt.Errorf("upsert %s: %w", e.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close implements domain.PersistentStore.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
