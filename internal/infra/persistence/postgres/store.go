// Package postgres persists record snapshots to a Postgres state table with
// one JSONB document per record kind.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	sqldocs "immunizetrack/docs/schema/sql"
	"immunizetrack/internal/infra/persistence/bucket"
	"immunizetrack/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// DefaultDSN is used when no DSN is configured.
	DefaultDSN = "postgres://localhost/immunizetrack?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store is a Postgres-backed snapshot store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore connects to dsn (DefaultDSN when empty) and ensures the state
// table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqldocs.Postgres); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return &Store{db: db}, nil
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
			return domain.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return bucket.Decode(entries)
}

// Save implements domain.PersistentStore.
func (s *Store) Save(ctx context.Context, snap domain.Snapshot) error {
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
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`, e.Name, e.Payload); err != nil {
			return fmt.Errorf("upsert %s: %w", e.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Close implements domain.PersistentStore.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
