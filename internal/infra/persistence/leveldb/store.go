// Package leveldb persists record snapshots to an embedded LevelDB database,
// one key per record kind under the "state_" prefix.
package leveldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"immunizetrack/internal/infra/persistence/bucket"
	"immunizetrack/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

// DefaultPath is used when no path is configured.
const DefaultPath = "immunizetrack.ldb"

const keyPrefix = "state_"

// Store is a LevelDB-backed snapshot store.
type Store struct {
	db *leveldb.DB
}

// NewStore opens (creating when needed) the database directory at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	return &Store{db: db}, nil
}

// NewMemStore opens a database over in-memory storage.
func NewMemStore() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	return &Store{db: db}, nil
}

// Load implements domain.PersistentStore.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(keyPrefix)), nil)
	defer iter.Release()
	var entries []bucket.Entry
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return domain.Snapshot{}, err
		}
		entries = append(entries, bucket.Entry{
			Name:    strings.TrimPrefix(string(iter.Key()), keyPrefix),
			Payload: append([]byte(nil), iter.Value()...),
		})
	}
	if err := iter.Error(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return bucket.Decode(entries)
}

// Save implements domain.PersistentStore. Buckets are written in one atomic
// batch.
func (s *Store) Save(ctx context.Context, snap domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := bucket.Encode(snap)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	for _, e := range entries {
		batch.Put([]byte(keyPrefix+e.Name), e.Payload)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

// Close implements domain.PersistentStore.
func (s *Store) Close() error { return s.db.Close() }
