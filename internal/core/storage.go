package core

import (
	"context"
	"fmt"
	"os"

	"immunizetrack/internal/infra/persistence/leveldb"
	"immunizetrack/internal/infra/persistence/memory"
	"immunizetrack/internal/infra/persistence/postgres"
	"immunizetrack/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageLevelDB  StorageDriver = "leveldb"  // embedded LevelDB directory
)

// StorageConfig selects and parameterises a persistent store.
type StorageConfig struct {
	Driver      StorageDriver `yaml:"driver"`
	SQLitePath  string        `yaml:"sqlitePath"`
	PostgresDSN string        `yaml:"postgresDSN"`
	LevelDBPath string        `yaml:"leveldbPath"`
}

// StorageConfigFromEnv reads the storage environment variables.
//
//	IMMUNIZETRACK_STORAGE_DRIVER: memory|sqlite|postgres|leveldb (default sqlite)
//	IMMUNIZETRACK_SQLITE_PATH: path to sqlite file (default ./immunizetrack.db)
//	IMMUNIZETRACK_POSTGRES_DSN: postgres DSN when driver=postgres
//	IMMUNIZETRACK_LEVELDB_PATH: database directory when driver=leveldb
func StorageConfigFromEnv() StorageConfig {
	return StorageConfig{
		Driver:      StorageDriver(os.Getenv("IMMUNIZETRACK_STORAGE_DRIVER")),
		SQLitePath:  os.Getenv("IMMUNIZETRACK_SQLITE_PATH"),
		PostgresDSN: os.Getenv("IMMUNIZETRACK_POSTGRES_DSN"),
		LevelDBPath: os.Getenv("IMMUNIZETRACK_LEVELDB_PATH"),
	}
}

// OpenPersistentStore opens the backend named by cfg. Defaults to sqlite when
// no driver is set.
func OpenPersistentStore(ctx context.Context, cfg StorageConfig) (PersistentStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return opened(sqlite.NewStore(cfg.SQLitePath))
	case StoragePostgres:
		return opened(postgres.NewStore(ctx, cfg.PostgresDSN))
	case StorageLevelDB:
		return opened(leveldb.NewStore(cfg.LevelDBPath))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

func opened[S PersistentStore](store S, err error) (PersistentStore, error) {
	if err != nil {
		return nil, err
	}
	return store, nil
}
